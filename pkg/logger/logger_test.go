package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_BakesServiceIntoEveryLine(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	log := Init(Options{Service: "scan-worker", Output: &buf})
	log.Info().Msg("hello")

	line := buf.String()
	if !strings.Contains(line, `"service":"scan-worker"`) {
		t.Errorf("service field missing: %s", line)
	}
}

func TestInit_DefaultsServiceName(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	log := Init(Options{Output: &buf})
	log.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"service":"scan-engine"`) {
		t.Errorf("default service name missing: %s", buf.String())
	}
}

func TestInit_OnlyFirstCallTakesEffect(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second, Level: "error"})

	log := Get()
	log.Info().Msg("routed")

	if first.Len() == 0 {
		t.Error("first writer received nothing")
	}
	if second.Len() != 0 {
		t.Error("second Init must not rebuild the singleton")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
