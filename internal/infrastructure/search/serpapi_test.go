package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

func TestSerpAPIProvider_Search_CapsAtTopTen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("engine"); got != "google_light" {
			t.Errorf("engine = %q, want google_light", got)
		}
		if got := r.URL.Query().Get("q"); got != "project tracking" {
			t.Errorf("q = %q, want the query", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"organic_results": [`)
		for i := 0; i < 12; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"title":"r%d","link":"https://r%d.com","snippet":"s"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer srv.Close()

	p := NewGoogleProvider("test-key")
	p.endpoint = srv.URL

	results, err := p.Search(context.Background(), "project tracking")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 10 {
		t.Errorf("results = %d, want capped at 10", len(results))
	}
	if results[0].Title != "r0" || results[0].URL != "https://r0.com" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
}

func TestSerpAPIProvider_Search_SurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error":"Invalid API key"}`)
	}))
	defer srv.Close()

	p := NewBingProvider("bad-key")
	p.endpoint = srv.URL

	_, err := p.Search(context.Background(), "anything")
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
}

func TestSerpAPIProvider_Search_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewGoogleProvider("key")
	p.endpoint = srv.URL

	_, err := p.Search(context.Background(), "anything")
	if !errors.Is(err, domain.ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
}
