package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/api/metrics"
	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
	"github.com/sitelens/scan-engine/pkg/urlx"
)

const maxAttempts = 3

// retryDelays holds the wait before attempt k at index k-2.
var retryDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// Fetcher implements ports.ScreenshotFetcher: cache lookup first, then up to
// maxAttempts capture calls with an escalating delay schedule. Only transient
// (5xx) backend failures are retried; everything else aborts immediately.
type Fetcher struct {
	client     ports.CaptureClient
	cache      ports.ScreenshotCache
	httpClient *http.Client
	delays     []time.Duration
	sleep      func(time.Duration)
	logger     zerolog.Logger
}

func NewFetcher(client ports.CaptureClient, cache ports.ScreenshotCache, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:     client,
		cache:      cache,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delays:     retryDelays,
		sleep:      time.Sleep,
		logger:     logger.With().Str("component", "screenshot_fetcher").Logger(),
	}
}

// Fetch returns the raw screenshot bytes for url, serving from cache when the
// normalized URL was captured within the TTL window.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, progress ports.FetchProgressFunc) ([]byte, error) {
	notify := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	normalized := urlx.Normalize(rawURL)

	if cached, err := f.cache.Get(ctx, normalized); err != nil {
		f.logger.Warn().Err(err).Str("url", normalized).Msg("cache lookup failed")
	} else if cached != nil {
		metrics.ScreenshotCacheTotal.WithLabelValues("hit").Inc()
		notify("Using cached screenshot...")
		return cached, nil
	}
	metrics.ScreenshotCacheTotal.WithLabelValues("miss").Inc()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			notify(fmt.Sprintf("Retrying screenshot capture (attempt %d/%d)...", attempt, maxAttempts))
			f.sleep(f.delays[attempt-2])
		}
		notify("Contacting capture backend...")

		result, err := f.client.Capture(ctx, normalized)
		if err != nil {
			var be *backendError
			if errors.As(err, &be) && be.retryable() {
				metrics.CaptureAttemptsTotal.WithLabelValues("transient_failure").Inc()
				f.logger.Warn().Err(err).Int("attempt", attempt).Str("url", normalized).Msg("transient capture failure")
				lastErr = err
				continue
			}
			metrics.CaptureAttemptsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		metrics.CaptureAttemptsTotal.WithLabelValues("success").Inc()

		payload, err := f.resolve(ctx, result, notify)
		if err != nil {
			return nil, err
		}
		if err := f.cache.Put(ctx, normalized, payload); err != nil {
			f.logger.Warn().Err(err).Str("url", normalized).Msg("cache store failed")
		}
		return payload, nil
	}
	return nil, fmt.Errorf("%w: %d attempts: %v", domain.ErrCaptureExhausted, maxAttempts, lastErr)
}

// resolve turns a tagged capture result into raw image bytes, downloading the
// hosted image when the backend answered with a URL.
func (f *Fetcher) resolve(ctx context.Context, result *ports.CaptureResult, notify func(string)) ([]byte, error) {
	switch result.Kind {
	case ports.CaptureKindBytes:
		return result.Bytes, nil
	case ports.CaptureKindURL:
		notify("Downloading screenshot image...")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("build screenshot download: %w", err)
		}
		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download screenshot: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: screenshot download returned %d", domain.ErrCaptureRejected, resp.StatusCode)
		}
		payload, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return nil, fmt.Errorf("read screenshot download: %w", err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("%w: unknown capture result kind %q", domain.ErrCaptureRejected, result.Kind)
	}
}
