package ports

import "context"

// CaptureResultKind tags the two shapes a capture backend may return.
type CaptureResultKind string

const (
	CaptureKindURL   CaptureResultKind = "url"
	CaptureKindBytes CaptureResultKind = "bytes"
)

// CaptureResult is the single tagged type every capture response is
// normalized into at the client boundary.
type CaptureResult struct {
	Kind  CaptureResultKind
	URL   string // set when Kind is url
	Bytes []byte // set when Kind is bytes
}

// CaptureClient performs one external screenshot capture call.
type CaptureClient interface {
	Capture(ctx context.Context, url string) (*CaptureResult, error)
}

// FetchProgressFunc is invoked before each capture attempt with a
// human-readable status message.
type FetchProgressFunc func(message string)

// ScreenshotFetcher wraps capture with cache lookup, bounded retry and
// image download; it always yields raw image bytes.
type ScreenshotFetcher interface {
	Fetch(ctx context.Context, url string, progress FetchProgressFunc) ([]byte, error)
}

// ScreenshotCache is the content-addressed, TTL-bound artifact cache.
type ScreenshotCache interface {
	// Get returns the cached payload or (nil, nil) on miss. Expired entries
	// are evicted eagerly and reported as a miss.
	Get(ctx context.Context, url string) ([]byte, error)
	Put(ctx context.Context, url string, payload []byte) error
	// Sweep removes all expired entries and returns the count removed.
	Sweep(ctx context.Context) (int, error)
}
