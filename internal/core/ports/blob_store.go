package ports

import (
	"context"
	"time"
)

// BlobStore persists binary scan artifacts (screenshot.png, page.html,
// raw_data.json) under scans/<scan_id>/<filename>.
type BlobStore interface {
	Put(ctx context.Context, scanID, filename string, payload []byte, contentType string) error
	Get(ctx context.Context, scanID, filename string) ([]byte, error)

	// PresignedURL returns a time-limited signed URL for read access, or an
	// error when the object does not exist.
	PresignedURL(ctx context.Context, scanID, filename string, expiry time.Duration) (string, error)
}
