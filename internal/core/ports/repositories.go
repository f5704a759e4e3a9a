package ports

import (
	"context"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// WebsiteRepository persists website records (one per distinct URL).
type WebsiteRepository interface {
	// FindOrCreate returns the existing website for url or inserts a new one.
	FindOrCreate(ctx context.Context, url, domainName string) (*domain.Website, error)
	FindByID(ctx context.Context, id string) (*domain.Website, error)
}

// ListScansFilter carries all query parameters for listing scans.
// UserID is always enforced by the service layer: listing is scoped
// strictly to the authenticated owner.
type ListScansFilter struct {
	UserID string
	Status string // optional: filter by scan status
	Limit  int    // max rows per page (capped at 100 by service)
	Offset int
}

// ScanRepository persists scan records and their status transitions.
type ScanRepository interface {
	Create(ctx context.Context, s *domain.Scan) error
	FindByID(ctx context.Context, id string) (*domain.Scan, error)

	// UpdateStatus applies a status transition. The update is conditional:
	// scans already in a terminal state are left untouched.
	UpdateStatus(ctx context.Context, id string, update ScanStatusUpdate) error

	// List returns a page of scans matching filter, ordered by creation time
	// descending, plus the total count.
	List(ctx context.Context, filter ListScansFilter) ([]*domain.Scan, int64, error)

	// ClaimSessionScans atomically re-owns every unclaimed scan under
	// sessionID to userID and returns the number of transferred records.
	// Already-claimed scans are skipped, making repeated claims idempotent.
	ClaimSessionScans(ctx context.Context, sessionID, userID string) (int64, error)
}

// ScanStatusUpdate carries the fields written on a status transition.
type ScanStatusUpdate struct {
	Status           domain.ScanStatus
	ScanData         *domain.ScanResult // required when Status is completed
	ErrorMessage     string             // required when Status is failed
	ProcessingTimeMS int64
}
