package ports

import (
	"context"
	"time"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// SubmitScanResult is returned after a scan record is created; the caller
// then observes progress asynchronously via the scan's broadcast room.
type SubmitScanResult struct {
	ScanID    string
	WebsiteID string
	URL       string
	Domain    string
	Status    string
	UserID    string
	SessionID string
	CreatedAt time.Time
}

// ListScansInput carries all parameters for the list operation.
type ListScansInput struct {
	Identity domain.Identity
	Status   string
	Limit    int
	Offset   int
}

// ListScansResult is returned by ListScans.
type ListScansResult struct {
	Scans  []*domain.Scan
	Total  int64
	Limit  int
	Offset int
}

// ScanService owns the scan lifecycle state machine and access checks.
type ScanService interface {
	// Create validates the URL, looks up or creates the website record, and
	// inserts a new pending scan owned by identity.
	Create(ctx context.Context, url string, identity domain.Identity) (*SubmitScanResult, error)

	MarkProcessing(ctx context.Context, scanID string) error
	MarkCompleted(ctx context.Context, scanID string, result *domain.ScanResult, elapsedMS int64) error
	MarkFailed(ctx context.Context, scanID string, errorMessage string) error

	// CanAccess applies the ownership invariant without returning the scan.
	CanAccess(ctx context.Context, scanID string, identity domain.Identity) (bool, error)

	// GetIfAccessible returns the scan or ErrScanNotFound / ErrAccessDenied.
	GetIfAccessible(ctx context.Context, scanID string, identity domain.Identity) (*domain.Scan, error)

	// ListScans returns the authenticated owner's scans, most recent first.
	// Anonymous identities get ErrAuthRequired.
	ListScans(ctx context.Context, input ListScansInput) (*ListScansResult, error)
}

// Pipeline runs the multi-stage analysis for one scan to a terminal state.
type Pipeline interface {
	Process(ctx context.Context, scanID, url string)
}
