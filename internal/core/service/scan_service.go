package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
	"github.com/sitelens/scan-engine/pkg/urlx"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ScanService implements the scan lifecycle state machine and access checks.
type ScanService struct {
	websites ports.WebsiteRepository
	scans    ports.ScanRepository
	logger   zerolog.Logger
}

func NewScanService(websites ports.WebsiteRepository, scans ports.ScanRepository, logger zerolog.Logger) *ScanService {
	return &ScanService{websites: websites, scans: scans, logger: logger}
}

// Create validates the URL, looks up or creates the website record, and
// inserts a new pending scan owned by identity.
func (s *ScanService) Create(ctx context.Context, url string, identity domain.Identity) (*ports.SubmitScanResult, error) {
	if !urlx.Valid(url) {
		return nil, domain.ErrInvalidURL
	}

	website, err := s.websites.FindOrCreate(ctx, url, urlx.Domain(url))
	if err != nil {
		return nil, fmt.Errorf("create scan: %w", err)
	}

	scan := &domain.Scan{
		ID:        uuid.NewString(),
		WebsiteID: website.ID,
		UserID:    identity.UserID,
		SessionID: identity.SessionID,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.scans.Create(ctx, scan); err != nil {
		s.logger.Error().Err(err).Str("url", url).Msg("failed to create scan")
		return nil, fmt.Errorf("create scan: %w", err)
	}

	s.logger.Info().
		Str("scan_id", scan.ID).
		Str("url", url).
		Bool("authenticated", identity.Authenticated()).
		Msg("scan created")

	return &ports.SubmitScanResult{
		ScanID:    scan.ID,
		WebsiteID: website.ID,
		URL:       website.URL,
		Domain:    website.Domain,
		Status:    string(scan.Status),
		UserID:    scan.UserID,
		SessionID: scan.SessionID,
		CreatedAt: scan.CreatedAt,
	}, nil
}

// MarkProcessing transitions a pending scan to processing.
func (s *ScanService) MarkProcessing(ctx context.Context, scanID string) error {
	return s.transition(ctx, scanID, ports.ScanStatusUpdate{Status: domain.StatusProcessing})
}

// MarkCompleted transitions a scan into the terminal completed state.
// A result payload is mandatory.
func (s *ScanService) MarkCompleted(ctx context.Context, scanID string, result *domain.ScanResult, elapsedMS int64) error {
	if result == nil {
		return fmt.Errorf("mark completed: %w: result payload required", domain.ErrInvalidTransition)
	}
	return s.transition(ctx, scanID, ports.ScanStatusUpdate{
		Status:           domain.StatusCompleted,
		ScanData:         result,
		ProcessingTimeMS: elapsedMS,
	})
}

// MarkFailed transitions a scan into the terminal failed state.
// A human-readable error message is mandatory.
func (s *ScanService) MarkFailed(ctx context.Context, scanID string, errorMessage string) error {
	if errorMessage == "" {
		return fmt.Errorf("mark failed: %w: error message required", domain.ErrInvalidTransition)
	}
	return s.transition(ctx, scanID, ports.ScanStatusUpdate{
		Status:       domain.StatusFailed,
		ErrorMessage: errorMessage,
	})
}

// transition validates the state machine before writing. The repository's
// conditional update remains the race-safe authority; this check rejects
// invalid transitions with a precise error before the write is attempted.
func (s *ScanService) transition(ctx context.Context, scanID string, update ports.ScanStatusUpdate) error {
	scan, err := s.scans.FindByID(ctx, scanID)
	if err != nil {
		return err
	}
	if !scan.Status.CanTransitionTo(update.Status) {
		return fmt.Errorf("transition %s to %s: %w", scan.Status, update.Status, domain.ErrInvalidTransition)
	}
	return s.scans.UpdateStatus(ctx, scanID, update)
}

// CanAccess reports whether identity owns the scan.
func (s *ScanService) CanAccess(ctx context.Context, scanID string, identity domain.Identity) (bool, error) {
	scan, err := s.scans.FindByID(ctx, scanID)
	if err != nil {
		return false, err
	}
	return scan.AccessibleBy(identity), nil
}

// GetIfAccessible returns the scan when identity owns it.
func (s *ScanService) GetIfAccessible(ctx context.Context, scanID string, identity domain.Identity) (*domain.Scan, error) {
	scan, err := s.scans.FindByID(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if !scan.AccessibleBy(identity) {
		return nil, domain.ErrAccessDenied
	}
	return scan, nil
}

// ListScans returns the authenticated owner's scans, most recent first.
func (s *ScanService) ListScans(ctx context.Context, input ports.ListScansInput) (*ports.ListScansResult, error) {
	if !input.Identity.Authenticated() {
		return nil, domain.ErrAuthRequired
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	if input.Status != "" && !validStatusFilter(input.Status) {
		return nil, fmt.Errorf("list scans: unknown status %q", input.Status)
	}

	scans, total, err := s.scans.List(ctx, ports.ListScansFilter{
		UserID: input.Identity.UserID,
		Status: input.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}

	return &ports.ListScansResult{Scans: scans, Total: total, Limit: limit, Offset: offset}, nil
}

func validStatusFilter(status string) bool {
	switch domain.ScanStatus(status) {
	case domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed:
		return true
	}
	return false
}

var _ ports.ScanService = (*ScanService)(nil)
