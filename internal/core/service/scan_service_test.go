package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

func newScanSvc(scans *stubScanRepo) *ScanService {
	return NewScanService(newStubWebsiteRepo(), scans, zerolog.Nop())
}

func seedScan(repo *stubScanRepo, id, userID, sessionID string, status domain.ScanStatus, createdAt time.Time) {
	repo.byID[id] = &domain.Scan{
		ID:        id,
		WebsiteID: "site-1",
		UserID:    userID,
		SessionID: sessionID,
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestScanService_Create_HappyPath(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)

	result, err := svc.Create(context.Background(), "https://example.com/pricing", domain.AnonymousSession("sess-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(domain.StatusPending) {
		t.Errorf("expected pending status, got %s", result.Status)
	}
	if result.Domain != "example.com" {
		t.Errorf("expected domain example.com, got %s", result.Domain)
	}
	if result.SessionID != "sess-1" || result.UserID != "" {
		t.Errorf("expected session ownership, got user=%q session=%q", result.UserID, result.SessionID)
	}

	stored, err := repo.FindByID(context.Background(), result.ScanID)
	if err != nil {
		t.Fatalf("scan not persisted: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Errorf("persisted status = %s, want pending", stored.Status)
	}
}

func TestScanService_Create_RejectsInvalidURL(t *testing.T) {
	svc := newScanSvc(newStubScanRepo())

	for _, url := range []string{"", "not-a-url", "ftp://example.com"} {
		_, err := svc.Create(context.Background(), url, domain.AnonymousSession("sess-1"))
		if !errors.Is(err, domain.ErrInvalidURL) {
			t.Errorf("Create(%q): expected ErrInvalidURL, got %v", url, err)
		}
	}
}

func TestScanService_Create_ReusesWebsiteForSameURL(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)

	first, err := svc.Create(context.Background(), "https://example.com", domain.AnonymousSession("s1"))
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(context.Background(), "https://example.com", domain.AnonymousSession("s2"))
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if first.WebsiteID != second.WebsiteID {
		t.Errorf("expected same website id, got %s and %s", first.WebsiteID, second.WebsiteID)
	}
	if first.ScanID == second.ScanID {
		t.Error("expected two independent scans for repeated submissions")
	}
}

func TestScanService_Lifecycle_FullTransition(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	seedScan(repo, "scan-1", "", "sess-1", domain.StatusPending, time.Now().UTC())

	if err := svc.MarkProcessing(context.Background(), "scan-1"); err != nil {
		t.Fatalf("mark processing: %v", err)
	}

	result := &domain.ScanResult{Mode: "structured"}
	if err := svc.MarkCompleted(context.Background(), "scan-1", result, 4200); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), "scan-1")
	if stored.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}
	if stored.ProcessingTimeMS != 4200 {
		t.Errorf("processing_time_ms = %d, want 4200", stored.ProcessingTimeMS)
	}
	if stored.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestScanService_MarkCompleted_RequiresPayload(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	seedScan(repo, "scan-1", "", "sess-1", domain.StatusProcessing, time.Now().UTC())

	err := svc.MarkCompleted(context.Background(), "scan-1", nil, 100)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestScanService_MarkFailed_RequiresMessage(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	seedScan(repo, "scan-1", "", "sess-1", domain.StatusProcessing, time.Now().UTC())

	err := svc.MarkFailed(context.Background(), "scan-1", "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestScanService_TerminalStatesAreFinal(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	seedScan(repo, "done", "", "sess-1", domain.StatusCompleted, time.Now().UTC())
	seedScan(repo, "dead", "", "sess-1", domain.StatusFailed, time.Now().UTC())

	if err := svc.MarkProcessing(context.Background(), "done"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("completed scan: expected ErrInvalidTransition, got %v", err)
	}
	if err := svc.MarkFailed(context.Background(), "dead", "again"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("failed scan: expected ErrInvalidTransition, got %v", err)
	}
}

// countingScanRepo counts status writes reaching the repository.
type countingScanRepo struct {
	*stubScanRepo
	updates int
}

func (r *countingScanRepo) UpdateStatus(ctx context.Context, id string, update ports.ScanStatusUpdate) error {
	r.updates++
	return r.stubScanRepo.UpdateStatus(ctx, id, update)
}

func TestScanService_InvalidTransitionRejectedBeforeWrite(t *testing.T) {
	inner := newStubScanRepo()
	seedScan(inner, "done", "", "sess-1", domain.StatusCompleted, time.Now().UTC())
	repo := &countingScanRepo{stubScanRepo: inner}
	svc := NewScanService(newStubWebsiteRepo(), repo, zerolog.Nop())

	if err := svc.MarkProcessing(context.Background(), "done"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if repo.updates != 0 {
		t.Errorf("repository writes = %d, want 0 for a rejected transition", repo.updates)
	}
}

func TestScanService_TransitionOnMissingScan(t *testing.T) {
	svc := newScanSvc(newStubScanRepo())

	if err := svc.MarkProcessing(context.Background(), "ghost"); !errors.Is(err, domain.ErrScanNotFound) {
		t.Errorf("expected ErrScanNotFound, got %v", err)
	}
}

func TestScanService_AccessInvariant(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	now := time.Now().UTC()
	seedScan(repo, "user-scan", "user-1", "", domain.StatusPending, now)
	seedScan(repo, "anon-scan", "", "sess-1", domain.StatusPending, now)
	seedScan(repo, "claimed-scan", "user-1", "sess-1", domain.StatusPending, now)

	tests := []struct {
		name     string
		scanID   string
		identity domain.Identity
		want     bool
	}{
		{"owner user matches", "user-scan", domain.AuthenticatedUser("user-1"), true},
		{"other user denied", "user-scan", domain.AuthenticatedUser("user-2"), false},
		{"session cannot see user scan", "user-scan", domain.AnonymousSession("sess-1"), false},
		{"owner session matches", "anon-scan", domain.AnonymousSession("sess-1"), true},
		{"other session denied", "anon-scan", domain.AnonymousSession("sess-2"), false},
		{"prefix session denied", "anon-scan", domain.AnonymousSession("sess-"), false},
		{"claimed scan follows user", "claimed-scan", domain.AuthenticatedUser("user-1"), true},
		{"claimed scan no longer session owned", "claimed-scan", domain.AnonymousSession("sess-1"), false},
	}

	for _, tt := range tests {
		got, err := svc.CanAccess(context.Background(), tt.scanID, tt.identity)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: CanAccess = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScanService_GetIfAccessible(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	seedScan(repo, "scan-1", "user-1", "", domain.StatusPending, time.Now().UTC())

	if _, err := svc.GetIfAccessible(context.Background(), "scan-1", domain.AuthenticatedUser("user-1")); err != nil {
		t.Errorf("owner access: unexpected error %v", err)
	}
	if _, err := svc.GetIfAccessible(context.Background(), "scan-1", domain.AuthenticatedUser("user-2")); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("intruder: expected ErrAccessDenied, got %v", err)
	}
	if _, err := svc.GetIfAccessible(context.Background(), "missing", domain.AuthenticatedUser("user-1")); !errors.Is(err, domain.ErrScanNotFound) {
		t.Errorf("missing: expected ErrScanNotFound, got %v", err)
	}
}

func TestScanService_ListScans_RequiresAuthentication(t *testing.T) {
	svc := newScanSvc(newStubScanRepo())

	_, err := svc.ListScans(context.Background(), ports.ListScansInput{Identity: domain.AnonymousSession("sess-1")})
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
}

func TestScanService_ListScans_ScopedOrderedFiltered(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)
	base := time.Now().UTC()
	seedScan(repo, "old", "user-1", "", domain.StatusCompleted, base.Add(-2*time.Hour))
	seedScan(repo, "mid", "user-1", "", domain.StatusFailed, base.Add(-time.Hour))
	seedScan(repo, "new", "user-1", "", domain.StatusCompleted, base)
	seedScan(repo, "foreign", "user-2", "", domain.StatusCompleted, base)

	result, err := svc.ListScans(context.Background(), ports.ListScansInput{
		Identity: domain.AuthenticatedUser("user-1"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("total = %d, want 3 (scoped to owner)", result.Total)
	}
	if result.Scans[0].ID != "new" || result.Scans[2].ID != "old" {
		t.Errorf("expected most-recent-first ordering, got %s..%s", result.Scans[0].ID, result.Scans[2].ID)
	}

	filtered, err := svc.ListScans(context.Background(), ports.ListScansInput{
		Identity: domain.AuthenticatedUser("user-1"),
		Status:   "failed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filtered.Total != 1 || filtered.Scans[0].ID != "mid" {
		t.Errorf("status filter: got %d scans, want the single failed scan", filtered.Total)
	}
}

func TestScanService_ListScans_CapsLimit(t *testing.T) {
	repo := newStubScanRepo()
	svc := newScanSvc(repo)

	result, err := svc.ListScans(context.Background(), ports.ListScansInput{
		Identity: domain.AuthenticatedUser("user-1"),
		Limit:    5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Limit != maxListLimit {
		t.Errorf("limit = %d, want capped at %d", result.Limit, maxListLimit)
	}
}
