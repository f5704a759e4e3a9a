package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubWebsiteRepo struct {
	byURL map[string]*domain.Website
	err   error
}

func newStubWebsiteRepo() *stubWebsiteRepo {
	return &stubWebsiteRepo{byURL: make(map[string]*domain.Website)}
}

func (r *stubWebsiteRepo) FindOrCreate(_ context.Context, url, domainName string) (*domain.Website, error) {
	if r.err != nil {
		return nil, r.err
	}
	if w, ok := r.byURL[url]; ok {
		return w, nil
	}
	w := &domain.Website{ID: "site-" + domainName, URL: url, Domain: domainName, CreatedAt: time.Now().UTC()}
	r.byURL[url] = w
	return w, nil
}

func (r *stubWebsiteRepo) FindByID(_ context.Context, id string) (*domain.Website, error) {
	for _, w := range r.byURL {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, domain.ErrScanNotFound
}

type stubScanRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Scan
	fail error
}

func newStubScanRepo() *stubScanRepo {
	return &stubScanRepo{byID: make(map[string]*domain.Scan)}
}

func (r *stubScanRepo) Create(_ context.Context, s *domain.Scan) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *stubScanRepo) FindByID(_ context.Context, id string) (*domain.Scan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrScanNotFound
	}
	cp := *s
	return &cp, nil
}

// UpdateStatus mirrors the production repository's conditional write:
// terminal scans are never modified.
func (r *stubScanRepo) UpdateStatus(_ context.Context, id string, update ports.ScanStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrScanNotFound
	}
	if !s.Status.CanTransitionTo(update.Status) {
		return domain.ErrInvalidTransition
	}
	s.Status = update.Status
	if update.ScanData != nil {
		s.ScanData = update.ScanData
	}
	if update.ErrorMessage != "" {
		s.ErrorMessage = update.ErrorMessage
	}
	if update.Status == domain.StatusCompleted {
		s.ProcessingTimeMS = update.ProcessingTimeMS
	}
	if update.Status.Terminal() {
		now := time.Now().UTC()
		s.CompletedAt = &now
	}
	return nil
}

func (r *stubScanRepo) List(_ context.Context, filter ports.ListScansFilter) ([]*domain.Scan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Scan
	for _, s := range r.byID {
		if s.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && string(s.Status) != filter.Status {
			continue
		}
		cp := *s
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	if filter.Offset < len(matched) {
		matched = matched[filter.Offset:]
	} else {
		matched = nil
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *stubScanRepo) ClaimSessionScans(_ context.Context, sessionID, userID string) (int64, error) {
	if r.fail != nil {
		return 0, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.byID {
		if s.SessionID == sessionID && s.UserID == "" {
			s.UserID = userID
			n++
		}
	}
	return n, nil
}

type stubVerifier struct {
	userID string
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.userID, nil
}

// recordingHub captures emitted events in emission order.
type recordingHub struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (h *recordingHub) Join(_, _ string) <-chan domain.ProgressEvent { return nil }
func (h *recordingHub) Leave(_, _ string)                           {}

func (h *recordingHub) Emit(event domain.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) recorded() []domain.ProgressEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.ProgressEvent, len(h.events))
	copy(out, h.events)
	return out
}

type stubFetcher struct {
	payload []byte
	err     error
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, progress ports.FetchProgressFunc) ([]byte, error) {
	if progress != nil {
		progress("Contacting capture backend...")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type stubBlobStore struct {
	mu     sync.Mutex
	putErr error
	stored map[string][]byte
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{stored: make(map[string][]byte)}
}

func (b *stubBlobStore) Put(_ context.Context, scanID, filename string, payload []byte, _ string) error {
	if b.putErr != nil {
		return b.putErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stored[scanID+"/"+filename] = payload
	return nil
}

func (b *stubBlobStore) Get(_ context.Context, scanID, filename string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.stored[scanID+"/"+filename]
	if !ok {
		return nil, errors.New("object not found")
	}
	return p, nil
}

func (b *stubBlobStore) PresignedURL(_ context.Context, scanID, filename string, _ time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.stored[scanID+"/"+filename]; !ok {
		return "", errors.New("object not found")
	}
	return "https://blobs.test/" + scanID + "/" + filename, nil
}

type stubAnalyzer struct {
	analysis    *domain.WebsiteAnalysis
	analysisErr error
	report      *domain.SEOReport
	reportErr   error
}

func (a *stubAnalyzer) AnalyzeWebsite(_ context.Context, _ string, _ []byte) (*domain.WebsiteAnalysis, error) {
	if a.analysisErr != nil {
		return nil, a.analysisErr
	}
	return a.analysis, nil
}

func (a *stubAnalyzer) GenerateReport(_ context.Context, _ ports.ReportInput) (*domain.SEOReport, error) {
	if a.reportErr != nil {
		return nil, a.reportErr
	}
	cp := *a.report
	return &cp, nil
}

type stubSearch struct {
	name    string
	results []domain.SearchResult
	err     error
	delay   time.Duration
}

func (s *stubSearch) Name() string { return s.name }

func (s *stubSearch) Search(_ context.Context, _ string) ([]domain.SearchResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}
