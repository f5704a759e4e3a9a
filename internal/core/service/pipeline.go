package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sitelens/scan-engine/internal/api/metrics"
	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
	"github.com/sitelens/scan-engine/pkg/urlx"
)

// Stage weights across the pipeline. Emitted percentages are monotonically
// non-decreasing within a scan's lifetime.
const (
	pctStarted        = 10
	pctCapturing      = 15
	pctCaptured       = 30
	pctAnalyzing      = 35
	pctAnalyzed       = 60
	pctSearching      = 65
	pctSearched       = 75
	pctSynthesizing   = 80
	pctSynthesized    = 95
	pctDone           = 100
	screenshotObject  = "screenshot.png"
)

// Pipeline drives one scan top-to-bottom: capture, structured analysis,
// parallel competitive search, synthesis. Each scan runs as one independent
// unit of work with no cancellation primitive: it reaches a terminal state
// or the process dies. Exactly one terminal event is emitted per scan.
type Pipeline struct {
	scans    ports.ScanService
	fetcher  ports.ScreenshotFetcher
	blobs    ports.BlobStore
	analyzer ports.Analyzer
	google   ports.SearchProvider
	bing     ports.SearchProvider
	hub      ports.Hub
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPipeline(
	scans ports.ScanService,
	fetcher ports.ScreenshotFetcher,
	blobs ports.BlobStore,
	analyzer ports.Analyzer,
	google ports.SearchProvider,
	bing ports.SearchProvider,
	hub ports.Hub,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		scans:    scans,
		fetcher:  fetcher,
		blobs:    blobs,
		analyzer: analyzer,
		google:   google,
		bing:     bing,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

// Process runs the scan to completion or failure. Stage errors are recovered
// locally into a terminal failed state plus a broadcast failed event; they
// are never raised back to the submitter, who already holds the scan id.
func (p *Pipeline) Process(ctx context.Context, scanID, url string) {
	start := p.now()

	result, err := p.run(ctx, scanID, url, start)
	if err != nil {
		p.fail(ctx, scanID, err)
		metrics.ScansCompletedTotal.WithLabelValues("failed").Inc()
		metrics.ScanDuration.WithLabelValues("failed").Observe(p.now().Sub(start).Seconds())
		return
	}

	metrics.ScansCompletedTotal.WithLabelValues("completed").Inc()
	metrics.ScanDuration.WithLabelValues("completed").Observe(p.now().Sub(start).Seconds())

	p.emitProgress(scanID, pctDone, "Scan complete!")
	p.hub.Emit(domain.ProgressEvent{
		ScanID:  scanID,
		Kind:    domain.EventCompleted,
		Percent: pctDone,
		Payload: result,
	})
}

func (p *Pipeline) run(ctx context.Context, scanID, url string, start time.Time) (*domain.ScanResult, error) {
	if err := p.scans.MarkProcessing(ctx, scanID); err != nil {
		return nil, fmt.Errorf("mark processing: %w", err)
	}
	p.emitProgress(scanID, pctStarted, fmt.Sprintf("Starting scan for %s...", url))

	screenshot, err := p.acquireScreenshot(ctx, scanID, url)
	if err != nil {
		return nil, err
	}

	analysis, err := p.analyze(ctx, scanID, url, screenshot)
	if err != nil {
		return nil, err
	}

	googleResults, bingResults, googleRank, bingRank, err := p.searchCompetitors(ctx, scanID, url, analysis)
	if err != nil {
		return nil, err
	}

	report, err := p.synthesize(ctx, scanID, url, analysis, googleResults, bingResults, googleRank, bingRank)
	if err != nil {
		return nil, err
	}

	result := &domain.ScanResult{
		Mode:          "structured",
		ScreenshotKey: fmt.Sprintf("scans/%s/%s", scanID, screenshotObject),
		Analysis:      *analysis,
		SEO:           *report,
	}

	elapsedMS := p.now().Sub(start).Milliseconds()
	if err := p.scans.MarkCompleted(ctx, scanID, result, elapsedMS); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	return result, nil
}

// acquireScreenshot resolves the cache or captures a fresh screenshot,
// emits the preview event, and uploads a durable copy to blob storage.
// The upload is a non-fatal side effect.
func (p *Pipeline) acquireScreenshot(ctx context.Context, scanID, url string) ([]byte, error) {
	p.hub.Emit(domain.ProgressEvent{ScanID: scanID, Kind: domain.EventScreenshotLoading, Percent: pctCapturing})
	p.emitProgress(scanID, pctCapturing, fmt.Sprintf("Capturing screenshot of %s...", url))

	screenshot, err := p.fetcher.Fetch(ctx, url, func(msg string) {
		p.emitProgress(scanID, pctCapturing, msg)
	})
	if err != nil {
		return nil, err
	}

	p.emitProgress(scanID, pctCaptured, "Screenshot captured successfully")
	p.emitScreenshotPreview(scanID, screenshot)

	if err := p.blobs.Put(ctx, scanID, screenshotObject, screenshot, "image/png"); err != nil {
		p.logger.Warn().Err(err).Str("scan_id", scanID).Msg("screenshot upload failed (non-fatal)")
	}

	return screenshot, nil
}

func (p *Pipeline) analyze(ctx context.Context, scanID, url string, screenshot []byte) (*domain.WebsiteAnalysis, error) {
	p.emitProgress(scanID, pctAnalyzing, "Analyzing website content...")

	analysis, err := p.analyzer.AnalyzeWebsite(ctx, url, screenshot)
	if err != nil {
		return nil, fmt.Errorf("website analysis: %w", err)
	}
	if len(analysis.Keywords) == 0 {
		return nil, fmt.Errorf("website analysis: %w: no keywords produced", domain.ErrUpstreamFailure)
	}

	p.emitProgress(scanID, pctAnalyzed, "Website analysis complete")
	return analysis, nil
}

// searchCompetitors queries both search backends concurrently with the first
// produced keyword. Both calls complete (or fail) independently before the
// pipeline proceeds; either failure aborts the scan since synthesis depends
// on both result sets.
func (p *Pipeline) searchCompetitors(
	ctx context.Context,
	scanID, url string,
	analysis *domain.WebsiteAnalysis,
) ([]domain.SearchResult, []domain.SearchResult, *int, *int, error) {
	p.emitProgress(scanID, pctSearching, "Searching Google and Bing for competitors...")

	query := analysis.Keywords[0]

	var googleResults, bingResults []domain.SearchResult
	var g errgroup.Group
	g.Go(func() error {
		var err error
		googleResults, err = p.google.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("%s search: %w", p.google.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bingResults, err = p.bing.Search(ctx, query)
		if err != nil {
			return fmt.Errorf("%s search: %w", p.bing.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, nil, err
	}

	googleRank := urlx.FindRanking(url, resultURLs(googleResults))
	bingRank := urlx.FindRanking(url, resultURLs(bingResults))

	p.emitProgress(scanID, pctSearched, "Competitor search complete")
	return googleResults, bingResults, googleRank, bingRank, nil
}

func (p *Pipeline) synthesize(
	ctx context.Context,
	scanID, url string,
	analysis *domain.WebsiteAnalysis,
	googleResults, bingResults []domain.SearchResult,
	googleRank, bingRank *int,
) (*domain.SEOReport, error) {
	p.emitProgress(scanID, pctSynthesizing, "Analyzing SEO and generating recommendations...")

	report, err := p.analyzer.GenerateReport(ctx, ports.ReportInput{
		URL:           url,
		Analysis:      *analysis,
		GoogleResults: googleResults,
		BingResults:   bingResults,
		GoogleRanking: googleRank,
		BingRanking:   bingRank,
	})
	if err != nil {
		return nil, fmt.Errorf("seo synthesis: %w", err)
	}
	report.GoogleRanking = googleRank
	report.BingRanking = bingRank

	p.emitProgress(scanID, pctSynthesized, "SEO analysis complete")
	return report, nil
}

// fail records the terminal failed state and emits the failed event. This is
// the only failure path, keeping the one-terminal-event guarantee.
func (p *Pipeline) fail(ctx context.Context, scanID string, cause error) {
	p.logger.Error().Err(cause).Str("scan_id", scanID).Msg("scan failed")

	if err := p.scans.MarkFailed(ctx, scanID, cause.Error()); err != nil {
		p.logger.Error().Err(err).Str("scan_id", scanID).Msg("failed to persist failure state")
	}

	p.hub.Emit(domain.ProgressEvent{
		ScanID:  scanID,
		Kind:    domain.EventFailed,
		Message: cause.Error(),
	})
}

func (p *Pipeline) emitProgress(scanID string, percent int, message string) {
	p.hub.Emit(domain.ProgressEvent{
		ScanID:  scanID,
		Kind:    domain.EventProgress,
		Percent: percent,
		Message: message,
	})
}

// emitScreenshotPreview sends a compressed JPEG preview to the room for
// progressive display. Falls back to the original bytes when re-encoding
// fails; preview problems never fail the scan.
func (p *Pipeline) emitScreenshotPreview(scanID string, screenshot []byte) {
	preview, err := jpegPreview(screenshot)
	mime := "image/jpeg"
	if err != nil {
		p.logger.Warn().Err(err).Str("scan_id", scanID).Msg("screenshot preview encoding failed")
		preview = screenshot
		mime = "image/png"
	}

	p.hub.Emit(domain.ProgressEvent{
		ScanID:  scanID,
		Kind:    domain.EventScreenshot,
		Percent: pctCaptured,
		Payload: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(preview)),
	})
}

func resultURLs(results []domain.SearchResult) []string {
	urls := make([]string, len(results))
	for i, r := range results {
		urls[i] = r.URL
	}
	return urls
}
