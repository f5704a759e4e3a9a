package ports

import (
	"context"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// ReportInput carries everything the synthesis call needs.
type ReportInput struct {
	URL           string
	Analysis      domain.WebsiteAnalysis
	GoogleResults []domain.SearchResult
	BingResults   []domain.SearchResult
	GoogleRanking *int
	BingRanking   *int
}

// Analyzer is the inference backend in its two call shapes.
type Analyzer interface {
	// AnalyzeWebsite submits the screenshot plus the target URL and requests
	// the fixed structured schema.
	AnalyzeWebsite(ctx context.Context, url string, screenshot []byte) (*domain.WebsiteAnalysis, error)

	// GenerateReport produces the three-part qualitative report.
	GenerateReport(ctx context.Context, input ReportInput) (*domain.SEOReport, error)
}
