package ports

import (
	"context"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// SearchProvider queries one search backend, capped to the top 10 results.
type SearchProvider interface {
	// Name identifies the backend ("google", "bing") in results and logs.
	Name() string
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
