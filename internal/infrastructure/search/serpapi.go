package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

const (
	serpAPIEndpoint = "https://serpapi.com/search.json"
	maxResults      = 10
)

// SerpAPIProvider implements ports.SearchProvider against one SerpAPI engine.
// Two instances (google_light and bing) run side by side in the pipeline.
type SerpAPIProvider struct {
	name       string
	engine     string
	apiKey     string
	endpoint   string
	extra      url.Values
	httpClient *http.Client
}

// NewGoogleProvider returns a provider backed by SerpAPI's google_light engine.
func NewGoogleProvider(apiKey string) *SerpAPIProvider {
	return newProvider("google", "google_light", apiKey, url.Values{"num": {"10"}})
}

// NewBingProvider returns a provider backed by SerpAPI's bing engine.
func NewBingProvider(apiKey string) *SerpAPIProvider {
	return newProvider("bing", "bing", apiKey, url.Values{"cc": {"US"}, "count": {"10"}})
}

func newProvider(name, engine, apiKey string, extra url.Values) *SerpAPIProvider {
	return &SerpAPIProvider{
		name:       name,
		engine:     engine,
		apiKey:     apiKey,
		endpoint:   serpAPIEndpoint,
		extra:      extra,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *SerpAPIProvider) Name() string { return p.name }

type serpResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// Search queries the engine and returns at most the top 10 organic results.
func (p *SerpAPIProvider) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	params := url.Values{
		"engine":  {p.engine},
		"q":       {query},
		"api_key": {p.apiKey},
	}
	for k, vs := range p.extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s search: %v", domain.ErrUpstreamFailure, p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s search returned %d", domain.ErrUpstreamFailure, p.name, resp.StatusCode)
	}

	var decoded serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode %s search response: %v", domain.ErrUpstreamFailure, p.name, err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s search: %s", domain.ErrUpstreamFailure, p.name, decoded.Error)
	}

	results := make([]domain.SearchResult, 0, maxResults)
	for _, r := range decoded.OrganicResults {
		if len(results) == maxResults {
			break
		}
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}
	return results, nil
}

var _ ports.SearchProvider = (*SerpAPIProvider)(nil)
