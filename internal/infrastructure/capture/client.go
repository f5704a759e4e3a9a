package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// backendError is a non-2xx response from the capture backend. Only
// 5xx-class responses are considered transient.
type backendError struct {
	status int
	body   string
}

func (e *backendError) Error() string {
	return fmt.Sprintf("capture backend returned %d: %s", e.status, e.body)
}

func (e *backendError) retryable() bool {
	return e.status >= http.StatusInternalServerError
}

// Client calls the external browser-capture backend. Depending on the
// requested format the backend answers either with raw image bytes or with a
// JSON body pointing at a hosted image; both shapes are normalized into a
// single tagged ports.CaptureResult here, at the boundary.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type captureRequest struct {
	URL      string `json:"url"`
	FullPage bool   `json:"full_page"`
}

type captureResponse struct {
	URL string `json:"url"`
}

// Capture requests one screenshot of url.
func (c *Client) Capture(ctx context.Context, url string) (*ports.CaptureResult, error) {
	body, err := json.Marshal(captureRequest{URL: url, FullPage: true})
	if err != nil {
		return nil, fmt.Errorf("encode capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/screenshot", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read capture response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		be := &backendError{status: resp.StatusCode, body: truncate(string(payload), 200)}
		if be.retryable() {
			return nil, be
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCaptureRejected, be)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var decoded captureResponse
		if err := json.Unmarshal(payload, &decoded); err != nil || decoded.URL == "" {
			return nil, fmt.Errorf("%w: unrecognized capture response shape", domain.ErrCaptureRejected)
		}
		return &ports.CaptureResult{Kind: ports.CaptureKindURL, URL: decoded.URL}, nil
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty capture response", domain.ErrCaptureRejected)
	}
	return &ports.CaptureResult{Kind: ports.CaptureKindBytes, Bytes: payload}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
