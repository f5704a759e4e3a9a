package handler

import (
	"time"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// --- Request types ---

type submitScanRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type claimScansRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// --- Response types ---

type scanLinks struct {
	Self   string `json:"self"`
	Events string `json:"events"`
}

type submitScanResponse struct {
	ScanID    string    `json:"scan_id"`
	WebsiteID string    `json:"website_id"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	Status    string    `json:"status"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Links     scanLinks `json:"_links"`
}

type listScansResponse struct {
	Scans  []*domain.Scan `json:"scans"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type claimScansResponse struct {
	Claimed int64 `json:"claimed"`
}

type scanAssetsResponse struct {
	ScanID    string            `json:"scan_id"`
	Assets    map[string]string `json:"assets"`
	ExpiresIn int64             `json:"expires_in_seconds"`
}

func links(scanID string) scanLinks {
	return scanLinks{
		Self:   "/v1/scans/" + scanID,
		Events: "/v1/scans/" + scanID + "/events",
	}
}
