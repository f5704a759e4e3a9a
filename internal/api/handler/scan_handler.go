package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sitelens/scan-engine/internal/api/metrics"
	"github.com/sitelens/scan-engine/internal/api/middleware"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// SubmitFunc hands a created scan off to the background dispatcher.
type SubmitFunc func(scanID, url string)

// ScanHandler handles HTTP requests for scan operations.
type ScanHandler struct {
	scans    ports.ScanService
	resolver ports.IdentityResolver
	blobs    ports.BlobStore
	submit   SubmitFunc

	assetExpiry time.Duration
}

func NewScanHandler(scans ports.ScanService, resolver ports.IdentityResolver, blobs ports.BlobStore, submit SubmitFunc, assetExpiry time.Duration) *ScanHandler {
	return &ScanHandler{
		scans:       scans,
		resolver:    resolver,
		blobs:       blobs,
		submit:      submit,
		assetExpiry: assetExpiry,
	}
}

// Submit handles POST /v1/scans: create the scan record, hand the pipeline
// off to the background dispatcher, and answer immediately with the scan id.
func (h *ScanHandler) Submit(c echo.Context) error {
	var req submitScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity := middleware.CallerIdentity(c)
	result, err := h.scans.Create(c.Request().Context(), req.URL, identity)
	if err != nil {
		return err
	}

	owner := "session"
	if identity.Authenticated() {
		owner = "user"
	}
	metrics.ScansSubmittedTotal.WithLabelValues(owner).Inc()

	h.submit(result.ScanID, result.URL)

	return c.JSON(http.StatusCreated, submitScanResponse{
		ScanID:    result.ScanID,
		WebsiteID: result.WebsiteID,
		URL:       result.URL,
		Domain:    result.Domain,
		Status:    result.Status,
		UserID:    result.UserID,
		SessionID: result.SessionID,
		CreatedAt: result.CreatedAt,
		Links:     links(result.ScanID),
	})
}

// Get handles GET /v1/scans/:scan_id.
func (h *ScanHandler) Get(c echo.Context) error {
	scan, err := h.scans.GetIfAccessible(c.Request().Context(), c.Param("scan_id"), middleware.CallerIdentity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scan)
}

// List handles GET /v1/scans. Anonymous callers get 401.
func (h *ScanHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	result, err := h.scans.ListScans(c.Request().Context(), ports.ListScansInput{
		Identity: middleware.CallerIdentity(c),
		Status:   c.QueryParam("status"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listScansResponse{
		Scans:  result.Scans,
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Claim handles POST /v1/scans/claim: transfer a prior anonymous session's
// scans to the authenticated caller.
func (h *ScanHandler) Claim(c echo.Context) error {
	var req claimScansRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	count, err := h.resolver.Claim(c.Request().Context(), req.SessionID, middleware.CallerIdentity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, claimScansResponse{Claimed: count})
}

// scanArtifacts are the blob filenames a completed scan may have.
var scanArtifacts = []string{"screenshot.png", "page.html", "raw_data.json"}

// Assets handles GET /v1/scans/:scan_id/assets: time-limited signed URLs for
// whichever artifacts exist for an accessible scan.
func (h *ScanHandler) Assets(c echo.Context) error {
	ctx := c.Request().Context()
	scanID := c.Param("scan_id")

	if _, err := h.scans.GetIfAccessible(ctx, scanID, middleware.CallerIdentity(c)); err != nil {
		return err
	}

	assets := make(map[string]string)
	for _, filename := range scanArtifacts {
		url, err := h.blobs.PresignedURL(ctx, scanID, filename, h.assetExpiry)
		if err != nil {
			continue // artifact not stored for this scan
		}
		assets[filename] = url
	}

	return c.JSON(http.StatusOK, scanAssetsResponse{
		ScanID:    scanID,
		Assets:    assets,
		ExpiresIn: int64(h.assetExpiry.Seconds()),
	})
}
