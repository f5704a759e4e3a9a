package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	if err := h.Liveness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("liveness error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Service string `json:"service"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Service != "scan-engine" || resp.Status != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRunCheck(t *testing.T) {
	if got := runCheck(func() error { return nil }); got.Status != "ok" || got.Error != "" {
		t.Errorf("healthy check = %+v", got)
	}

	got := runCheck(func() error { return errors.New("connection refused") })
	if got.Status != "unhealthy" || got.Error != "connection refused" {
		t.Errorf("unhealthy check = %+v", got)
	}
}
