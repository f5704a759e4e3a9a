package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sitelens/scan-engine/internal/api/middleware"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// EventsHandler streams a scan's broadcast room over Server-Sent Events.
type EventsHandler struct {
	scans ports.ScanService
	hub   ports.Hub
}

func NewEventsHandler(scans ports.ScanService, hub ports.Hub) *EventsHandler {
	return &EventsHandler{scans: scans, hub: hub}
}

// Stream handles GET /v1/scans/:scan_id/events.
//
// The subscriber joins the scan's room for the lifetime of the request and
// receives whatever is emitted while connected: no replay of earlier events.
// The stream ends after a terminal event or when the client disconnects.
func (h *EventsHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	scanID := c.Param("scan_id")

	// Join before reading the scan: a terminal event landing between the
	// read and the join would otherwise leave the subscriber waiting on a
	// room that will never emit again.
	subscriberID := uuid.NewString()
	events := h.hub.Join(subscriberID, scanID)
	defer h.hub.Leave(subscriberID, scanID)

	scan, err := h.scans.GetIfAccessible(ctx, scanID, middleware.CallerIdentity(c))
	if err != nil {
		return err
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	// A subscriber arriving after the terminal event would wait forever;
	// tell it the current state up front and end the stream.
	if scan.Status.Terminal() {
		h.write(resp, "scan:state", scan)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			h.write(resp, string(event.Kind), event)
			if event.Kind.Terminal() {
				return nil
			}
		}
	}
}

func (h *EventsHandler) write(resp *echo.Response, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data)
	resp.Flush()
}
