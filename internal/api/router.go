package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sitelens/scan-engine/internal/api/handler"
	"github.com/sitelens/scan-engine/internal/api/middleware"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

// Dependencies carries everything the router needs, constructed once in main.
type Dependencies struct {
	Scans    ports.ScanService
	Resolver ports.IdentityResolver
	Blobs    ports.BlobStore
	Hub      ports.Hub

	// Submit hands a created scan to the background dispatcher.
	Submit handler.SubmitFunc

	// AssetExpiry bounds presigned asset URL validity.
	AssetExpiry time.Duration

	Mongo *mongo.Database
	Redis *redis.Client
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("scanengine"))

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no identity required) ---
	healthHandler := handler.NewHealthHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Scan routes ---
	scanHandler := handler.NewScanHandler(deps.Scans, deps.Resolver, deps.Blobs, deps.Submit, deps.AssetExpiry)
	eventsHandler := handler.NewEventsHandler(deps.Scans, deps.Hub)
	identity := middleware.Identity(deps.Resolver)

	v1 := e.Group("/v1", identity)
	v1.POST("/scans", scanHandler.Submit)
	v1.GET("/scans", scanHandler.List)
	v1.POST("/scans/claim", scanHandler.Claim)
	v1.GET("/scans/:scan_id", scanHandler.Get)
	v1.GET("/scans/:scan_id/assets", scanHandler.Assets)
	v1.GET("/scans/:scan_id/events", eventsHandler.Stream)

	return e
}
