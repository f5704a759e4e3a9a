package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	serviceName  = "scan-engine"
	probeTimeout = 3 * time.Second
)

// HealthHandler serves the liveness and readiness probes. Liveness answers
// immediately; readiness pings the scan record store and the cache/hub
// backend, since a scan cannot be created or observed without both.
type HealthHandler struct {
	mongo *mongo.Database
	redis *redis.Client
}

func NewHealthHandler(db *mongo.Database, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{mongo: db, redis: rdb}
}

type healthCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type healthResponse struct {
	Service string                 `json:"service"`
	Status  string                 `json:"status"`
	Checks  map[string]healthCheck `json:"checks,omitempty"`
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Service: serviceName, Status: "ok"})
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	checks := map[string]healthCheck{
		"mongodb": runCheck(func() error { return h.mongo.Client().Ping(ctx, nil) }),
		"redis":   runCheck(func() error { return h.redis.Ping(ctx).Err() }),
	}

	status, httpStatus := "ok", http.StatusOK
	for _, check := range checks {
		if check.Status != "ok" {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	return c.JSON(httpStatus, healthResponse{
		Service: serviceName,
		Status:  status,
		Checks:  checks,
	})
}

func runCheck(ping func() error) healthCheck {
	start := time.Now()
	if err := ping(); err != nil {
		return healthCheck{Status: "unhealthy", LatencyMS: time.Since(start).Milliseconds(), Error: err.Error()}
	}
	return healthCheck{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
}
