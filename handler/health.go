package handler

import (
	"context"
	"net/http"
	"time"

	"chat-analyzer/cache"

	"github.com/rs/zerolog/log"
)

// Pinger checks that the analysis backend answers.
type Pinger interface {
	Health(ctx context.Context) error
}

// MetricsSource exposes the workspace cache counters.
type MetricsSource interface {
	Metrics() cache.MetricsSnapshot
}

type HealthHandler struct {
	backend Pinger
	cache   MetricsSource
	version string
}

func NewHealthHandler(backend Pinger, cache MetricsSource, version string) *HealthHandler {
	return &HealthHandler{backend: backend, cache: cache, version: version}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string                `json:"status"`
	Backend string                `json:"backend"`
	Version string                `json:"version,omitempty"`
	Cache   cache.MetricsSnapshot `json:"cache"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:  "healthy",
		Backend: "reachable",
		Version: h.version,
		Cache:   h.cache.Metrics(),
	}

	// Check the analysis backend
	if err := h.backend.Health(ctx); err != nil {
		log.Error().Err(err).Msg("Backend health check failed")
		resp.Status = "unhealthy"
		resp.Backend = "unreachable"
		SendJSONSuccess(w, http.StatusServiceUnavailable, resp)
		return
	}

	SendJSONSuccess(w, http.StatusOK, resp)
}
