package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// HealthHandler reports liveness
type HealthHandler struct {
	started time.Time
}

// NewHealthHandler creates a health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{started: time.Now()}
}

// HealthOutput is the liveness response
type HealthOutput struct {
	Body struct {
		Status        string `json:"status" example:"ok"`
		UptimeSeconds int64  `json:"uptime_seconds"`
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Liveness check",
		Tags:        []string{"Health"},
	}, h.Health)
}

// Health handles GET /healthz
func (h *HealthHandler) Health(ctx context.Context, input *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	out.Body.UptimeSeconds = int64(time.Since(h.started).Seconds())
	return out, nil
}
