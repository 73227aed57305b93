package handler

import (
	"net/http"
	"time"

	"github.com/arcadia/loyalty/internal/infra"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbStatus := "ok"
	if err := infra.HealthCheck(r.Context(), h.pool); err != nil {
		status = http.StatusServiceUnavailable
		dbStatus = "unreachable"
	}

	RespondJSON(w, status, map[string]string{
		"status":    dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
