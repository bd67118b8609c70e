package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/coursechat/coursechat/internal/models"
)

const version = "1.0.0"

// HealthChecker is implemented by backends that can report connectivity
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// HealthHandler handles GET /health with dependency checks. Either checker
// may be nil when the backing service is disabled.
type HealthHandler struct {
	search   HealthChecker
	sessions HealthChecker
}

func NewHealthHandler(search, sessions HealthChecker) *HealthHandler {
	return &HealthHandler{search: search, sessions: sessions}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Short timeout so health checks never block
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.search != nil {
		if err := h.search.TestConnection(ctx); err != nil {
			checks["search"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["search"] = "ok"
		}
	} else {
		checks["search"] = "disabled"
	}

	if h.sessions != nil {
		if err := h.sessions.TestConnection(ctx); err != nil {
			checks["sessions"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["sessions"] = "ok"
		}
	} else {
		checks["sessions"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
