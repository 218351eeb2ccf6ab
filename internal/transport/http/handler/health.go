package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Check probes one backing dependency.
type Check func(ctx context.Context) error

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	checks map[string]Check
	log    *zap.Logger
}

func NewHealthHandler(checks map[string]Check, log *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, log: log.With(zap.String("handler", "health"))}
}

type readyEnvelope struct {
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks"`
}

// Ping answers "ping" with pong and "ready" by running every dependency check.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "ready":
		h.ready(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, msg := http.StatusOK, "ready"
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			results[name] = "unavailable"
			status, msg = http.StatusServiceUnavailable, "not ready"
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, readyEnvelope{Message: msg, Checks: results})
}
