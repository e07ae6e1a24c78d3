package http

import (
	"context"
	"net/http"
	"time"

	"cluster-ledger-backend/internal/logger"
)

type healthHandler struct {
	db Pinger
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *healthHandler) check(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
