package http

import (
	"net/http"

	"cluster-ledger-backend/internal/domain"
	"cluster-ledger-backend/internal/service"
)

type notificationHandler struct {
	svc service.NotificationService
}

func (h *notificationHandler) list(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	notes, err := h.svc.List(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *notificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, _ := ActorFrom(r.Context())
	if err := h.svc.MarkAsRead(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
