package handler

import (
	"context"
	"net/http"

	"github.com/coursechat/coursechat/internal/models"
	"github.com/go-chi/chi/v5"
)

// SessionClearer removes one session's transcript.
type SessionClearer interface {
	ClearSession(ctx context.Context, sessionID string) error
}

// SessionsHandler handles DELETE /api/v1/session/{session_id}
type SessionsHandler struct {
	sessions SessionClearer
}

func NewSessionsHandler(sessions SessionClearer) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

func (h *SessionsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		models.WriteError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := h.sessions.ClearSession(r.Context(), sessionID); err != nil {
		models.WriteError(w, http.StatusInternalServerError, "clear session failed: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, models.SessionCleared{
		Status:    "cleared",
		SessionID: sessionID,
	})
}
