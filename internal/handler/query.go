package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coursechat/coursechat/internal/models"
	"github.com/coursechat/coursechat/internal/security"
)

// RAGService is the query facade consumed by the HTTP layer.
type RAGService interface {
	Query(ctx context.Context, query, sessionID string) (string, []models.Source, error)
	CreateSession(ctx context.Context) (string, error)
}

// QueryHandler handles POST /api/v1/query
type QueryHandler struct {
	rag         RAGService
	validator   *security.QueryValidator
	auditLogger *security.AuditLogger
}

func NewQueryHandler(rag RAGService, validator *security.QueryValidator, auditLogger *security.AuditLogger) *QueryHandler {
	return &QueryHandler{rag: rag, validator: validator, auditLogger: auditLogger}
}

// Query answers one user question, creating a session when none is supplied.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	if vr := h.validator.Validate(req.Query); !vr.Valid {
		models.WriteError(w, http.StatusBadRequest, "query validation failed: "+vr.Message)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := h.rag.CreateSession(r.Context())
		if err != nil {
			models.WriteError(w, http.StatusInternalServerError, "session creation failed: "+err.Error())
			return
		}
		sessionID = id
	}

	start := time.Now()
	answer, sources, err := h.rag.Query(r.Context(), req.Query, sessionID)
	execMs := time.Since(start).Milliseconds()

	if err != nil {
		h.auditLogger.LogQuery(req.Query, sessionID, execMs, 0, 0, false, err.Error())
		models.WriteError(w, http.StatusInternalServerError, "query failed: "+err.Error())
		return
	}

	h.auditLogger.LogQuery(req.Query, sessionID, execMs, len(sources), len(answer), true, "")

	models.WriteJSON(w, http.StatusOK, models.QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}
