// Package rag wires a session's prior transcript, the tool registry, and the
// conversation agent into one query entry point.
package rag

import (
	"context"

	"github.com/coursechat/coursechat/internal/agent"
	"github.com/coursechat/coursechat/internal/models"
	"github.com/coursechat/coursechat/internal/tools"
	"github.com/rs/zerolog/log"
)

// Responder is the conversation agent contract the facade drives.
type Responder interface {
	Respond(ctx context.Context, query, history string, defs []tools.Definition, dispatcher agent.ToolDispatcher) (string, error)
}

// HistoryStore is the per-session transcript store. Optional: with a nil
// store, queries run without prior context and sessions are not persisted.
type HistoryStore interface {
	CreateSession(ctx context.Context) (string, error)
	History(ctx context.Context, sessionID string) (string, error)
	AddExchange(ctx context.Context, sessionID, userText, answerText string) error
}

// System is the query facade: one call per user question, returning the
// answer plus the provenance of whatever the tools retrieved.
type System struct {
	responder Responder
	registry  *tools.Registry
	sessions  HistoryStore
}

func NewSystem(responder Responder, registry *tools.Registry, sessions HistoryStore) *System {
	return &System{responder: responder, registry: registry, sessions: sessions}
}

// CreateSession mints a session ID, or "" when no session store is wired.
func (s *System) CreateSession(ctx context.Context) (string, error) {
	if s.sessions == nil {
		return "", nil
	}
	return s.sessions.CreateSession(ctx)
}

// Query answers one user question. Sources are reset before dispatch and
// read exactly once afterwards so citations never leak between queries.
// A remote-model failure propagates; history-store failures only degrade.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []models.Source, error) {
	s.registry.ResetSources()

	var history string
	if sessionID != "" && s.sessions != nil {
		h, err := s.sessions.History(ctx, sessionID)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("history unavailable, continuing without it")
		} else {
			history = h
		}
	}

	answer, err := s.responder.Respond(ctx, query, history, s.registry.Definitions(), s.registry)
	if err != nil {
		return "", nil, err
	}

	sources := s.registry.LastSources()
	s.registry.ResetSources()

	if sessionID != "" && s.sessions != nil {
		if err := s.sessions.AddExchange(ctx, sessionID, query, answer); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record exchange")
		}
	}

	if sources == nil {
		sources = []models.Source{}
	}
	return answer, sources, nil
}
