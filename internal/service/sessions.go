package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionStore persists per-session exchanges in Postgres and renders them
// as opaque history text for the model.
type SessionStore struct {
	pool       *pgxpool.Pool
	maxHistory int // most recent exchanges included in rendered history
}

func NewSessionStore(ctx context.Context, databaseURL string, maxHistory int) (*SessionStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &SessionStore{pool: pool, maxHistory: maxHistory}, nil
}

// EnsureSchema creates the exchanges table if it does not exist.
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS session_exchanges (
			id          BIGSERIAL PRIMARY KEY,
			session_id  TEXT NOT NULL,
			user_text   TEXT NOT NULL,
			answer_text TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_session_exchanges_session
			ON session_exchanges (session_id, id);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateSession mints a new session ID. Rows appear on the first exchange.
func (s *SessionStore) CreateSession(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

// History renders the most recent exchanges of a session, oldest first, as
// "User: ...\nAssistant: ..." pairs. Empty string for an unknown session.
func (s *SessionStore) History(ctx context.Context, sessionID string) (string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_text, answer_text
		FROM session_exchanges
		WHERE session_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, sessionID, s.maxHistory)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	type exchange struct{ user, answer string }
	var recent []exchange
	for rows.Next() {
		var e exchange
		if err := rows.Scan(&e.user, &e.answer); err != nil {
			return "", fmt.Errorf("scan exchange: %w", err)
		}
		recent = append(recent, e)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	var lines []string
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines, "User: "+recent[i].user, "Assistant: "+recent[i].answer)
	}
	return strings.Join(lines, "\n"), nil
}

// AddExchange appends one completed question/answer pair.
func (s *SessionStore) AddExchange(ctx context.Context, sessionID, userText, answerText string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_exchanges (session_id, user_text, answer_text)
		VALUES ($1, $2, $3)
	`, sessionID, userText, answerText)
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}
	return nil
}

// ClearSession removes every exchange of one session.
func (s *SessionStore) ClearSession(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM session_exchanges WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// TestConnection pings Postgres.
func (s *SessionStore) TestConnection(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *SessionStore) Close() {
	s.pool.Close()
}
