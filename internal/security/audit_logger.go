package security

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// AuditLogger records query outcomes with hashed identifiers so transcripts
// never end up in the log stream.
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogQuery records one completed (or failed) chat query.
func (a *AuditLogger) LogQuery(
	query, sessionID string,
	executionTimeMs int64,
	sourceCount int,
	answerLen int,
	success bool,
	errMsg string,
) {
	if !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "query_audit").
		Str("query_hash", hashStr(query)[:16]).
		Str("session_id", sessionID).
		Int64("execution_time_ms", executionTimeMs).
		Int("source_count", sourceCount).
		Int("answer_len", answerLen).
		Bool("success", success)

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
