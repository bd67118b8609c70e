package models

import "strings"

// QueryRequest for POST /api/v1/query
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

func (r *QueryRequest) SetDefaults() {
	r.Query = strings.TrimSpace(r.Query)
	r.SessionID = strings.TrimSpace(r.SessionID)
}
