package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Source is one citation attributable to a retrieval performed by a tool.
// Link is empty when neither a lesson nor a course link could be resolved.
type Source struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}

// QueryResponse is returned by POST /api/v1/query
type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"session_id,omitempty"`
}

// CourseStats is returned by GET /api/v1/courses
type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// SessionCleared is returned by DELETE /api/v1/session/{session_id}
type SessionCleared struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}
