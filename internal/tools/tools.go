// Package tools defines the Tool interface, the name-indexed Registry the
// agent dispatches through, and the course search/outline tool implementations.
package tools

import (
	"context"

	"github.com/coursechat/coursechat/internal/models"
)

// Definition is the machine-readable capability advertisement sent to the LLM.
// Never mutated after construction.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// Tool is a callable capability the LLM can invoke. Execute records the
// sources of whatever it retrieved; LastSources exposes them until the next
// Execute or ResetSources.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, input map[string]interface{}) (string, error)
	LastSources() []models.Source
	ResetSources()
}

// SearchStore is the vector-search backend the tools read from. Implemented
// by service.VectorStore; faked in tests.
type SearchStore interface {
	// Search returns ranked chunks for a query, optionally filtered by a
	// fuzzy course name and/or lesson number. An unresolvable course filter
	// is reported through SearchResults.Error, not through err.
	Search(ctx context.Context, query, courseName string, lessonNumber *int) (models.SearchResults, error)

	// ResolveCourseName maps a fuzzy course name to a canonical course
	// title. Returns "" when nothing matches.
	ResolveCourseName(ctx context.Context, name string) (string, error)

	// GetLessonLink and GetCourseLink return "" when no link is recorded.
	GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error)
	GetCourseLink(ctx context.Context, courseTitle string) (string, error)

	GetCourseMetadata(ctx context.Context, courseTitle string) (models.CourseMetadata, error)
}
