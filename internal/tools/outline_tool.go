package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coursechat/coursechat/internal/models"
)

// OutlineTool resolves a fuzzy course name and renders the course structure:
// title, link, and the ordered lesson list. Records exactly one Source for
// the resolved course.
type OutlineTool struct {
	store SearchStore

	mu      sync.Mutex
	sources []models.Source
}

func NewOutlineTool(store SearchStore) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Definition() Definition {
	return Definition{
		Name:        "get_course_outline",
		Description: "Get the complete outline of a course including title, link, and all lessons",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"course_name": map[string]interface{}{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	courseName, _ := input["course_name"].(string)
	if courseName == "" {
		return "", fmt.Errorf("missing required parameter 'course_name'")
	}

	resolved, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil || resolved == "" {
		return fmt.Sprintf("No course found matching '%s'", courseName), nil
	}

	meta, err := t.store.GetCourseMetadata(ctx, resolved)
	if err != nil {
		// Malformed catalog records are a conversational result, not a
		// query-level failure.
		return fmt.Sprintf("Error retrieving course outline: %v", err), nil
	}

	t.mu.Lock()
	t.sources = []models.Source{{Title: meta.Title, Link: meta.Link}}
	t.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", meta.Title)
	if meta.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", meta.Link)
	}
	fmt.Fprintf(&b, "\nLessons (%d total):\n", len(meta.Lessons))
	for _, l := range meta.Lessons {
		fmt.Fprintf(&b, "%d. %s", l.Number, l.Title)
		if l.Link != "" {
			fmt.Fprintf(&b, " (%s)", l.Link)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (t *OutlineTool) LastSources() []models.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sources
}

func (t *OutlineTool) ResetSources() {
	t.mu.Lock()
	t.sources = nil
	t.mu.Unlock()
}
