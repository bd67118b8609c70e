package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/coursechat/coursechat/internal/models"
	"github.com/rs/zerolog/log"
)

// ContentSearchTool searches course materials through the vector store and
// records one Source per rendered chunk.
type ContentSearchTool struct {
	store SearchStore

	mu      sync.Mutex
	sources []models.Source
}

func NewContentSearchTool(store SearchStore) *ContentSearchTool {
	return &ContentSearchTool{store: store}
}

func (t *ContentSearchTool) Definition() Definition {
	return Definition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]interface{}{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]interface{}{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *ContentSearchTool) Execute(ctx context.Context, input map[string]interface{}) (string, error) {
	query, _ := input["query"].(string)
	if query == "" {
		return "", fmt.Errorf("missing required parameter 'query'")
	}

	courseName, _ := input["course_name"].(string)

	var lessonNumber *int
	if raw, ok := input["lesson_number"].(float64); ok {
		n := int(raw)
		lessonNumber = &n
	}

	results, err := t.store.Search(ctx, query, courseName, lessonNumber)
	if err != nil {
		return "", err
	}

	// Explicit backend errors (e.g. unresolvable course filter) pass through
	// verbatim so the model can rephrase its next call.
	if results.Error != "" {
		return results.Error, nil
	}

	if len(results.Chunks) == 0 {
		return emptyResultMessage(courseName, lessonNumber), nil
	}

	return t.format(ctx, results.Chunks), nil
}

// format renders chunks as labeled blocks in the backend's ranked order and
// records one Source per chunk as a side effect.
func (t *ContentSearchTool) format(ctx context.Context, chunks []models.Chunk) string {
	blocks := make([]string, 0, len(chunks))
	sources := make([]models.Source, 0, len(chunks))

	for _, c := range chunks {
		header := fmt.Sprintf("[%s]", c.CourseTitle)
		title := c.CourseTitle
		if c.LessonNumber != nil {
			header = fmt.Sprintf("[%s - Lesson %d]", c.CourseTitle, *c.LessonNumber)
			title = fmt.Sprintf("%s - Lesson %d", c.CourseTitle, *c.LessonNumber)
		}
		blocks = append(blocks, header+"\n"+c.Text)
		sources = append(sources, models.Source{
			Title: title,
			Link:  t.resolveLink(ctx, c),
		})
	}

	t.mu.Lock()
	t.sources = sources
	t.mu.Unlock()

	return strings.Join(blocks, "\n\n")
}

// resolveLink prefers a lesson-specific link, falls back to the course link
// for lesson-less chunks. A missing link is "", never an error.
func (t *ContentSearchTool) resolveLink(ctx context.Context, c models.Chunk) string {
	var link string
	var err error
	if c.LessonNumber != nil {
		link, err = t.store.GetLessonLink(ctx, c.CourseTitle, *c.LessonNumber)
	} else {
		link, err = t.store.GetCourseLink(ctx, c.CourseTitle)
	}
	if err != nil {
		log.Debug().Err(err).Str("course", c.CourseTitle).Msg("link lookup failed")
		return ""
	}
	return link
}

func emptyResultMessage(courseName string, lessonNumber *int) string {
	msg := "No relevant content found"
	if courseName != "" {
		msg += fmt.Sprintf(" in course '%s'", courseName)
	}
	if lessonNumber != nil {
		msg += fmt.Sprintf(" in lesson %d", *lessonNumber)
	}
	return msg + "."
}

func (t *ContentSearchTool) LastSources() []models.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sources
}

func (t *ContentSearchTool) ResetSources() {
	t.mu.Lock()
	t.sources = nil
	t.mu.Unlock()
}
