package models

// Chunk is one ranked piece of course content returned by the search backend.
// LessonNumber is nil for content that is not attached to a specific lesson.
type Chunk struct {
	Text         string
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults carries either ranked chunks or an explicit backend error
// message (e.g. an unresolvable course filter). An empty Chunks slice with an
// empty Error means the search ran and found nothing.
type SearchResults struct {
	Chunks []Chunk
	Error  string
}

// Lesson is one entry of a course outline.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// CourseMetadata is the structured catalog record for one course.
type CourseMetadata struct {
	Title   string   `json:"title"`
	Link    string   `json:"course_link,omitempty"`
	Lessons []Lesson `json:"lessons"`
}
