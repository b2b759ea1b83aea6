package models

// Lesson represents a lesson in a course.
// UnitID is nil for legacy courses whose lessons hang directly off the course.
type Lesson struct {
	ID              int    `json:"id"`
	CourseID        int    `json:"courseId,omitempty"`
	UnitID          *int   `json:"unitId,omitempty"`
	Title           string `json:"title"`
	OrderIndex      int    `json:"orderIndex"`
	OrderInUnit     int    `json:"orderInUnit"`
	DurationSeconds int    `json:"durationSeconds"`
}

// LessonWithContent is a lesson with its ordered content blocks
type LessonWithContent struct {
	Lesson
	Content []LessonContent `json:"lessonContent"`
}
