package models

// ContentType represents the type of a lesson content block
type ContentType string

const (
	ContentTypeTheory     ContentType = "theory"
	ContentTypeExample    ContentType = "example"
	ContentTypeText       ContentType = "text"
	ContentTypeAttachment ContentType = "attachment"
)

// AwardsXP reports whether the first completion of a block of this type is rewarded
func (t ContentType) AwardsXP() bool {
	return t == ContentTypeTheory || t == ContentTypeExample
}

// LessonContent represents a content block within a lesson
type LessonContent struct {
	ID          int         `json:"id"`
	LessonID    int         `json:"lessonId"`
	ContentType ContentType `json:"contentType"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	OrderIndex  int         `json:"orderIndex"`
}

// ContentProgress is the per-block progress of an enrollment
type ContentProgress struct {
	EnrollmentID    int  `json:"enrollmentId"`
	LessonContentID int  `json:"lessonContentId"`
	WatchedSeconds  int  `json:"watchedSeconds"`
	Completed       bool `json:"completed"`
}

// RenderedBlock is a content block prepared for the step page
type RenderedBlock struct {
	ID          int         `json:"id"`
	ContentType ContentType `json:"contentType"`
	Title       string      `json:"title"`
	HTML        string      `json:"html"`
	VideoURL    string      `json:"videoUrl,omitempty"`
	Completed   bool        `json:"completed"`
}
