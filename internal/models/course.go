package models

// Course represents a course in the learning system
type Course struct {
	ID           int    `json:"id"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	ShortSummary string `json:"shortSummary"`
	IsPublished  bool   `json:"isPublished"`
}

// CourseStats is the server-computed aggregate of a course.
// LessonCount is the authoritative denominator for course progress.
type CourseStats struct {
	LessonCount          int `json:"lessonCount"`
	TotalDurationSeconds int `json:"totalDurationSeconds"`
	ExerciseCount        int `json:"exerciseCount"`
	TotalXP              int `json:"totalXp"`
	// RewardedBlocks counts theory and example blocks, UnitCount the units of the course.
	// Both feed the TotalXP estimate.
	RewardedBlocks int `json:"-"`
	UnitCount      int `json:"-"`
}
