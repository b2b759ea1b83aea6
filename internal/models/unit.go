package models

// Unit groups ordered lessons within a course
type Unit struct {
	ID         int    `json:"id"`
	CourseID   int    `json:"courseId"`
	Title      string `json:"title"`
	OrderIndex int    `json:"orderIndex"`
	// ContentGroup names the unit-content group this unit belongs to, empty when none
	ContentGroup string `json:"contentGroup,omitempty"`
}

// UnitWithLessons is a unit together with its lessons as returned by the content source
type UnitWithLessons struct {
	Unit
	Lessons []Lesson `json:"lessons"`
}
