package models

// NavLink points at a neighbouring lesson or unit quiz
type NavLink struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	IsUnitQuiz bool   `json:"isUnitQuiz"`
	URL        string `json:"url"`
}

// StepPage is everything a lesson step page renders
type StepPage struct {
	CourseSlug     string               `json:"courseSlug"`
	Lesson         Lesson               `json:"lesson"`
	Step           string               `json:"step"`
	AvailableSteps []string             `json:"availableSteps"`
	Blocks         []RenderedBlock      `json:"blocks,omitempty"`
	Questions      []QuizQuestion       `json:"questions,omitempty"`
	Completion     StepCompletionStatus `json:"completion"`
	Previous       *NavLink             `json:"previous"`
	Next           *NavLink             `json:"next"`
}

// UnitQuizPage is everything the unit quiz page renders
type UnitQuizPage struct {
	CourseSlug string         `json:"courseSlug"`
	Unit       Unit           `json:"unit"`
	Questions  []QuizQuestion `json:"questions"`
	Passed     bool           `json:"passed"`
	Previous   *NavLink       `json:"previous"`
	Next       *NavLink       `json:"next"`
}
