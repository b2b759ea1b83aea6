package models

// QuizOption is one answer option of a quiz question
type QuizOption struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"questionId"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"-"`
	OrderIndex int    `json:"orderIndex"`
}

// QuizQuestion is a question attached to either a lesson or a unit.
// Exactly one of LessonID and UnitID is set.
type QuizQuestion struct {
	ID          int          `json:"id"`
	LessonID    *int         `json:"lessonId,omitempty"`
	UnitID      *int         `json:"unitId,omitempty"`
	Question    string       `json:"question"`
	Explanation string       `json:"explanation,omitempty"`
	Points      int          `json:"points"`
	OrderIndex  int          `json:"orderIndex"`
	Options     []QuizOption `json:"options"`
}

// QuizAttempt is a graded quiz submission
type QuizAttempt struct {
	ID          int  `json:"id"`
	UserID      int  `json:"userId"`
	LessonID    *int `json:"lessonId,omitempty"`
	UnitID      *int `json:"unitId,omitempty"`
	Score       int  `json:"score"`
	TotalPoints int  `json:"totalPoints"`
	Passed      bool `json:"passed"`
}

// QuizAnswer is one graded answer of an attempt
type QuizAnswer struct {
	QuestionID int  `json:"questionId"`
	OptionID   int  `json:"optionId"`
	IsCorrect  bool `json:"isCorrect"`
}

// SubmitQuizRequest represents a quiz submission
type SubmitQuizRequest struct {
	Answers []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

// SubmittedAnswer is the option chosen for a question
type SubmittedAnswer struct {
	QuestionID int `json:"questionId" validate:"required,gt=0"`
	OptionID   int `json:"optionId" validate:"required,gt=0"`
}

// QuestionFeedback is returned per question after grading
type QuestionFeedback struct {
	QuestionID      int    `json:"questionId"`
	Correct         bool   `json:"correct"`
	CorrectOptionID int    `json:"correctOptionId"`
	Explanation     string `json:"explanation,omitempty"`
}
