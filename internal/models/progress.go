package models

import "time"

// LessonStatus represents the progress status of a lesson
type LessonStatus string

const (
	LessonStatusNotStarted LessonStatus = "not_started"
	LessonStatusInProgress LessonStatus = "in_progress"
	LessonStatusCompleted  LessonStatus = "completed"
)

// LessonProgress is a lesson progress row of an enrollment
type LessonProgress struct {
	EnrollmentID int          `json:"enrollmentId"`
	LessonID     int          `json:"lessonId"`
	Status       LessonStatus `json:"status"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

// StepCompletionStatus reports which steps of a lesson the learner finished
type StepCompletionStatus struct {
	Theory  bool `json:"theory"`
	Example bool `json:"example"`
	Test    bool `json:"test"`
}

// ContentProgressRequest represents a content progress write
type ContentProgressRequest struct {
	WatchedSeconds int  `json:"watchedSeconds" validate:"gte=0"`
	Completed      bool `json:"completed"`
	// Step is the lesson step the block was completed on, used for the optimistic session update
	Step string `json:"step,omitempty" validate:"omitempty,oneof=theory example"`
}

// CourseProgress is the course progress returned after a write
type CourseProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// MilestoneResult is a course milestone awarded by a write
type MilestoneResult struct {
	Threshold int    `json:"threshold"`
	XP        int    `json:"xp"`
	Message   string `json:"message"`
}

// ProgressResult is returned by every progress write
type ProgressResult struct {
	Success            bool              `json:"success"`
	Message            string            `json:"message,omitempty"`
	LessonID           int               `json:"lessonId,omitempty"`
	UnitID             int               `json:"unitId,omitempty"`
	XPAwarded          int               `json:"xpAwarded"`
	IsRewatch          bool              `json:"isRewatch,omitempty"`
	StepCompleted      string            `json:"stepCompleted,omitempty"`
	LessonComplete     bool              `json:"lessonComplete"`
	UnitQuizPassed     bool              `json:"unitQuizPassed,omitempty"`
	MilestoneResults   []MilestoneResult `json:"milestoneResults,omitempty"`
	StreakBonusAwarded int               `json:"streakBonusAwarded,omitempty"`
	StreakBonusMessage string            `json:"streakBonusMessage,omitempty"`
	CurrentStreak      *int              `json:"currentStreak,omitempty"`
	TotalXP            *int              `json:"totalXp,omitempty"`
	Progress           *CourseProgress   `json:"progress,omitempty"`
}

// QuizResult is the outcome of a graded quiz submission
type QuizResult struct {
	ProgressResult
	Score       int                `json:"score"`
	TotalPoints int                `json:"totalPoints"`
	Passed      bool               `json:"passed"`
	Feedback    []QuestionFeedback `json:"feedback"`
}
