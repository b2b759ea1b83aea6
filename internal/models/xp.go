package models

import "time"

// XPSourceType identifies what an XP transaction was awarded for
type XPSourceType string

const (
	XPSourceContent     XPSourceType = "content"
	XPSourceQuiz        XPSourceType = "quiz"
	XPSourceMilestone   XPSourceType = "milestone"
	XPSourceAchievement XPSourceType = "achievement"
	XPSourceStreak      XPSourceType = "streak"
	XPSourceUnit        XPSourceType = "unit"
	XPSourceUnitContent XPSourceType = "unit_content"
)

// XPTransaction is a single XP award. (UserID, SourceType, SourceID) is unique.
type XPTransaction struct {
	UserID      int          `json:"userId"`
	Amount      int          `json:"amount"`
	SourceType  XPSourceType `json:"sourceType"`
	SourceID    string       `json:"sourceId"`
	Description string       `json:"description"`
}

// Profile holds the gamification state of a user
type Profile struct {
	UserID           int        `json:"userId"`
	TotalXP          int        `json:"totalXp"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
}

// Level returns the learner level for the given XP per level
func (p Profile) Level(xpPerLevel int) int {
	if xpPerLevel <= 0 {
		return 1
	}
	return p.TotalXP/xpPerLevel + 1
}
