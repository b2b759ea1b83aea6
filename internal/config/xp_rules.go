package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// XPRules holds the gamification reward tables
type XPRules struct {
	// ContentCompletion is awarded on the first completion of a theory or example block
	ContentCompletion int `yaml:"content_completion"`
	// QuizPassPercent is the share of correct answers needed to pass a quiz
	QuizPassPercent int `yaml:"quiz_pass_percent"`
	// LessonQuizMinXP and LessonQuizMaxXP bound the reward of a first lesson quiz
	// pass; the amount scales linearly from the pass mark to a perfect score
	LessonQuizMinXP int `yaml:"lesson_quiz_min_xp"`
	LessonQuizMaxXP int `yaml:"lesson_quiz_max_xp"`
	// UnitCompletion is awarded once per completed unit
	UnitCompletion int `yaml:"unit_completion"`
	// UnitContentRewards is indexed by the number of groups already claimed in the course;
	// the last entry repeats beyond the end of the table
	UnitContentRewards []int `yaml:"unit_content_rewards"`
	// CourseMilestones are keyed by course progress percentage
	CourseMilestones []Threshold `yaml:"course_milestones"`
	// CourseAchievements are keyed by the number of completed courses
	CourseAchievements []Threshold `yaml:"course_achievements"`
	// StreakMilestones are keyed by consecutive activity days
	StreakMilestones []Threshold `yaml:"streak_milestones"`
	XPPerLevel       int         `yaml:"xp_per_level"`
}

// Threshold is a one-time reward reached at a value
type Threshold struct {
	At    int    `yaml:"at"`
	XP    int    `yaml:"xp"`
	Label string `yaml:"label"`
}

// DefaultXPRules returns the built-in reward tables
func DefaultXPRules() XPRules {
	return XPRules{
		ContentCompletion:  10,
		QuizPassPercent:    80,
		LessonQuizMinXP:    15,
		LessonQuizMaxXP:    22,
		UnitCompletion:     50,
		UnitContentRewards: []int{30, 50, 70, 100},
		CourseMilestones: []Threshold{
			{At: 25, XP: 30, Label: "25% of the course"},
			{At: 50, XP: 50, Label: "Halfway there"},
			{At: 75, XP: 70, Label: "75% of the course"},
			{At: 100, XP: 100, Label: "Course completed"},
		},
		CourseAchievements: []Threshold{
			{At: 1, XP: 150, Label: "First course completed"},
			{At: 3, XP: 300, Label: "Three courses completed"},
		},
		StreakMilestones: []Threshold{
			{At: 3, XP: 100, Label: "3-day streak"},
			{At: 7, XP: 250, Label: "7-day streak"},
			{At: 30, XP: 1000, Label: "30-day streak"},
		},
		XPPerLevel: 500,
	}
}

// LoadXPRules reads reward tables from a YAML file. Keys missing from the
// file keep their built-in values. An empty path returns the built-in rules.
func LoadXPRules(path string) (XPRules, error) {
	rules := DefaultXPRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return XPRules{}, fmt.Errorf("failed to read xp rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return XPRules{}, fmt.Errorf("failed to parse xp rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return XPRules{}, err
	}
	return rules, nil
}

// Validate checks the reward tables are usable
func (r XPRules) Validate() error {
	if r.QuizPassPercent < 1 || r.QuizPassPercent > 100 {
		return fmt.Errorf("quiz_pass_percent must be between 1 and 100, got %d", r.QuizPassPercent)
	}
	if r.ContentCompletion < 0 || r.UnitCompletion < 0 || r.XPPerLevel < 0 || r.LessonQuizMinXP < 0 {
		return fmt.Errorf("xp amounts must not be negative")
	}
	if r.LessonQuizMaxXP < r.LessonQuizMinXP {
		return fmt.Errorf("lesson_quiz_max_xp must not be below lesson_quiz_min_xp")
	}
	for _, xp := range r.UnitContentRewards {
		if xp < 0 {
			return fmt.Errorf("unit_content_rewards must not be negative")
		}
	}
	tables := map[string][]Threshold{
		"course_milestones":   r.CourseMilestones,
		"course_achievements": r.CourseAchievements,
		"streak_milestones":   r.StreakMilestones,
	}
	for name, table := range tables {
		if !slices.IsSortedFunc(table, func(a, b Threshold) int { return a.At - b.At }) {
			return fmt.Errorf("%s must be sorted by at", name)
		}
		for _, th := range table {
			if th.At <= 0 || th.XP < 0 {
				return fmt.Errorf("%s has an invalid entry at=%d xp=%d", name, th.At, th.XP)
			}
		}
	}
	return nil
}

// UnitContentReward is the reward for the next unit-content group given how many were claimed
func (r XPRules) UnitContentReward(alreadyClaimed int) int {
	if len(r.UnitContentRewards) == 0 {
		return 0
	}
	if alreadyClaimed < 0 {
		alreadyClaimed = 0
	}
	if alreadyClaimed >= len(r.UnitContentRewards) {
		return r.UnitContentRewards[len(r.UnitContentRewards)-1]
	}
	return r.UnitContentRewards[alreadyClaimed]
}

// QuizPassed reports whether correct out of total answers passes a quiz
func (r XPRules) QuizPassed(correct, total int) bool {
	if total <= 0 {
		return false
	}
	return correct*100 >= total*r.QuizPassPercent
}

// LessonQuizXP is the reward for passing a lesson quiz with correct out of total, 0 when failed
func (r XPRules) LessonQuizXP(correct, total int) int {
	if !r.QuizPassed(correct, total) {
		return 0
	}
	span := 100 - r.QuizPassPercent
	if span <= 0 {
		return r.LessonQuizMaxXP
	}
	above := correct*100/total - r.QuizPassPercent
	if above < 0 {
		above = 0
	}
	return r.LessonQuizMinXP + (r.LessonQuizMaxXP-r.LessonQuizMinXP)*above/span
}

// StreakMilestone returns the streak reward reached exactly at days
func (r XPRules) StreakMilestone(days int) (Threshold, bool) {
	for _, th := range r.StreakMilestones {
		if th.At == days {
			return th, true
		}
	}
	return Threshold{}, false
}

// Level returns the learner level for total XP
func (r XPRules) Level(totalXP int) int {
	if r.XPPerLevel <= 0 {
		return 1
	}
	return totalXP/r.XPPerLevel + 1
}
