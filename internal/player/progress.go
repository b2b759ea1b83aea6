package player

import (
	"math"

	"github.com/coursepath/backend/internal/models"
)

// ProgressData is the derived course progress of a learner
type ProgressData struct {
	Completed  int  `json:"completed"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	TotalXP    int  `json:"totalXp"`
	Streak     *int `json:"streak,omitempty"`
}

// Percentage is round(completed/total*100), 0 when total is 0
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// RecomputeProgress derives completed, total and percentage from the items.
//
// Total reconciliation: lessonCount is the server aggregate of lessons in the
// course. When positive it replaces the number of lesson items in the total;
// otherwise the lesson items are counted. Unit quizzes always come from the
// items since the aggregate does not count them. Completed is clamped to total.
// An empty sequence yields zero progress whatever the aggregate says.
// XP and streak are not derived here and are left zero.
func RecomputeProgress(items []NavigationItem, lessonCount int) ProgressData {
	if len(items) == 0 {
		return ProgressData{}
	}
	var lessons, quizzes, completed int
	for _, it := range items {
		if it.IsUnitQuiz {
			quizzes++
		} else {
			lessons++
		}
		if it.Completed {
			completed++
		}
	}
	if lessonCount > 0 {
		lessons = lessonCount
	}
	total := lessons + quizzes
	if completed > total {
		completed = total
	}
	return ProgressData{
		Completed:  completed,
		Total:      total,
		Percentage: Percentage(completed, total),
	}
}

// ToCourseProgress drops the gamification fields
func (p ProgressData) ToCourseProgress() models.CourseProgress {
	return models.CourseProgress{Completed: p.Completed, Total: p.Total, Percentage: p.Percentage}
}

// UnitSection is the sidebar view of one unit
type UnitSection struct {
	UnitID           int              `json:"unitId"`
	Title            string           `json:"title"`
	ContentGroup     string           `json:"contentGroup,omitempty"`
	Lessons          []NavigationItem `json:"lessons"`
	CompletedLessons int              `json:"completedLessons"`
	HasQuiz          bool             `json:"hasQuiz"`
	QuizPassed       bool             `json:"quizPassed"`
	Complete         bool             `json:"complete"`
	Claimed          bool             `json:"claimed"`
}

// UnitComplete reports whether a unit is complete: it has something to do,
// all its lessons are completed and it either has no quiz or its quiz is passed.
func UnitComplete(lessonCount, completedLessons int, hasQuiz, quizPassed bool) bool {
	if lessonCount == 0 && !hasQuiz {
		return false
	}
	if completedLessons < lessonCount {
		return false
	}
	return !hasQuiz || quizPassed
}

// BuildSidebar groups the navigation items per unit in course order.
// claimedUnits marks units whose completion reward was already claimed.
func BuildSidebar(units []models.UnitWithLessons, items []NavigationItem, claimedUnits map[int]bool) []UnitSection {
	byKey := make(map[ItemKey]NavigationItem, len(items))
	for _, it := range items {
		byKey[it.Key()] = it
	}

	sections := make([]UnitSection, 0, len(units))
	for _, u := range sortedUnits(units) {
		sec := UnitSection{
			UnitID:       u.ID,
			Title:        u.Title,
			ContentGroup: u.ContentGroup,
			Lessons:      make([]NavigationItem, 0, len(u.Lessons)),
			Claimed:      claimedUnits[u.ID],
		}
		for _, l := range u.Lessons {
			it, ok := byKey[LessonKey(l.ID)]
			if !ok {
				it = NavigationItem{ID: l.ID, UnitID: u.ID, Title: l.Title}
			}
			if it.Completed {
				sec.CompletedLessons++
			}
			sec.Lessons = append(sec.Lessons, it)
		}
		if quiz, ok := byKey[UnitQuizKey(u.ID)]; ok {
			sec.HasQuiz = true
			sec.QuizPassed = quiz.Completed
		}
		sec.Complete = UnitComplete(len(sec.Lessons), sec.CompletedLessons, sec.HasQuiz, sec.QuizPassed)
		sections = append(sections, sec)
	}
	return sections
}

// ContentGroup is the sidebar view of a unit-content group, a named run of
// units rewarded together once all of them are complete
type ContentGroup struct {
	Name     string `json:"name"`
	UnitIDs  []int  `json:"unitIds"`
	Complete bool   `json:"complete"`
	Claimed  bool   `json:"claimed"`
}

// ContentGroups collects the unit-content groups of the sidebar in order of
// first appearance. Units without a group are skipped.
func ContentGroups(sections []UnitSection, claimed map[string]bool) []ContentGroup {
	var groups []ContentGroup
	index := map[string]int{}
	for _, sec := range sections {
		if sec.ContentGroup == "" {
			continue
		}
		i, ok := index[sec.ContentGroup]
		if !ok {
			i = len(groups)
			index[sec.ContentGroup] = i
			groups = append(groups, ContentGroup{
				Name:     sec.ContentGroup,
				Complete: true,
				Claimed:  claimed[sec.ContentGroup],
			})
		}
		groups[i].UnitIDs = append(groups[i].UnitIDs, sec.UnitID)
		groups[i].Complete = groups[i].Complete && sec.Complete
	}
	return groups
}

// FindSection returns the section of unitID
func FindSection(sections []UnitSection, unitID int) (UnitSection, bool) {
	for _, sec := range sections {
		if sec.UnitID == unitID {
			return sec, true
		}
	}
	return UnitSection{}, false
}
