package player

import (
	"cmp"
	"slices"

	"github.com/coursepath/backend/internal/models"
)

// NavigationItem is one entry of the flattened course sequence: either a
// lesson or the unit quiz placeholder that follows a unit's last lesson.
// For a unit quiz ID and UnitID are both the unit id.
type NavigationItem struct {
	ID         int    `json:"id"`
	UnitID     int    `json:"unitId"`
	Title      string `json:"title"`
	IsUnitQuiz bool   `json:"isUnitQuiz"`
	Completed  bool   `json:"completed"`
	Current    bool   `json:"current"`
}

// ItemKey identifies a navigation item. Lesson and unit ids share a number
// space only within their own kind, so the kind is part of the key.
type ItemKey struct {
	ID         int
	IsUnitQuiz bool
}

// Key returns the item's key
func (it NavigationItem) Key() ItemKey {
	return ItemKey{ID: it.ID, IsUnitQuiz: it.IsUnitQuiz}
}

// LessonKey is the key of a lesson item
func LessonKey(id int) ItemKey { return ItemKey{ID: id} }

// UnitQuizKey is the key of a unit quiz item
func UnitQuizKey(unitID int) ItemKey { return ItemKey{ID: unitID, IsUnitQuiz: true} }

// sortedUnits orders units by OrderIndex and each unit's lessons by OrderInUnit.
// The input is not modified.
func sortedUnits(units []models.UnitWithLessons) []models.UnitWithLessons {
	out := slices.Clone(units)
	slices.SortStableFunc(out, func(a, b models.UnitWithLessons) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
	for i := range out {
		lessons := slices.Clone(out[i].Lessons)
		slices.SortStableFunc(lessons, func(a, b models.Lesson) int {
			return cmp.Compare(a.OrderInUnit, b.OrderInUnit)
		})
		out[i].Lessons = lessons
	}
	return out
}

// LessonsFromUnits flattens units into lesson items only. A course without
// units falls back to its flat lesson list ordered by the course-level index.
func LessonsFromUnits(units []models.UnitWithLessons, flat []models.Lesson) []NavigationItem {
	if len(units) == 0 {
		lessons := slices.Clone(flat)
		slices.SortStableFunc(lessons, func(a, b models.Lesson) int {
			return cmp.Compare(a.OrderIndex, b.OrderIndex)
		})
		items := make([]NavigationItem, 0, len(lessons))
		for _, l := range lessons {
			items = append(items, NavigationItem{ID: l.ID, Title: l.Title})
		}
		return items
	}

	var items []NavigationItem
	for _, u := range sortedUnits(units) {
		for _, l := range u.Lessons {
			items = append(items, NavigationItem{ID: l.ID, UnitID: u.ID, Title: l.Title})
		}
	}
	return items
}

// LessonsWithQuizzes flattens units into lesson items and appends a unit quiz
// item right after the last lesson of every unit in withQuiz.
func LessonsWithQuizzes(units []models.UnitWithLessons, withQuiz map[int]bool) []NavigationItem {
	var items []NavigationItem
	for _, u := range sortedUnits(units) {
		for _, l := range u.Lessons {
			items = append(items, NavigationItem{ID: l.ID, UnitID: u.ID, Title: l.Title})
		}
		if withQuiz[u.ID] {
			items = append(items, NavigationItem{
				ID:         u.ID,
				UnitID:     u.ID,
				Title:      u.Title,
				IsUnitQuiz: true,
			})
		}
	}
	return items
}

// Navigation builds the sequence the player walks: the quiz-interleaved
// variant for unit courses and the flat lesson list otherwise.
func Navigation(units []models.UnitWithLessons, flat []models.Lesson, withQuiz map[int]bool) []NavigationItem {
	if len(units) == 0 {
		return LessonsFromUnits(nil, flat)
	}
	return LessonsWithQuizzes(units, withQuiz)
}

// ApplyCompletion sets Completed on every lesson in completedLessons and every
// unit quiz in passedQuizzes. Flags already set are never cleared.
func ApplyCompletion(items []NavigationItem, completedLessons, passedQuizzes map[int]bool) []NavigationItem {
	out := slices.Clone(items)
	for i := range out {
		if out[i].IsUnitQuiz {
			out[i].Completed = out[i].Completed || passedQuizzes[out[i].ID]
		} else {
			out[i].Completed = out[i].Completed || completedLessons[out[i].ID]
		}
	}
	return out
}

// IndexOf returns the position of key in items or -1
func IndexOf(items []NavigationItem, key ItemKey) int {
	return slices.IndexFunc(items, func(it NavigationItem) bool {
		return it.Key() == key
	})
}

// Neighbors returns the items before and after key. Either is nil at a
// boundary, both are nil when key is not in the sequence.
func Neighbors(items []NavigationItem, key ItemKey) (prev, next *NavigationItem) {
	i := IndexOf(items, key)
	if i < 0 {
		return nil, nil
	}
	if i > 0 {
		p := items[i-1]
		prev = &p
	}
	if i < len(items)-1 {
		n := items[i+1]
		next = &n
	}
	return prev, next
}

// NextUncompleted returns where a learner should continue: walking the
// sequence in order, the first uncompleted lesson or the first unpassed unit
// quiz whose lessons are all done. When everything is done it is the first
// lesson. It returns nil for an empty course.
func NextUncompleted(items []NavigationItem) *NavigationItem {
	for _, it := range items {
		if it.Completed {
			continue
		}
		if !it.IsUnitQuiz || unitLessonsDone(items, it.UnitID) {
			found := it
			return &found
		}
	}
	for _, it := range items {
		if !it.IsUnitQuiz {
			found := it
			return &found
		}
	}
	return nil
}

func unitLessonsDone(items []NavigationItem, unitID int) bool {
	for _, it := range items {
		if !it.IsUnitQuiz && it.UnitID == unitID && !it.Completed {
			return false
		}
	}
	return true
}

// ItemPath is the page path of a navigation item: the unit quiz page for a
// unit quiz, the bare lesson path otherwise.
func ItemPath(courseSlug string, it NavigationItem) string {
	if it.IsUnitQuiz {
		return UnitQuizPath(courseSlug, it.ID)
	}
	return LessonPath(courseSlug, it.ID)
}
