package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) State {
	t.Helper()
	units, withQuiz := twoUnitCourse()
	return NewState(Plan{
		UserID:           7,
		CourseID:         1,
		CourseSlug:       "go",
		Units:            units,
		UnitsWithQuiz:    withQuiz,
		CompletedLessons: map[int]bool{101: true},
		TotalXP:          40,
	})
}

func TestNewState(t *testing.T) {
	s := newTestState(t)

	assert.Equal(t, int64(1), s.Version)
	assert.Len(t, s.Items, 4)
	assert.Equal(t, ProgressData{Completed: 1, Total: 4, Percentage: 25, TotalXP: 40}, s.Progress)
	assert.Empty(t, s.AvailableSteps)
}

func TestNewState_FailSoft(t *testing.T) {
	s := NewState(Plan{LessonCount: 9})

	assert.NotNil(t, s.Items)
	assert.Empty(t, s.Items)
	assert.Equal(t, 0, s.Progress.Total)
	assert.Equal(t, 0, s.Progress.Percentage)
	assert.NotNil(t, s.CompletedSteps)
}

func TestReduce_SetCurrentLesson(t *testing.T) {
	s := newTestState(t)

	next := Reduce(s, SetCurrentLesson{
		LessonID:       102,
		Step:           StepExample,
		AvailableSteps: []Step{StepTheory, StepExample},
		Lesson:         LessonInfo{Title: "Lesson", UnitID: 10},
	})

	assert.Equal(t, Pointer{LessonID: 102, Step: StepExample}, next.Current)
	assert.Equal(t, s.Version+1, next.Version)
	assertSingleCurrent(t, next, LessonKey(102))
	for _, it := range s.Items {
		assert.False(t, it.Current, "previous state must not change")
	}

	t.Run("moving to the unit quiz moves the current flag", func(t *testing.T) {
		quiz := Reduce(next, SetCurrentLesson{LessonID: 10, Step: StepUnitQuiz, IsUnitQuiz: true})
		assertSingleCurrent(t, quiz, UnitQuizKey(10))
	})

	t.Run("same pointer is a no-op", func(t *testing.T) {
		again := Reduce(next, SetCurrentLesson{
			LessonID:       102,
			Step:           StepExample,
			AvailableSteps: []Step{StepTheory, StepExample},
			Lesson:         LessonInfo{Title: "Lesson", UnitID: 10},
		})
		assert.Equal(t, next.Version, again.Version)
	})

	t.Run("unknown lesson clears the current flag", func(t *testing.T) {
		unknown := Reduce(next, SetCurrentLesson{LessonID: 999, Step: StepTheory})
		for _, it := range unknown.Items {
			assert.False(t, it.Current)
		}
	})
}

func assertSingleCurrent(t *testing.T, s State, key ItemKey) {
	t.Helper()
	count := 0
	for _, it := range s.Items {
		if it.Current {
			count++
			assert.Equal(t, key, it.Key())
		}
	}
	assert.Equal(t, 1, count)
}

func TestReduce_MarkLessonComplete(t *testing.T) {
	s := newTestState(t)

	next := Reduce(s, MarkLessonComplete{LessonID: 102})
	assert.Equal(t, 2, next.Progress.Completed)
	assert.Equal(t, 50, next.Progress.Percentage)
	assert.Equal(t, 40, next.Progress.TotalXP)
	assert.Equal(t, 1, s.Progress.Completed, "previous state must not change")

	repeat := Reduce(next, MarkLessonComplete{LessonID: 102})
	assert.Equal(t, next.Version, repeat.Version)
	assert.Equal(t, 2, repeat.Progress.Completed)

	quiz := Reduce(repeat, MarkLessonComplete{LessonID: 10, IsUnitQuiz: true})
	assert.Equal(t, 3, quiz.Progress.Completed)

	unknown := Reduce(quiz, MarkLessonComplete{LessonID: 999})
	assert.Equal(t, quiz, unknown)
}

func TestReduce_ProgressIsMonotonic(t *testing.T) {
	s := newTestState(t)
	sequence := []Event{
		MarkLessonComplete{LessonID: 101},
		MarkLessonComplete{LessonID: 103},
		MarkLessonComplete{LessonID: 103},
		UpdateProgress{Completed: intPtr(1)},
		MarkLessonComplete{LessonID: 10, IsUnitQuiz: true},
		UpdateProgress{Total: intPtr(2)},
		MarkLessonComplete{LessonID: 102},
		MarkLessonComplete{LessonID: 101},
	}

	prevCompleted := s.Progress.Completed
	itemCount := len(s.Items)
	for _, e := range sequence {
		s = Reduce(s, e)
		assert.GreaterOrEqual(t, s.Progress.Completed, prevCompleted)
		assert.LessOrEqual(t, s.Progress.Completed, s.Progress.Total)
		assert.Equal(t, Percentage(s.Progress.Completed, s.Progress.Total), s.Progress.Percentage)
		assert.Len(t, s.Items, itemCount)
		prevCompleted = s.Progress.Completed
	}
	assert.Equal(t, 4, s.Progress.Completed)
}

func TestReduce_UpdateProgress(t *testing.T) {
	s := newTestState(t)

	tests := []struct {
		name     string
		event    UpdateProgress
		expected ProgressData
		changed  bool
	}{
		{
			name:     "xp and streak",
			event:    UpdateProgress{TotalXP: intPtr(90), Streak: intPtr(3)},
			expected: ProgressData{Completed: 1, Total: 4, Percentage: 25, TotalXP: 90, Streak: intPtr(3)},
			changed:  true,
		},
		{
			name:     "authoritative counts",
			event:    UpdateProgress{Completed: intPtr(3), Total: intPtr(6)},
			expected: ProgressData{Completed: 3, Total: 6, Percentage: 50, TotalXP: 40},
			changed:  true,
		},
		{
			name:     "lower completed is ignored",
			event:    UpdateProgress{Completed: intPtr(0)},
			expected: ProgressData{Completed: 1, Total: 4, Percentage: 25, TotalXP: 40},
		},
		{
			name:     "total below completed is raised",
			event:    UpdateProgress{Total: intPtr(0)},
			expected: ProgressData{Completed: 1, Total: 1, Percentage: 100, TotalXP: 40},
			changed:  true,
		},
		{
			name:     "empty update",
			event:    UpdateProgress{},
			expected: ProgressData{Completed: 1, Total: 4, Percentage: 25, TotalXP: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Reduce(s, tt.event)
			assert.Equal(t, tt.expected, next.Progress)
			if tt.changed {
				assert.Equal(t, s.Version+1, next.Version)
			} else {
				assert.Equal(t, s.Version, next.Version)
			}
		})
	}
}

func TestReduce_MarkStepComplete(t *testing.T) {
	s := newTestState(t)

	next := Reduce(s, MarkStepComplete{LessonID: 101, Step: StepTest})
	next = Reduce(next, MarkStepComplete{LessonID: 101, Step: StepTheory})
	repeat := Reduce(next, MarkStepComplete{LessonID: 101, Step: StepTheory})

	assert.Equal(t, []Step{StepTheory, StepTest}, next.CompletedSteps[101])
	assert.True(t, next.StepDone(101, StepTheory))
	assert.False(t, next.StepDone(101, StepExample))
	assert.Equal(t, next.Version, repeat.Version)
	assert.Empty(t, s.CompletedSteps, "previous state must not change")

	merged := Reduce(next, SetStepCompletion{LessonID: 101, Steps: []Step{StepExample, StepTest}})
	assert.Equal(t, []Step{StepTheory, StepExample, StepTest}, merged.CompletedSteps[101])

	invalid := Reduce(merged, MarkStepComplete{LessonID: 101, Step: StepNone})
	assert.Equal(t, merged.Version, invalid.Version)
}

func TestState_Neighbors(t *testing.T) {
	s := Reduce(newTestState(t), SetCurrentLesson{LessonID: 10, Step: StepUnitQuiz, IsUnitQuiz: true})

	prev, next := s.Neighbors()

	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, LessonKey(102), prev.Key())
	assert.Equal(t, LessonKey(103), next.Key())
}

func TestReduce_NilEvent(t *testing.T) {
	s := newTestState(t)
	assert.Equal(t, s, Reduce(s, nil))
}
