package player

import (
	"slices"

	"github.com/coursepath/backend/internal/models"
)

// Pointer is the single current position of a session
type Pointer struct {
	LessonID   int  `json:"lessonId"`
	Step       Step `json:"step"`
	IsUnitQuiz bool `json:"isUnitQuiz"`
}

// Key returns the navigation key the pointer refers to
func (p Pointer) Key() ItemKey {
	return ItemKey{ID: p.LessonID, IsUnitQuiz: p.IsUnitQuiz}
}

// LessonInfo describes the lesson or unit quiz the pointer is on
type LessonInfo struct {
	Title     string `json:"title"`
	UnitID    int    `json:"unitId,omitempty"`
	UnitTitle string `json:"unitTitle,omitempty"`
}

// State is the lesson player session of one learner in one course.
// It only changes through Reduce.
type State struct {
	UserID         int              `json:"userId"`
	CourseID       int              `json:"courseId"`
	CourseSlug     string           `json:"courseSlug"`
	Current        Pointer          `json:"current"`
	AvailableSteps []Step           `json:"availableSteps"`
	Lesson         LessonInfo       `json:"lesson"`
	Items          []NavigationItem `json:"items"`
	Progress       ProgressData     `json:"progress"`
	LessonCount    int              `json:"lessonCount"`
	CompletedSteps map[int][]Step   `json:"completedSteps"`
	Version        int64            `json:"version"`
}

// Plan is the data a session is built from. Every field may be missing.
type Plan struct {
	UserID            int
	CourseID          int
	CourseSlug        string
	Units             []models.UnitWithLessons
	FlatLessons       []models.Lesson
	UnitsWithQuiz     map[int]bool
	CompletedLessons  map[int]bool
	PassedUnitQuizzes map[int]bool
	LessonCount       int
	TotalXP           int
	Streak            *int
}

// NewState builds the initial session. It never fails: missing units or
// progress produce an empty sequence with zero progress.
func NewState(p Plan) State {
	items := ApplyCompletion(Navigation(p.Units, p.FlatLessons, p.UnitsWithQuiz), p.CompletedLessons, p.PassedUnitQuizzes)
	if items == nil {
		items = []NavigationItem{}
	}
	progress := RecomputeProgress(items, p.LessonCount)
	progress.TotalXP = p.TotalXP
	progress.Streak = p.Streak

	return State{
		UserID:         p.UserID,
		CourseID:       p.CourseID,
		CourseSlug:     p.CourseSlug,
		AvailableSteps: []Step{},
		Items:          items,
		Progress:       progress,
		LessonCount:    p.LessonCount,
		CompletedSteps: map[int][]Step{},
		Version:        1,
	}
}

// StepDone reports whether step of lessonID was marked complete
func (s State) StepDone(lessonID int, step Step) bool {
	return containsStep(s.CompletedSteps[lessonID], step)
}

// Neighbors returns the items around the current pointer
func (s State) Neighbors() (prev, next *NavigationItem) {
	return Neighbors(s.Items, s.Current.Key())
}

func (s State) clone() State {
	c := s
	c.Items = slices.Clone(s.Items)
	c.AvailableSteps = slices.Clone(s.AvailableSteps)
	c.CompletedSteps = make(map[int][]Step, len(s.CompletedSteps))
	for id, steps := range s.CompletedSteps {
		c.CompletedSteps[id] = slices.Clone(steps)
	}
	if s.Progress.Streak != nil {
		v := *s.Progress.Streak
		c.Progress.Streak = &v
	}
	return c
}

// Event is a session transition
type Event interface {
	// apply returns the next state and whether anything changed. It may
	// modify the state it is given, which is always a private copy.
	apply(s State) (State, bool)
}

// Reduce applies e to s and returns the new state. s is not modified.
// The version is bumped only when the event changed something.
func Reduce(s State, e Event) State {
	if e == nil {
		return s
	}
	next, changed := e.apply(s.clone())
	if !changed {
		return s
	}
	next.Version = s.Version + 1
	return next
}

// SetCurrentLesson moves the pointer when a page mounts and flags the
// matching item as the only current one
type SetCurrentLesson struct {
	LessonID       int        `json:"lessonId"`
	Step           Step       `json:"step"`
	AvailableSteps []Step     `json:"availableSteps"`
	IsUnitQuiz     bool       `json:"isUnitQuiz"`
	Lesson         LessonInfo `json:"lesson"`
}

func (e SetCurrentLesson) apply(s State) (State, bool) {
	ptr := Pointer{LessonID: e.LessonID, Step: e.Step, IsUnitQuiz: e.IsUnitQuiz}
	if s.Current == ptr && slices.Equal(s.AvailableSteps, e.AvailableSteps) && s.Lesson == e.Lesson {
		return s, false
	}
	s.Current = ptr
	s.AvailableSteps = slices.Clone(e.AvailableSteps)
	if s.AvailableSteps == nil {
		s.AvailableSteps = []Step{}
	}
	s.Lesson = e.Lesson
	key := ptr.Key()
	for i := range s.Items {
		s.Items[i].Current = s.Items[i].Key() == key
	}
	return s, true
}

// MarkLessonComplete flags a lesson, or with IsUnitQuiz a unit quiz, as
// completed after the server confirmed it and recomputes progress.
// Completing an already completed or unknown item changes nothing.
type MarkLessonComplete struct {
	LessonID   int  `json:"lessonId"`
	IsUnitQuiz bool `json:"isUnitQuiz"`
}

func (e MarkLessonComplete) apply(s State) (State, bool) {
	i := IndexOf(s.Items, ItemKey{ID: e.LessonID, IsUnitQuiz: e.IsUnitQuiz})
	if i < 0 || s.Items[i].Completed {
		return s, false
	}
	s.Items[i].Completed = true
	s.Progress = upgrade(s.Progress, RecomputeProgress(s.Items, s.LessonCount))
	return s, true
}

// UpdateProgress merges server-provided values into the progress. Nil fields
// are left alone. Completed never decreases and total is raised to cover it;
// the percentage is always derived from the merged counts.
type UpdateProgress struct {
	Completed *int `json:"completed,omitempty"`
	Total     *int `json:"total,omitempty"`
	TotalXP   *int `json:"totalXp,omitempty"`
	Streak    *int `json:"streak,omitempty"`
}

func (e UpdateProgress) apply(s State) (State, bool) {
	p := s.Progress
	if e.Completed != nil && *e.Completed > p.Completed {
		p.Completed = *e.Completed
	}
	if e.Total != nil && *e.Total >= 0 {
		p.Total = *e.Total
	}
	if p.Completed > p.Total {
		p.Total = p.Completed
	}
	p.Percentage = Percentage(p.Completed, p.Total)
	if e.TotalXP != nil {
		p.TotalXP = *e.TotalXP
	}
	if e.Streak != nil {
		v := *e.Streak
		p.Streak = &v
	}
	if progressEqual(p, s.Progress) {
		return s, false
	}
	s.Progress = p
	return s, true
}

// MarkStepComplete records that a step of a lesson was finished
type MarkStepComplete struct {
	LessonID int  `json:"lessonId"`
	Step     Step `json:"step"`
}

func (e MarkStepComplete) apply(s State) (State, bool) {
	if !e.Step.Valid() || s.StepDone(e.LessonID, e.Step) {
		return s, false
	}
	steps := append(s.CompletedSteps[e.LessonID], e.Step)
	slices.Sort(steps)
	s.CompletedSteps[e.LessonID] = steps
	return s, true
}

// SetStepCompletion merges a fetched step completion status of a lesson.
// Steps already recorded are kept.
type SetStepCompletion struct {
	LessonID int    `json:"lessonId"`
	Steps    []Step `json:"steps"`
}

func (e SetStepCompletion) apply(s State) (State, bool) {
	changed := false
	for _, step := range e.Steps {
		var ok bool
		s, ok = MarkStepComplete{LessonID: e.LessonID, Step: step}.apply(s)
		changed = changed || ok
	}
	return s, changed
}

// upgrade keeps progress from ever moving backwards: a recomputation that
// counts fewer items than the server reported keeps the larger counts.
func upgrade(prev, next ProgressData) ProgressData {
	next.TotalXP = prev.TotalXP
	next.Streak = prev.Streak
	next.Completed = max(next.Completed, prev.Completed)
	next.Total = max(next.Total, prev.Total, next.Completed)
	next.Percentage = Percentage(next.Completed, next.Total)
	return next
}

func progressEqual(a, b ProgressData) bool {
	if a.Completed != b.Completed || a.Total != b.Total || a.Percentage != b.Percentage || a.TotalXP != b.TotalXP {
		return false
	}
	if (a.Streak == nil) != (b.Streak == nil) {
		return false
	}
	return a.Streak == nil || *a.Streak == *b.Streak
}
