package player

import "fmt"

// Action is what a step page does with a request
type Action int

const (
	ActionRender Action = iota
	ActionRedirect
	ActionNotFound
)

func (a Action) String() string {
	switch a {
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	default:
		return "not_found"
	}
}

// Decision is the outcome of the redirect policy.
// Step is the step to render or redirect to; it is StepNone for ActionNotFound.
type Decision struct {
	Action Action
	Step   Step
}

// Resolve decides what to do with a request for step requested given the
// lesson's available steps. A present step renders. A missing step redirects
// to the first available step, which is itself always renderable, so following
// a redirect never redirects again. No available steps means not found.
// The unit quiz is never a lesson step and therefore always redirects.
func Resolve(requested Step, available []Step) Decision {
	if requested != StepNone && containsStep(available, requested) {
		return Decision{Action: ActionRender, Step: requested}
	}
	return FirstStep(available)
}

// FirstStep is the decision for the bare lesson path
func FirstStep(available []Step) Decision {
	for _, s := range LessonSteps {
		if containsStep(available, s) {
			return Decision{Action: ActionRedirect, Step: s}
		}
	}
	return Decision{Action: ActionNotFound}
}

// LessonPath is the bare lesson path
func LessonPath(courseSlug string, lessonID int) string {
	return fmt.Sprintf("/courses/%s/learn/lesson/%d", courseSlug, lessonID)
}

// StepPath is the page path of a lesson step
func StepPath(courseSlug string, lessonID int, step Step) string {
	return fmt.Sprintf("%s/%s", LessonPath(courseSlug, lessonID), step)
}

// UnitQuizPath is the page path of a unit quiz; unit quizzes are addressed by unit id
func UnitQuizPath(courseSlug string, unitID int) string {
	return StepPath(courseSlug, unitID, StepUnitQuiz)
}

// CoursePath is the course landing page
func CoursePath(courseSlug string) string {
	return "/courses/" + courseSlug
}
