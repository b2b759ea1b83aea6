package player

import "github.com/coursepath/backend/internal/models"

// AvailableSteps returns the ordered steps a lesson has content for.
// Theory and example follow the presence of blocks of that type, test follows
// the presence of a quiz. Text and attachment blocks never create a step.
// An empty result means the lesson is unreachable.
func AvailableSteps(blocks []models.LessonContent, hasQuiz bool) []Step {
	var hasTheory, hasExample bool
	for _, b := range blocks {
		switch b.ContentType {
		case models.ContentTypeTheory:
			hasTheory = true
		case models.ContentTypeExample:
			hasExample = true
		}
	}

	steps := make([]Step, 0, len(LessonSteps))
	if hasTheory {
		steps = append(steps, StepTheory)
	}
	if hasExample {
		steps = append(steps, StepExample)
	}
	if hasQuiz {
		steps = append(steps, StepTest)
	}
	return steps
}

// ContentStep maps a content type to the step that shows it
func ContentStep(t models.ContentType) Step {
	switch t {
	case models.ContentTypeTheory:
		return StepTheory
	case models.ContentTypeExample:
		return StepExample
	default:
		return StepNone
	}
}

// UnitsWithQuiz returns the set of unit ids owning a quiz.
// questionCounts maps unit id to the number of quiz questions of that unit;
// ids absent from the map have no quiz.
func UnitsWithQuiz(unitIDs []int, questionCounts map[int]int) map[int]bool {
	set := make(map[int]bool, len(unitIDs))
	for _, id := range unitIDs {
		if questionCounts[id] > 0 {
			set[id] = true
		}
	}
	return set
}

func containsStep(steps []Step, s Step) bool {
	for _, x := range steps {
		if x == s {
			return true
		}
	}
	return false
}
