// Package player holds the lesson player core: which steps a lesson has,
// where a request for a missing step goes, how a course flattens into a
// navigation sequence, how progress is derived and how the per-visit
// session state evolves.
package player

import (
	"fmt"
	"strings"
)

// Step is a stage of a lesson or unit flow. The numeric order is the canonical order.
type Step int

const (
	StepNone Step = iota
	StepTheory
	StepExample
	StepTest
	StepUnitQuiz
)

// LessonSteps is the canonical order of the steps a lesson can have
var LessonSteps = []Step{StepTheory, StepExample, StepTest}

var stepNames = map[Step]string{
	StepTheory:   "theory",
	StepExample:  "example",
	StepTest:     "test",
	StepUnitQuiz: "unit-quiz",
}

func (s Step) String() string {
	return stepNames[s]
}

// Valid reports whether s is one of the named steps
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// MarshalText encodes the step by name
func (s Step) MarshalText() ([]byte, error) {
	if s == StepNone {
		return []byte{}, nil
	}
	if !s.Valid() {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a step name; the empty string decodes to StepNone
func (s *Step) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = StepNone
		return nil
	}
	step, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

// ParseStep maps a step name to its Step
func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if n == name {
			return step, nil
		}
	}
	return StepNone, fmt.Errorf("unknown step %q", name)
}

// StepFromPath maps the last segment of a lesson page path to its step.
// "/courses/go/learn/lesson/4/example" yields StepExample.
func StepFromPath(path string) (Step, bool) {
	path = strings.TrimRight(path, "/")
	segment := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		segment = path[i+1:]
	}
	step, err := ParseStep(segment)
	if err != nil {
		return StepNone, false
	}
	return step, true
}

// StepNames renders steps by name
func StepNames(steps []Step) []string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.String())
	}
	return names
}
