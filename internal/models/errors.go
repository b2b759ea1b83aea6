package models

import "errors"

var (
	// ErrNotFound is returned when a course, lesson or unit does not resolve
	ErrNotFound = errors.New("not found")
	// ErrNotEnrolled is returned when the user is not enrolled in the course
	ErrNotEnrolled = errors.New("not enrolled in course")
	// ErrAccessDenied is returned when a session belongs to another user
	ErrAccessDenied = errors.New("access denied")
	// ErrAlreadyClaimed is returned when a reward was claimed before
	ErrAlreadyClaimed = errors.New("reward already claimed")
	// ErrUnitIncomplete is returned when claiming a unit that is not complete
	ErrUnitIncomplete = errors.New("unit is not complete")
	// ErrInvalidAnswers is returned when a quiz submission references unknown questions or options
	ErrInvalidAnswers = errors.New("invalid quiz answers")
)
