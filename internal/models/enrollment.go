package models

import "time"

// Enrollment links a user to a course
type Enrollment struct {
	ID                 int        `json:"id"`
	UserID             int        `json:"userId"`
	CourseID           int        `json:"courseId"`
	ProgressPercentage int        `json:"progressPercentage"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

// ClaimKind distinguishes the claimed sets kept per enrollment
type ClaimKind string

const (
	ClaimKindUnit        ClaimKind = "unit"
	ClaimKindUnitContent ClaimKind = "unit_content"
)

// Claims holds the claimed unit ids and unit-content groups of an enrollment
type Claims struct {
	Units        map[int]bool    `json:"units"`
	UnitContents map[string]bool `json:"unitContents"`
}
