// Package sessions keeps lesson player sessions between requests.
// Sessions are a cache: losing one only costs a rebuild from the database.
package sessions

import "errors"

var (
	// ErrNotFound is returned for unknown or expired sessions
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when a session changed since it was read
	ErrConflict = errors.New("session version conflict")
	// ErrExists is returned when creating a session under a taken id
	ErrExists = errors.New("session already exists")
)
