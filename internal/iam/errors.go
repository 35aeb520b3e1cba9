package iam

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the id does not resolve to an entity.
	ErrNotFound = errors.New("iam: not found")
	// ErrConflict indicates a uniqueness violation in the store.
	ErrConflict = errors.New("iam: already exists")
	// ErrUnauthorized indicates a missing or unverifiable caller identity.
	ErrUnauthorized = errors.New("iam: unauthorized")
)

// ValidationError reports a bad field value. Always attributable to a single
// input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid constructs a ValidationError for the given field.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// PermissionError reports an authenticated caller lacking a required
// permission. The message names the acting username.
type PermissionError struct {
	Username   string
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("User %s doesn't have %q permission", e.Username, e.Permission)
}
