// Package shared contains common domain types, errors, events, and value
// objects used across all domain packages. This package has zero external
// dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")

	// SelfAction errors: acting on one's own content.
	ErrSelfAction = errors.New("cannot act on own content")

	// Conflict errors: a concurrent writer got there first. Callers treat
	// this as "already applied", not as a user-facing failure.
	ErrAlreadyApplied = errors.New("already applied")

	// State errors
	ErrInvalidState = errors.New("invalid state")

	// Concurrency errors
	ErrSerializationFailure = errors.New("serialization failure")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "vote", "badge", "task"
	Op      string // Operation that failed, e.g., "CastVote", "Advance"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound  = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrInvalidUserID = NewDomainError("user", "Validate", ErrInvalidID, "invalid user ID")
)

// Vote domain errors
var (
	ErrTargetNotFound   = NewDomainError("vote", "CastVote", ErrNotFound, "vote target not found")
	ErrSelfVote         = NewDomainError("vote", "CastVote", ErrSelfAction, "cannot vote on own content")
	ErrInvalidVoteValue = NewDomainError("vote", "Validate", ErrInvalidInput, "vote value must be +1 or -1")
	ErrInvalidTarget    = NewDomainError("vote", "Validate", ErrInvalidInput, "invalid vote target")
)

// Progression domain errors
var (
	ErrBadgeNotFound       = NewDomainError("badge", "Find", ErrNotFound, "badge not found")
	ErrBadgeAlreadyAwarded = NewDomainError("badge", "Award", ErrAlreadyApplied, "badge already awarded")
	ErrAchievementNotFound = NewDomainError("achievement", "Find", ErrNotFound, "achievement not found")
	ErrTaskNotFound        = NewDomainError("task", "Find", ErrNotFound, "daily task not found")
	ErrNegativeXPAward     = NewDomainError("xp", "Award", ErrNegativeValue, "xp award cannot be negative")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSelfAction checks if the error is a self-action rejection.
func IsSelfAction(err error) bool {
	return errors.Is(err, ErrSelfAction)
}

// IsConflict checks if the error means a concurrent writer already applied
// the same change. Callers should re-read state instead of failing.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyApplied) || errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRetryable checks if the operation can safely be re-run.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSerializationFailure)
}
