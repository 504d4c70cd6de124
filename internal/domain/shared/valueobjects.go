// Package shared contains common domain types, errors, events, and value
// objects that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier (UUID format). The engine never
// issues these itself - they arrive from the authentication collaborator.
type UserID string

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the user ID is a valid UUID.
func (u UserID) IsValid() bool {
	return uuidRegex.MatchString(string(u))
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// IsEmpty checks if the ID is empty.
func (u UserID) IsEmpty() bool {
	return u == ""
}

// NewUserID creates a new UserID with validation.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.ToLower(strings.TrimSpace(id)))
	if !uid.IsValid() {
		return "", ErrInvalidUserID
	}
	return uid, nil
}

// TargetID identifies a question or answer. Same UUID format as UserID but
// owned by the content collaborator.
type TargetID string

// IsValid checks if the target ID is a valid UUID.
func (t TargetID) IsValid() bool {
	return uuidRegex.MatchString(string(t))
}

// String returns the string representation.
func (t TargetID) String() string {
	return string(t)
}

// ═══════════════════════════════════════════════════════════════════════════
// Target Type
// ═══════════════════════════════════════════════════════════════════════════

// TargetType discriminates what a vote refers to.
type TargetType string

const (
	// TargetQuestion - the vote is on a question.
	TargetQuestion TargetType = "question"
	// TargetAnswer - the vote is on an answer.
	TargetAnswer TargetType = "answer"
)

// IsValid checks that the target type is known.
func (t TargetType) IsValid() bool {
	return t == TargetQuestion || t == TargetAnswer
}

// String returns the string representation.
func (t TargetType) String() string {
	return string(t)
}

// ═══════════════════════════════════════════════════════════════════════════
// Vote Value
// ═══════════════════════════════════════════════════════════════════════════

// VoteValue is the sign of a single vote: +1 or -1.
type VoteValue int

const (
	// Upvote adds one to the target's counter.
	Upvote VoteValue = 1
	// Downvote subtracts one from the target's counter.
	Downvote VoteValue = -1
)

// IsValid checks that the value is exactly +1 or -1.
func (v VoteValue) IsValid() bool {
	return v == Upvote || v == Downvote
}

// Int returns the underlying int value.
func (v VoteValue) Int() int {
	return int(v)
}

// ═══════════════════════════════════════════════════════════════════════════
// XP Value Object
// ═══════════════════════════════════════════════════════════════════════════

// XP represents cumulative experience points. Monotonically non-decreasing.
type XP int

// IsValid checks that the XP value is non-negative.
func (x XP) IsValid() bool {
	return x >= 0
}

// Int returns the underlying int value.
func (x XP) Int() int {
	return int(x)
}

// Add adds an amount of XP, flooring at zero.
func (x XP) Add(amount int) XP {
	result := XP(int(x) + amount)
	if result < 0 {
		return 0
	}
	return result
}

// ═══════════════════════════════════════════════════════════════════════════
// Metric
// ═══════════════════════════════════════════════════════════════════════════

// Metric names a countable user statistic that achievements track, e.g.
// "questions_authored", "answers_accepted", "votes_cast".
type Metric string

// IsValid checks the metric name format (snake_case, non-empty).
var metricRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,49}$`)

func (m Metric) IsValid() bool {
	return metricRegex.MatchString(string(m))
}

// String returns the string representation.
func (m Metric) String() string {
	return string(m)
}
