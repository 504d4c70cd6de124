// Package vote contains the vote ledger domain: one live record per
// (voter, target) pair, the toggle/switch resolution rules, and the
// reputation-delta formula. The ledger is the only source of truth for
// "who voted what on what"; cached counters are derived from it.
package vote

import (
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// Vote is a single live ledger record. At most one exists per
// (voter, targetType, targetID); switching sign mutates it in place and
// repeating the same value deletes it.
type Vote struct {
	// ID - ledger row identifier.
	ID string

	// VoterID - who cast the vote.
	VoterID shared.UserID

	// TargetType - question or answer.
	TargetType shared.TargetType

	// TargetID - the voted entity.
	TargetID shared.TargetID

	// Value - +1 or -1.
	Value shared.VoteValue

	// CreatedAt - when the record was first created.
	CreatedAt time.Time

	// UpdatedAt - last sign switch.
	UpdatedAt time.Time
}

// Target is the engine's view of a question or answer: the immutable author
// and the cached vote counter the aggregator maintains. The counter must
// always equal the signed sum of live ledger rows for the target.
type Target struct {
	// ID - target identifier.
	ID shared.TargetID

	// Type - question or answer.
	Type shared.TargetType

	// AuthorID - owner of the content. Immutable.
	AuthorID shared.UserID

	// Votes - cached signed vote total.
	Votes int
}

// Action describes what a cast does to the ledger row.
type Action string

const (
	// ActionCreate - no prior vote, a new row is inserted.
	ActionCreate Action = "create"

	// ActionRemove - same value cast again, the row is deleted (un-vote).
	ActionRemove Action = "remove"

	// ActionSwitch - opposite value cast, the row's sign flips in place.
	ActionSwitch Action = "switch"
)

// Outcome is the resolved effect of one cast: the ledger action plus the
// deltas to apply to the target counter and the author's reputation.
type Outcome struct {
	// Action taken on the ledger row.
	Action Action

	// VoteDelta is the signed change to the target's vote counter.
	VoteDelta int

	// ReputationDelta is the signed change to the author's reputation.
	ReputationDelta int
}

// Reputation multipliers. The multiplier is keyed on the sign of the
// REQUESTED value, not on the sign of the resulting delta. Un-voting a
// downvote therefore moves the author's reputation further negative
// instead of recovering it. That asymmetry is known upstream behavior and
// is reproduced here unchanged for compatibility; do not "fix" the sign.
const (
	upvoteMultiplier   = 5
	downvoteMultiplier = -2
)

// Resolve computes the outcome of casting value when existing is the live
// vote for the pair (nil when there is none).
func Resolve(existing *Vote, value shared.VoteValue) Outcome {
	var action Action
	var voteDelta int

	switch {
	case existing == nil:
		action = ActionCreate
		voteDelta = value.Int()
	case existing.Value == value:
		action = ActionRemove
		voteDelta = -value.Int()
	default:
		action = ActionSwitch
		voteDelta = 2 * value.Int()
	}

	multiplier := downvoteMultiplier
	if value > 0 {
		multiplier = upvoteMultiplier
	}

	return Outcome{
		Action:          action,
		VoteDelta:       voteDelta,
		ReputationDelta: voteDelta * multiplier,
	}
}

// Validate checks a cast's inputs before any mutation.
func Validate(voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID, value shared.VoteValue) error {
	if voterID.IsEmpty() || !voterID.IsValid() {
		return shared.ErrInvalidUserID
	}
	if !targetType.IsValid() || !targetID.IsValid() {
		return shared.ErrInvalidTarget
	}
	if !value.IsValid() {
		return shared.ErrInvalidVoteValue
	}
	return nil
}
