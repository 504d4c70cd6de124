package vote

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// Applied is the committed result of one cast.
type Applied struct {
	// Outcome that was applied.
	Outcome Outcome

	// AuthorID of the target, for event emission.
	AuthorID shared.UserID

	// TargetVotes is the target's counter after the commit.
	TargetVotes int

	// AuthorReputation is the author's reputation after the commit.
	AuthorReputation int
}

// Ledger persists votes. Apply performs the full three-part mutation of one
// cast - ledger row, target counter, author reputation - as a single atomic
// unit. Two concurrent casts on the same target must serialize; a lost
// update is a correctness bug, not a performance bug.
type Ledger interface {
	// Apply resolves and commits one cast. Errors:
	// shared.ErrTargetNotFound, shared.ErrSelfVote, validation errors.
	Apply(ctx context.Context, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID, value shared.VoteValue) (Applied, error)

	// Get returns the live vote for a pair, or nil when there is none.
	Get(ctx context.Context, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID) (*Vote, error)

	// SumForTarget returns the signed sum of live ledger rows for a target.
	// Used by invariant checks and the rebuild job, never by the hot path.
	SumForTarget(ctx context.Context, targetType shared.TargetType, targetID shared.TargetID) (int, error)
}

// ContentReader is the interface the engine consumes from content storage.
// The engine reads the target's author and counts through it but owns
// neither questions nor answers.
type ContentReader interface {
	// GetTarget returns the author and cached vote counter of a target,
	// or shared.ErrTargetNotFound.
	GetTarget(ctx context.Context, targetType shared.TargetType, targetID shared.TargetID) (*Target, error)

	// GetCount returns a countable user statistic, e.g. questions
	// authored, accepted answers, best votes on a single authored post.
	GetCount(ctx context.Context, userID shared.UserID, metric shared.Metric) (int, error)
}
