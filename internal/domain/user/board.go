package user

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// BoardEntry is one row of the reputation board.
type BoardEntry struct {
	// UserID of the ranked user.
	UserID shared.UserID

	// Reputation score at ranking time.
	Reputation int

	// Rank position, 1-based.
	Rank int
}

// ReputationBoard is the ranked reputation index kept alongside the source
// of truth in Postgres. It is a cache: every write path treats failures as
// non-fatal, and a periodic rebuild repairs any drift.
type ReputationBoard interface {
	// IncrementScore applies a signed reputation delta to the board.
	IncrementScore(ctx context.Context, userID shared.UserID, delta int) error

	// Top returns a page of the board in descending reputation order.
	Top(ctx context.Context, limit, offset int) ([]BoardEntry, error)

	// Rank returns the user's 1-based position, or shared.ErrNotFound when
	// the user is not on the board.
	Rank(ctx context.Context, userID shared.UserID) (int, error)

	// Rebuild replaces the whole board with the given entries.
	Rebuild(ctx context.Context, entries []BoardEntry) error
}

// BoardReader lists users by reputation straight from the source of truth.
// Used to serve board queries when the cache is cold and to feed rebuilds.
type BoardReader interface {
	// ListTopByReputation returns a page of users ordered by reputation
	// descending, id ascending as the tie-break.
	ListTopByReputation(ctx context.Context, limit, offset int) ([]BoardEntry, error)
}
