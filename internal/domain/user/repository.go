package user

import (
	"context"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// XPAward is the result of an atomic XP grant.
type XPAward struct {
	// OldTotal is the XP before the grant.
	OldTotal shared.XP

	// NewTotal is the XP after the grant.
	NewTotal shared.XP
}

// Repository defines persistence for the User aggregate. Implementations
// must make every method a single atomic commit point: either the whole
// mutation lands or none of it does.
type Repository interface {
	// GetByID returns a user by ID, or shared.ErrUserNotFound.
	GetByID(ctx context.Context, id shared.UserID) (*User, error)

	// Create inserts a fresh aggregate. Returns shared.ErrAlreadyExists if
	// the engine has already seen this user.
	Create(ctx context.Context, u *User) error

	// AwardXP atomically adds a non-negative amount to the user's XP and
	// returns the totals before and after. Implemented as an in-place
	// increment, never a read-modify-write.
	AwardXP(ctx context.Context, id shared.UserID, amount int) (XPAward, error)

	// ApplyReputationDelta atomically applies a signed reputation change
	// and returns the new reputation.
	ApplyReputationDelta(ctx context.Context, id shared.UserID, delta int) (int, error)

	// UpdateStreak persists a streak transition, guarded by the previously
	// observed last-login date. When a concurrent login already moved the
	// date, no row is written and shared.ErrAlreadyApplied is returned;
	// the caller re-reads and reports current state.
	UpdateStreak(ctx context.Context, id shared.UserID, s Streak, observedLastLogin time.Time) error
}
