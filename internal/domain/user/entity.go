// Package user contains the User aggregate of the progression engine.
// The engine owns reputation, xp and streak; profile fields (username,
// avatar, bio) belong to other subsystems and never appear here.
// This package has no external dependencies.
package user

import (
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/timeutil"
)

// Streak tracks consecutive-day logins. LastLoginDate is truncated to
// server-local midnight; a zero value means the user has never logged in.
type Streak struct {
	// Current is the length of the running streak in days.
	Current int

	// Longest is the best streak ever reached. Never decreases.
	Longest int

	// LastLoginDate is the calendar day of the most recent login.
	LastLoginDate time.Time
}

// User is the aggregate every progression mechanism mutates. All mutations
// go through the methods below or through atomic repository operations -
// there are no raw field setters on the write paths.
type User struct {
	// ID - user identifier issued by the authentication collaborator.
	ID shared.UserID

	// Reputation - signed vote-derived score. No floor.
	Reputation int

	// XP - cumulative experience points. Monotonically non-decreasing.
	XP shared.XP

	// Streak - login streak state.
	Streak Streak

	// CreatedAt - when the engine first saw this user.
	CreatedAt time.Time

	// UpdatedAt - last mutation time.
	UpdatedAt time.Time
}

// New creates a fresh User aggregate for the given id.
func New(id shared.UserID) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddXP adds a non-negative amount of XP. XP never decreases.
func (u *User) AddXP(amount int) error {
	if amount < 0 {
		return shared.ErrNegativeXPAward
	}
	u.XP = u.XP.Add(amount)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyReputationDelta applies a signed reputation change. Reputation has
// no floor: the counter-intuitive negative drift from un-voting a downvote
// is preserved deliberately (see the vote package).
func (u *User) ApplyReputationDelta(delta int) {
	u.Reputation += delta
	u.UpdatedAt = time.Now().UTC()
}

// LoginResult describes what a login did to the streak machine.
type LoginResult struct {
	// CurrentStreak after the transition.
	CurrentStreak int

	// LongestStreak after the transition.
	LongestStreak int

	// Extended is true when the streak grew by one day.
	Extended bool

	// Broken is true when missed days reset the streak to 1.
	Broken bool

	// Changed is false for a repeated login on the same calendar day.
	Changed bool
}

// RecordLogin transitions the streak state machine for a login at the given
// time. Both "today" and the stored date are truncated to server-local
// midnight, and the difference is counted in whole days, so wall-clock hours
// and DST shifts cannot split or merge a day.
func (u *User) RecordLogin(now time.Time) LoginResult {
	today := timeutil.DayFloor(now)

	// First login ever.
	if u.Streak.LastLoginDate.IsZero() {
		u.Streak.Current = 1
		u.Streak.Longest = 1
		u.Streak.LastLoginDate = today
		u.UpdatedAt = time.Now().UTC()
		return LoginResult{CurrentStreak: 1, LongestStreak: 1, Extended: true, Changed: true}
	}

	daysSince := timeutil.DaysBetween(u.Streak.LastLoginDate, today)

	switch {
	case daysSince == 0:
		// Same-day re-entry: no state change.
		return LoginResult{
			CurrentStreak: u.Streak.Current,
			LongestStreak: u.Streak.Longest,
		}
	case daysSince == 1:
		u.Streak.Current++
		if u.Streak.Current > u.Streak.Longest {
			u.Streak.Longest = u.Streak.Current
		}
		u.Streak.LastLoginDate = today
		u.UpdatedAt = time.Now().UTC()
		return LoginResult{
			CurrentStreak: u.Streak.Current,
			LongestStreak: u.Streak.Longest,
			Extended:      true,
			Changed:       true,
		}
	default:
		// Missed at least one day: streak restarts, longest is untouched.
		u.Streak.Current = 1
		u.Streak.LastLoginDate = today
		u.UpdatedAt = time.Now().UTC()
		return LoginResult{
			CurrentStreak: 1,
			LongestStreak: u.Streak.Longest,
			Broken:        true,
			Changed:       true,
		}
	}
}
