// Package query contains read operations (CQRS - Queries). Queries never
// modify state; each one is a self-contained use case with its own
// request/response types.
package query

import (
	"context"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER STATS QUERY
// The single aggregated read surface: reputation, xp, derived level, streak,
// and award counts in one response.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserStatsQuery identifies the user to read.
type GetUserStatsQuery struct {
	UserID shared.UserID
}

// Validate validates the query parameters.
func (q GetUserStatsQuery) Validate() error {
	if !q.UserID.IsValid() {
		return shared.ErrInvalidUserID
	}
	return nil
}

// UserStatsDTO is the aggregated progression snapshot for one user.
type UserStatsDTO struct {
	// UserID of the user.
	UserID string `json:"user_id"`

	// Reputation is the signed vote-derived score.
	Reputation int `json:"reputation"`

	// XP is the cumulative experience total.
	XP int `json:"xp"`

	// Level derived from XP.
	Level int `json:"level"`

	// LevelProgress is XP earned within the current level.
	LevelProgress int `json:"level_progress"`

	// LevelNeeded is the current level's full width in XP.
	LevelNeeded int `json:"level_needed"`

	// CurrentStreak in consecutive login days.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak ever reached.
	LongestStreak int `json:"longest_streak"`

	// LastLoginDate, nil when the user has never logged in.
	LastLoginDate *time.Time `json:"last_login_date,omitempty"`

	// BadgeCount held.
	BadgeCount int `json:"badge_count"`

	// AchievementCount completed.
	AchievementCount int `json:"achievement_count"`
}

// StatsCache fronts the stats read path with a short-TTL snapshot.
// Optional; a nil cache just means every read hits the repositories.
type StatsCache interface {
	// GetStats returns the cached snapshot, or shared.ErrNotFound on a miss.
	GetStats(ctx context.Context, userID shared.UserID) (*UserStatsDTO, error)

	// SetStats stores a snapshot.
	SetStats(ctx context.Context, userID shared.UserID, dto *UserStatsDTO) error
}

// GetUserStatsHandler handles GetUserStatsQuery.
type GetUserStatsHandler struct {
	users        user.Repository
	badges       progression.BadgeRepository
	achievements progression.AchievementRepository
	cache        StatsCache
}

// NewGetUserStatsHandler creates a new GetUserStatsHandler. cache may be nil.
func NewGetUserStatsHandler(
	users user.Repository,
	badges progression.BadgeRepository,
	achievements progression.AchievementRepository,
	cache StatsCache,
) *GetUserStatsHandler {
	return &GetUserStatsHandler{
		users:        users,
		badges:       badges,
		achievements: achievements,
		cache:        cache,
	}
}

// Handle executes the query. A user the engine has never seen gets a
// zero-valued snapshot at level 1, matching what lazy creation would
// produce; it is not an error.
func (h *GetUserStatsHandler) Handle(ctx context.Context, q GetUserStatsQuery) (*UserStatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if dto, err := h.cache.GetStats(ctx, q.UserID); err == nil {
			return dto, nil
		}
	}

	dto := &UserStatsDTO{
		UserID: q.UserID.String(),
		Level:  1,
	}

	u, err := h.users.GetByID(ctx, q.UserID)
	switch {
	case err == nil:
		info := progression.InfoFor(u.XP)
		dto.Reputation = u.Reputation
		dto.XP = u.XP.Int()
		dto.Level = info.Level
		dto.LevelProgress = info.Progress
		dto.LevelNeeded = info.Needed
		dto.CurrentStreak = u.Streak.Current
		dto.LongestStreak = u.Streak.Longest
		if !u.Streak.LastLoginDate.IsZero() {
			d := u.Streak.LastLoginDate
			dto.LastLoginDate = &d
		}
	case shared.IsNotFound(err):
		info := progression.InfoFor(0)
		dto.LevelNeeded = info.Needed
	default:
		return nil, err
	}

	badgeCount, err := h.badges.CountForUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	dto.BadgeCount = badgeCount

	achievementCount, err := h.achievements.CountCompleted(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	dto.AchievementCount = achievementCount

	if h.cache != nil {
		// Best effort; a failed cache write never fails the read.
		_ = h.cache.SetStats(ctx, q.UserID, dto)
	}

	return dto, nil
}
