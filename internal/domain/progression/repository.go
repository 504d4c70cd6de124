package progression

import (
	"context"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// XPGrant reports an XP reward issued inside a repository transaction, so
// callers can emit xp/level events without a second read.
type XPGrant struct {
	// Amount granted.
	Amount int

	// NewTotal is the user's XP after the grant.
	NewTotal int
}

// BadgeRepository persists badge awards. The (user, badge) unique index is
// the concurrency guard: two concurrent evaluations race to "first writer
// wins, second is a no-op" instead of double-awarding.
type BadgeRepository interface {
	// ListBadges loads the badge catalog.
	ListBadges(ctx context.Context) ([]Badge, error)

	// ListUserBadgeIDs returns the IDs of badges the user already holds.
	ListUserBadgeIDs(ctx context.Context, userID shared.UserID) ([]string, error)

	// Award inserts the append-only award record. Returns
	// shared.ErrAlreadyApplied when the pair already exists.
	Award(ctx context.Context, userID shared.UserID, badgeID string) error

	// CountForUser returns how many badges the user holds.
	CountForUser(ctx context.Context, userID shared.UserID) (int, error)
}

// AchievementRepository persists achievement progress. ApplyMetric is one
// atomic commit: the progress upsert, the completion flip, and the XP grant
// land together or not at all, so the reward is granted exactly once no
// matter how often or how concurrently it is called.
type AchievementRepository interface {
	// ListAchievements loads the achievement catalog.
	ListAchievements(ctx context.Context) ([]Achievement, error)

	// Get returns the progress record for a pair, or nil when none exists.
	Get(ctx context.Context, userID shared.UserID, achievementID string) (*UserAchievement, error)

	// ApplyMetric upserts progress for one achievement and, if the target
	// is reached for the first time, flips completed and grants the XP
	// reward to the user - all in one transaction. Returns the resulting
	// record and a non-nil grant when this call completed it.
	ApplyMetric(ctx context.Context, userID shared.UserID, a Achievement, value int) (*UserAchievement, *XPGrant, error)

	// CountCompleted returns how many achievements the user completed.
	CountCompleted(ctx context.Context, userID shared.UserID) (int, error)
}

// TaskProgressRepository persists daily task progress. Advance is one
// atomic commit with the same exactly-once XP guarantee; the row key
// (user, task, day) is derived deterministically from the clock, never by
// a reset job.
type TaskProgressRepository interface {
	// ListTasks loads the daily task catalog.
	ListTasks(ctx context.Context) ([]DailyTask, error)

	// Advance upserts the day's row, adds the increment and, on first
	// reaching the target, marks it completed and grants the XP reward in
	// the same transaction. Returns the resulting row and a non-nil grant
	// when this call completed the task.
	Advance(ctx context.Context, userID shared.UserID, t DailyTask, day time.Time, increment int) (*UserTaskProgress, *XPGrant, error)

	// GetDay returns the row for a (user, task, day), or nil when the day
	// has seen no relevant event yet.
	GetDay(ctx context.Context, userID shared.UserID, taskID string, day time.Time) (*UserTaskProgress, error)
}
