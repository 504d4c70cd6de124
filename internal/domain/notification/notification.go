// Package notification defines the outbound notification port. The engine
// only decides that something is notification-worthy; rendering and delivery
// belong to the notification collaborator behind the Sender interface.
package notification

import (
	"context"
	"time"
)

// Kind classifies a notification for the downstream renderer.
type Kind string

const (
	// KindBadgeAwarded - a badge was granted.
	KindBadgeAwarded Kind = "badge_awarded"

	// KindAchievementCompleted - an achievement reached its target.
	KindAchievementCompleted Kind = "achievement_completed"

	// KindLevelUp - an XP grant crossed a level boundary.
	KindLevelUp Kind = "level_up"

	// KindStreakMilestone - the login streak hit a notable length.
	KindStreakMilestone Kind = "streak_milestone"

	// KindStreakBroken - missed days reset the streak.
	KindStreakBroken Kind = "streak_broken"
)

// IsValid checks that the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindBadgeAwarded, KindAchievementCompleted, KindLevelUp,
		KindStreakMilestone, KindStreakBroken:
		return true
	default:
		return false
	}
}

// Notification is one outbound message. Data carries kind-specific fields
// the renderer needs (slug, level, streak length).
type Notification struct {
	// UserID of the recipient.
	UserID string

	// Kind of the notification.
	Kind Kind

	// Data - kind-specific payload.
	Data map[string]interface{}

	// CreatedAt - when the engine produced it.
	CreatedAt time.Time
}

// New creates a notification stamped with the current time.
func New(userID string, kind Kind, data map[string]interface{}) Notification {
	return Notification{
		UserID:    userID,
		Kind:      kind,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}

// Sender delivers notifications. Delivery failures are never allowed to
// fail the progression write that triggered them.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
