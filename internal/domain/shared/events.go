// Package shared contains common domain types, errors, events, and value
// objects that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Award events are what the notification collaborator
// consumes; it renders them, the engine only emits them.
const (
	// Vote events
	EventVoteApplied EventType = "vote.applied"

	// Progression events
	EventBadgeAwarded         EventType = "progression.badge_awarded"
	EventAchievementCompleted EventType = "progression.achievement_completed"
	EventTaskCompleted        EventType = "progression.task_completed"
	EventXPAwarded            EventType = "progression.xp_awarded"
	EventLevelUp              EventType = "progression.level_up"
	EventStreakUpdated        EventType = "progression.streak_updated"
	EventStreakBroken         EventType = "progression.streak_broken"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Vote Events
// ═══════════════════════════════════════════════════════════════════════════

// VoteAppliedEvent is emitted after the vote ledger commits a cast.
type VoteAppliedEvent struct {
	BaseEvent
	VoterID         string `json:"voter_id"`
	AuthorID        string `json:"author_id"`
	TargetType      string `json:"target_type"`
	TargetID        string `json:"target_id"`
	Value           int    `json:"value"`
	VoteDelta       int    `json:"vote_delta"`
	ReputationDelta int    `json:"reputation_delta"`
}

// Payload implements Event interface.
func (e VoteAppliedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"voter_id":         e.VoterID,
		"author_id":        e.AuthorID,
		"target_type":      e.TargetType,
		"target_id":        e.TargetID,
		"value":            e.Value,
		"vote_delta":       e.VoteDelta,
		"reputation_delta": e.ReputationDelta,
	}
}

// NewVoteAppliedEvent creates a new VoteAppliedEvent.
func NewVoteAppliedEvent(voterID, authorID string, targetType TargetType, targetID TargetID, value VoteValue, voteDelta, reputationDelta int) VoteAppliedEvent {
	return VoteAppliedEvent{
		BaseEvent:       NewBaseEvent(EventVoteApplied, string(targetID)),
		VoterID:         voterID,
		AuthorID:        authorID,
		TargetType:      string(targetType),
		TargetID:        string(targetID),
		Value:           value.Int(),
		VoteDelta:       voteDelta,
		ReputationDelta: reputationDelta,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progression Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeAwardedEvent is emitted exactly once per (user, badge).
type BadgeAwardedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	BadgeSlug string `json:"badge_slug"`
	Tier      string `json:"tier"`
}

// Payload implements Event interface.
func (e BadgeAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"badge_slug": e.BadgeSlug,
		"tier":       e.Tier,
	}
}

// NewBadgeAwardedEvent creates a new BadgeAwardedEvent.
func NewBadgeAwardedEvent(userID, badgeSlug, tier string) BadgeAwardedEvent {
	return BadgeAwardedEvent{
		BaseEvent: NewBaseEvent(EventBadgeAwarded, userID),
		UserID:    userID,
		BadgeSlug: badgeSlug,
		Tier:      tier,
	}
}

// AchievementCompletedEvent is emitted when a progress counter reaches its
// target. Fires once: completion is a one-way flip.
type AchievementCompletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Slug     string `json:"slug"`
	XPReward int    `json:"xp_reward"`
}

// Payload implements Event interface.
func (e AchievementCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"slug":      e.Slug,
		"xp_reward": e.XPReward,
	}
}

// NewAchievementCompletedEvent creates a new AchievementCompletedEvent.
func NewAchievementCompletedEvent(userID, slug string, xpReward int) AchievementCompletedEvent {
	return AchievementCompletedEvent{
		BaseEvent: NewBaseEvent(EventAchievementCompleted, userID),
		UserID:    userID,
		Slug:      slug,
		XPReward:  xpReward,
	}
}

// TaskCompletedEvent is emitted when a daily task reaches its target.
type TaskCompletedEvent struct {
	BaseEvent
	UserID   string    `json:"user_id"`
	TaskType string    `json:"task_type"`
	Day      time.Time `json:"day"`
	XPReward int       `json:"xp_reward"`
}

// Payload implements Event interface.
func (e TaskCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"task_type": e.TaskType,
		"day":       e.Day.Format("2006-01-02"),
		"xp_reward": e.XPReward,
	}
}

// NewTaskCompletedEvent creates a new TaskCompletedEvent.
func NewTaskCompletedEvent(userID, taskType string, day time.Time, xpReward int) TaskCompletedEvent {
	return TaskCompletedEvent{
		BaseEvent: NewBaseEvent(EventTaskCompleted, userID),
		UserID:    userID,
		TaskType:  taskType,
		Day:       day,
		XPReward:  xpReward,
	}
}

// XPAwardedEvent is emitted whenever XP is granted.
type XPAwardedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Amount   int    `json:"amount"`
	NewTotal int    `json:"new_total"`
	Reason   string `json:"reason"`
}

// Payload implements Event interface.
func (e XPAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"amount":    e.Amount,
		"new_total": e.NewTotal,
		"reason":    e.Reason,
	}
}

// NewXPAwardedEvent creates a new XPAwardedEvent.
func NewXPAwardedEvent(userID string, amount, newTotal int, reason string) XPAwardedEvent {
	return XPAwardedEvent{
		BaseEvent: NewBaseEvent(EventXPAwarded, userID),
		UserID:    userID,
		Amount:    amount,
		NewTotal:  newTotal,
		Reason:    reason,
	}
}

// LevelUpEvent is emitted when an XP award crosses a level boundary.
type LevelUpEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID string, oldLevel, newLevel int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, userID),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
	}
}

// StreakUpdatedEvent is emitted after a login transitions the streak machine.
type StreakUpdatedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Extended      bool   `json:"extended"`
	Broken        bool   `json:"broken"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"current_streak": e.CurrentStreak,
		"longest_streak": e.LongestStreak,
		"extended":       e.Extended,
		"broken":         e.Broken,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(userID string, current, longest int, extended, broken bool) StreakUpdatedEvent {
	eventType := EventStreakUpdated
	if broken {
		eventType = EventStreakBroken
	}
	return StreakUpdatedEvent{
		BaseEvent:     NewBaseEvent(eventType, userID),
		UserID:        userID,
		CurrentStreak: current,
		LongestStreak: longest,
		Extended:      extended,
		Broken:        broken,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Interfaces
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
