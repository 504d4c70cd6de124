package eventhandler

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/application/command"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/notification"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON STREAK UPDATED HANDLER
// A login that moved the streak machine advances the daily_login task and
// feeds the streak-type achievements. A broken streak additionally goes
// out as a notification.
// ══════════════════════════════════════════════════════════════════════════════

// OnStreakUpdatedHandler reacts to shared.StreakUpdatedEvent.
type OnStreakUpdatedHandler struct {
	advanceTask  *command.AdvanceTaskHandler
	achievements progression.AchievementRepository
	catalog      *progression.Catalog
	bus          shared.EventPublisher
	sender       notification.Sender
	log          *logger.Logger
}

// NewOnStreakUpdatedHandler creates a new OnStreakUpdatedHandler.
func NewOnStreakUpdatedHandler(
	advanceTask *command.AdvanceTaskHandler,
	achievements progression.AchievementRepository,
	catalog *progression.Catalog,
	bus shared.EventPublisher,
	sender notification.Sender,
	log *logger.Logger,
) *OnStreakUpdatedHandler {
	return &OnStreakUpdatedHandler{
		advanceTask:  advanceTask,
		achievements: achievements,
		catalog:      catalog,
		bus:          bus,
		sender:       sender,
		log:          log.With(logger.Component("on_streak_updated")),
	}
}

// Handle implements shared.EventHandler. Subscribed to both streak_updated
// and streak_broken; the event carries which one happened.
func (h *OnStreakUpdatedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.StreakUpdatedEvent)
	if !ok {
		h.log.Warn("received unexpected event", logger.String("event_type", string(event.EventType())))
		return nil
	}

	ctx := context.Background()
	userID := shared.UserID(e.UserID)

	if h.advanceTask != nil {
		_, err := h.advanceTask.Handle(ctx, command.AdvanceTaskCommand{
			UserID:    userID,
			TaskType:  progression.TaskDailyLogin,
			Increment: 1,
		})
		if err != nil && !shared.IsNotFound(err) {
			h.log.Warn("failed to advance login task",
				logger.UserID(e.UserID), logger.Err(err))
		}
	}

	h.applyStreakAchievements(ctx, userID, e.CurrentStreak)

	if e.Broken && h.sender != nil {
		n := notification.New(e.UserID, notification.KindStreakBroken, map[string]interface{}{
			"longest_streak": e.LongestStreak,
		})
		if err := h.sender.Send(ctx, n); err != nil {
			h.log.Warn("failed to send streak notification",
				logger.UserID(e.UserID), logger.Err(err))
		}
	}

	return nil
}

// applyStreakAchievements feeds the current streak length into every
// streak-type achievement. Progress is monotonic in the store, so a broken
// streak never winds completed achievements back.
func (h *OnStreakUpdatedHandler) applyStreakAchievements(ctx context.Context, userID shared.UserID, current int) {
	if h.achievements == nil || h.catalog == nil {
		return
	}

	for _, a := range h.catalog.StreakAchievements() {
		_, grant, err := h.achievements.ApplyMetric(ctx, userID, a, current)
		if err != nil {
			if shared.IsConflict(err) {
				continue
			}
			h.log.Warn("failed to apply streak achievement",
				logger.UserID(userID.String()),
				logger.Achievement(a.Slug),
				logger.Err(err))
			continue
		}
		if grant == nil {
			continue
		}

		h.log.Info("streak achievement completed",
			logger.UserID(userID.String()),
			logger.Achievement(a.Slug),
			logger.XPAmount(grant.Amount))

		if h.bus == nil {
			continue
		}
		if err := h.bus.Publish(shared.NewAchievementCompletedEvent(userID.String(), a.Slug, grant.Amount)); err != nil {
			h.log.Warn("failed to publish achievement event", logger.Err(err))
		}
		if grant.Amount == 0 {
			continue
		}
		if err := h.bus.Publish(shared.NewXPAwardedEvent(userID.String(), grant.Amount, grant.NewTotal, "achievement:"+a.Slug)); err != nil {
			h.log.Warn("failed to publish xp event", logger.Err(err))
		}
		oldLevel := progression.Level(shared.XP(grant.NewTotal - grant.Amount))
		newLevel := progression.Level(shared.XP(grant.NewTotal))
		if newLevel > oldLevel {
			if err := h.bus.Publish(shared.NewLevelUpEvent(userID.String(), oldLevel, newLevel)); err != nil {
				h.log.Warn("failed to publish level-up event", logger.Err(err))
			}
		}
	}
}
