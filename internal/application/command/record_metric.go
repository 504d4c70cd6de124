package command

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD METRIC COMMAND
// Feeds an absolute statistic into every count/threshold achievement that
// tracks it. Completion is a one-way flip with an exactly-once XP grant
// inside the repository transaction.
// ══════════════════════════════════════════════════════════════════════════════

// RecordMetricCommand carries one observed metric value.
type RecordMetricCommand struct {
	// UserID the statistic belongs to.
	UserID shared.UserID

	// Metric name, e.g. "questions_authored".
	Metric shared.Metric

	// Value is the current absolute value of the statistic.
	Value int
}

// Validate validates the command.
func (c RecordMetricCommand) Validate() error {
	if !c.UserID.IsValid() {
		return shared.ErrInvalidUserID
	}
	if !c.Metric.IsValid() {
		return shared.NewDomainError("achievement", "RecordMetric", shared.ErrInvalidInput, "invalid metric name")
	}
	if c.Value < 0 {
		return shared.NewDomainError("achievement", "RecordMetric", shared.ErrNegativeValue, "metric value cannot be negative")
	}
	return nil
}

// CompletedAchievement describes an achievement this call completed.
type CompletedAchievement struct {
	AchievementID string
	Slug          string
	Name          string
	XPAwarded     int
}

// RecordMetricHandler handles RecordMetricCommand.
type RecordMetricHandler struct {
	achievements progression.AchievementRepository
	catalog      *progression.Catalog
	bus          shared.EventPublisher
	log          *logger.Logger
}

// NewRecordMetricHandler creates a new RecordMetricHandler.
func NewRecordMetricHandler(
	achievements progression.AchievementRepository,
	catalog *progression.Catalog,
	bus shared.EventPublisher,
	log *logger.Logger,
) *RecordMetricHandler {
	return &RecordMetricHandler{
		achievements: achievements,
		catalog:      catalog,
		bus:          bus,
		log:          log.With(logger.Component("record_metric")),
	}
}

// Handle applies the metric to each tracking achievement. Returns the first
// achievement completed by this call, or nil when none completed. Already
// completed achievements are frozen no-ops.
func (h *RecordMetricHandler) Handle(ctx context.Context, cmd RecordMetricCommand) (*CompletedAchievement, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var first *CompletedAchievement
	for _, a := range h.catalog.AchievementsForMetric(cmd.Metric) {
		_, grant, err := h.achievements.ApplyMetric(ctx, cmd.UserID, a, cmd.Value)
		if err != nil {
			if shared.IsConflict(err) {
				// A concurrent call completed it first; already applied.
				continue
			}
			return first, err
		}
		if grant == nil {
			continue
		}

		h.log.Info("achievement completed",
			logger.UserID(cmd.UserID.String()),
			logger.Achievement(a.Slug),
			logger.XPAmount(grant.Amount),
		)

		h.publishCompletion(cmd.UserID, a, grant)

		if first == nil {
			first = &CompletedAchievement{
				AchievementID: a.ID,
				Slug:          a.Slug,
				Name:          a.Name,
				XPAwarded:     grant.Amount,
			}
		}
	}

	return first, nil
}

// publishCompletion emits the achievement, xp, and level-up events for one
// completion.
func (h *RecordMetricHandler) publishCompletion(userID shared.UserID, a progression.Achievement, grant *progression.XPGrant) {
	if h.bus == nil {
		return
	}

	if err := h.bus.Publish(shared.NewAchievementCompletedEvent(userID.String(), a.Slug, grant.Amount)); err != nil {
		h.log.Warn("failed to publish achievement event", logger.Err(err))
	}
	if grant.Amount == 0 {
		return
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
