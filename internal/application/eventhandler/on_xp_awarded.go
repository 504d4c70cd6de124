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
// ON XP AWARDED / ON LEVEL UP HANDLERS
// XP grants feed the xp_total achievements; level-ups go out as
// notifications. The xp_total loop terminates because completion is a
// one-way flip: an achievement granting XP can complete another one at
// most once each.
// ══════════════════════════════════════════════════════════════════════════════

// OnXPAwardedHandler reacts to shared.XPAwardedEvent by feeding the new
// total into the xp_total achievements.
type OnXPAwardedHandler struct {
	recordMetric *command.RecordMetricHandler
	log          *logger.Logger
}

// NewOnXPAwardedHandler creates a new OnXPAwardedHandler.
func NewOnXPAwardedHandler(recordMetric *command.RecordMetricHandler, log *logger.Logger) *OnXPAwardedHandler {
	return &OnXPAwardedHandler{
		recordMetric: recordMetric,
		log:          log.With(logger.Component("on_xp_awarded")),
	}
}

// Handle implements shared.EventHandler.
func (h *OnXPAwardedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.XPAwardedEvent)
	if !ok {
		h.log.Warn("received unexpected event", logger.String("event_type", string(event.EventType())))
		return nil
	}
	if h.recordMetric == nil {
		return nil
	}

	_, err := h.recordMetric.Handle(context.Background(), command.RecordMetricCommand{
		UserID: shared.UserID(e.UserID),
		Metric: progression.MetricXPTotal,
		Value:  e.NewTotal,
	})
	if err != nil {
		h.log.Warn("failed to record xp_total metric",
			logger.UserID(e.UserID), logger.Err(err))
	}
	return nil
}

// OnLevelUpHandler reacts to shared.LevelUpEvent with a notification.
type OnLevelUpHandler struct {
	sender notification.Sender
	log    *logger.Logger
}

// NewOnLevelUpHandler creates a new OnLevelUpHandler.
func NewOnLevelUpHandler(sender notification.Sender, log *logger.Logger) *OnLevelUpHandler {
	return &OnLevelUpHandler{
		sender: sender,
		log:    log.With(logger.Component("on_level_up")),
	}
}

// Handle implements shared.EventHandler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.log.Warn("received unexpected event", logger.String("event_type", string(event.EventType())))
		return nil
	}
	if h.sender == nil {
		return nil
	}

	n := notification.New(e.UserID, notification.KindLevelUp, map[string]interface{}{
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
	})
	if err := h.sender.Send(context.Background(), n); err != nil {
		h.log.Warn("failed to send level-up notification",
			logger.UserID(e.UserID), logger.Err(err))
	}
	return nil
}
