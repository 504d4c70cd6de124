// Package eventhandler contains the reactive side of the engine: handlers
// subscribed to domain events that fan a committed write out into daily
// task progress, badge evaluation, achievement metrics, the reputation
// board, and notifications. Every side effect here is best-effort; a
// committed vote or login is never rolled back because a follow-up failed.
package eventhandler

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/application/command"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON VOTE APPLIED HANDLER
// Fans one committed vote out to everything downstream of it: the author's
// board score, the voter's daily task and votes_cast achievements, and a
// badge re-check for both sides.
// ══════════════════════════════════════════════════════════════════════════════

// OnVoteAppliedHandler reacts to shared.VoteAppliedEvent.
type OnVoteAppliedHandler struct {
	advanceTask    *command.AdvanceTaskHandler
	recordMetric   *command.RecordMetricHandler
	evaluateBadges *command.EvaluateBadgesHandler
	stats          progression.StatSource
	board          user.ReputationBoard
	log            *logger.Logger
}

// NewOnVoteAppliedHandler creates a new OnVoteAppliedHandler.
func NewOnVoteAppliedHandler(
	advanceTask *command.AdvanceTaskHandler,
	recordMetric *command.RecordMetricHandler,
	evaluateBadges *command.EvaluateBadgesHandler,
	stats progression.StatSource,
	board user.ReputationBoard,
	log *logger.Logger,
) *OnVoteAppliedHandler {
	return &OnVoteAppliedHandler{
		advanceTask:    advanceTask,
		recordMetric:   recordMetric,
		evaluateBadges: evaluateBadges,
		stats:          stats,
		board:          board,
		log:            log.With(logger.Component("on_vote_applied")),
	}
}

// Handle implements shared.EventHandler. Failures in individual side
// effects are logged and skipped: the vote itself is already committed.
func (h *OnVoteAppliedHandler) Handle(event shared.Event) error {
	e, ok := event.(shared.VoteAppliedEvent)
	if !ok {
		h.log.Warn("received unexpected event", logger.String("event_type", string(event.EventType())))
		return nil
	}

	ctx := context.Background()
	voterID := shared.UserID(e.VoterID)
	authorID := shared.UserID(e.AuthorID)

	if h.board != nil && e.ReputationDelta != 0 {
		if err := h.board.IncrementScore(ctx, authorID, e.ReputationDelta); err != nil {
			h.log.Warn("failed to update reputation board",
				logger.UserID(e.AuthorID), logger.Err(err))
		}
	}

	// Removing a vote does not count as casting one: delta and value share
	// a sign only for create and switch.
	if e.VoteDelta*e.Value > 0 {
		h.creditVoter(ctx, voterID)
	}

	h.recheckBadges(ctx, authorID)
	if voterID != authorID {
		h.recheckBadges(ctx, voterID)
	}

	return nil
}

// creditVoter advances the voter's daily task and votes_cast achievements.
func (h *OnVoteAppliedHandler) creditVoter(ctx context.Context, voterID shared.UserID) {
	if h.advanceTask != nil {
		_, err := h.advanceTask.Handle(ctx, command.AdvanceTaskCommand{
			UserID:    voterID,
			TaskType:  progression.TaskCastVotes,
			Increment: 1,
		})
		if err != nil && !shared.IsNotFound(err) {
			h.log.Warn("failed to advance vote task",
				logger.UserID(voterID.String()), logger.Err(err))
		}
	}

	if h.recordMetric != nil && h.stats != nil {
		count, err := h.stats.Count(ctx, voterID, progression.MetricVotesCast)
		if err != nil {
			h.log.Warn("failed to count votes cast",
				logger.UserID(voterID.String()), logger.Err(err))
			return
		}
		_, err = h.recordMetric.Handle(ctx, command.RecordMetricCommand{
			UserID: voterID,
			Metric: progression.MetricVotesCast,
			Value:  count,
		})
		if err != nil {
			h.log.Warn("failed to record votes_cast metric",
				logger.UserID(voterID.String()), logger.Err(err))
		}
	}
}

func (h *OnVoteAppliedHandler) recheckBadges(ctx context.Context, userID shared.UserID) {
	if h.evaluateBadges == nil {
		return
	}
	if _, err := h.evaluateBadges.Handle(ctx, command.EvaluateBadgesCommand{UserID: userID}); err != nil {
		h.log.Warn("failed to evaluate badges",
			logger.UserID(userID.String()), logger.Err(err))
	}
}
