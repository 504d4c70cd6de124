package command

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATE BADGES COMMAND
// Stateless re-check of the fixed badge catalog against current counts.
// Idempotent and safe to call after every content-creating action: the
// (user, badge) unique index makes double-award impossible, and awards are
// never revoked when counts later regress.
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateBadgesCommand identifies the user to evaluate.
type EvaluateBadgesCommand struct {
	UserID shared.UserID
}

// Validate validates the command.
func (c EvaluateBadgesCommand) Validate() error {
	if !c.UserID.IsValid() {
		return shared.ErrInvalidUserID
	}
	return nil
}

// AwardedBadge describes one newly granted badge.
type AwardedBadge struct {
	BadgeID string
	Slug    string
	Name    string
	Tier    progression.Tier
}

// EvaluateBadgesHandler handles EvaluateBadgesCommand.
type EvaluateBadgesHandler struct {
	badges  progression.BadgeRepository
	stats   progression.StatSource
	catalog *progression.Catalog
	bus     shared.EventPublisher
	log     *logger.Logger
}

// NewEvaluateBadgesHandler creates a new EvaluateBadgesHandler.
func NewEvaluateBadgesHandler(
	badges progression.BadgeRepository,
	stats progression.StatSource,
	catalog *progression.Catalog,
	bus shared.EventPublisher,
	log *logger.Logger,
) *EvaluateBadgesHandler {
	return &EvaluateBadgesHandler{
		badges:  badges,
		stats:   stats,
		catalog: catalog,
		bus:     bus,
		log:     log.With(logger.Component("evaluate_badges")),
	}
}

// Handle re-checks every badge the user does not yet hold and awards the
// newly satisfied ones. Returns the awarded badges, possibly empty.
func (h *EvaluateBadgesHandler) Handle(ctx context.Context, cmd EvaluateBadgesCommand) ([]AwardedBadge, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	heldIDs, err := h.badges.ListUserBadgeIDs(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = true
	}

	var awarded []AwardedBadge
	for _, badge := range h.catalog.Badges() {
		if held[badge.ID] {
			continue
		}

		satisfied, err := badge.Evaluate(ctx, h.stats, cmd.UserID)
		if err != nil {
			return awarded, err
		}
		if !satisfied {
			continue
		}

		if err := h.badges.Award(ctx, cmd.UserID, badge.ID); err != nil {
			if shared.IsConflict(err) {
				// A concurrent evaluation won the race. Not an error.
				continue
			}
			return awarded, err
		}

		awarded = append(awarded, AwardedBadge{
			BadgeID: badge.ID,
			Slug:    badge.Slug,
			Name:    badge.Name,
			Tier:    badge.Tier,
		})

		h.log.Info("badge awarded",
			logger.UserID(cmd.UserID.String()),
			logger.BadgeSlug(badge.Slug),
		)

		if h.bus != nil {
			event := shared.NewBadgeAwardedEvent(cmd.UserID.String(), badge.Slug, string(badge.Tier))
			if err := h.bus.Publish(event); err != nil {
				h.log.Warn("failed to publish badge event", logger.Err(err))
			}
		}
	}

	return awarded, nil
}
