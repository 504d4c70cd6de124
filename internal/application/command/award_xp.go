package command

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AWARD XP COMMAND
// Direct XP grant used for content actions (posting, accepted answers) that
// reward XP without going through an achievement or task. XP only ever
// goes up; the level is derived, never stored.
// ══════════════════════════════════════════════════════════════════════════════

// AwardXPCommand grants a fixed amount of XP for a named reason.
type AwardXPCommand struct {
	// UserID receiving the grant.
	UserID shared.UserID

	// Amount of XP. Must be non-negative; zero is a valid no-op grant.
	Amount int

	// Reason is a short tag recorded on the emitted event, e.g.
	// "answer_accepted".
	Reason string
}

// Validate validates the command.
func (c AwardXPCommand) Validate() error {
	if !c.UserID.IsValid() {
		return shared.ErrInvalidUserID
	}
	if c.Amount < 0 {
		return shared.ErrNegativeXPAward
	}
	if c.Reason == "" {
		return shared.NewDomainError("xp", "AwardXP", shared.ErrInvalidInput, "reason is required")
	}
	return nil
}

// AwardXPResult reports the grant and any level boundary it crossed.
type AwardXPResult struct {
	// XPAwarded is the granted amount.
	XPAwarded int

	// TotalXP after the grant.
	TotalXP int

	// OldLevel before the grant.
	OldLevel int

	// NewLevel after the grant.
	NewLevel int

	// LeveledUp is true when the grant crossed at least one level boundary.
	LeveledUp bool

	// Reason echoes the command's reason tag.
	Reason string
}

// AwardXPHandler handles AwardXPCommand.
type AwardXPHandler struct {
	users user.Repository
	bus   shared.EventPublisher
	log   *logger.Logger
}

// NewAwardXPHandler creates a new AwardXPHandler.
func NewAwardXPHandler(users user.Repository, bus shared.EventPublisher, log *logger.Logger) *AwardXPHandler {
	return &AwardXPHandler{
		users: users,
		bus:   bus,
		log:   log.With(logger.Component("award_xp")),
	}
}

// Handle applies the grant as a single atomic increment and derives the
// level transition from the returned totals.
func (h *AwardXPHandler) Handle(ctx context.Context, cmd AwardXPCommand) (*AwardXPResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	award, err := h.users.AwardXP(ctx, cmd.UserID, cmd.Amount)
	if err != nil {
		return nil, err
	}

	oldLevel := progression.Level(award.OldTotal)
	newLevel := progression.Level(award.NewTotal)

	h.log.Debug("xp awarded",
		logger.UserID(cmd.UserID.String()),
		logger.XPAmount(cmd.Amount),
		logger.String("reason", cmd.Reason),
	)

	if h.bus != nil && cmd.Amount > 0 {
		if err := h.bus.Publish(shared.NewXPAwardedEvent(cmd.UserID.String(), cmd.Amount, award.NewTotal.Int(), cmd.Reason)); err != nil {
			h.log.Warn("failed to publish xp event", logger.Err(err))
		}
		if newLevel > oldLevel {
			if err := h.bus.Publish(shared.NewLevelUpEvent(cmd.UserID.String(), oldLevel, newLevel)); err != nil {
				h.log.Warn("failed to publish level-up event", logger.Err(err))
			}
		}
	}

	return &AwardXPResult{
		XPAwarded: cmd.Amount,
		TotalXP:   award.NewTotal.Int(),
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		LeveledUp: newLevel > oldLevel,
		Reason:    cmd.Reason,
	}, nil
}
