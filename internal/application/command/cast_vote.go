// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/vote"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CAST VOTE COMMAND
// One cast either creates a vote, removes it (same value again), or switches
// its sign. Ledger row, target counter, and author reputation commit as one
// atomic unit inside the ledger implementation.
// ══════════════════════════════════════════════════════════════════════════════

// CastVoteCommand contains the data for a single vote cast.
type CastVoteCommand struct {
	// VoterID is the authenticated caller.
	VoterID shared.UserID

	// TargetType is question or answer.
	TargetType shared.TargetType

	// TargetID identifies the voted entity.
	TargetID shared.TargetID

	// Value is +1 or -1.
	Value shared.VoteValue
}

// Validate validates the command before any mutation.
func (c CastVoteCommand) Validate() error {
	return vote.Validate(c.VoterID, c.TargetType, c.TargetID, c.Value)
}

// CastVoteResult contains the committed effect of the cast.
type CastVoteResult struct {
	// VoteDelta is the signed change applied to the target's counter.
	VoteDelta int

	// TargetVotes is the target's counter after the commit.
	TargetVotes int

	// AuthorReputation is the author's reputation after the commit.
	AuthorReputation int

	// Action is what happened to the ledger row (create/remove/switch).
	Action vote.Action
}

// CastVoteHandler handles CastVoteCommand.
type CastVoteHandler struct {
	ledger vote.Ledger
	bus    shared.EventPublisher
	log    *logger.Logger
}

// NewCastVoteHandler creates a new CastVoteHandler.
func NewCastVoteHandler(ledger vote.Ledger, bus shared.EventPublisher, log *logger.Logger) *CastVoteHandler {
	return &CastVoteHandler{
		ledger: ledger,
		bus:    bus,
		log:    log.With(logger.Component("cast_vote")),
	}
}

// Handle executes the command. Errors: validation, shared.ErrTargetNotFound,
// shared.ErrSelfVote. A duplicate concurrent cast surfaces from the ledger
// as shared.ErrAlreadyApplied and is returned to the caller as-is.
func (h *CastVoteHandler) Handle(ctx context.Context, cmd CastVoteCommand) (*CastVoteResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	applied, err := h.ledger.Apply(ctx, cmd.VoterID, cmd.TargetType, cmd.TargetID, cmd.Value)
	if err != nil {
		return nil, err
	}

	h.log.Debug("vote applied",
		logger.UserID(cmd.VoterID.String()),
		logger.TargetType(cmd.TargetType.String()),
		logger.TargetID(cmd.TargetID.String()),
		logger.VoteDelta(applied.Outcome.VoteDelta),
	)

	if h.bus != nil {
		event := shared.NewVoteAppliedEvent(
			cmd.VoterID.String(),
			applied.AuthorID.String(),
			cmd.TargetType,
			cmd.TargetID,
			cmd.Value,
			applied.Outcome.VoteDelta,
			applied.Outcome.ReputationDelta,
		)
		if err := h.bus.Publish(event); err != nil {
			// Award-event delivery must not fail a committed vote.
			h.log.Warn("failed to publish vote event", logger.Err(err))
		}
	}

	return &CastVoteResult{
		VoteDelta:        applied.Outcome.VoteDelta,
		TargetVotes:      applied.TargetVotes,
		AuthorReputation: applied.AuthorReputation,
		Action:           applied.Outcome.Action,
	}, nil
}
