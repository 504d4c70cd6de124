package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/vote"
)

// fakeLedger returns a canned Applied and records the arguments it saw.
type fakeLedger struct {
	applied vote.Applied
	err     error
	calls   int
	value   shared.VoteValue
}

func (f *fakeLedger) Apply(ctx context.Context, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID, value shared.VoteValue) (vote.Applied, error) {
	f.calls++
	f.value = value
	return f.applied, f.err
}

func (f *fakeLedger) Get(ctx context.Context, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID) (*vote.Vote, error) {
	return nil, nil
}

func (f *fakeLedger) SumForTarget(ctx context.Context, targetType shared.TargetType, targetID shared.TargetID) (int, error) {
	return 0, nil
}

func TestCastVote_Upvote(t *testing.T) {
	ledger := &fakeLedger{
		applied: vote.Applied{
			Outcome:          vote.Outcome{Action: vote.ActionCreate, VoteDelta: 1, ReputationDelta: 5},
			AuthorID:         testAuthorID,
			TargetVotes:      4,
			AuthorReputation: 25,
		},
	}
	bus := &capturePublisher{}
	h := NewCastVoteHandler(ledger, bus, testLogger())

	result, err := h.Handle(context.Background(), CastVoteCommand{
		VoterID:    testVoterID,
		TargetType: shared.TargetQuestion,
		TargetID:   testTargetID,
		Value:      shared.Upvote,
	})

	assert.NoError(t, err)
	assert.Equal(t, vote.ActionCreate, result.Action)
	assert.Equal(t, 1, result.VoteDelta)
	assert.Equal(t, 4, result.TargetVotes)
	assert.Equal(t, 25, result.AuthorReputation)
	assert.Equal(t, 1, ledger.calls)

	assert.Equal(t, []shared.EventType{shared.EventVoteApplied}, bus.types())
	event := bus.events[0].(shared.VoteAppliedEvent)
	assert.Equal(t, testVoterID.String(), event.VoterID)
	assert.Equal(t, testAuthorID.String(), event.AuthorID)
	assert.Equal(t, 5, event.ReputationDelta)
}

func TestCastVote_ValidationStopsBeforeLedger(t *testing.T) {
	ledger := &fakeLedger{}
	bus := &capturePublisher{}
	h := NewCastVoteHandler(ledger, bus, testLogger())

	_, err := h.Handle(context.Background(), CastVoteCommand{
		VoterID:    "not-a-uuid",
		TargetType: shared.TargetQuestion,
		TargetID:   testTargetID,
		Value:      shared.Upvote,
	})

	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, 0, ledger.calls)
	assert.Empty(t, bus.events)

	_, err = h.Handle(context.Background(), CastVoteCommand{
		VoterID:    testVoterID,
		TargetType: shared.TargetAnswer,
		TargetID:   testTargetID,
		Value:      shared.VoteValue(3),
	})

	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, 0, ledger.calls)
}

func TestCastVote_SelfVotePassesThrough(t *testing.T) {
	ledger := &fakeLedger{err: shared.ErrSelfVote}
	bus := &capturePublisher{}
	h := NewCastVoteHandler(ledger, bus, testLogger())

	_, err := h.Handle(context.Background(), CastVoteCommand{
		VoterID:    testVoterID,
		TargetType: shared.TargetAnswer,
		TargetID:   testTargetID,
		Value:      shared.Downvote,
	})

	assert.True(t, shared.IsSelfAction(err))
	assert.Empty(t, bus.events)
}

func TestCastVote_PublishFailureDoesNotFailCommit(t *testing.T) {
	ledger := &fakeLedger{
		applied: vote.Applied{
			Outcome:  vote.Outcome{Action: vote.ActionRemove, VoteDelta: -1, ReputationDelta: -5},
			AuthorID: testAuthorID,
		},
	}
	bus := &capturePublisher{err: assert.AnError}
	h := NewCastVoteHandler(ledger, bus, testLogger())

	result, err := h.Handle(context.Background(), CastVoteCommand{
		VoterID:    testVoterID,
		TargetType: shared.TargetQuestion,
		TargetID:   testTargetID,
		Value:      shared.Upvote,
	})

	// The vote committed; event delivery is best-effort.
	assert.NoError(t, err)
	assert.Equal(t, -1, result.VoteDelta)
}
