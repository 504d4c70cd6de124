package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
)

func TestAwardXP_CrossesLevelBoundary(t *testing.T) {
	repo := &fakeUserRepo{award: user.XPAward{OldTotal: 90, NewTotal: 110}}
	bus := &capturePublisher{}
	h := NewAwardXPHandler(repo, bus, testLogger())

	result, err := h.Handle(context.Background(), AwardXPCommand{
		UserID: testUserID,
		Amount: 20,
		Reason: "answer_accepted",
	})

	assert.NoError(t, err)
	assert.Equal(t, 20, result.XPAwarded)
	assert.Equal(t, 110, result.TotalXP)
	assert.Equal(t, 1, result.OldLevel)
	assert.Equal(t, 2, result.NewLevel)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, []shared.EventType{shared.EventXPAwarded, shared.EventLevelUp}, bus.types())
}

func TestAwardXP_WithinLevel(t *testing.T) {
	repo := &fakeUserRepo{award: user.XPAward{OldTotal: 10, NewTotal: 40}}
	bus := &capturePublisher{}
	h := NewAwardXPHandler(repo, bus, testLogger())

	result, err := h.Handle(context.Background(), AwardXPCommand{
		UserID: testUserID,
		Amount: 30,
		Reason: "question_posted",
	})

	assert.NoError(t, err)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, []shared.EventType{shared.EventXPAwarded}, bus.types())
}

func TestAwardXP_UnseenUserIsGrantedLazily(t *testing.T) {
	// Platform services reward users the engine has never observed. The
	// grant goes straight to the upserting repository call: no existence
	// read, no not-found error, totals start from zero.
	repo := &fakeUserRepo{award: user.XPAward{OldTotal: 0, NewTotal: 25}}
	bus := &capturePublisher{}
	h := NewAwardXPHandler(repo, bus, testLogger())

	result, err := h.Handle(context.Background(), AwardXPCommand{
		UserID: testUserID,
		Amount: 25,
		Reason: "question_posted",
	})

	assert.NoError(t, err)
	assert.Equal(t, 25, result.TotalXP)
	assert.Equal(t, 1, result.OldLevel)
	assert.Equal(t, 0, repo.getCalls)
	assert.Equal(t, []shared.EventType{shared.EventXPAwarded}, bus.types())
}

func TestAwardXP_ZeroIsSilentNoOp(t *testing.T) {
	repo := &fakeUserRepo{award: user.XPAward{OldTotal: 40, NewTotal: 40}}
	bus := &capturePublisher{}
	h := NewAwardXPHandler(repo, bus, testLogger())

	result, err := h.Handle(context.Background(), AwardXPCommand{
		UserID: testUserID,
		Amount: 0,
		Reason: "noop",
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.XPAwarded)
	assert.Empty(t, bus.events)
}

func TestAwardXP_Validation(t *testing.T) {
	h := NewAwardXPHandler(&fakeUserRepo{}, &capturePublisher{}, testLogger())

	_, err := h.Handle(context.Background(), AwardXPCommand{UserID: testUserID, Amount: -5, Reason: "x"})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)

	_, err = h.Handle(context.Background(), AwardXPCommand{UserID: testUserID, Amount: 5})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
