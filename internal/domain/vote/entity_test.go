package vote

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

const (
	testVoter  = shared.UserID("11111111-1111-1111-1111-111111111111")
	testTarget = shared.TargetID("22222222-2222-2222-2222-222222222222")
)

func existingVote(value shared.VoteValue) *Vote {
	return &Vote{
		ID:         "33333333-3333-3333-3333-333333333333",
		VoterID:    testVoter,
		TargetType: shared.TargetQuestion,
		TargetID:   testTarget,
		Value:      value,
	}
}

func TestResolve_CreateUpvote(t *testing.T) {
	out := Resolve(nil, shared.Upvote)

	assert.Equal(t, ActionCreate, out.Action)
	assert.Equal(t, 1, out.VoteDelta)
	assert.Equal(t, 5, out.ReputationDelta)
}

func TestResolve_CreateDownvote(t *testing.T) {
	out := Resolve(nil, shared.Downvote)

	assert.Equal(t, ActionCreate, out.Action)
	assert.Equal(t, -1, out.VoteDelta)
	assert.Equal(t, 2, out.ReputationDelta)
}

func TestResolve_RemoveUpvote(t *testing.T) {
	out := Resolve(existingVote(shared.Upvote), shared.Upvote)

	assert.Equal(t, ActionRemove, out.Action)
	assert.Equal(t, -1, out.VoteDelta)
	assert.Equal(t, -5, out.ReputationDelta)
}

func TestResolve_RemoveDownvote(t *testing.T) {
	// Un-voting a downvote costs the author another 2 reputation: the
	// multiplier follows the requested value's sign, so delta +1 times -2
	// lands at -2. Compatibility behavior, asserted exactly.
	out := Resolve(existingVote(shared.Downvote), shared.Downvote)

	assert.Equal(t, ActionRemove, out.Action)
	assert.Equal(t, 1, out.VoteDelta)
	assert.Equal(t, -2, out.ReputationDelta)
}

func TestResolve_SwitchDownToUp(t *testing.T) {
	out := Resolve(existingVote(shared.Downvote), shared.Upvote)

	assert.Equal(t, ActionSwitch, out.Action)
	assert.Equal(t, 2, out.VoteDelta)
	assert.Equal(t, 10, out.ReputationDelta)
}

func TestResolve_SwitchUpToDown(t *testing.T) {
	out := Resolve(existingVote(shared.Upvote), shared.Downvote)

	assert.Equal(t, ActionSwitch, out.Action)
	assert.Equal(t, -2, out.VoteDelta)
	assert.Equal(t, 4, out.ReputationDelta)
}

func TestResolve_ToggleCycleNetsToZeroVotes(t *testing.T) {
	// create then remove leaves the counter where it started.
	create := Resolve(nil, shared.Upvote)
	remove := Resolve(existingVote(shared.Upvote), shared.Upvote)

	assert.Equal(t, 0, create.VoteDelta+remove.VoteDelta)
	// Reputation also nets to zero for upvotes (+5 then -5).
	assert.Equal(t, 0, create.ReputationDelta+remove.ReputationDelta)
}

func TestResolve_DownvoteToggleDriftsReputation(t *testing.T) {
	// A full down -> up -> down -> removed cycle returns the vote counter
	// to zero but leaves the author 14 reputation richer. The asymmetry is
	// inherited behavior; the numbers are asserted exactly.
	down := Resolve(nil, shared.Downvote)                                 // rep +2
	toUp := Resolve(existingVote(shared.Downvote), shared.Upvote)         // rep +10
	backDown := Resolve(existingVote(shared.Upvote), shared.Downvote)     // rep +4
	removeDown := Resolve(existingVote(shared.Downvote), shared.Downvote) // rep -2

	assert.Equal(t, 0, down.VoteDelta+toUp.VoteDelta+backDown.VoteDelta+removeDown.VoteDelta)
	assert.Equal(t, 14, down.ReputationDelta+toUp.ReputationDelta+backDown.ReputationDelta+removeDown.ReputationDelta)
}

func TestResolve_CounterMatchesLiveVoteSum(t *testing.T) {
	// Random casts from several voters on one target. After every resolved
	// cast, the running counter must equal the signed sum of the live votes.
	rng := rand.New(rand.NewSource(1))
	live := make(map[shared.UserID]shared.VoteValue, 8)
	counter := 0

	for i := 0; i < 1000; i++ {
		voter := shared.UserID(rune('a') + rune(rng.Intn(8)))
		value := shared.Upvote
		if rng.Intn(2) == 0 {
			value = shared.Downvote
		}

		var existing *Vote
		if v, ok := live[voter]; ok {
			existing = &Vote{VoterID: voter, Value: v}
		}

		out := Resolve(existing, value)
		counter += out.VoteDelta

		switch out.Action {
		case ActionRemove:
			delete(live, voter)
		default:
			live[voter] = value
		}

		sum := 0
		for _, v := range live {
			sum += v.Int()
		}
		assert.Equal(t, sum, counter)
	}
}

func TestValidate(t *testing.T) {
	err := Validate(testVoter, shared.TargetQuestion, testTarget, shared.Upvote)
	assert.NoError(t, err)

	err = Validate("", shared.TargetQuestion, testTarget, shared.Upvote)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	err = Validate(testVoter, "post", testTarget, shared.Upvote)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	err = Validate(testVoter, shared.TargetAnswer, "not-a-uuid", shared.Downvote)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	err = Validate(testVoter, shared.TargetAnswer, testTarget, shared.VoteValue(2))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
