package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// fakeBadgeRepo tracks awards in memory.
type fakeBadgeRepo struct {
	held     []string
	awardErr map[string]error
	awarded  []string
}

func (f *fakeBadgeRepo) ListBadges(ctx context.Context) ([]progression.Badge, error) {
	return nil, nil
}

func (f *fakeBadgeRepo) ListUserBadgeIDs(ctx context.Context, userID shared.UserID) ([]string, error) {
	return f.held, nil
}

func (f *fakeBadgeRepo) Award(ctx context.Context, userID shared.UserID, badgeID string) error {
	if err := f.awardErr[badgeID]; err != nil {
		return err
	}
	f.awarded = append(f.awarded, badgeID)
	return nil
}

func (f *fakeBadgeRepo) CountForUser(ctx context.Context, userID shared.UserID) (int, error) {
	return len(f.held) + len(f.awarded), nil
}

// fakeStats serves fixed counts and reputation.
type fakeStats struct {
	counts     map[shared.Metric]int
	reputation int
}

func (f *fakeStats) Count(ctx context.Context, userID shared.UserID, metric shared.Metric) (int, error) {
	return f.counts[metric], nil
}

func (f *fakeStats) Reputation(ctx context.Context, userID shared.UserID) (int, error) {
	return f.reputation, nil
}

func badgeCatalog() *progression.Catalog {
	badges := []progression.Badge{
		{ID: "badge-first-question", Slug: "first-question", Name: "First Question", Tier: progression.TierBronze, Criteria: progression.CriteriaFirstQuestion},
		{ID: "badge-civic-duty", Slug: "civic-duty", Name: "Civic Duty", Tier: progression.TierSilver, Criteria: progression.CriteriaCivicDuty},
	}
	return progression.NewCatalog(badges, nil, nil)
}

func TestEvaluateBadges_AwardsNewlySatisfied(t *testing.T) {
	repo := &fakeBadgeRepo{}
	stats := &fakeStats{counts: map[shared.Metric]int{
		progression.MetricQuestionsAuthored: 1,
		progression.MetricVotesCast:         12,
	}}
	bus := &capturePublisher{}
	h := NewEvaluateBadgesHandler(repo, stats, badgeCatalog(), bus, testLogger())

	awarded, err := h.Handle(context.Background(), EvaluateBadgesCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Len(t, awarded, 1)
	assert.Equal(t, "first-question", awarded[0].Slug)
	assert.Equal(t, progression.TierBronze, awarded[0].Tier)
	assert.Equal(t, []string{"badge-first-question"}, repo.awarded)
	assert.Equal(t, []shared.EventType{shared.EventBadgeAwarded}, bus.types())
}

func TestEvaluateBadges_HeldBadgesNeverReAwarded(t *testing.T) {
	repo := &fakeBadgeRepo{held: []string{"badge-first-question"}}
	stats := &fakeStats{counts: map[shared.Metric]int{
		progression.MetricQuestionsAuthored: 40,
	}}
	bus := &capturePublisher{}
	h := NewEvaluateBadgesHandler(repo, stats, badgeCatalog(), bus, testLogger())

	awarded, err := h.Handle(context.Background(), EvaluateBadgesCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Empty(t, awarded)
	assert.Empty(t, repo.awarded)
	assert.Empty(t, bus.events)
}

func TestEvaluateBadges_LostRaceIsNotAnError(t *testing.T) {
	repo := &fakeBadgeRepo{
		awardErr: map[string]error{"badge-first-question": shared.ErrBadgeAlreadyAwarded},
	}
	stats := &fakeStats{counts: map[shared.Metric]int{
		progression.MetricQuestionsAuthored: 1,
	}}
	bus := &capturePublisher{}
	h := NewEvaluateBadgesHandler(repo, stats, badgeCatalog(), bus, testLogger())

	awarded, err := h.Handle(context.Background(), EvaluateBadgesCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Empty(t, awarded)
	assert.Empty(t, bus.events)
}

func TestEvaluateBadges_NothingSatisfied(t *testing.T) {
	repo := &fakeBadgeRepo{}
	stats := &fakeStats{counts: map[shared.Metric]int{}}
	h := NewEvaluateBadgesHandler(repo, stats, badgeCatalog(), &capturePublisher{}, testLogger())

	awarded, err := h.Handle(context.Background(), EvaluateBadgesCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Empty(t, awarded)
}
