package progression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// fakeStatSource serves fixed counts for predicate tests.
type fakeStatSource struct {
	counts     map[shared.Metric]int
	reputation int
}

func (f *fakeStatSource) Count(ctx context.Context, userID shared.UserID, metric shared.Metric) (int, error) {
	return f.counts[metric], nil
}

func (f *fakeStatSource) Reputation(ctx context.Context, userID shared.UserID) (int, error) {
	return f.reputation, nil
}

func TestBadgeEvaluate_MetricThreshold(t *testing.T) {
	src := &fakeStatSource{counts: map[shared.Metric]int{MetricQuestionsAuthored: 1}}
	badge := Badge{ID: "badge-first-question", Criteria: CriteriaFirstQuestion}

	earned, err := badge.Evaluate(context.Background(), src, testUserID)
	assert.NoError(t, err)
	assert.True(t, earned)

	src.counts[MetricQuestionsAuthored] = 0
	earned, err = badge.Evaluate(context.Background(), src, testUserID)
	assert.NoError(t, err)
	assert.False(t, earned)
}

func TestBadgeEvaluate_Reputation(t *testing.T) {
	src := &fakeStatSource{reputation: 99}
	badge := Badge{ID: "badge-established", Criteria: CriteriaEstablished}

	earned, err := badge.Evaluate(context.Background(), src, testUserID)
	assert.NoError(t, err)
	assert.False(t, earned)

	src.reputation = 100
	earned, err = badge.Evaluate(context.Background(), src, testUserID)
	assert.NoError(t, err)
	assert.True(t, earned)
}

func TestBadgeEvaluate_UnknownCriteriaNeverAwards(t *testing.T) {
	src := &fakeStatSource{counts: map[shared.Metric]int{}}
	badge := Badge{ID: "badge-mystery", Criteria: Criteria("unknown")}

	earned, err := badge.Evaluate(context.Background(), src, testUserID)
	assert.NoError(t, err)
	assert.False(t, earned)
}

func TestPredicateTableCoversAllCriteria(t *testing.T) {
	for _, c := range []Criteria{
		CriteriaFirstQuestion,
		CriteriaCuriousAsker,
		CriteriaNotableQuestion,
		CriteriaFirstAnswer,
		CriteriaAcceptedAnswers,
		CriteriaCivicDuty,
		CriteriaCommentator,
		CriteriaReputable,
		CriteriaEstablished,
	} {
		_, ok := PredicateFor(c)
		assert.True(t, ok, "missing predicate for %s", c)
	}
}
