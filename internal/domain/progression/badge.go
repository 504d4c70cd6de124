package progression

import (
	"context"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// Tier is the badge tier.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// IsValid checks that the tier is known.
func (t Tier) IsValid() bool {
	return t == TierBronze || t == TierSilver || t == TierGold
}

// Criteria is the key selecting a badge predicate from the table below.
type Criteria string

const (
	CriteriaFirstQuestion   Criteria = "first_question"
	CriteriaCuriousAsker    Criteria = "curious_asker"
	CriteriaNotableQuestion Criteria = "notable_question"
	CriteriaFirstAnswer     Criteria = "first_answer"
	CriteriaAcceptedAnswers Criteria = "accepted_answers"
	CriteriaCivicDuty       Criteria = "civic_duty"
	CriteriaCommentator     Criteria = "commentator"
	CriteriaReputable       Criteria = "reputable"
	CriteriaEstablished     Criteria = "established"
)

// Badge is a catalog entry. Read-mostly; seeded by migration.
type Badge struct {
	// ID - catalog row identifier.
	ID string

	// Slug - stable machine name, e.g. "civic-duty".
	Slug string

	// Name - display name the notification collaborator renders.
	Name string

	// Tier - bronze, silver or gold.
	Tier Tier

	// Criteria - predicate key.
	Criteria Criteria

	// CreatedAt - when the catalog entry was seeded.
	CreatedAt time.Time
}

// UserBadge is an append-only award record, unique per (user, badge).
// Once created it is never deleted or re-evaluated, even if the underlying
// count later regresses.
type UserBadge struct {
	UserID    shared.UserID
	BadgeID   string
	AwardedAt time.Time
}

// StatSource provides the current counts badge predicates evaluate against.
type StatSource interface {
	// Count returns a countable user statistic by metric name.
	Count(ctx context.Context, userID shared.UserID, metric shared.Metric) (int, error)

	// Reputation returns the user's current reputation.
	Reputation(ctx context.Context, userID shared.UserID) (int, error)
}

// Predicate evaluates one badge criteria against current counts.
type Predicate func(ctx context.Context, src StatSource, userID shared.UserID) (bool, error)

// metricAtLeast builds a predicate over a single metric threshold.
func metricAtLeast(metric shared.Metric, threshold int) Predicate {
	return func(ctx context.Context, src StatSource, userID shared.UserID) (bool, error) {
		n, err := src.Count(ctx, userID, metric)
		if err != nil {
			return false, err
		}
		return n >= threshold, nil
	}
}

// reputationAtLeast builds a predicate over the reputation counter.
func reputationAtLeast(threshold int) Predicate {
	return func(ctx context.Context, src StatSource, userID shared.UserID) (bool, error) {
		rep, err := src.Reputation(ctx, userID)
		if err != nil {
			return false, err
		}
		return rep >= threshold, nil
	}
}

// predicates maps criteria keys to their checks. Adding a criterion is a
// table entry, not a new branch in evaluation code.
var predicates = map[Criteria]Predicate{
	CriteriaFirstQuestion:   metricAtLeast(MetricQuestionsAuthored, 1),
	CriteriaCuriousAsker:    metricAtLeast(MetricQuestionsAuthored, 10),
	CriteriaNotableQuestion: metricAtLeast(MetricBestQuestionVotes, 10),
	CriteriaFirstAnswer:     metricAtLeast(MetricAnswersAuthored, 1),
	CriteriaAcceptedAnswers: metricAtLeast(MetricAnswersAccepted, 5),
	CriteriaCivicDuty:       metricAtLeast(MetricVotesCast, 100),
	CriteriaCommentator:     metricAtLeast(MetricCommentsAuthored, 25),
	CriteriaReputable:       reputationAtLeast(1000),
	CriteriaEstablished:     reputationAtLeast(100),
}

// PredicateFor returns the predicate for a criteria key.
func PredicateFor(c Criteria) (Predicate, bool) {
	p, ok := predicates[c]
	return p, ok
}

// Evaluate runs the badge's predicate against current counts.
func (b Badge) Evaluate(ctx context.Context, src StatSource, userID shared.UserID) (bool, error) {
	p, ok := PredicateFor(b.Criteria)
	if !ok {
		// Unknown criteria in the catalog never awards.
		return false, nil
	}
	return p(ctx, src, userID)
}
