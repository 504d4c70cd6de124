package postgres

import (
	"context"
	"fmt"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/vote"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONTENT READER IMPLEMENTATION
// Read-only view over the content-service tables plus the engine's own vote
// and user tables. Implements both vote.ContentReader and
// progression.StatSource, since badge predicates and vote resolution need
// the same counts.
// ══════════════════════════════════════════════════════════════════════════════

// ContentReader reads targets and countable user statistics.
type ContentReader struct {
	conn *Connection
}

// NewContentReader creates a new ContentReader.
func NewContentReader(conn *Connection) *ContentReader {
	return &ContentReader{conn: conn}
}

// GetTarget returns the author and cached vote counter of a target.
func (r *ContentReader) GetTarget(ctx context.Context, targetType shared.TargetType, targetID shared.TargetID) (*vote.Target, error) {
	var query string
	switch targetType {
	case shared.TargetQuestion:
		query = `SELECT author_id, votes FROM questions WHERE id = $1`
	case shared.TargetAnswer:
		query = `SELECT author_id, votes FROM answers WHERE id = $1`
	default:
		return nil, shared.ErrInvalidTarget
	}

	var authorID string
	var votes int
	err := r.conn.QueryRow(ctx, query, targetID.String()).Scan(&authorID, &votes)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to get target: %w", err)
	}

	return &vote.Target{
		ID:       targetID,
		Type:     targetType,
		AuthorID: shared.UserID(authorID),
		Votes:    votes,
	}, nil
}

// GetCount implements vote.ContentReader.
func (r *ContentReader) GetCount(ctx context.Context, userID shared.UserID, metric shared.Metric) (int, error) {
	return r.Count(ctx, userID, metric)
}

// countQueries maps metric names to their count queries, all keyed by one
// user id parameter.
var countQueries = map[shared.Metric]string{
	progression.MetricQuestionsAuthored: `SELECT COUNT(*) FROM questions WHERE author_id = $1`,
	progression.MetricAnswersAuthored:   `SELECT COUNT(*) FROM answers WHERE author_id = $1`,
	progression.MetricAnswersAccepted:   `SELECT COUNT(*) FROM answers WHERE author_id = $1 AND accepted`,
	progression.MetricCommentsAuthored:  `SELECT COUNT(*) FROM comments WHERE author_id = $1`,
	progression.MetricVotesCast:         `SELECT COUNT(*) FROM votes WHERE voter_id = $1`,
	progression.MetricBestQuestionVotes: `SELECT COALESCE(MAX(votes), 0) FROM questions WHERE author_id = $1`,
	progression.MetricXPTotal:           `SELECT COALESCE((SELECT xp FROM users WHERE id = $1), 0)`,
}

// Count implements progression.StatSource.
func (r *ContentReader) Count(ctx context.Context, userID shared.UserID, metric shared.Metric) (int, error) {
	query, ok := countQueries[metric]
	if !ok {
		return 0, shared.NewDomainError("stats", "Count", shared.ErrInvalidInput, "unknown metric "+metric.String())
	}

	var n int
	if err := r.conn.QueryRow(ctx, query, userID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", metric, err)
	}
	return n, nil
}

// Reputation implements progression.StatSource. An unseen user has the
// default reputation of zero.
func (r *ContentReader) Reputation(ctx context.Context, userID shared.UserID) (int, error) {
	query := `SELECT COALESCE((SELECT reputation FROM users WHERE id = $1), 0)`

	var reputation int
	if err := r.conn.QueryRow(ctx, query, userID.String()).Scan(&reputation); err != nil {
		return 0, fmt.Errorf("failed to get reputation: %w", err)
	}
	return reputation, nil
}
