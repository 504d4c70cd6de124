package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/vote"
	"github.com/devoverflow-hub/devoverflow-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// VOTE LEDGER IMPLEMENTATION
// The three-part mutation (ledger row, target counter, author reputation)
// runs in one serializable transaction. Serialization conflicts are safe to
// re-run, so the whole transaction sits inside a retry loop.
// ══════════════════════════════════════════════════════════════════════════════

// VoteLedger implements vote.Ledger for PostgreSQL.
type VoteLedger struct {
	conn     *Connection
	retryCfg retry.Config
}

// NewVoteLedger creates a new VoteLedger.
func NewVoteLedger(conn *Connection) *VoteLedger {
	return &VoteLedger{
		conn:     conn,
		retryCfg: retry.DefaultConfig(),
	}
}

// Apply resolves and commits one cast atomically.
func (l *VoteLedger) Apply(ctx context.Context, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID, value shared.VoteValue) (vote.Applied, error) {
	var applied vote.Applied

	err := retry.Do(ctx, l.retryCfg, func(ctx context.Context) error {
		err := l.conn.WithTx(ctx, SerializableTxOptions(), func(tx pgx.Tx) error {
			result, err := l.applyInTx(ctx, tx, voterID, targetType, targetID, value)
			if err != nil {
				return err
			}
			applied = result
			return nil
		})
		if err != nil {
			if IsSerializationFailure(err) {
				return retry.Retryable(shared.NewDomainError("vote", "Apply", shared.ErrSerializationFailure, "vote transaction conflicted"))
			}
			return retry.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return vote.Applied{}, err
	}

	return applied, nil
}

// applyInTx performs the three-part mutation inside an open transaction.
func (l *VoteLedger) applyInTx(ctx context.Context, tx pgx.Tx, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID, value shared.VoteValue) (vote.Applied, error) {
	var applied vote.Applied

	// Lock the target row first. This both validates the target and
	// serializes concurrent casts on the same target.
	target, err := l.lockTarget(ctx, tx, targetType, targetID)
	if err != nil {
		return applied, err
	}

	if target.AuthorID == voterID {
		return applied, shared.ErrSelfVote
	}

	existing, err := l.getForUpdate(ctx, tx, voterID, targetType, targetID)
	if err != nil {
		return applied, err
	}

	outcome := vote.Resolve(existing, value)

	switch outcome.Action {
	case vote.ActionCreate:
		_, err = tx.Exec(ctx, `
			INSERT INTO votes (id, voter_id, target_type, target_id, value)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), voterID.String(), targetType.String(), targetID.String(), value.Int())
		if err != nil && IsUniqueViolation(err) {
			// Lost a create race despite the locks; treat as already applied.
			return applied, shared.NewDomainError("vote", "Apply", shared.ErrAlreadyApplied, "concurrent vote already recorded")
		}
	case vote.ActionRemove:
		_, err = tx.Exec(ctx, `
			DELETE FROM votes WHERE id = $1
		`, existing.ID)
	case vote.ActionSwitch:
		_, err = tx.Exec(ctx, `
			UPDATE votes SET value = $2, updated_at = NOW() WHERE id = $1
		`, existing.ID, value.Int())
	}
	if err != nil {
		return applied, fmt.Errorf("failed to mutate vote row: %w", err)
	}

	targetVotes, err := l.adjustTargetCounter(ctx, tx, targetType, targetID, outcome.VoteDelta)
	if err != nil {
		return applied, err
	}

	reputation, err := l.adjustAuthorReputation(ctx, tx, target.AuthorID, outcome.ReputationDelta)
	if err != nil {
		return applied, err
	}

	applied = vote.Applied{
		Outcome:          outcome,
		AuthorID:         target.AuthorID,
		TargetVotes:      targetVotes,
		AuthorReputation: reputation,
	}
	return applied, nil
}

// lockTarget reads and row-locks the target, returning its author and
// cached counter.
func (l *VoteLedger) lockTarget(ctx context.Context, tx pgx.Tx, targetType shared.TargetType, targetID shared.TargetID) (*vote.Target, error) {
	var query string
	switch targetType {
	case shared.TargetQuestion:
		query = `SELECT author_id, votes FROM questions WHERE id = $1 FOR UPDATE`
	case shared.TargetAnswer:
		query = `SELECT author_id, votes FROM answers WHERE id = $1 FOR UPDATE`
	default:
		return nil, shared.ErrInvalidTarget
	}

	var authorID string
	var votes int
	err := tx.QueryRow(ctx, query, targetID.String()).Scan(&authorID, &votes)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to lock target: %w", err)
	}

	return &vote.Target{
		ID:       targetID,
		Type:     targetType,
		AuthorID: shared.UserID(authorID),
		Votes:    votes,
	}, nil
}

// getForUpdate loads the live vote row for the pair, locking it.
func (l *VoteLedger) getForUpdate(ctx context.Context, tx pgx.Tx, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID) (*vote.Vote, error) {
	query := `
		SELECT id, voter_id, target_type, target_id, value, created_at, updated_at
		FROM votes
		WHERE voter_id = $1 AND target_type = $2 AND target_id = $3
		FOR UPDATE
	`

	row := tx.QueryRow(ctx, query, voterID.String(), targetType.String(), targetID.String())
	v, err := scanVote(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return v, nil
}

func (l *VoteLedger) adjustTargetCounter(ctx context.Context, tx pgx.Tx, targetType shared.TargetType, targetID shared.TargetID, delta int) (int, error) {
	var query string
	switch targetType {
	case shared.TargetQuestion:
		query = `UPDATE questions SET votes = votes + $2 WHERE id = $1 RETURNING votes`
	case shared.TargetAnswer:
		query = `UPDATE answers SET votes = votes + $2 WHERE id = $1 RETURNING votes`
	default:
		return 0, shared.ErrInvalidTarget
	}

	var votes int
	if err := tx.QueryRow(ctx, query, targetID.String(), delta).Scan(&votes); err != nil {
		return 0, fmt.Errorf("failed to adjust target counter: %w", err)
	}
	return votes, nil
}

// adjustAuthorReputation applies the reputation delta, creating the author's
// engine record lazily on first contact.
func (l *VoteLedger) adjustAuthorReputation(ctx context.Context, tx pgx.Tx, authorID shared.UserID, delta int) (int, error) {
	query := `
		INSERT INTO users (id, reputation)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET reputation = users.reputation + $2, updated_at = NOW()
		RETURNING reputation
	`

	var reputation int
	if err := tx.QueryRow(ctx, query, authorID.String(), delta).Scan(&reputation); err != nil {
		return 0, fmt.Errorf("failed to adjust author reputation: %w", err)
	}
	return reputation, nil
}

// Get returns the live vote for a pair, or nil when there is none.
func (l *VoteLedger) Get(ctx context.Context, voterID shared.UserID, targetType shared.TargetType, targetID shared.TargetID) (*vote.Vote, error) {
	query := `
		SELECT id, voter_id, target_type, target_id, value, created_at, updated_at
		FROM votes
		WHERE voter_id = $1 AND target_type = $2 AND target_id = $3
	`

	row := l.conn.QueryRow(ctx, query, voterID.String(), targetType.String(), targetID.String())
	v, err := scanVote(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return v, nil
}

// SumForTarget returns the signed sum of live ledger rows for a target.
func (l *VoteLedger) SumForTarget(ctx context.Context, targetType shared.TargetType, targetID shared.TargetID) (int, error) {
	query := `
		SELECT COALESCE(SUM(value), 0)
		FROM votes
		WHERE target_type = $1 AND target_id = $2
	`

	var sum int
	err := l.conn.QueryRow(ctx, query, targetType.String(), targetID.String()).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return sum, nil
}

// scanVote scans one vote row.
func scanVote(row pgx.Row) (*vote.Vote, error) {
	var (
		v          vote.Vote
		voterID    string
		targetType string
		targetID   string
		value      int
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&v.ID, &voterID, &targetType, &targetID, &value, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	v.VoterID = shared.UserID(voterID)
	v.TargetType = shared.TargetType(targetType)
	v.TargetID = shared.TargetID(targetID)
	v.Value = shared.VoteValue(value)
	v.CreatedAt = createdAt
	v.UpdatedAt = updatedAt
	return &v, nil
}
