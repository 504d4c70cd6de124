package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository and user.BoardReader for
// PostgreSQL. Every mutation is a single statement or transaction so each
// method is one atomic commit point.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// GetByID returns a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	query := `
		SELECT id, reputation, xp, current_streak, longest_streak,
		       last_login_date, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id.String())

	var (
		u         user.User
		idStr     string
		xp        int
		lastLogin *time.Time
	)
	err := row.Scan(
		&idStr,
		&u.Reputation,
		&xp,
		&u.Streak.Current,
		&u.Streak.Longest,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u.ID = shared.UserID(idStr)
	u.XP = shared.XP(xp)
	if lastLogin != nil {
		u.Streak.LastLoginDate = *lastLogin
	}

	return &u, nil
}

// Create inserts a fresh aggregate.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, reputation, xp, current_streak, longest_streak,
		                   last_login_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var lastLogin *time.Time
	if !u.Streak.LastLoginDate.IsZero() {
		lastLogin = &u.Streak.LastLoginDate
	}

	_, err := r.conn.Exec(ctx, query,
		u.ID.String(),
		u.Reputation,
		u.XP.Int(),
		u.Streak.Current,
		u.Streak.Longest,
		lastLogin,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("user", "Create", shared.ErrAlreadyExists, "user already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// AwardXP atomically adds to the XP total with an in-place increment. Like
// the achievement and vote grant paths, it creates the user's engine record
// lazily: platform services reward users the engine may never have seen.
func (r *UserRepository) AwardXP(ctx context.Context, id shared.UserID, amount int) (user.XPAward, error) {
	if amount < 0 {
		return user.XPAward{}, shared.ErrNegativeXPAward
	}

	query := `
		INSERT INTO users (id, xp)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET xp = users.xp + $2, updated_at = NOW()
		RETURNING xp - $2, xp
	`

	var award user.XPAward
	var oldTotal, newTotal int
	err := r.conn.QueryRow(ctx, query, id.String(), amount).Scan(&oldTotal, &newTotal)
	if err != nil {
		return user.XPAward{}, fmt.Errorf("failed to award xp: %w", err)
	}

	award.OldTotal = shared.XP(oldTotal)
	award.NewTotal = shared.XP(newTotal)
	return award, nil
}

// ApplyReputationDelta atomically applies a signed reputation change.
func (r *UserRepository) ApplyReputationDelta(ctx context.Context, id shared.UserID, delta int) (int, error) {
	query := `
		UPDATE users
		SET reputation = reputation + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING reputation
	`

	var reputation int
	err := r.conn.QueryRow(ctx, query, id.String(), delta).Scan(&reputation)
	if err != nil {
		if IsNoRows(err) {
			return 0, shared.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to apply reputation delta: %w", err)
	}

	return reputation, nil
}

// UpdateStreak persists a streak transition guarded by the previously
// observed last-login date. The WHERE clause is the compare-and-set: when
// another session already moved the date, zero rows match and the caller
// gets shared.ErrAlreadyApplied.
func (r *UserRepository) UpdateStreak(ctx context.Context, id shared.UserID, s user.Streak, observedLastLogin time.Time) error {
	query := `
		UPDATE users
		SET current_streak = $2,
		    longest_streak = $3,
		    last_login_date = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND last_login_date IS NOT DISTINCT FROM $5
	`

	var observed *time.Time
	if !observedLastLogin.IsZero() {
		observed = &observedLastLogin
	}

	tag, err := r.conn.Exec(ctx, query,
		id.String(),
		s.Current,
		s.Longest,
		s.LastLoginDate,
		observed,
	)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("user", "UpdateStreak", shared.ErrAlreadyApplied, "streak already advanced by a concurrent login")
	}

	return nil
}

// ListTopByReputation implements user.BoardReader straight off the users
// table. Feeds board queries on a cold cache and the periodic rebuild job.
func (r *UserRepository) ListTopByReputation(ctx context.Context, limit, offset int) ([]user.BoardEntry, error) {
	query := `
		SELECT id, reputation
		FROM users
		ORDER BY reputation DESC, id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.conn.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by reputation: %w", err)
	}
	defer rows.Close()

	var entries []user.BoardEntry
	rank := offset
	for rows.Next() {
		var idStr string
		var reputation int
		if err := rows.Scan(&idStr, &reputation); err != nil {
			return nil, fmt.Errorf("failed to scan board entry: %w", err)
		}
		rank++
		entries = append(entries, user.BoardEntry{
			UserID:     shared.UserID(idStr),
			Reputation: reputation,
			Rank:       rank,
		})
	}

	return entries, rows.Err()
}
