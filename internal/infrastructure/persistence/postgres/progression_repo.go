package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements progression.BadgeRepository for PostgreSQL.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// ListBadges loads the badge catalog.
func (r *BadgeRepository) ListBadges(ctx context.Context) ([]progression.Badge, error) {
	query := `
		SELECT id, slug, name, tier, criteria, created_at
		FROM badges
		ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []progression.Badge
	for rows.Next() {
		var b progression.Badge
		var tier, criteria string
		if err := rows.Scan(&b.ID, &b.Slug, &b.Name, &tier, &criteria, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		b.Tier = progression.Tier(tier)
		b.Criteria = progression.Criteria(criteria)
		badges = append(badges, b)
	}

	return badges, rows.Err()
}

// ListUserBadgeIDs returns the IDs of badges the user already holds.
func (r *BadgeRepository) ListUserBadgeIDs(ctx context.Context, userID shared.UserID) ([]string, error) {
	query := `SELECT badge_id FROM user_badges WHERE user_id = $1`

	rows, err := r.conn.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list user badges: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan badge id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Award inserts the append-only award record. The unique index is the
// concurrency guard: the second of two racing awards gets already-applied.
func (r *BadgeRepository) Award(ctx context.Context, userID shared.UserID, badgeID string) error {
	query := `INSERT INTO user_badges (user_id, badge_id) VALUES ($1, $2)`

	_, err := r.conn.Exec(ctx, query, userID.String(), badgeID)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("badge", "Award", shared.ErrAlreadyApplied, "badge already awarded")
		}
		return fmt.Errorf("failed to award badge: %w", err)
	}

	return nil
}

// CountForUser returns how many badges the user holds.
func (r *BadgeRepository) CountForUser(ctx context.Context, userID shared.UserID) (int, error) {
	query := `SELECT COUNT(*) FROM user_badges WHERE user_id = $1`

	var n int
	if err := r.conn.QueryRow(ctx, query, userID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}
	return n, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements progression.AchievementRepository for
// PostgreSQL. The progress upsert, the completion flip, and the XP grant
// commit in one transaction, which is what makes the reward exactly-once.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// ListAchievements loads the achievement catalog.
func (r *AchievementRepository) ListAchievements(ctx context.Context) ([]progression.Achievement, error) {
	query := `
		SELECT id, slug, name, criteria_type, metric, target, xp_reward
		FROM achievements
		ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []progression.Achievement
	for rows.Next() {
		var a progression.Achievement
		var criteriaType, metric string
		if err := rows.Scan(&a.ID, &a.Slug, &a.Name, &criteriaType, &metric, &a.Target, &a.XPReward); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		a.CriteriaType = progression.CriteriaType(criteriaType)
		a.Metric = shared.Metric(metric)
		achievements = append(achievements, a)
	}

	return achievements, rows.Err()
}

// Get returns the progress record for a pair, or nil when none exists.
func (r *AchievementRepository) Get(ctx context.Context, userID shared.UserID, achievementID string) (*progression.UserAchievement, error) {
	query := `
		SELECT user_id, achievement_id, progress, completed, completed_at
		FROM user_achievements
		WHERE user_id = $1 AND achievement_id = $2
	`

	row := r.conn.QueryRow(ctx, query, userID.String(), achievementID)
	ua, err := scanUserAchievement(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get achievement progress: %w", err)
	}
	return ua, nil
}

// ApplyMetric upserts progress and grants the XP reward on the completion
// flip, all in one transaction.
func (r *AchievementRepository) ApplyMetric(ctx context.Context, userID shared.UserID, a progression.Achievement, value int) (*progression.UserAchievement, *progression.XPGrant, error) {
	var (
		result *progression.UserAchievement
		grant  *progression.XPGrant
	)

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT user_id, achievement_id, progress, completed, completed_at
			FROM user_achievements
			WHERE user_id = $1 AND achievement_id = $2
			FOR UPDATE
		`, userID.String(), a.ID)

		ua, err := scanUserAchievement(row)
		var completedNow bool
		switch {
		case err == nil:
			completedNow = ua.ApplyValue(a, value)
			if _, err := tx.Exec(ctx, `
				UPDATE user_achievements
				SET progress = $3, completed = $4, completed_at = $5
				WHERE user_id = $1 AND achievement_id = $2
			`, userID.String(), a.ID, ua.Progress, ua.Completed, nullableTime(ua.CompletedAt)); err != nil {
				return fmt.Errorf("failed to update achievement progress: %w", err)
			}
		case IsNoRows(err):
			ua = progression.NewUserAchievement(userID, a, value)
			completedNow = ua.Completed
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_achievements (user_id, achievement_id, progress, completed, completed_at)
				VALUES ($1, $2, $3, $4, $5)
			`, userID.String(), a.ID, ua.Progress, ua.Completed, nullableTime(ua.CompletedAt)); err != nil {
				if IsUniqueViolation(err) {
					return shared.NewDomainError("achievement", "ApplyMetric", shared.ErrAlreadyApplied, "concurrent progress update won")
				}
				return fmt.Errorf("failed to insert achievement progress: %w", err)
			}
		default:
			return fmt.Errorf("failed to load achievement progress: %w", err)
		}

		result = ua
		if completedNow && a.XPReward > 0 {
			newTotal, err := grantXP(ctx, tx, userID, a.XPReward)
			if err != nil {
				return err
			}
			grant = &progression.XPGrant{Amount: a.XPReward, NewTotal: newTotal}
		} else if completedNow {
			grant = &progression.XPGrant{}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, grant, nil
}

// CountCompleted returns how many achievements the user completed.
func (r *AchievementRepository) CountCompleted(ctx context.Context, userID shared.UserID) (int, error) {
	query := `SELECT COUNT(*) FROM user_achievements WHERE user_id = $1 AND completed`

	var n int
	if err := r.conn.QueryRow(ctx, query, userID.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count achievements: %w", err)
	}
	return n, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TaskProgressRepository implements progression.TaskProgressRepository for
// PostgreSQL with the same one-transaction XP guarantee as achievements.
type TaskProgressRepository struct {
	conn *Connection
}

// NewTaskProgressRepository creates a new TaskProgressRepository.
func NewTaskProgressRepository(conn *Connection) *TaskProgressRepository {
	return &TaskProgressRepository{conn: conn}
}

// ListTasks loads the daily task catalog.
func (r *TaskProgressRepository) ListTasks(ctx context.Context) ([]progression.DailyTask, error) {
	query := `
		SELECT id, task_type, name, target, xp_reward
		FROM daily_tasks
		ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily tasks: %w", err)
	}
	defer rows.Close()

	var tasks []progression.DailyTask
	for rows.Next() {
		var t progression.DailyTask
		var taskType string
		if err := rows.Scan(&t.ID, &taskType, &t.Name, &t.Target, &t.XPReward); err != nil {
			return nil, fmt.Errorf("failed to scan daily task: %w", err)
		}
		t.TaskType = progression.TaskType(taskType)
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Advance upserts the day's row and grants XP on the completion flip.
func (r *TaskProgressRepository) Advance(ctx context.Context, userID shared.UserID, t progression.DailyTask, day time.Time, increment int) (*progression.UserTaskProgress, *progression.XPGrant, error) {
	var (
		result *progression.UserTaskProgress
		grant  *progression.XPGrant
	)

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT user_id, task_id, day, progress, completed, completed_at
			FROM user_task_progress
			WHERE user_id = $1 AND task_id = $2 AND day = $3
			FOR UPDATE
		`, userID.String(), t.ID, day)

		p, err := scanTaskProgress(row)
		var completedNow bool
		switch {
		case err == nil:
			completedNow = p.Advance(t, increment)
			if _, err := tx.Exec(ctx, `
				UPDATE user_task_progress
				SET progress = $4, completed = $5, completed_at = $6
				WHERE user_id = $1 AND task_id = $2 AND day = $3
			`, userID.String(), t.ID, day, p.Progress, p.Completed, nullableTime(p.CompletedAt)); err != nil {
				return fmt.Errorf("failed to update task progress: %w", err)
			}
		case IsNoRows(err):
			p = progression.NewUserTaskProgress(userID, t.ID, day)
			completedNow = p.Advance(t, increment)
			if _, err := tx.Exec(ctx, `
				INSERT INTO user_task_progress (user_id, task_id, day, progress, completed, completed_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, userID.String(), t.ID, day, p.Progress, p.Completed, nullableTime(p.CompletedAt)); err != nil {
				if IsUniqueViolation(err) {
					return shared.NewDomainError("dailytask", "Advance", shared.ErrAlreadyApplied, "concurrent progress update won")
				}
				return fmt.Errorf("failed to insert task progress: %w", err)
			}
		default:
			return fmt.Errorf("failed to load task progress: %w", err)
		}

		result = p
		if completedNow && t.XPReward > 0 {
			newTotal, err := grantXP(ctx, tx, userID, t.XPReward)
			if err != nil {
				return err
			}
			grant = &progression.XPGrant{Amount: t.XPReward, NewTotal: newTotal}
		} else if completedNow {
			grant = &progression.XPGrant{}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, grant, nil
}

// GetDay returns the row for a (user, task, day), or nil.
func (r *TaskProgressRepository) GetDay(ctx context.Context, userID shared.UserID, taskID string, day time.Time) (*progression.UserTaskProgress, error) {
	query := `
		SELECT user_id, task_id, day, progress, completed, completed_at
		FROM user_task_progress
		WHERE user_id = $1 AND task_id = $2 AND day = $3
	`

	row := r.conn.QueryRow(ctx, query, userID.String(), taskID, day)
	p, err := scanTaskProgress(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task progress: %w", err)
	}
	return p, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// grantXP applies an in-place XP increment inside an open transaction,
// creating the user's engine record lazily.
func grantXP(ctx context.Context, tx pgx.Tx, userID shared.UserID, amount int) (int, error) {
	query := `
		INSERT INTO users (id, xp)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET xp = users.xp + $2, updated_at = NOW()
		RETURNING xp
	`

	var newTotal int
	if err := tx.QueryRow(ctx, query, userID.String(), amount).Scan(&newTotal); err != nil {
		return 0, fmt.Errorf("failed to grant xp: %w", err)
	}
	return newTotal, nil
}

func scanUserAchievement(row pgx.Row) (*progression.UserAchievement, error) {
	var (
		ua          progression.UserAchievement
		userID      string
		completedAt *time.Time
	)
	if err := row.Scan(&userID, &ua.AchievementID, &ua.Progress, &ua.Completed, &completedAt); err != nil {
		return nil, err
	}
	ua.UserID = shared.UserID(userID)
	if completedAt != nil {
		ua.CompletedAt = *completedAt
	}
	return &ua, nil
}

func scanTaskProgress(row pgx.Row) (*progression.UserTaskProgress, error) {
	var (
		p           progression.UserTaskProgress
		userID      string
		completedAt *time.Time
	)
	if err := row.Scan(&userID, &p.TaskID, &p.Day, &p.Progress, &p.Completed, &completedAt); err != nil {
		return nil, err
	}
	p.UserID = shared.UserID(userID)
	if completedAt != nil {
		p.CompletedAt = *completedAt
	}
	return &p, nil
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
