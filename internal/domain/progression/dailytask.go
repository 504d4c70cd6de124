package progression

import (
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// TaskType names a daily task in the catalog, e.g. "cast_votes".
type TaskType string

const (
	TaskCastVotes     TaskType = "cast_votes"
	TaskPostAnswers   TaskType = "post_answers"
	TaskAskQuestion   TaskType = "ask_question"
	TaskWriteComments TaskType = "write_comments"
	TaskDailyLogin    TaskType = "daily_login"
)

// DailyTask is a catalog entry. Completion grants XP once per calendar day.
type DailyTask struct {
	// ID - catalog row identifier.
	ID string

	// TaskType - stable machine name.
	TaskType TaskType

	// Name - display name.
	Name string

	// Target - count needed to complete the task for the day.
	Target int

	// XPReward - granted once per day on completion.
	XPReward int
}

// UserTaskProgress is the per-(user, task, calendar day) progress row.
// A fresh row is created lazily each day; rows are never mutated after the
// day they belong to.
type UserTaskProgress struct {
	UserID      shared.UserID
	TaskID      string
	Day         time.Time // server-local midnight
	Progress    int
	Completed   bool
	CompletedAt time.Time
}

// NewUserTaskProgress creates the day's row on the first relevant event.
func NewUserTaskProgress(userID shared.UserID, taskID string, day time.Time) *UserTaskProgress {
	return &UserTaskProgress{
		UserID: userID,
		TaskID: taskID,
		Day:    day,
	}
}

// Advance adds increment to the day's progress. Returns true when this call
// completed the task. A completed task keeps counting progress but never
// completes twice - the XP grant rides on the flip only.
func (p *UserTaskProgress) Advance(t DailyTask, increment int) (completedNow bool) {
	if increment <= 0 {
		return false
	}
	p.Progress += increment
	if !p.Completed && p.Progress >= t.Target {
		p.Completed = true
		p.CompletedAt = time.Now().UTC()
		return true
	}
	return false
}
