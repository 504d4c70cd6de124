package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var votesTask = DailyTask{
	ID:       "task-cast-votes",
	TaskType: TaskCastVotes,
	Name:     "Cast 3 votes",
	Target:   3,
	XPReward: 20,
}

func testDay() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
}

func TestNewUserTaskProgress(t *testing.T) {
	p := NewUserTaskProgress(testUserID, votesTask.ID, testDay())

	assert.Equal(t, votesTask.ID, p.TaskID)
	assert.Equal(t, testDay(), p.Day)
	assert.Equal(t, 0, p.Progress)
	assert.False(t, p.Completed)
}

func TestAdvance_CompletesOnTarget(t *testing.T) {
	p := NewUserTaskProgress(testUserID, votesTask.ID, testDay())

	assert.False(t, p.Advance(votesTask, 1))
	assert.False(t, p.Advance(votesTask, 1))
	assert.True(t, p.Advance(votesTask, 1))
	assert.True(t, p.Completed)
	assert.Equal(t, 3, p.Progress)
}

func TestAdvance_OvershootCompletesOnce(t *testing.T) {
	p := NewUserTaskProgress(testUserID, votesTask.ID, testDay())

	assert.True(t, p.Advance(votesTask, 5))
	assert.Equal(t, 5, p.Progress)

	// Progress keeps counting past the target, but completion never flips
	// twice: the XP grant rides on the flip only.
	assert.False(t, p.Advance(votesTask, 2))
	assert.Equal(t, 7, p.Progress)
	assert.True(t, p.Completed)
}

func TestAdvance_NextDayStartsFromZero(t *testing.T) {
	today := NewUserTaskProgress(testUserID, votesTask.ID, testDay())
	assert.True(t, today.Advance(votesTask, 3))

	// Rows are keyed by (user, task, day): the next day's row knows nothing
	// about today's progress and completes on its own merits.
	tomorrow := NewUserTaskProgress(testUserID, votesTask.ID, testDay().AddDate(0, 0, 1))
	assert.Equal(t, 0, tomorrow.Progress)
	assert.False(t, tomorrow.Advance(votesTask, 2))
	assert.True(t, tomorrow.Advance(votesTask, 1))

	// Yesterday's row is untouched by the new day.
	assert.Equal(t, 3, today.Progress)
	assert.True(t, today.Completed)
}

func TestAdvance_NonPositiveIncrementIgnored(t *testing.T) {
	p := NewUserTaskProgress(testUserID, votesTask.ID, testDay())

	assert.False(t, p.Advance(votesTask, 0))
	assert.False(t, p.Advance(votesTask, -4))
	assert.Equal(t, 0, p.Progress)
}
