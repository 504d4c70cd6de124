package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/timeutil"
)

// fakeTaskRepo returns a canned row and grant.
type fakeTaskRepo struct {
	row       *progression.UserTaskProgress
	grant     *progression.XPGrant
	err       error
	increment int
}

func (f *fakeTaskRepo) ListTasks(ctx context.Context) ([]progression.DailyTask, error) {
	return nil, nil
}

func (f *fakeTaskRepo) Advance(ctx context.Context, userID shared.UserID, t progression.DailyTask, day time.Time, increment int) (*progression.UserTaskProgress, *progression.XPGrant, error) {
	f.increment = increment
	return f.row, f.grant, f.err
}

func (f *fakeTaskRepo) GetDay(ctx context.Context, userID shared.UserID, taskID string, day time.Time) (*progression.UserTaskProgress, error) {
	return f.row, nil
}

// dayTaskRepo keys rows by (task, day) and runs the real domain transition,
// mirroring the persistence contract: each midnight starts a fresh row.
type dayTaskRepo struct {
	rows    map[string]*progression.UserTaskProgress
	totalXP int
}

func newDayTaskRepo() *dayTaskRepo {
	return &dayTaskRepo{rows: make(map[string]*progression.UserTaskProgress)}
}

func (f *dayTaskRepo) ListTasks(ctx context.Context) ([]progression.DailyTask, error) {
	return nil, nil
}

func (f *dayTaskRepo) Advance(ctx context.Context, userID shared.UserID, t progression.DailyTask, day time.Time, increment int) (*progression.UserTaskProgress, *progression.XPGrant, error) {
	key := t.ID + "@" + timeutil.FormatDay(day)
	row, ok := f.rows[key]
	if !ok {
		row = progression.NewUserTaskProgress(userID, t.ID, day)
		f.rows[key] = row
	}

	var grant *progression.XPGrant
	if row.Advance(t, increment) {
		f.totalXP += t.XPReward
		grant = &progression.XPGrant{Amount: t.XPReward, NewTotal: f.totalXP}
	}
	return row, grant, nil
}

func (f *dayTaskRepo) GetDay(ctx context.Context, userID shared.UserID, taskID string, day time.Time) (*progression.UserTaskProgress, error) {
	return f.rows[taskID+"@"+timeutil.FormatDay(day)], nil
}

func taskCatalog() *progression.Catalog {
	tasks := []progression.DailyTask{
		{ID: "task-cast-votes", TaskType: progression.TaskCastVotes, Name: "Cast 3 votes", Target: 3, XPReward: 20},
	}
	return progression.NewCatalog(nil, nil, tasks)
}

func TestAdvanceTask_ProgressShortOfTarget(t *testing.T) {
	repo := &fakeTaskRepo{
		row: &progression.UserTaskProgress{UserID: testUserID, TaskID: "task-cast-votes", Progress: 2},
	}
	bus := &capturePublisher{}
	h := NewAdvanceTaskHandler(repo, taskCatalog(), bus, testLogger())

	result, err := h.Handle(context.Background(), AdvanceTaskCommand{
		UserID:    testUserID,
		TaskType:  progression.TaskCastVotes,
		Increment: 2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Progress)
	assert.Equal(t, 3, result.Target)
	assert.False(t, result.Completed)
	assert.False(t, result.CompletedNow)
	assert.Equal(t, 0, result.XPAwarded)
	assert.Equal(t, 2, repo.increment)
	assert.Empty(t, bus.events)
}

func TestAdvanceTask_CompletionPublishesEvents(t *testing.T) {
	repo := &fakeTaskRepo{
		row:   &progression.UserTaskProgress{UserID: testUserID, TaskID: "task-cast-votes", Progress: 3, Completed: true},
		grant: &progression.XPGrant{Amount: 20, NewTotal: 70},
	}
	bus := &capturePublisher{}
	h := NewAdvanceTaskHandler(repo, taskCatalog(), bus, testLogger())

	result, err := h.Handle(context.Background(), AdvanceTaskCommand{
		UserID:    testUserID,
		TaskType:  progression.TaskCastVotes,
		Increment: 1,
	})

	assert.NoError(t, err)
	assert.True(t, result.CompletedNow)
	assert.Equal(t, 20, result.XPAwarded)
	// 50 -> 70 XP stays inside level 1, so no level-up event.
	assert.Equal(t, []shared.EventType{shared.EventTaskCompleted, shared.EventXPAwarded}, bus.types())
}

func TestAdvanceTask_AlreadyCompletedToday(t *testing.T) {
	repo := &fakeTaskRepo{
		row: &progression.UserTaskProgress{UserID: testUserID, TaskID: "task-cast-votes", Progress: 5, Completed: true},
	}
	bus := &capturePublisher{}
	h := NewAdvanceTaskHandler(repo, taskCatalog(), bus, testLogger())

	result, err := h.Handle(context.Background(), AdvanceTaskCommand{
		UserID:    testUserID,
		TaskType:  progression.TaskCastVotes,
		Increment: 1,
	})

	assert.NoError(t, err)
	assert.True(t, result.Completed)
	assert.False(t, result.CompletedNow)
	assert.Empty(t, bus.events)
}

func TestAdvanceTask_MidnightStartsAFreshRow(t *testing.T) {
	repo := newDayTaskRepo()
	bus := &capturePublisher{}
	h := NewAdvanceTaskHandler(repo, taskCatalog(), bus, testLogger())

	now := time.Date(2026, 3, 10, 23, 50, 0, 0, time.Local)
	h.clock = func() time.Time { return now }
	cmd := AdvanceTaskCommand{UserID: testUserID, TaskType: progression.TaskCastVotes, Increment: 3}

	result, err := h.Handle(context.Background(), cmd)
	assert.NoError(t, err)
	assert.True(t, result.CompletedNow)
	assert.Equal(t, 20, result.XPAwarded)

	// Ten minutes later it is a new calendar day. Yesterday's completion
	// does not carry over: progress restarts from zero.
	now = time.Date(2026, 3, 11, 0, 0, 1, 0, time.Local)
	result, err = h.Handle(context.Background(), AdvanceTaskCommand{
		UserID: testUserID, TaskType: progression.TaskCastVotes, Increment: 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Progress)
	assert.False(t, result.Completed)
	assert.False(t, result.CompletedNow)

	// The new day's reward is earned on its own merits.
	result, err = h.Handle(context.Background(), AdvanceTaskCommand{
		UserID: testUserID, TaskType: progression.TaskCastVotes, Increment: 2,
	})
	assert.NoError(t, err)
	assert.True(t, result.CompletedNow)
	assert.Equal(t, 20, result.XPAwarded)
	assert.Equal(t, 40, repo.totalXP)
	assert.Equal(t, []shared.EventType{
		shared.EventTaskCompleted, shared.EventXPAwarded,
		shared.EventTaskCompleted, shared.EventXPAwarded,
	}, bus.types())
}

func TestAdvanceTask_UnknownTaskType(t *testing.T) {
	h := NewAdvanceTaskHandler(&fakeTaskRepo{}, taskCatalog(), &capturePublisher{}, testLogger())

	_, err := h.Handle(context.Background(), AdvanceTaskCommand{
		UserID:    testUserID,
		TaskType:  progression.TaskType("plant_trees"),
		Increment: 1,
	})

	assert.True(t, shared.IsNotFound(err))
}

func TestAdvanceTask_Validation(t *testing.T) {
	h := NewAdvanceTaskHandler(&fakeTaskRepo{}, taskCatalog(), &capturePublisher{}, testLogger())

	_, err := h.Handle(context.Background(), AdvanceTaskCommand{
		UserID:    testUserID,
		TaskType:  progression.TaskCastVotes,
		Increment: 0,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = h.Handle(context.Background(), AdvanceTaskCommand{
		UserID:    testUserID,
		Increment: 1,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
