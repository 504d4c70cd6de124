package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
)

// fakeUserRepo serves a queue of GetByID results and canned errors for the
// write methods.
type fakeUserRepo struct {
	gets      []*user.User
	getCalls  int
	createErr error
	updateErr error
	created   int
	updates   int
	award     user.XPAward
	awardErr  error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id shared.UserID) (*user.User, error) {
	f.getCalls++
	if len(f.gets) == 0 {
		return nil, shared.ErrUserNotFound
	}
	u := f.gets[0]
	f.gets = f.gets[1:]
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	return nil
}

func (f *fakeUserRepo) AwardXP(ctx context.Context, id shared.UserID, amount int) (user.XPAward, error) {
	return f.award, f.awardErr
}

func (f *fakeUserRepo) ApplyReputationDelta(ctx context.Context, id shared.UserID, delta int) (int, error) {
	return 0, nil
}

func (f *fakeUserRepo) UpdateStreak(ctx context.Context, id shared.UserID, s user.Streak, observedLastLogin time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	return nil
}

func loginClock() time.Time {
	return time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
}

func userWithStreak(current, longest int, lastLogin time.Time) *user.User {
	u := user.New(testUserID)
	u.Streak = user.Streak{Current: current, Longest: longest, LastLoginDate: lastLogin}
	return u
}

func TestRecordLogin_FirstSightCreatesUser(t *testing.T) {
	repo := &fakeUserRepo{}
	bus := &capturePublisher{}
	h := NewRecordLoginHandler(repo, bus, testLogger())
	h.clock = loginClock

	result, err := h.Handle(context.Background(), RecordLoginCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
	assert.True(t, result.Extended)
	assert.Equal(t, 1, repo.created)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, []shared.EventType{shared.EventStreakUpdated}, bus.types())
}

func TestRecordLogin_SameDayIsNoOp(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	repo := &fakeUserRepo{gets: []*user.User{userWithStreak(2, 5, today)}}
	bus := &capturePublisher{}
	h := NewRecordLoginHandler(repo, bus, testLogger())
	h.clock = loginClock

	result, err := h.Handle(context.Background(), RecordLoginCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 5, result.LongestStreak)
	assert.False(t, result.Extended)
	assert.Equal(t, 0, repo.updates)
	assert.Empty(t, bus.events)
}

func TestRecordLogin_GapBreaksAndPublishesBrokenEvent(t *testing.T) {
	fiveDaysAgo := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local)
	repo := &fakeUserRepo{gets: []*user.User{userWithStreak(3, 3, fiveDaysAgo)}}
	bus := &capturePublisher{}
	h := NewRecordLoginHandler(repo, bus, testLogger())
	h.clock = loginClock

	result, err := h.Handle(context.Background(), RecordLoginCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
	assert.True(t, result.Broken)
	assert.Equal(t, []shared.EventType{shared.EventStreakBroken}, bus.types())
}

func TestRecordLogin_ConcurrentLoginReportsFreshState(t *testing.T) {
	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local)
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	repo := &fakeUserRepo{
		// The first read sees yesterday's state; another session wins the
		// write race and the re-read sees its result.
		gets:      []*user.User{userWithStreak(3, 6, yesterday), userWithStreak(4, 6, today)},
		updateErr: shared.ErrAlreadyApplied,
	}
	bus := &capturePublisher{}
	h := NewRecordLoginHandler(repo, bus, testLogger())
	h.clock = loginClock

	result, err := h.Handle(context.Background(), RecordLoginCommand{UserID: testUserID})

	assert.NoError(t, err)
	assert.Equal(t, 4, result.CurrentStreak)
	assert.Equal(t, 6, result.LongestStreak)
	// The winning session already published the day's event.
	assert.Empty(t, bus.events)
}

func TestRecordLogin_InvalidUserID(t *testing.T) {
	h := NewRecordLoginHandler(&fakeUserRepo{}, &capturePublisher{}, testLogger())

	_, err := h.Handle(context.Background(), RecordLoginCommand{UserID: "nope"})

	assert.ErrorIs(t, err, shared.ErrInvalidID)
}
