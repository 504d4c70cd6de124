package query

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

// fakeBoard serves a fixed ranked page.
type fakeBoard struct {
	entries []user.BoardEntry
	err     error
	calls   int
}

func (f *fakeBoard) IncrementScore(ctx context.Context, userID shared.UserID, delta int) error {
	return nil
}

func (f *fakeBoard) Top(ctx context.Context, limit, offset int) ([]user.BoardEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeBoard) Rank(ctx context.Context, userID shared.UserID) (int, error) {
	return 0, shared.ErrNotFound
}

func (f *fakeBoard) Rebuild(ctx context.Context, entries []user.BoardEntry) error {
	f.entries = entries
	return nil
}

// fakeBoardReader is the Postgres-backed fallback.
type fakeBoardReader struct {
	entries []user.BoardEntry
	calls   int
}

func (f *fakeBoardReader) ListTopByReputation(ctx context.Context, limit, offset int) ([]user.BoardEntry, error) {
	f.calls++
	return f.entries, nil
}

func rankedEntries(n int) []user.BoardEntry {
	entries := make([]user.BoardEntry, n)
	for i := range entries {
		entries[i] = user.BoardEntry{
			UserID:     shared.UserID("4fa2b1c0-0000-4000-8000-00000000000" + string(rune('0'+i))),
			Reputation: 100 - i,
			Rank:       i + 1,
		}
	}
	return entries
}

func TestGetReputationBoard_ServedFromCache(t *testing.T) {
	board := &fakeBoard{entries: rankedEntries(3)}
	reader := &fakeBoardReader{}
	h := NewGetReputationBoardHandler(board, reader, testLogger())

	result, err := h.Handle(context.Background(), GetReputationBoardQuery{Limit: 20})

	assert.NoError(t, err)
	assert.Len(t, result.Entries, 3)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, 100, result.Entries[0].Reputation)
	assert.False(t, result.HasMore)
	assert.Equal(t, 0, reader.calls)
}

func TestGetReputationBoard_ColdCacheFallsBackToDatabase(t *testing.T) {
	board := &fakeBoard{}
	reader := &fakeBoardReader{entries: rankedEntries(2)}
	h := NewGetReputationBoardHandler(board, reader, testLogger())

	result, err := h.Handle(context.Background(), GetReputationBoardQuery{})

	assert.NoError(t, err)
	assert.Len(t, result.Entries, 2)
	assert.Equal(t, 1, board.calls)
	assert.Equal(t, 1, reader.calls)
}

func TestGetReputationBoard_NoCacheConfigured(t *testing.T) {
	reader := &fakeBoardReader{entries: rankedEntries(1)}
	h := NewGetReputationBoardHandler(nil, reader, testLogger())

	result, err := h.Handle(context.Background(), GetReputationBoardQuery{})

	assert.NoError(t, err)
	assert.Len(t, result.Entries, 1)
	assert.Equal(t, 1, reader.calls)
}

func TestGetReputationBoard_FullPageSetsHasMore(t *testing.T) {
	board := &fakeBoard{entries: rankedEntries(5)}
	h := NewGetReputationBoardHandler(board, &fakeBoardReader{}, testLogger())

	result, err := h.Handle(context.Background(), GetReputationBoardQuery{Limit: 5})

	assert.NoError(t, err)
	assert.True(t, result.HasMore)
}

func TestGetReputationBoard_Validation(t *testing.T) {
	h := NewGetReputationBoardHandler(nil, &fakeBoardReader{}, testLogger())

	_, err := h.Handle(context.Background(), GetReputationBoardQuery{Limit: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), GetReputationBoardQuery{Offset: -1})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
