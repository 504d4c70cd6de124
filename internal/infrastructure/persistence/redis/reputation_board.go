package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPUTATION BOARD IMPLEMENTATION
// One sorted set keyed by user id with reputation as the score. Kept in
// lockstep with Postgres by incremental updates from the vote event handler
// and repaired by the periodic rebuild job.
// ══════════════════════════════════════════════════════════════════════════════

// ReputationBoard implements user.ReputationBoard on a Redis sorted set.
type ReputationBoard struct {
	cache *Cache
}

// NewReputationBoard creates a new ReputationBoard.
func NewReputationBoard(cache *Cache) *ReputationBoard {
	return &ReputationBoard{cache: cache}
}

// IncrementScore applies a signed reputation delta to the board.
func (b *ReputationBoard) IncrementScore(ctx context.Context, userID shared.UserID, delta int) error {
	err := b.cache.Client().ZIncrBy(ctx, KeyReputationBoard, float64(delta), userID.String()).Err()
	if err != nil {
		return fmt.Errorf("board: failed to increment score: %w", err)
	}
	return nil
}

// Top returns a page of the board in descending reputation order.
func (b *ReputationBoard) Top(ctx context.Context, limit, offset int) ([]user.BoardEntry, error) {
	stop := int64(offset + limit - 1)
	results, err := b.cache.Client().ZRevRangeWithScores(ctx, KeyReputationBoard, int64(offset), stop).Result()
	if err != nil {
		return nil, fmt.Errorf("board: failed to read top: %w", err)
	}

	entries := make([]user.BoardEntry, 0, len(results))
	for i, z := range results {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, user.BoardEntry{
			UserID:     shared.UserID(id),
			Reputation: int(z.Score),
			Rank:       offset + i + 1,
		})
	}

	return entries, nil
}

// Rank returns the user's 1-based position on the board.
func (b *ReputationBoard) Rank(ctx context.Context, userID shared.UserID) (int, error) {
	rank, err := b.cache.Client().ZRevRank(ctx, KeyReputationBoard, userID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.ErrNotFound
		}
		return 0, fmt.Errorf("board: failed to get rank: %w", err)
	}
	return int(rank) + 1, nil
}

// Rebuild replaces the whole board atomically via a pipeline: delete plus
// bulk insert execute as one unit, so readers never see a half-built board.
func (b *ReputationBoard) Rebuild(ctx context.Context, entries []user.BoardEntry) error {
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{
			Score:  float64(e.Reputation),
			Member: e.UserID.String(),
		})
	}

	pipe := b.cache.Client().TxPipeline()
	pipe.Del(ctx, KeyReputationBoard)
	if len(members) > 0 {
		pipe.ZAdd(ctx, KeyReputationBoard, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("board: failed to rebuild: %w", err)
	}

	return nil
}
