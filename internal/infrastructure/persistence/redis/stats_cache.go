package redis

import (
	"context"
	"errors"

	"github.com/devoverflow-hub/devoverflow-core/internal/application/query"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE IMPLEMENTATION
// Short-TTL snapshot of the aggregated stats response. There is no
// invalidation protocol; staleness is bounded by the TTL.
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache implements query.StatsCache on the JSON cache.
type StatsCache struct {
	cache *Cache
}

// NewStatsCache creates a new StatsCache.
func NewStatsCache(cache *Cache) *StatsCache {
	return &StatsCache{cache: cache}
}

func statsKey(userID shared.UserID) string {
	return PrefixStats + userID.String()
}

// GetStats returns the cached snapshot, or shared.ErrNotFound on a miss.
func (c *StatsCache) GetStats(ctx context.Context, userID shared.UserID) (*query.UserStatsDTO, error) {
	var dto query.UserStatsDTO
	err := c.cache.Get(ctx, statsKey(userID), &dto)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &dto, nil
}

// SetStats stores a snapshot under the standard TTL.
func (c *StatsCache) SetStats(ctx context.Context, userID shared.UserID, dto *query.UserStatsDTO) error {
	return c.cache.Set(ctx, statsKey(userID), dto, TTLStatsCache)
}
