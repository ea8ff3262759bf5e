package ratecards

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const activeCardKey = "ratecard:active"

// Cache keeps the active rate card in redis so proposal generation does not
// hit the database on every render.
type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redisClient *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: redisClient, ttl: ttl}
}

// GetActive returns the cached active card, or nil on a miss.
func (c *Cache) GetActive(ctx context.Context) (*RateCard, error) {
	data, err := c.redis.Get(ctx, activeCardKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ratecards: cache get: %w", err)
	}

	var rc RateCard
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("ratecards: cache unmarshal: %w", err)
	}
	return &rc, nil
}

// SetActive stores the active card.
func (c *Cache) SetActive(ctx context.Context, rc *RateCard) error {
	data, err := json.Marshal(rc)
	if err != nil {
		return fmt.Errorf("ratecards: cache marshal: %w", err)
	}
	if err := c.redis.Set(ctx, activeCardKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ratecards: cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached card; callers invalidate on any card mutation.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.redis.Del(ctx, activeCardKey).Err(); err != nil {
		return fmt.Errorf("ratecards: cache invalidate: %w", err)
	}
	return nil
}
