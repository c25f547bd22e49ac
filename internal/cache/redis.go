package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

const keyPrefix = "reach:campaign:"

// ReachCache stores computed campaign reach results in Redis
type ReachCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReachCache creates a new Redis-backed reach cache
func NewReachCache(client *redis.Client, ttl time.Duration) *ReachCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReachCache{client: client, ttl: ttl}
}

func key(campaignID string) string {
	return keyPrefix + campaignID
}

// Get returns the cached result for a campaign, or nil on a miss
func (c *ReachCache) Get(ctx context.Context, campaignID string) (*entity.CampaignReachResult, error) {
	data, err := c.client.Get(ctx, key(campaignID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached reach: %w", err)
	}

	var result entity.CampaignReachResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding cached reach: %w", err)
	}

	return &result, nil
}

// Set stores a campaign result with the configured TTL
func (c *ReachCache) Set(ctx context.Context, campaignID string, result *entity.CampaignReachResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding reach: %w", err)
	}

	if err := c.client.Set(ctx, key(campaignID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching reach: %w", err)
	}

	return nil
}

// Invalidate drops the cached result for a campaign
func (c *ReachCache) Invalidate(ctx context.Context, campaignID string) error {
	if err := c.client.Del(ctx, key(campaignID)).Err(); err != nil {
		return fmt.Errorf("invalidating reach: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity
func (c *ReachCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
