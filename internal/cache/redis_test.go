package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/neo-reach/internal/domain/reach/entity"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func TestReachCacheRoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewReachCache(client, time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got, "expected miss on empty cache")

	result := &entity.CampaignReachResult{
		TotalReach:      24000,
		PerCreatorReach: map[string]int64{"alice": 10000, "bob": 10000},
		PerPost: []entity.PostReach{
			{PostID: "p1", CreatorUsername: "alice", BaseReach: 10000, TotalReach: 10000},
		},
	}
	require.NoError(t, c.Set(ctx, "c1", result))

	assert.True(t, mr.Exists("reach:campaign:c1"))
	assert.Equal(t, time.Minute, mr.TTL("reach:campaign:c1"))

	got, err = c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, result, got)

	require.NoError(t, c.Invalidate(ctx, "c1"))
	got, err = c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReachCacheExpires(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewReachCache(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "c1", &entity.CampaignReachResult{PerCreatorReach: map[string]int64{}}))
	mr.FastForward(31 * time.Second)

	got, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReachCacheCorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewReachCache(client, 0)

	require.NoError(t, mr.Set("reach:campaign:c1", "{not json"))

	_, err := c.Get(context.Background(), "c1")
	assert.Error(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}
