package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/config"
)

func TestIsNilError(t *testing.T) {
	assert.True(t, IsNilError(redis.Nil))
	assert.False(t, IsNilError(context.Canceled))
	assert.False(t, IsNilError(nil))
}

// Runs against a live server only when MR_TEST_REDIS_ADDR is set.
func TestClientRoundTrip(t *testing.T) {
	addr := os.Getenv("MR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MR_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewClient(ctx, config.RedisConfig{Addr: addr, PoolSize: 2})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "mrtest:a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "mrtest:b", "2", time.Minute))
	v, err := c.Get(ctx, "mrtest:a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	n, err := c.CountByPattern(ctx, "mrtest:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	deleted, err := c.FlushByPattern(ctx, "mrtest:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = c.Get(ctx, "mrtest:a")
	assert.True(t, IsNilError(err))
}
