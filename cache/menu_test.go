package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*MenuCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewMenuCache(client, ttl), mr
}

func TestMenuCache_Miss(t *testing.T) {
	c, _ := setupTestRedis(t, time.Minute)

	data, err := c.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, data)
}

func TestMenuCache_SetGet(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()
	payload := []byte(`[{"subcategory":"Momos","items":[]}]`)

	require.NoError(t, c.Set(ctx, payload))
	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	ttl := mr.TTL(menuKey)
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+15*time.Second)
}

func TestMenuCache_Expires(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []byte(`[]`)))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMenuCache_Delete(t *testing.T) {
	c, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []byte(`[]`)))
	require.NoError(t, c.Delete(ctx))
	assert.False(t, mr.Exists(menuKey))

	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMenuCache_ServerDown(t *testing.T) {
	c, mr := setupTestRedis(t, time.Minute)
	mr.Close()

	_, err := c.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
