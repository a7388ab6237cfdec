package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const menuKey = "menu:raw"

// MenuCache keeps the raw GET /menu payload so both bots share one copy.
type MenuCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewMenuCache(client *redis.Client, ttl time.Duration) *MenuCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &MenuCache{client: client, baseTTL: ttl}
}

func (m *MenuCache) Get(ctx context.Context) ([]byte, error) {
	data, err := m.client.Get(ctx, menuKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (m *MenuCache) Set(ctx context.Context, payload []byte) error {
	jitter := time.Duration(rand.Int63n(int64(m.baseTTL/4) + 1))
	if err := m.client.Set(ctx, menuKey, payload, m.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (m *MenuCache) Delete(ctx context.Context) error {
	if err := m.client.Del(ctx, menuKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
