package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"momo-telegram/cache"
	"momo-telegram/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPayload = `[
	{"category": "Momos", "items": [{"id": 1, "name": "Veg Steam Momo", "price": 80}, {"id": 2, "name": "Chicken Steam Momo", "price": 100}]},
	{"subcategory": "Pizza", "items": [{"subcategory": "Classic", "items": [{"id": 10, "name": "Margherita", "sizes": [{"size": "Medium", "price": 300}]}]}]}
]`

type mockFetcher struct {
	calls   atomic.Int32
	payload string
	err     error
	delay   time.Duration
}

func (m *mockFetcher) FetchMenu(context.Context) ([]byte, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.payload), nil
}

func newRedisCache(t *testing.T) (*cache.MenuCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewMenuCache(client, time.Minute), mr
}

func TestCatalog_Uncached(t *testing.T) {
	f := &mockFetcher{payload: catalogPayload}
	c := NewCatalog(f, nil)

	sections, err := c.Sections(context.Background(), models.FilterVeg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Momos", "Pizza"}, sectionNames(sections))
	assert.Equal(t, []int64{1}, itemIDs(sections[0].Items))

	_, err = c.Sections(context.Background(), models.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
	c.Invalidate(context.Background())
}

func TestCatalog_CachesPayload(t *testing.T) {
	f := &mockFetcher{payload: catalogPayload}
	mc, mr := newRedisCache(t)
	c := NewCatalog(f, mc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Sections(ctx, models.FilterAll)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.calls.Load())
	assert.True(t, mr.Exists("menu:raw"))

	c.Invalidate(ctx)
	assert.False(t, mr.Exists("menu:raw"))
	_, err := c.Sections(ctx, models.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestCatalog_CorruptCacheRefetches(t *testing.T) {
	f := &mockFetcher{payload: catalogPayload}
	mc, mr := newRedisCache(t)
	require.NoError(t, mr.Set("menu:raw", "not json"))

	c := NewCatalog(f, mc)
	sections, err := c.Sections(context.Background(), models.FilterAll)
	require.NoError(t, err)
	assert.Len(t, sections, 2)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestCatalog_SingleflightCollapsesConcurrentMisses(t *testing.T) {
	f := &mockFetcher{payload: catalogPayload, delay: 50 * time.Millisecond}
	c := NewCatalog(f, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Sections(context.Background(), models.FilterAll)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, f.calls.Load(), int32(10))
}

func TestCatalog_FetchError(t *testing.T) {
	boom := errors.New("connection refused")
	c := NewCatalog(&mockFetcher{err: boom}, nil)

	_, err := c.Sections(context.Background(), models.FilterAll)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "fetch menu")
}

func TestCatalog_Item(t *testing.T) {
	c := NewCatalog(&mockFetcher{payload: catalogPayload}, nil)

	it, ok, err := c.Item(context.Background(), 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Margherita", it.Name)
	assert.Equal(t, "Classic", it.PizzaSubcategory)

	_, ok, err = c.Item(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}
