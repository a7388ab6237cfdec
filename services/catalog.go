package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"momo-telegram/cache"
	"momo-telegram/models"

	"golang.org/x/sync/singleflight"
)

type MenuFetcher interface {
	FetchMenu(ctx context.Context) ([]byte, error)
}

type MenuCache interface {
	Get(ctx context.Context) ([]byte, error)
	Set(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
}

// Catalog serves the normalized menu. The cache is optional.
type Catalog struct {
	fetcher MenuFetcher
	cache   MenuCache
	sfg     singleflight.Group // one backend fetch per miss, however many users tap at once
}

func NewCatalog(fetcher MenuFetcher, c MenuCache) *Catalog {
	return &Catalog{fetcher: fetcher, cache: c}
}

func (c *Catalog) groups(ctx context.Context) ([]models.MenuGroup, error) {
	if c.cache != nil {
		data, err := c.cache.Get(ctx)
		if err == nil {
			groups, perr := models.ParseMenu(data)
			if perr == nil {
				return groups, nil
			}
			log.Printf("cached menu unreadable, refetching: %v", perr)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("menu cache get error: %v", err)
		}
	}

	v, err, _ := c.sfg.Do("menu", func() (interface{}, error) {
		data, err := c.fetcher.FetchMenu(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch menu: %w", err)
		}
		groups, err := models.ParseMenu(data)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := c.cache.Set(setCtx, data); err != nil {
				log.Printf("menu cache set error: %v", err)
			}
		}
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.MenuGroup), nil
}

// Sections returns the menu normalized for the given filter.
func (c *Catalog) Sections(ctx context.Context, filter models.VegFilter) ([]models.Section, error) {
	groups, err := c.groups(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeMenu(groups, filter), nil
}

// Item looks an item up regardless of the user's filter.
func (c *Catalog) Item(ctx context.Context, id int64) (models.MenuItem, bool, error) {
	sections, err := c.Sections(ctx, models.FilterAll)
	if err != nil {
		return models.MenuItem{}, false, err
	}
	it, ok := FindItem(sections, id)
	return it, ok, nil
}

// Invalidate drops the cached payload after the admin saves a new menu.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx); err != nil {
		log.Printf("menu cache invalidate error: %v", err)
	}
}
