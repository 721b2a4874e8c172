package faq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/sirupsen/logrus"
)

const initialCacheKey = "faqs:initial"

// Source fetches FAQ reference data, normally the backend REST client.
type Source interface {
	InitialFAQs(ctx context.Context) ([]FAQ, error)
	FAQsByCategory(ctx context.Context, category string) ([]FAQ, error)
}

// Cache is a read-through layer over the FAQ endpoints so reopening the
// widget within the TTL does not refetch reference data.
type Cache struct {
	source Source
	store  *bigcache.BigCache
	log    *logrus.Logger
}

func NewCache(ctx context.Context, source Source, ttl time.Duration, log *logrus.Logger) (*Cache, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logrus.New()
	}

	store, err := bigcache.New(ctx, bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, err
	}

	return &Cache{
		source: source,
		store:  store,
		log:    log,
	}, nil
}

func (c *Cache) InitialFAQs(ctx context.Context) ([]FAQ, error) {
	return c.lookup(ctx, initialCacheKey, func() ([]FAQ, error) {
		return c.source.InitialFAQs(ctx)
	})
}

func (c *Cache) FAQsByCategory(ctx context.Context, category string) ([]FAQ, error) {
	return c.lookup(ctx, "faqs:category:"+category, func() ([]FAQ, error) {
		return c.source.FAQsByCategory(ctx, category)
	})
}

func (c *Cache) lookup(ctx context.Context, key string, fetch func() ([]FAQ, error)) ([]FAQ, error) {
	if data, err := c.store.Get(key); err == nil {
		var faqs []FAQ
		if err := json.Unmarshal(data, &faqs); err == nil {
			return faqs, nil
		}
		// Unreadable cache entries are treated as misses.
		_ = c.store.Delete(key)
	}

	faqs, err := fetch()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(faqs)
	if err == nil {
		if err := c.store.Set(key, data); err != nil {
			c.log.WithError(err).Debug("faq cache write failed")
		}
	}

	return faqs, nil
}

func (c *Cache) Close() error {
	return c.store.Close()
}
