// Package cache keeps recently merged months in memory so repeated API
// reads of the same month do not re-read its files. It uses
// patrickmn/go-cache for TTL based expiry.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/scoremerge/internal/ingest"
)

// Cache wraps go-cache with typed accessors for month results.
type Cache struct {
	store *gocache.Cache
}

// New creates a new cache with the given TTL and cleanup interval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Month returns a cached month result.
func (c *Cache) Month(name string) (*ingest.MonthResult, bool) {
	v, ok := c.store.Get(monthKey(name))
	if !ok {
		return nil, false
	}
	res, ok := v.(*ingest.MonthResult)
	return res, ok
}

// SetMonth stores a month result with the default TTL.
func (c *Cache) SetMonth(name string, res *ingest.MonthResult) {
	c.store.Set(monthKey(name), res, gocache.DefaultExpiration)
}

// Months returns the cached month listing.
func (c *Cache) Months() ([]ingest.Month, bool) {
	v, ok := c.store.Get("months")
	if !ok {
		return nil, false
	}
	months, ok := v.([]ingest.Month)
	return months, ok
}

// SetMonths stores the month listing with the default TTL.
func (c *Cache) SetMonths(months []ingest.Month) {
	c.store.Set("months", months, gocache.DefaultExpiration)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

func monthKey(name string) string {
	return "month:" + name
}
