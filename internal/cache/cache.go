// Package cache provides the in-process cache used for the static plan and
// module catalog. Tenant state is never stored here.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache wraps a ristretto cache keyed by string with byte-slice values.
type Cache struct {
	c   *ristretto.Cache[string, []byte]
	ttl time.Duration
}

// New creates a ristretto-backed cache. maxCostBytes is the maximum total
// size of cached values in bytes.
func New(maxCostBytes int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(key string) ([]byte, bool) {
	return c.c.Get(key)
}

// Set stores value and waits until it is visible to Get.
func (c *Cache) Set(key string, value []byte) {
	c.c.SetWithTTL(key, value, int64(len(value)), c.ttl)
	c.c.Wait()
}

func (c *Cache) Delete(key string) {
	c.c.Del(key)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.c.Clear()
}

// Hits returns the number of Get calls that found a value.
func (c *Cache) Hits() uint64 {
	return c.c.Metrics.Hits()
}

func (c *Cache) Misses() uint64 {
	return c.c.Metrics.Misses()
}

func (c *Cache) Close() {
	c.c.Close()
}
