package store

import (
	"context"
	"sync"

	"github.com/rgehrsitz/taxcurve/internal/domain"
)

// Cache is an explicit read-through cache in front of a Reader. Only
// successful reads are cached; schedules are immutable so cached values are
// shared between callers. Entries live until Invalidate or Purge.
//
// A read that was in flight when its key was invalidated (or the cache
// purged) returns its result but does not store it.
type Cache struct {
	reader      Reader
	mu          sync.RWMutex
	entries     map[domain.ScheduleKey]*domain.BracketSchedule
	generations map[domain.ScheduleKey]uint64
	epoch       uint64
	hits        uint64
	misses      uint64
}

// NewCache wraps reader
func NewCache(reader Reader) *Cache {
	return &Cache{
		reader:      reader,
		entries:     make(map[domain.ScheduleKey]*domain.BracketSchedule),
		generations: make(map[domain.ScheduleKey]uint64),
	}
}

// Get returns the cached schedule for key, reading through on a miss
func (c *Cache) Get(ctx context.Context, key domain.ScheduleKey) (*domain.BracketSchedule, error) {
	c.mu.RLock()
	schedule, ok := c.entries[key]
	generation, epoch := c.generations[key], c.epoch
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return schedule, nil
	}

	schedule, err := c.reader.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	if c.generations[key] == generation && c.epoch == epoch {
		c.entries[key] = schedule
	}
	c.mu.Unlock()
	return schedule, nil
}

// List is not cached; the key set changes with every ingest
func (c *Cache) List(ctx context.Context) ([]domain.ScheduleKey, error) {
	return c.reader.List(ctx)
}

// Invalidate drops one key
func (c *Cache) Invalidate(key domain.ScheduleKey) {
	c.mu.Lock()
	delete(c.entries, key)
	c.generations[key]++
	c.mu.Unlock()
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[domain.ScheduleKey]*domain.BracketSchedule)
	c.generations = make(map[domain.ScheduleKey]uint64)
	c.epoch++
	c.mu.Unlock()
}

// CacheStats is a point-in-time view of cache usage
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// Stats reports entry count and hit/miss counters
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
