package catalog

import (
    "sync"

    "github.com/moviematch/matchroom/internal/model"
)

// BoundedCache is a fixed-capacity in-process cache of catalog pages with
// oldest-inserted eviction.  It backs the provider when Redis is absent or
// unreachable, so a single process still avoids refetching hot pages.
// Insertion order, not access order, decides eviction; pages are immutable
// so refreshing recency has no value.
type BoundedCache struct {
    mu       sync.Mutex
    capacity int
    entries  map[string][]model.Title
    order    []string // insertion order, oldest first
}

// NewBoundedCache returns a cache retaining up to capacity pages.
// A capacity below 1 is raised to 1.
func NewBoundedCache(capacity int) *BoundedCache {
    if capacity < 1 {
        capacity = 1
    }
    return &BoundedCache{
        capacity: capacity,
        entries:  make(map[string][]model.Title, capacity),
    }
}

// Get returns the cached page for key, if present.
func (c *BoundedCache) Get(key string) ([]model.Title, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    v, ok := c.entries[key]
    return v, ok
}

// Put stores a page under key, evicting the oldest-inserted entry when the
// cache is full.  Re-putting an existing key replaces the value without
// changing its age.
func (c *BoundedCache) Put(key string, titles []model.Title) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if _, ok := c.entries[key]; ok {
        c.entries[key] = titles
        return
    }
    for len(c.entries) >= c.capacity {
        oldest := c.order[0]
        c.order = c.order[1:]
        delete(c.entries, oldest)
    }
    c.entries[key] = titles
    c.order = append(c.order, key)
}

// Len returns the number of cached pages.
func (c *BoundedCache) Len() int {
    c.mu.Lock()
    defer c.mu.Unlock()
    return len(c.entries)
}
