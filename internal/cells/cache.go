package cells

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 16

// MapsCache memoizes derived cell maps keyed by project root, so a run
// touching many packages parses the cell configuration once. Entries are
// immutable after computation; the underlying LRU is internally
// synchronized, so a cache may be shared across goroutines.
type MapsCache struct {
	entries *lru.Cache[string, Maps]
}

// NewMapsCache creates a cache. A non-positive size falls back to a
// small default.
func NewMapsCache(size int) (*MapsCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, Maps](size)
	if err != nil {
		return nil, err
	}
	return &MapsCache{entries: entries}, nil
}

// Get returns the maps for a project root, invoking load on a miss and
// caching the result.
func (c *MapsCache) Get(projectRoot string, load func() (Maps, error)) (Maps, error) {
	if cached, ok := c.entries.Get(projectRoot); ok {
		return cached, nil
	}
	maps, err := load()
	if err != nil {
		return Maps{}, err
	}
	c.entries.Add(projectRoot, maps)
	return maps, nil
}
