package dataset

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"klothdash/internal/infrastructure"
)

// CacheKey fingerprints one source on disk. A change of modification time or
// size invalidates the cached table; Upstream chains the fingerprint of a
// table this one was derived from.
type CacheKey struct {
	Path     string
	Sheet    string
	ModTime  time.Time
	Size     int64
	Upstream string
}

// StatKey builds the fingerprint for path from the file system
func StatKey(path, sheet string) (CacheKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CacheKey{}, &MissingSourceFileError{Path: path}
		}
		return CacheKey{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return CacheKey{
		Path:    path,
		Sheet:   sheet,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}

// slot identifies the source regardless of its version
func (k CacheKey) slot() string {
	return k.Path + "#" + k.Sheet
}

func (k CacheKey) String() string {
	s := fmt.Sprintf("%s@%d:%d", k.slot(), k.ModTime.UnixNano(), k.Size)
	if k.Upstream != "" {
		s += "<" + k.Upstream
	}
	return s
}

// cacheEntry is one loaded version of a source
type cacheEntry[V any] struct {
	key      CacheKey
	value    V
	cachedAt time.Time
	hitCount int
}

// Cache holds at most one loaded value per source slot and replaces it when
// the source fingerprint changes. Concurrent loads of the same version share
// one call.
type Cache[V any] struct {
	name      string
	entries   map[string]cacheEntry[V]
	mutex     sync.RWMutex
	group     singleflight.Group
	maxSize   int
	hitCount  int64
	missCount int64
	metrics   *infrastructure.DashboardMetrics
}

// NewCache creates a new cache. maxSize bounds the number of source slots.
func NewCache[V any](name string, maxSize int, metrics *infrastructure.DashboardMetrics) *Cache[V] {
	return &Cache[V]{
		name:    name,
		entries: make(map[string]cacheEntry[V]),
		maxSize: maxSize,
		metrics: metrics,
	}
}

// GetOrLoad returns the cached value for key, calling load on a miss
func (c *Cache[V]) GetOrLoad(ctx context.Context, key CacheKey, load func() (V, error)) (V, error) {
	if v, ok := c.get(key); ok {
		infrastructure.RecordCacheLookup(ctx, c.metrics, c.name, true)
		return v, nil
	}
	infrastructure.RecordCacheLookup(ctx, c.metrics, c.name, false)

	result, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

func (c *Cache[V]) get(key CacheKey) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key.slot()]
	if !exists || entry.key.String() != key.String() {
		c.missCount++
		var zero V
		return zero, false
	}

	entry.hitCount++
	c.entries[key.slot()] = entry
	c.hitCount++
	return entry.value, true
}

func (c *Cache[V]) set(key CacheKey, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if _, exists := c.entries[key.slot()]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key.slot()] = cacheEntry[V]{
		key:      key,
		value:    value,
		cachedAt: time.Now(),
	}
}

// Invalidate drops whatever version of the source is cached
func (c *Cache[V]) Invalidate(path, sheet string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, CacheKey{Path: path, Sheet: sheet}.slot())
}

// GetStats returns cache statistics
func (c *Cache[V]) GetStats() map[string]interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	return map[string]interface{}{
		"name":       c.name,
		"entries":    len(c.entries),
		"max_size":   c.maxSize,
		"hit_count":  c.hitCount,
		"miss_count": c.missCount,
		"hit_ratio":  hitRatio,
	}
}

func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.cachedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.cachedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
