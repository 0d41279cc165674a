// Package cache provides the content-addressed, generation-keyed cache
// shared by every analyzer (spec.md §4.3/§5). It is a lock-free sync.Map
// store with TTL expiry and scan-based LRU-ish eviction, grounded
// directly on the teacher's internal/cache/metrics_cache.go, plus a
// singleflight guard so concurrent requests for the same key build the
// value at most once.
package cache

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry wraps a cached value with bookkeeping, mirroring the teacher's
// CachedMetrics (CachedAt/AccessCount as atomics for lock-free reads).
type entry struct {
	data        any
	cachedAtNs  int64
	accessCount int64
	bytes       int64
}

// Config mirrors the teacher's CacheConfig, narrowed to one store
// instead of three (content/symbol/parser) since codelens keys every
// analyzer result by a single content-derived string.
type Config struct {
	MaxEntries int
	MaxBytes   int64
	TTL        time.Duration
}

func DefaultConfig() Config {
	return Config{MaxEntries: 2000, MaxBytes: 256 * 1024 * 1024, TTL: 24 * time.Hour}
}

// Cache is a generic key->value store. Analyzer packages wrap it with
// their own key-derivation (content hash, AST generation, config hash).
type Cache struct {
	store sync.Map // map[string]*entry
	group singleflight.Group

	maxEntries int
	maxBytes   int64
	ttlNanos   int64

	count     int64
	bytesUsed int64
	hits      int64
	misses    int64
	evictions int64
}

func New(cfg Config) *Cache {
	return &Cache{maxEntries: cfg.MaxEntries, maxBytes: cfg.MaxBytes, ttlNanos: cfg.TTL.Nanoseconds()}
}

// Get returns the cached value for key, or (nil, false) on miss or expiry.
func (c *Cache) Get(key string) (any, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	e := val.(*entry)
	if time.Now().UnixNano()-atomic.LoadInt64(&e.cachedAtNs) > c.ttlNanos {
		c.deleteLocked(key, e)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&e.accessCount, 1)
	atomic.AddInt64(&c.hits, 1)
	return e.data, true
}

// estimateSize approximates value's serialized size for byte-budget
// accounting, the same shape the disk tier's payload eventually takes
// on disk. A value that can't be marshaled (e.g. a raw []byte) just
// costs nothing to size; that's acceptable since such values are rare
// and the accounting only needs to be close enough to bound memory.
func estimateSize(value any) int64 {
	raw, err := json.Marshal(value)
	if err != nil {
		return 0
	}
	return int64(len(raw))
}

// Put stores value under key, evicting the oldest entries first while
// the store is over either the entry-count or byte budget.
func (c *Cache) Put(key string, value any) {
	size := estimateSize(value)
	e := &entry{data: value, cachedAtNs: time.Now().UnixNano(), accessCount: 1, bytes: size}
	if old, loaded := c.store.LoadOrStore(key, e); !loaded {
		atomic.AddInt64(&c.count, 1)
		atomic.AddInt64(&c.bytesUsed, size)
	} else {
		c.store.Store(key, e)
		atomic.AddInt64(&c.bytesUsed, size-old.(*entry).bytes)
	}
	c.evictToBudget()
}

// GetOrBuild returns the cached value for key, building it via build
// exactly once even under concurrent callers (singleflight), and
// caching the result only on success.
func (c *Cache) GetOrBuild(key string, build func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		return v, nil
	})
	return v, err
}

// evictToBudget drops the oldest entries until both max_entries and
// max_bytes are satisfied, per spec.md §4.3 ("LRU eviction triggers
// when either max_entries or max_bytes is exceeded").
func (c *Cache) evictToBudget() {
	for c.overBudget() {
		if !c.evictOldest() {
			return
		}
	}
}

func (c *Cache) overBudget() bool {
	if c.maxEntries > 0 && atomic.LoadInt64(&c.count) > int64(c.maxEntries) {
		return true
	}
	if c.maxBytes > 0 && atomic.LoadInt64(&c.bytesUsed) > c.maxBytes {
		return true
	}
	return false
}

func (c *Cache) evictOldest() bool {
	var oldestKey any
	var oldestEntry *entry
	oldestTime := time.Now().UnixNano()
	c.store.Range(func(key, value any) bool {
		e := value.(*entry)
		if t := atomic.LoadInt64(&e.cachedAtNs); t < oldestTime {
			oldestTime = t
			oldestKey = key
			oldestEntry = e
		}
		return true
	})
	if oldestKey == nil {
		return false
	}
	c.store.Delete(oldestKey)
	atomic.AddInt64(&c.count, -1)
	atomic.AddInt64(&c.bytesUsed, -oldestEntry.bytes)
	atomic.AddInt64(&c.evictions, 1)
	return true
}

func (c *Cache) deleteLocked(key string, e *entry) {
	c.store.Delete(key)
	atomic.AddInt64(&c.count, -1)
	atomic.AddInt64(&c.bytesUsed, -e.bytes)
}

// Invalidate drops a single key, used when the discovery layer detects
// a file changed and the AST generation advances.
func (c *Cache) Invalidate(key string) {
	if v, ok := c.store.Load(key); ok {
		c.deleteLocked(key, v.(*entry))
	}
}

// InvalidateMatching drops every key for which predicate returns true,
// per spec.md §4.3's invalidate(predicate) operation — e.g. dropping
// every cache entry under a workspace root that was just re-walked.
// Returns the number of entries dropped.
func (c *Cache) InvalidateMatching(predicate func(key string) bool) int {
	var dropped []string
	c.store.Range(func(key, value any) bool {
		if predicate(key.(string)) {
			dropped = append(dropped, key.(string))
		}
		return true
	})
	for _, key := range dropped {
		c.Invalidate(key)
	}
	return len(dropped)
}

// Clear drops every entry, resetting counters to zero except the
// cumulative hit/miss/eviction totals, which describe history rather
// than current contents.
func (c *Cache) Clear() {
	c.store.Range(func(key, value any) bool {
		c.store.Delete(key)
		return true
	})
	atomic.StoreInt64(&c.count, 0)
	atomic.StoreInt64(&c.bytesUsed, 0)
}

// Stats is a point-in-time snapshot of the cache's counters.
type Stats struct {
	Entries   int64
	Hits      int64
	Misses    int64
	Evictions int64
	Bytes     int64
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries:   atomic.LoadInt64(&c.count),
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
		Bytes:     atomic.LoadInt64(&c.bytesUsed),
	}
}
