package cache

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New(DefaultConfig())
	c.Put("a", 42)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 42, v)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestGetExpiresAfterTTL(t *testing.T) {
	c := New(Config{MaxEntries: 10, TTL: time.Millisecond})
	c.Put("a", "value")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestEvictsOldestWhenOverCapacity(t *testing.T) {
	c := New(Config{MaxEntries: 2, TTL: time.Hour})
	c.Put("a", 1)
	time.Sleep(time.Millisecond)
	c.Put("b", 2)
	time.Sleep(time.Millisecond)
	c.Put("c", 3)

	stats := c.Stats()
	require.LessOrEqual(t, stats.Entries, int64(2))
	require.Equal(t, int64(1), stats.Evictions)
}

func TestGetOrBuildCallsBuildOnceUnderConcurrency(t *testing.T) {
	c := New(DefaultConfig())
	var calls int64

	var wg sync.WaitGroup
	results := make([]any, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := c.GetOrBuild("shared-key", func() (any, error) {
				atomic.AddInt64(&calls, 1)
				time.Sleep(time.Millisecond)
				return "built", nil
			})
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for _, r := range results {
		require.Equal(t, "built", r)
	}
}

func TestGetOrBuildPropagatesBuildError(t *testing.T) {
	c := New(DefaultConfig())
	wantErr := errors.New("build failed")

	_, err := c.GetOrBuild("k", func() (any, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr)

	_, ok := c.Get("k")
	require.False(t, ok, "a failed build must not populate the cache")
}

func TestEvictsWhenOverByteBudget(t *testing.T) {
	valueA, valueB := "a long enough string to exceed the budget", "another long enough string to exceed the budget"
	// Budget fits one entry but not both, so the second Put must evict
	// the first rather than grow unbounded.
	budget := estimateSize(valueA) + estimateSize(valueB) - 1

	c := New(Config{MaxEntries: 100, MaxBytes: budget, TTL: time.Hour})
	c.Put("a", valueA)
	time.Sleep(time.Millisecond)
	c.Put("b", valueB)

	stats := c.Stats()
	require.Equal(t, int64(1), stats.Entries)
	require.Equal(t, int64(1), stats.Evictions)
}

func TestStatsReportsBytes(t *testing.T) {
	c := New(DefaultConfig())
	c.Put("a", "hello")
	stats := c.Stats()
	require.Greater(t, stats.Bytes, int64(0))
}

func TestInvalidateMatchingDropsOnlyMatchingKeys(t *testing.T) {
	c := New(DefaultConfig())
	c.Put("root/a", 1)
	c.Put("root/b", 2)
	c.Put("other/a", 3)

	n := c.InvalidateMatching(func(key string) bool {
		return key == "root/a" || key == "root/b"
	})
	require.Equal(t, 2, n)

	_, ok := c.Get("root/a")
	require.False(t, ok)
	_, ok = c.Get("other/a")
	require.True(t, ok)
}

func TestClearDropsEverything(t *testing.T) {
	c := New(DefaultConfig())
	c.Put("a", 1)
	c.Put("b", 2)

	c.Clear()

	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, int64(0), c.Stats().Entries)
	require.Equal(t, int64(0), c.Stats().Bytes)
}

func TestDiskStoreRejectsCorruptedPayloadHash(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDiskStore(dir)
	require.NoError(t, err)

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, d.Store("key", payload{Name: "churn"}))

	// Flip the stored hash so it no longer matches the payload.
	path := d.path("key")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var env diskEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	env.Hash = "0000000000000000000000000000000000000000000000000000000000000000"[:64]
	corrupted, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, corrupted, 0o644))

	var got payload
	hit, err := d.Load("key", &got)
	require.NoError(t, err)
	require.False(t, hit, "a hash-mismatched entry must be reported as a miss, not an error")

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "a corrupt entry must be evicted from disk")
}

func TestLayeredCacheFallsThroughToBuildOnDiskMiss(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDiskStore(dir)
	require.NoError(t, err)
	mem := New(DefaultConfig())
	lc := NewLayeredCache(mem, disk)

	type payload struct {
		Name string `json:"name"`
	}
	var calls int
	build := func() (any, error) {
		calls++
		return &payload{Name: "built"}, nil
	}

	var dst payload
	v, err := lc.GetOrBuild("k", &dst, build)
	require.NoError(t, err)
	require.Equal(t, "built", v.(*payload).Name)
	require.Equal(t, 1, calls)

	// Second LayeredCache over a fresh memory tier but the same disk
	// directory must hit disk rather than rebuild.
	lc2 := NewLayeredCache(New(DefaultConfig()), disk)
	var dst2 payload
	v2, err := lc2.GetOrBuild("k", &dst2, build)
	require.NoError(t, err)
	require.Equal(t, "built", v2.(*payload).Name)
	require.Equal(t, 1, calls, "disk hit must not call build again")
}

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDiskStore(dir)
	require.NoError(t, err)

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, d.Store("key", payload{Name: "churn"}))

	var got payload
	hit, err := d.Load("key", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "churn", got.Name)

	require.NoError(t, d.Delete("key"))
	hit, err = d.Load("key", &got)
	require.NoError(t, err)
	require.False(t, hit)
}
