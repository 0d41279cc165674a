// Package metrics implements the service metrics registry of spec.md
// §4.11/§5: a counter and duration histogram per method, plus an error
// counter. No third-party metrics client appears anywhere in the
// example pack, so this is built directly on sync/atomic, the
// standard idiom for a process-local counter registry.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MethodStats is one method's accumulated counters.
type MethodStats struct {
	Calls      int64
	Errors     int64
	TotalNanos int64
	buckets    [len(histogramBoundsMs)]int64
}

var histogramBoundsMs = [...]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}

// Registry is the process-wide metrics store, one entry per method
// name. Counter updates are atomic; each lookup takes the registry's
// read lock, and only first-touch per method name takes the write lock.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]*methodCounters
}

type methodCounters struct {
	calls      atomic.Int64
	errors     atomic.Int64
	totalNanos atomic.Int64
	buckets    [len(histogramBoundsMs)]atomic.Int64
}

func New() *Registry {
	return &Registry{methods: make(map[string]*methodCounters)}
}

func (r *Registry) counters(method string) *methodCounters {
	r.mu.RLock()
	c, ok := r.methods[method]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.methods[method]; ok {
		return c
	}
	c = &methodCounters{}
	r.methods[method] = c
	return c
}

// Observe records one call's outcome and latency.
func (r *Registry) Observe(method string, duration time.Duration, err error) {
	c := r.counters(method)
	c.calls.Add(1)
	c.totalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.errors.Add(1)
	}
	ms := float64(duration.Microseconds()) / 1000.0
	for i, bound := range histogramBoundsMs {
		if ms <= bound {
			c.buckets[i].Add(1)
			break
		}
	}
}

// Snapshot returns a copy of every method's counters keyed by method
// name, safe to serialize for GET /metrics. The map has no order;
// MethodNames gives the sorted names.
func (r *Registry) Snapshot() map[string]MethodStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]MethodStats, len(r.methods))
	for name, c := range r.methods {
		var ms MethodStats
		ms.Calls = c.calls.Load()
		ms.Errors = c.errors.Load()
		ms.TotalNanos = c.totalNanos.Load()
		for i := range c.buckets {
			ms.buckets[i] = c.buckets[i].Load()
		}
		out[name] = ms
	}
	return out
}

// MethodNames returns the sorted list of methods observed so far.
func (r *Registry) MethodNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
