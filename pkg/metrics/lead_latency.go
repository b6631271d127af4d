// Package metrics tracks per-route request latency percentiles over a
// sliding sample window.
package metrics

import (
	"sort"
	"sync"
	"time"
)

const defaultWindowSize = 1000

// Snapshot is the point-in-time latency summary for one route.
// Durations are reported in milliseconds.
type Snapshot struct {
	Count int64   `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// tracker keeps the most recent samples for one route, in microseconds.
type tracker struct {
	mu      sync.Mutex
	samples []int64
	max     int
	total   int64
}

func newTracker(window int) *tracker {
	return &tracker{samples: make([]int64, 0, window), max: window}
}

func (t *tracker) record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.samples) >= t.max {
		// Drop the oldest tenth in one shift instead of one sample per call.
		drop := t.max / 10
		if drop < 1 {
			drop = 1
		}
		t.samples = t.samples[drop:]
	}
	t.samples = append(t.samples, d.Microseconds())
	t.total++
}

func (t *tracker) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.samples)
	if n == 0 {
		return Snapshot{}
	}

	sorted := make([]int64, n)
	copy(sorted, t.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	ms := func(micros int64) float64 { return float64(micros) / 1000.0 }
	pct := func(p float64) int64 { return sorted[int(float64(n-1)*p)] }

	return Snapshot{
		Count: t.total,
		MinMs: ms(sorted[0]),
		MaxMs: ms(sorted[n-1]),
		AvgMs: ms(sum / int64(n)),
		P50Ms: ms(pct(0.50)),
		P95Ms: ms(pct(0.95)),
		P99Ms: ms(pct(0.99)),
	}
}

// Registry tracks latencies for any number of routes.
type Registry struct {
	mu       sync.RWMutex
	trackers map[string]*tracker
	window   int
}

// NewRegistry creates a latency registry. window is the per-route sample
// cap; non-positive values use the default.
func NewRegistry(window int) *Registry {
	if window <= 0 {
		window = defaultWindowSize
	}
	return &Registry{trackers: make(map[string]*tracker), window: window}
}

// Record adds one observation for the route.
func (r *Registry) Record(route string, d time.Duration) {
	r.mu.RLock()
	t, ok := r.trackers[route]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		if t, ok = r.trackers[route]; !ok {
			t = newTracker(r.window)
			r.trackers[route] = t
		}
		r.mu.Unlock()
	}

	t.record(d)
}

// Snapshot returns the summary for one route; the zero value when the
// route has never been recorded.
func (r *Registry) Snapshot(route string) Snapshot {
	r.mu.RLock()
	t, ok := r.trackers[route]
	r.mu.RUnlock()

	if !ok {
		return Snapshot{}
	}
	return t.snapshot()
}

// All returns summaries for every recorded route.
func (r *Registry) All() map[string]Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Snapshot, len(r.trackers))
	for route, t := range r.trackers {
		out[route] = t.snapshot()
	}
	return out
}

// Reset discards all samples but keeps the routes registered.
func (r *Registry) Reset() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.trackers {
		t.mu.Lock()
		t.samples = t.samples[:0]
		t.total = 0
		t.mu.Unlock()
	}
}
