package metrics

import (
	"testing"
	"time"
)

func TestRegistryRecordAndSnapshot(t *testing.T) {
	r := NewRegistry(100)

	// 1ms..100ms, one sample each.
	for i := 1; i <= 100; i++ {
		r.Record("GET /api/v1/leads/search", time.Duration(i)*time.Millisecond)
	}

	snap := r.Snapshot("GET /api/v1/leads/search")
	if snap.Count != 100 {
		t.Errorf("count = %d, want 100", snap.Count)
	}
	if snap.MinMs != 1 || snap.MaxMs != 100 {
		t.Errorf("min/max = %v/%v, want 1/100", snap.MinMs, snap.MaxMs)
	}
	if snap.P50Ms < 49 || snap.P50Ms > 51 {
		t.Errorf("p50 = %v, want about 50", snap.P50Ms)
	}
	if snap.P95Ms < 94 || snap.P95Ms > 96 {
		t.Errorf("p95 = %v, want about 95", snap.P95Ms)
	}
	if snap.P99Ms < 98 || snap.P99Ms > 100 {
		t.Errorf("p99 = %v, want about 99", snap.P99Ms)
	}
}

func TestRegistryUnknownRoute(t *testing.T) {
	r := NewRegistry(0)

	snap := r.Snapshot("GET /nope")
	if snap != (Snapshot{}) {
		t.Errorf("unknown route snapshot = %+v, want zero value", snap)
	}
}

func TestRegistryAll(t *testing.T) {
	r := NewRegistry(10)
	r.Record("GET /a", time.Millisecond)
	r.Record("POST /b", 2*time.Millisecond)

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("routes = %d, want 2", len(all))
	}
	if all["GET /a"].Count != 1 || all["POST /b"].Count != 1 {
		t.Errorf("counts = %+v", all)
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry(10)
	r.Record("GET /a", time.Millisecond)

	r.Reset()

	if snap := r.Snapshot("GET /a"); snap.Count != 0 {
		t.Errorf("count after reset = %d, want 0", snap.Count)
	}
}

func TestTrackerSlidingWindow(t *testing.T) {
	r := NewRegistry(10)

	// Overflow the window; the total keeps counting while samples slide.
	for i := 0; i < 25; i++ {
		r.Record("GET /a", time.Millisecond)
	}

	snap := r.Snapshot("GET /a")
	if snap.Count != 25 {
		t.Errorf("count = %d, want 25 (total observations, not window size)", snap.Count)
	}
}
