package module

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestStatsSequentialAccounting(t *testing.T) {
	tests := []struct {
		name      string
		latencies []time.Duration
		failures  int
		wantReqs  int64
		wantAvgMs float64
		wantErrs  int64
	}{
		{
			name:      "no calls",
			wantReqs:  0,
			wantAvgMs: 0,
			wantErrs:  0,
		},
		{
			name:      "three successes",
			latencies: []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond},
			wantReqs:  3,
			wantAvgMs: 20,
			wantErrs:  0,
		},
		{
			name:      "only failures",
			failures:  4,
			wantReqs:  0,
			wantAvgMs: 0,
			wantErrs:  4,
		},
		{
			name:      "mixed successes and failures",
			latencies: []time.Duration{100 * time.Millisecond},
			failures:  2,
			wantReqs:  1,
			wantAvgMs: 100,
			wantErrs:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Stats
			for _, l := range tt.latencies {
				s.RecordSuccess(l)
			}
			for i := 0; i < tt.failures; i++ {
				s.RecordFailure()
			}

			reqs, avg, errs := s.Snapshot()
			if reqs != tt.wantReqs {
				t.Errorf("requests = %d, want %d", reqs, tt.wantReqs)
			}
			if errs != tt.wantErrs {
				t.Errorf("errors = %d, want %d", errs, tt.wantErrs)
			}
			if math.Abs(avg-tt.wantAvgMs) > 0.001 {
				t.Errorf("average latency = %f, want %f", avg, tt.wantAvgMs)
			}
		})
	}
}

// Firing K updates concurrently must account for every one of them:
// lost updates under concurrency are a correctness bug.
func TestStatsConcurrentUpdates(t *testing.T) {
	const successes = 500
	const failures = 300

	var s Stats
	var wg sync.WaitGroup

	for i := 0; i < successes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordSuccess(2 * time.Millisecond)
		}()
	}
	for i := 0; i < failures; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordFailure()
		}()
	}
	wg.Wait()

	reqs, avg, errs := s.Snapshot()
	if reqs != successes {
		t.Errorf("requests = %d, want %d", reqs, successes)
	}
	if errs != failures {
		t.Errorf("errors = %d, want %d", errs, failures)
	}
	if reqs+errs != successes+failures {
		t.Errorf("requests+errors = %d, want %d", reqs+errs, successes+failures)
	}
	if math.Abs(avg-2.0) > 0.001 {
		t.Errorf("average latency = %f, want 2.0", avg)
	}
}

func TestStatsMonotonicSnapshot(t *testing.T) {
	var s Stats

	s.RecordSuccess(5 * time.Millisecond)
	first, _, _ := s.Snapshot()

	s.RecordSuccess(5 * time.Millisecond)
	second, _, _ := s.Snapshot()

	if second < first {
		t.Errorf("request counter decreased: %d -> %d", first, second)
	}
}
