package module

import (
	"sync/atomic"
	"time"
)

// Stats holds the running counters a module accumulates over its
// lifetime: requests processed, cumulative latency and error count.
// All fields are updated atomically, so concurrent inference calls
// never lose an increment. Counters are never reset.
type Stats struct {
	requests  atomic.Int64
	errors    atomic.Int64
	latencyUs atomic.Int64
}

// RecordSuccess counts one completed inference call and adds its
// wall-clock latency to the cumulative total.
func (s *Stats) RecordSuccess(elapsed time.Duration) {
	s.requests.Add(1)
	s.latencyUs.Add(elapsed.Microseconds())
}

// RecordFailure counts one failed inference call. Failures never touch
// the request counter.
func (s *Stats) RecordFailure() {
	s.errors.Add(1)
}

// Snapshot returns the counters as of the moment of the read. The
// average is cumulative latency over max(1, requests), so it is 0
// before the first completed call.
func (s *Stats) Snapshot() (requests int64, avgLatencyMs float64, errors int64) {
	requests = s.requests.Load()
	errors = s.errors.Load()

	denom := requests
	if denom < 1 {
		denom = 1
	}
	avgLatencyMs = float64(s.latencyUs.Load()) / 1000.0 / float64(denom)
	return requests, avgLatencyMs, errors
}
