package relevance

import (
	"math"
	"slices"
	"sync"
	"time"
)

// maxStatsCalls bounds how many calls Stats keeps regardless of window.
const maxStatsCalls = 4096

type call struct {
	at      time.Time
	latency time.Duration
	failed  bool
}

// StatsSnapshot aggregates the scoring calls inside the window. Latency
// figures cover successful calls only; failed calls show up in Failed and
// FailureRate.
type StatsSnapshot struct {
	Calls       int     `json:"calls"`
	Failed      int     `json:"failed"`
	FailureRate float64 `json:"failure_rate"`
	MinMs       int64   `json:"min_ms"`
	MaxMs       int64   `json:"max_ms"`
	AvgMs       float64 `json:"avg_ms"`
	P50Ms       int64   `json:"p50_ms"`
	P95Ms       int64   `json:"p95_ms"`
	P99Ms       int64   `json:"p99_ms"`
	LastError   string  `json:"last_error,omitempty"`
}

// Stats keeps the most recent model calls in a fixed ring and reports on
// the ones younger than the window. It is safe for concurrent use.
type Stats struct {
	mu      sync.Mutex
	ring    []call
	next    int
	full    bool
	lastErr string
	window  time.Duration
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	return newStats(window, maxStatsCalls)
}

func newStats(window time.Duration, capacity int) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	if capacity <= 0 {
		capacity = maxStatsCalls
	}
	return &Stats{ring: make([]call, capacity), window: window, now: time.Now}
}

// Record adds one model call, overwriting the oldest once the ring is
// full. Negative latencies count as zero.
func (s *Stats) Record(latency time.Duration, err error) {
	latency = max(latency, 0)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = call{at: s.now(), latency: latency, failed: err != nil}
	if err != nil {
		s.lastErr = err.Error()
	}
	s.next++
	if s.next == len(s.ring) {
		s.next, s.full = 0, true
	}
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.window)
	live := s.ring[:s.next]
	if s.full {
		live = s.ring
	}

	var snap StatsSnapshot
	var ok []int64
	var sum int64
	for _, c := range live {
		if c.at.Before(cutoff) {
			continue
		}
		snap.Calls++
		if c.failed {
			snap.Failed++
			continue
		}
		ms := c.latency.Milliseconds()
		ok = append(ok, ms)
		sum += ms
	}
	if snap.Calls == 0 {
		return StatsSnapshot{}
	}
	snap.FailureRate = float64(snap.Failed) / float64(snap.Calls)
	if snap.Failed > 0 {
		snap.LastError = s.lastErr
	}
	if len(ok) == 0 {
		return snap
	}

	slices.Sort(ok)
	snap.MinMs = ok[0]
	snap.MaxMs = ok[len(ok)-1]
	snap.AvgMs = float64(sum) / float64(len(ok))
	snap.P50Ms = nearestRank(ok, 50)
	snap.P95Ms = nearestRank(ok, 95)
	snap.P99Ms = nearestRank(ok, 99)
	return snap
}

// nearestRank returns the smallest observed value with at least pct percent
// of the sorted values at or below it.
func nearestRank(sorted []int64, pct float64) int64 {
	rank := int(math.Ceil(pct / 100 * float64(len(sorted))))
	rank = min(max(rank, 1), len(sorted))
	return sorted[rank-1]
}
