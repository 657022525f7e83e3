package fuse

import (
	"sort"
	"time"
)

// LatencyUnavailable is reported for latency fields when percentile
// tracking is disabled.
const LatencyUnavailable = time.Duration(-1)

// percentileLevels are the levels reported in every snapshot.
var percentileLevels = []float64{0, 25, 50, 75, 90, 95, 99, 99.5, 100}

// Stats is an aggregated snapshot of the rolling statistics window.
type Stats struct {
	Fires               int64
	Successes           int64
	Failures            int64
	Timeouts            int64
	Fallbacks           int64
	Rejects             int64
	SemaphoreRejections int64
	CacheHits           int64
	CacheMisses         int64
	Opens               int64
	Closes              int64

	// LatencyMean is the mean of all latency samples in the window,
	// or LatencyUnavailable when percentile tracking is disabled.
	LatencyMean time.Duration

	// Percentiles maps each of the standard percentile levels to the
	// corresponding latency. Nil when percentile tracking is disabled.
	Percentiles map[float64]time.Duration
}

// ErrorRate returns failures as a percentage of fires over the window.
// Returns 0 when no calls have fired.
func (s Stats) ErrorRate() float64 {
	if s.Fires == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Fires) * 100
}

// summarize computes the mean and the standard percentile levels of
// the given latency samples.
func summarize(samples []time.Duration) (time.Duration, map[float64]time.Duration) {
	out := make(map[float64]time.Duration, len(percentileLevels))
	if len(samples) == 0 {
		for _, p := range percentileLevels {
			out[p] = 0
		}
		return 0, out
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	for _, p := range percentileLevels {
		idx := int(p / 100 * float64(len(sorted)-1))
		out[p] = sorted[idx]
	}
	return sum / time.Duration(len(sorted)), out
}
