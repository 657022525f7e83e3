package fuse

import (
	"sync"
	"time"
)

// statKind indexes the per-bucket outcome counters.
type statKind int

const (
	statFire statKind = iota
	statSuccess
	statFailure
	statTimeout
	statFallback
	statReject
	statSemaphoreRejection
	statCacheHit
	statCacheMiss
	statOpen
	statClose
	numStatKinds
)

// bucket is one time slice of outcome counters.
type bucket struct {
	start     time.Time
	counts    [numStatKinds]int64
	latencies []time.Duration
}

// window is the rolling statistics window: a fixed span divided into
// fixed-granularity buckets. Buckets are created lazily as time
// advances and discarded once they age out of the span, so aggregation
// only ever sees outcomes recorded within the last span. Safe for
// concurrent use.
type window struct {
	clock       Clock
	span        time.Duration
	granularity time.Duration
	percentiles bool

	mu      sync.Mutex
	buckets []*bucket
}

func newWindow(clock Clock, span time.Duration, buckets int, percentiles bool) *window {
	if buckets <= 0 {
		buckets = 1
	}
	if span <= 0 {
		span = 10 * time.Second
	}
	return &window{
		clock:       clock,
		span:        span,
		granularity: span / time.Duration(buckets),
		percentiles: percentiles,
	}
}

// increment records one event of the given kind in the current bucket.
func (w *window) increment(k statKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current().counts[k]++
}

// observe records one latency sample in the current bucket. Samples
// are only kept when percentile tracking is enabled.
func (w *window) observe(d time.Duration) {
	if !w.percentiles {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.current()
	b.latencies = append(b.latencies, d)
}

// current returns the bucket for the present tick, rotating out any
// buckets that have aged past the span. Callers must hold mu.
func (w *window) current() *bucket {
	now := w.clock.Now()
	tick := now.Truncate(w.granularity)

	// Discard buckets older than the span.
	cutoff := now.Add(-w.span)
	keep := 0
	for _, b := range w.buckets {
		if b.start.After(cutoff) {
			w.buckets[keep] = b
			keep++
		}
	}
	w.buckets = w.buckets[:keep]

	if n := len(w.buckets); n > 0 && w.buckets[n-1].start.Equal(tick) {
		return w.buckets[n-1]
	}
	b := &bucket{start: tick}
	w.buckets = append(w.buckets, b)
	return b
}

// snapshot aggregates all buckets currently within the span.
func (w *window) snapshot() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.clock.Now().Add(-w.span)

	var totals [numStatKinds]int64
	var latencies []time.Duration
	for _, b := range w.buckets {
		if !b.start.After(cutoff) {
			continue
		}
		for k, n := range b.counts {
			totals[k] += n
		}
		latencies = append(latencies, b.latencies...)
	}

	s := Stats{
		Fires:               totals[statFire],
		Successes:           totals[statSuccess],
		Failures:            totals[statFailure],
		Timeouts:            totals[statTimeout],
		Fallbacks:           totals[statFallback],
		Rejects:             totals[statReject],
		SemaphoreRejections: totals[statSemaphoreRejection],
		CacheHits:           totals[statCacheHit],
		CacheMisses:         totals[statCacheMiss],
		Opens:               totals[statOpen],
		Closes:              totals[statClose],
	}
	if w.percentiles {
		s.LatencyMean, s.Percentiles = summarize(latencies)
	} else {
		s.LatencyMean = LatencyUnavailable
	}
	return s
}
