package fuse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestWindow(percentiles bool) (*window, *testClock) {
	clock := &testClock{now: time.Unix(1_000_000, 0)}
	return newWindow(clock, 10*time.Second, 10, percentiles), clock
}

func TestWindow_AggregatesWithinSpan(t *testing.T) {
	w, clock := newTestWindow(true)

	w.increment(statFire)
	w.increment(statFailure)
	clock.Advance(3 * time.Second)
	w.increment(statFire)
	w.increment(statSuccess)
	clock.Advance(3 * time.Second)
	w.increment(statFire)
	w.increment(statTimeout)

	snap := w.snapshot()
	assert.Equal(t, int64(3), snap.Fires)
	assert.Equal(t, int64(1), snap.Failures)
	assert.Equal(t, int64(1), snap.Successes)
	assert.Equal(t, int64(1), snap.Timeouts)
}

func TestWindow_DiscardsAgedBuckets(t *testing.T) {
	w, clock := newTestWindow(true)

	w.increment(statFire)
	w.increment(statFailure)

	clock.Advance(11 * time.Second)

	snap := w.snapshot()
	assert.Zero(t, snap.Fires, "expected aged-out bucket to be excluded")
	assert.Zero(t, snap.Failures)
}

func TestWindow_OldBucketsAgeOutIndividually(t *testing.T) {
	w, clock := newTestWindow(true)

	w.increment(statFailure)
	clock.Advance(9 * time.Second)
	w.increment(statFailure)

	// First bucket is now outside the 10s span; second is not.
	clock.Advance(2 * time.Second)

	snap := w.snapshot()
	assert.Equal(t, int64(1), snap.Failures)
}

func TestWindow_SameTickSharesBucket(t *testing.T) {
	w, clock := newTestWindow(true)

	w.increment(statFire)
	clock.Advance(100 * time.Millisecond) // within the 1s granularity
	w.increment(statFire)

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.buckets, 1)
	assert.Equal(t, int64(2), w.buckets[0].counts[statFire])
}

func TestWindow_Percentiles(t *testing.T) {
	w, _ := newTestWindow(true)

	for i := 1; i <= 10; i++ {
		w.observe(time.Duration(i) * 10 * time.Millisecond)
	}

	snap := w.snapshot()
	assert.Equal(t, 55*time.Millisecond, snap.LatencyMean)
	assert.Equal(t, 10*time.Millisecond, snap.Percentiles[0])
	assert.Equal(t, 50*time.Millisecond, snap.Percentiles[50])
	assert.Equal(t, 100*time.Millisecond, snap.Percentiles[100])
}

func TestWindow_PercentilesDisabled(t *testing.T) {
	w, _ := newTestWindow(false)

	w.observe(10 * time.Millisecond)
	w.increment(statSuccess)

	snap := w.snapshot()
	assert.Equal(t, int64(1), snap.Successes)
	assert.Equal(t, LatencyUnavailable, snap.LatencyMean)
	assert.Nil(t, snap.Percentiles)
}

func TestWindow_ConcurrentIncrements(t *testing.T) {
	w, _ := newTestWindow(true)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 100 {
				w.increment(statFire)
			}
		}()
	}
	for range 8 {
		<-done
	}

	assert.Equal(t, int64(800), w.snapshot().Fires)
}
