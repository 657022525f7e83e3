package fuse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_ErrorRate(t *testing.T) {
	tests := map[string]struct {
		fires    int64
		failures int64
		want     float64
	}{
		"no calls":      {fires: 0, failures: 0, want: 0},
		"no failures":   {fires: 10, failures: 0, want: 0},
		"all failures":  {fires: 4, failures: 4, want: 100},
		"half failures": {fires: 4, failures: 2, want: 50},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := Stats{Fires: tc.fires, Failures: tc.failures}
			require.Equal(t, tc.want, s.ErrorRate())
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	mean, percentiles := summarize(nil)

	assert.Zero(t, mean)
	for _, p := range percentileLevels {
		assert.Zero(t, percentiles[p])
	}
}

func TestSummarize_SingleSample(t *testing.T) {
	mean, percentiles := summarize([]time.Duration{42 * time.Millisecond})

	assert.Equal(t, 42*time.Millisecond, mean)
	for _, p := range percentileLevels {
		assert.Equal(t, 42*time.Millisecond, percentiles[p])
	}
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	samples := []time.Duration{30, 10, 20}

	_, _ = summarize(samples)

	assert.Equal(t, []time.Duration{30, 10, 20}, samples)
}
