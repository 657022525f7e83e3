package fuse

import (
	"time"

	"go.uber.org/zap"
)

// ErrorFilter classifies errors. A true return means the error is
// ignorable: it is still returned to the caller, but it is not
// recorded as a failure and never counts toward tripping the circuit.
type ErrorFilter func(error) bool

// Default values.
const (
	DefaultResetTimeout             = 30 * time.Second
	DefaultRollingWindow            = 10 * time.Second
	DefaultRollingBuckets           = 10
	DefaultErrorThresholdPercentage = 50
)

type config struct {
	name                     string
	group                    string
	timeout                  time.Duration
	resetTimeout             time.Duration
	rollingWindow            time.Duration
	rollingBuckets           int
	rollingPercentiles       bool
	capacity                 int
	errorThresholdPercentage int
	enabled                  bool
	allowWarmUp              bool
	volumeThreshold          int64
	errorFilter              ErrorFilter
	maxFailures              int64
	cache                    bool
	clock                    Clock
	logger                   *zap.Logger
	registry                 *Registry
}

// Option configures a Breaker.
type Option func(*config)

// WithName sets the breaker's name, used in logs, events, and
// exporters. A random name is generated if none is provided.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithGroup sets the breaker's group. Defaults to the name.
func WithGroup(group string) Option {
	return func(c *config) {
		c.group = group
	}
}

// WithTimeout sets the deadline for each call. An action that runs
// longer is reported as a timeout, though it is not interrupted.
// Timeouts are disabled by default.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithResetTimeout sets how long the circuit stays open before
// transitioning to half-open. Default is 30 seconds.
func WithResetTimeout(d time.Duration) Option {
	return func(c *config) {
		c.resetTimeout = d
	}
}

// WithRollingWindow sets the span of the rolling statistics window and
// the number of buckets it is divided into. Defaults are 10 seconds
// and 10 buckets.
func WithRollingWindow(span time.Duration, buckets int) Option {
	return func(c *config) {
		c.rollingWindow = span
		c.rollingBuckets = buckets
	}
}

// WithRollingPercentiles enables or disables latency percentile
// tracking. Enabled by default; when disabled, snapshot latency fields
// report LatencyUnavailable.
func WithRollingPercentiles(enabled bool) Option {
	return func(c *config) {
		c.rollingPercentiles = enabled
	}
}

// WithCapacity bounds the number of concurrently executing calls.
// Unbounded by default.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// WithErrorThresholdPercentage sets the error rate, in percent of
// fired calls over the rolling window, above which the circuit trips.
// Default is 50.
func WithErrorThresholdPercentage(pct int) Option {
	return func(c *config) {
		c.errorThresholdPercentage = pct
	}
}

// WithEnabled sets whether breaker logic is active from construction.
// A disabled breaker executes its action directly. Default is true.
func WithEnabled(enabled bool) Option {
	return func(c *config) {
		c.enabled = enabled
	}
}

// WithWarmUp enables the warm-up grace period: for one rolling-window
// span after construction, failures are recorded but never trip the
// circuit. Default is false.
func WithWarmUp(allow bool) Option {
	return func(c *config) {
		c.allowWarmUp = allow
	}
}

// WithVolumeThreshold sets the minimum number of fired calls that must
// be present in the rolling window before the circuit can trip.
// Default is 0.
func WithVolumeThreshold(n int64) Option {
	return func(c *config) {
		c.volumeThreshold = n
	}
}

// WithErrorFilter sets the predicate that classifies errors as
// ignorable. By default no error is filtered.
func WithErrorFilter(filter ErrorFilter) Option {
	return func(c *config) {
		c.errorFilter = filter
	}
}

// WithCache caches the most recent successful result and serves it on
// subsequent fires until ClearCache is called. Default is false.
func WithCache(enabled bool) Option {
	return func(c *config) {
		c.cache = enabled
	}
}

// WithMaxFailures sets an absolute failure count over the rolling
// window that trips the circuit regardless of the error rate.
//
// Deprecated: use WithErrorThresholdPercentage together with
// WithVolumeThreshold. Retained for configurations ported from the
// absolute-count era; evaluated alongside the percentage condition,
// whichever is exceeded first trips.
func WithMaxFailures(n int64) Option {
	return func(c *config) {
		c.maxFailures = n
	}
}

// WithClock sets the clock for time operations. Useful for testing.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the structured logger. State transitions are logged
// at warn level. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegistry sets the registry this breaker registers with.
// Defaults to DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}
