// Package fuse implements a stats-driven circuit breaker for unreliable operations.
//
// fuse wraps a single action and protects the rest of the process from
// cascading failure by:
//
//   - Rolling Statistics: outcomes are counted over a sliding time window,
//     so old failures stop influencing current decisions
//   - Fast Rejection: an open circuit rejects calls immediately without load
//   - Bounded Concurrency: an admission gate caps in-flight calls
//   - Timeouts: slow actions are reported as timeouts without blocking the caller forever
//   - Fallbacks: a substitute function or a chained breaker answers when the
//     primary path fails, times out, or is rejected
//   - Events: a typed event stream feeds logs, dashboards, and metrics exporters
//
// # Quick Start
//
// Create a breaker around an action and fire it:
//
//	b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
//	    return client.GetUser(ctx, args[0].(string))
//	}, fuse.WithName("user-service"), fuse.WithTimeout(time.Second))
//
//	user, err := b.Fire(ctx, id)
//	if fuse.IsOpen(err) {
//	    // circuit is open; downstream is being given time to recover
//	}
//
// For a known result type, use the generic Call helper:
//
//	user, err := fuse.Call[*User](ctx, b, id)
//
// # Circuit States
//
// The breaker has three circuit states plus a terminal shutdown flag:
//
//	Closed (normal):
//	    - Calls flow through to the action
//	    - Outcomes are recorded in the rolling window
//	    - When the window's error rate exceeds the threshold, the circuit opens
//
//	Open (tripped):
//	    - Calls are rejected immediately with ErrOpen
//	    - After the reset timeout, the circuit transitions to half-open
//
//	HalfOpen (probing):
//	    - The next fired call is a trial
//	    - A successful trial closes the circuit
//	    - A failed trial reopens it unconditionally
//
//	Shutdown (terminal):
//	    - Every call fails with ErrShutdown, no statistics are recorded,
//	      and the breaker is removed from its registry
//
// # Trip Decision
//
// After every unfiltered failure the breaker evaluates, over the
// rolling window:
//
//  1. warm-up: within the warm-up period the circuit never trips
//  2. volume: fewer fires than WithVolumeThreshold never trip
//  3. rate: failures/fires above WithErrorThresholdPercentage trips
//  4. legacy: failures at or above WithMaxFailures trips
//  5. trial: a failed half-open trial trips regardless of 1-4
//
// # Timeouts
//
// With WithTimeout set, each call races the action against a deadline.
// A timed-out action keeps running, but its eventual outcome is
// discarded: it cannot settle the call a second time or touch the
// statistics.
//
// # Fallbacks
//
// A fallback intercepts every failure kind except shutdown:
//
//	b.Fallback(fuse.FallbackFunc(func(ctx context.Context, cause error, args ...any) (any, error) {
//	    return cachedUser(args[0].(string)), nil
//	}))
//
// Fallbacks chain: FallbackBreaker delegates to another breaker, which
// applies its own admission and state logic with the triggering error
// appended to the arguments.
//
// # Admission Gate
//
// WithCapacity bounds concurrently executing calls. The excess call is
// rejected with ErrSemaphoreLocked (or answered by the fallback)
// without invoking the action.
//
// # Events
//
// Subscribe receives every lifecycle event: fire, cacheHit, cacheMiss,
// success, failure, timeout, reject, semaphoreLocked, fallback, open,
// close, halfOpen, healthCheckFailed.
//
//	cancel := b.Subscribe(func(ev fuse.Event) {
//	    log.Printf("%s: %s", ev.Name, ev.Type)
//	})
//	defer cancel()
//
// The dashboard and metrics subpackages are independent subscribers
// built on this stream; the core has no dependency on either.
//
// # Statistics
//
// Stats returns the aggregated rolling-window snapshot, including
// latency percentiles unless disabled with
// WithRollingPercentiles(false), in which case latency fields report
// LatencyUnavailable.
//
// # Health Checks
//
// HealthCheck probes the downstream on its own timer, independent of
// call traffic. A failed probe opens the circuit unconditionally:
//
//	err := b.HealthCheck(func(ctx context.Context) error {
//	    return client.Ping(ctx)
//	}, 5*time.Second)
//
// # Registry
//
// Live breakers register themselves with DefaultRegistry (or the
// registry passed via WithRegistry) on construction and deregister on
// Shutdown, giving exporters an iterator over every active instance.
//
// # Caching
//
// With WithCache(true), the most recent successful result is served
// for subsequent fires without invoking the action, until ClearCache.
// The cache is a single atomically-replaced slot; a slightly stale
// read is accepted semantics.
//
// # Testing
//
// Inject a fake clock to control the rolling window in tests:
//
//	type fakeClock struct{ now time.Time }
//
//	func (c *fakeClock) Now() time.Time          { return c.now }
//	func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
//
// Timer-driven transitions (reset timeout, health checks) use real
// timers; test them with short durations.
package fuse
