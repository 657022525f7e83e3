package fuse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Action is the operation a Breaker wraps, bound at construction and
// invoked by Fire with the per-call arguments.
type Action func(ctx context.Context, args ...any) (any, error)

// Breaker wraps a single Action with circuit-breaker protection.
// Safe for concurrent use.
type Breaker struct {
	name  string
	group string
	cfg   config

	action    Action
	window    *window
	sem       *semaphore
	cache     resultCache
	logger    *zap.Logger
	registry  *Registry
	startedAt time.Time

	mu           sync.Mutex
	state        State
	pendingClose bool
	enabled      bool
	shutdown     bool
	fallback     Fallback
	resetTimer   *time.Timer
	healthStop   chan struct{}

	subMu     sync.RWMutex
	subs      map[uint64]Listener
	nextSubID uint64
}

// New creates a Breaker wrapping action with the given options.
func New(action Action, opts ...Option) *Breaker {
	cfg := config{
		resetTimeout:             DefaultResetTimeout,
		rollingWindow:            DefaultRollingWindow,
		rollingBuckets:           DefaultRollingBuckets,
		rollingPercentiles:       true,
		errorThresholdPercentage: DefaultErrorThresholdPercentage,
		enabled:                  true,
		clock:                    realClock{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = "breaker-" + uuid.NewString()
	}
	if cfg.group == "" {
		cfg.group = cfg.name
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry
	}

	b := &Breaker{
		name:       cfg.name,
		group:      cfg.group,
		cfg:        cfg,
		action:     action,
		window:     newWindow(cfg.clock, cfg.rollingWindow, cfg.rollingBuckets, cfg.rollingPercentiles),
		sem:        newSemaphore(cfg.capacity),
		logger:     cfg.logger,
		registry:   cfg.registry,
		startedAt:  cfg.clock.Now(),
		state:      Closed,
		enabled:    cfg.enabled,
		healthStop: make(chan struct{}),
	}
	b.registry.add(b)
	return b
}

// Fire invokes the wrapped action with args under the breaker's
// admission, state, and timeout rules. It returns the action's result,
// the fallback's result when one is configured and the primary path
// fails, or one of the sentinel errors.
func (b *Breaker) Fire(ctx context.Context, args ...any) (any, error) {
	if b.IsShutdown() {
		return nil, ErrShutdown
	}

	b.window.increment(statFire)
	b.emit(Event{Type: EventFire})

	if b.cfg.cache {
		if v, ok := b.cache.get(); ok {
			b.window.increment(statCacheHit)
			b.emit(Event{Type: EventCacheHit, Value: v})
			return v, nil
		}
		b.window.increment(statCacheMiss)
		b.emit(Event{Type: EventCacheMiss})
	}

	if !b.Enabled() {
		return b.action(ctx, args...)
	}

	b.mu.Lock()
	if b.state != Closed && !b.pendingClose {
		b.mu.Unlock()
		b.window.increment(statReject)
		b.emit(Event{Type: EventReject, Err: ErrOpen})
		return b.resolveFallback(ctx, ErrOpen, args)
	}
	if !b.sem.tryAcquire() {
		b.mu.Unlock()
		b.window.increment(statSemaphoreRejection)
		b.emit(Event{Type: EventSemaphoreLocked, Err: ErrSemaphoreLocked})
		return b.resolveFallback(ctx, ErrSemaphoreLocked, args)
	}
	// The first call holding a ticket after the half-open transition is
	// the trial. A gate-rejected call must not consume the pending
	// trial, so the flag is only cleared once a ticket is held.
	b.pendingClose = false
	b.mu.Unlock()

	return b.execute(ctx, args)
}

type outcome struct {
	value any
	err   error
}

// execute races the action against the configured timeout. Exactly one
// of the three paths (success, failure, timeout) settles the call; the
// loser's result is discarded.
func (b *Breaker) execute(ctx context.Context, args []any) (any, error) {
	start := b.cfg.clock.Now()

	// Buffered so a suppressed late outcome never blocks the action
	// goroutine.
	done := make(chan outcome, 1)
	go func() {
		v, err := b.action(ctx, args...)
		done <- outcome{value: v, err: err}
	}()

	var timeoutC <-chan time.Time
	if b.cfg.timeout > 0 {
		timer := time.NewTimer(b.cfg.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case out := <-done:
		latency := b.cfg.clock.Now().Sub(start)
		b.sem.release()
		if out.err != nil {
			return b.handleFailure(ctx, out.err, args)
		}
		b.window.increment(statSuccess)
		b.window.observe(latency)
		b.emit(Event{Type: EventSuccess, Latency: latency, Value: out.value})
		b.transitionClosed()
		if b.cfg.cache {
			b.cache.set(out.value)
		}
		return out.value, nil

	case <-timeoutC:
		// The action keeps running, but its eventual outcome is
		// discarded: nobody reads the channel again.
		b.sem.release()
		b.window.increment(statTimeout)
		b.emit(Event{Type: EventTimeout, Err: ErrTimeout})
		return b.handleFailure(ctx, ErrTimeout, args)
	}
}

// handleFailure records the failure, runs the trip decision, and
// resolves through the fallback.
func (b *Breaker) handleFailure(ctx context.Context, cause error, args []any) (any, error) {
	if b.cfg.errorFilter != nil && b.cfg.errorFilter(cause) {
		// Ignorable: the caller still sees the error, but it is not
		// recorded as a failure and cannot trip the circuit. For circuit
		// state it settles like a success, so a half-open trial that
		// returns one closes instead of stranding the breaker.
		if b.HalfOpen() {
			b.transitionClosed()
		}
		return nil, cause
	}

	b.window.increment(statFailure)
	b.emit(Event{Type: EventFailure, Err: cause})
	b.evaluateTrip()
	return b.resolveFallback(ctx, cause, args)
}

// evaluateTrip is the failure decision: it transitions the circuit to
// Open when the warm-up period has passed and either the rolling error
// rate exceeds the threshold, the absolute failure count exceeds the
// legacy maximum, or a half-open trial has failed.
func (b *Breaker) evaluateTrip() {
	b.mu.Lock()
	if b.shutdown || b.state == Open {
		b.mu.Unlock()
		return
	}
	trial := b.state == HalfOpen
	b.mu.Unlock()

	if b.WarmUp() {
		return
	}

	if trial {
		// A failed trial always reopens, bypassing rate and volume
		// checks.
		b.transitionOpen()
		return
	}

	snap := b.window.snapshot()
	if snap.Fires < b.cfg.volumeThreshold {
		return
	}
	if snap.ErrorRate() > float64(b.cfg.errorThresholdPercentage) ||
		(b.cfg.maxFailures > 0 && snap.Failures >= b.cfg.maxFailures) {
		b.transitionOpen()
	}
}

func (b *Breaker) resolveFallback(ctx context.Context, cause error, args []any) (any, error) {
	fb := b.currentFallback()
	if fb == nil {
		return nil, cause
	}
	v, err := fb.Invoke(ctx, cause, args...)
	b.window.increment(statFallback)
	b.emit(Event{Type: EventFallback, Err: cause, Value: v})
	return v, err
}

// Open manually trips the circuit. A no-op if already open.
func (b *Breaker) Open() {
	b.transitionOpen()
}

// Close manually closes the circuit. A no-op if already closed.
func (b *Breaker) Close() {
	b.transitionClosed()
}

// Enable reactivates breaker logic after Disable.
func (b *Breaker) Enable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.shutdown {
		b.enabled = true
	}
}

// Disable deactivates breaker logic: calls execute the action directly
// with no admission, state, or timeout handling.
func (b *Breaker) Disable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = false
}

// Shutdown permanently disables the breaker: its timers are released,
// its subscribers dropped, its cache cleared, and it is removed from
// the registry. All subsequent calls fail with ErrShutdown.
// Shutdown is idempotent.
func (b *Breaker) Shutdown() {
	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return
	}
	b.shutdown = true
	b.enabled = false
	if b.resetTimer != nil {
		b.resetTimer.Stop()
		b.resetTimer = nil
	}
	close(b.healthStop)
	b.mu.Unlock()

	b.cache.clear()
	b.clearSubscribers()
	b.registry.remove(b)
	b.logger.Info("breaker shut down", zap.String("breaker", b.name))
}

// ClearCache invalidates the cached result, forcing the next Fire to
// invoke the action.
func (b *Breaker) ClearCache() {
	b.cache.clear()
}

// HealthCheck runs fn every interval on its own timer. A failing probe
// publishes EventHealthCheckFailed and unconditionally opens the
// circuit, bypassing the rolling-window decision. Invalid arguments
// fail fast at the call site. The loop stops on Shutdown.
func (b *Breaker) HealthCheck(fn func(ctx context.Context) error, interval time.Duration) error {
	if fn == nil {
		return errors.New("fuse: health check function is required")
	}
	if interval <= 0 {
		return errors.New("fuse: health check interval must be positive")
	}

	b.mu.Lock()
	if b.shutdown {
		b.mu.Unlock()
		return ErrShutdown
	}
	stop := b.healthStop
	b.mu.Unlock()

	go b.runHealthCheck(fn, interval, stop)
	return nil
}

func (b *Breaker) runHealthCheck(fn func(ctx context.Context) error, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := fn(context.Background()); err != nil {
				b.logger.Warn("health check failed",
					zap.String("breaker", b.name),
					zap.Error(err),
				)
				b.emit(Event{Type: EventHealthCheckFailed, Err: err})
				b.transitionOpen()
			}
		}
	}
}

// transitionOpen moves the circuit to Open and arms the reset timer.
func (b *Breaker) transitionOpen() {
	b.mu.Lock()
	if b.shutdown || b.state == Open {
		b.mu.Unlock()
		return
	}
	from := b.state
	b.state = Open
	b.pendingClose = false
	if b.resetTimer != nil {
		b.resetTimer.Stop()
	}
	b.resetTimer = time.AfterFunc(b.cfg.resetTimeout, b.transitionHalfOpen)
	b.mu.Unlock()

	b.window.increment(statOpen)
	b.logger.Warn("circuit state change",
		zap.String("breaker", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", Open),
	)
	b.emit(Event{Type: EventOpen})
}

// transitionHalfOpen runs when the reset timer elapses. The next
// admitted call becomes the trial.
func (b *Breaker) transitionHalfOpen() {
	b.mu.Lock()
	if b.shutdown || b.state != Open {
		b.mu.Unlock()
		return
	}
	b.state = HalfOpen
	b.pendingClose = true
	b.resetTimer = nil
	b.mu.Unlock()

	b.logger.Warn("circuit state change",
		zap.String("breaker", b.name),
		zap.Stringer("from", Open),
		zap.Stringer("to", HalfOpen),
	)
	b.emit(Event{Type: EventHalfOpen})
}

// transitionClosed moves the circuit to Closed and disarms the reset
// timer.
func (b *Breaker) transitionClosed() {
	b.mu.Lock()
	if b.shutdown || b.state == Closed {
		b.mu.Unlock()
		return
	}
	from := b.state
	b.state = Closed
	b.pendingClose = false
	if b.resetTimer != nil {
		b.resetTimer.Stop()
		b.resetTimer = nil
	}
	b.mu.Unlock()

	b.window.increment(statClose)
	b.logger.Warn("circuit state change",
		zap.String("breaker", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", Closed),
	)
	b.emit(Event{Type: EventClose})
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// Group returns the breaker group.
func (b *Breaker) Group() string {
	return b.group
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Closed reports whether the circuit is closed.
func (b *Breaker) Closed() bool {
	return b.State() == Closed
}

// Opened reports whether the circuit is open.
func (b *Breaker) Opened() bool {
	return b.State() == Open
}

// HalfOpen reports whether the circuit is half-open.
func (b *Breaker) HalfOpen() bool {
	return b.State() == HalfOpen
}

// PendingClose reports whether the breaker is half-open and awaiting
// its trial call.
func (b *Breaker) PendingClose() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingClose
}

// Enabled reports whether breaker logic is active.
func (b *Breaker) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// IsShutdown reports whether the breaker has been shut down.
func (b *Breaker) IsShutdown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdown
}

// WarmUp reports whether the breaker is still within its warm-up
// period, during which failures are recorded but never trip the
// circuit.
func (b *Breaker) WarmUp() bool {
	if !b.cfg.allowWarmUp {
		return false
	}
	return b.cfg.clock.Now().Sub(b.startedAt) < b.cfg.rollingWindow
}

// VolumeThreshold returns the configured volume threshold.
func (b *Breaker) VolumeThreshold() int64 {
	return b.cfg.volumeThreshold
}

// Stats returns an aggregated snapshot of the rolling statistics
// window.
func (b *Breaker) Stats() Stats {
	return b.window.snapshot()
}
