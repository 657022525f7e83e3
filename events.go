package fuse

import "time"

// EventType identifies a breaker lifecycle event.
type EventType int

const (
	// EventFire is published for every invocation attempt.
	EventFire EventType = iota

	// EventCacheHit is published when a cached result short-circuits
	// the call.
	EventCacheHit

	// EventCacheMiss is published when caching is enabled but no
	// cached result exists.
	EventCacheMiss

	// EventSuccess is published when the action completes successfully.
	EventSuccess

	// EventFailure is published when the action fails and the error is
	// not filtered.
	EventFailure

	// EventTimeout is published when the action exceeds the configured
	// timeout.
	EventTimeout

	// EventReject is published when a call is short-circuited by an
	// open circuit.
	EventReject

	// EventSemaphoreLocked is published when the admission gate is
	// saturated.
	EventSemaphoreLocked

	// EventFallback is published after the fallback has produced a
	// substitute result.
	EventFallback

	// EventOpen is published when the circuit transitions to Open.
	EventOpen

	// EventClose is published when the circuit transitions to Closed.
	EventClose

	// EventHalfOpen is published when the reset timer elapses and the
	// circuit transitions to HalfOpen.
	EventHalfOpen

	// EventHealthCheckFailed is published when a health-check probe
	// fails.
	EventHealthCheckFailed
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventFire:
		return "fire"
	case EventCacheHit:
		return "cacheHit"
	case EventCacheMiss:
		return "cacheMiss"
	case EventSuccess:
		return "success"
	case EventFailure:
		return "failure"
	case EventTimeout:
		return "timeout"
	case EventReject:
		return "reject"
	case EventSemaphoreLocked:
		return "semaphoreLocked"
	case EventFallback:
		return "fallback"
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventHalfOpen:
		return "halfOpen"
	case EventHealthCheckFailed:
		return "healthCheckFailed"
	default:
		return "unknown"
	}
}

// Event is a structured outcome record published to subscribers.
type Event struct {
	Type    EventType
	Name    string
	Group   string
	Err     error         // set for failure, timeout, reject, semaphoreLocked, fallback, healthCheckFailed
	Latency time.Duration // set for success
	Value   any           // set for success, cacheHit, fallback
}

// Listener receives breaker events. Listeners are invoked
// synchronously on the calling goroutine; slow listeners delay call
// settlement.
type Listener func(Event)

// Subscribe registers fn for all subsequent events. The returned
// function removes the subscription; it is safe to call more than
// once. All subscriptions are dropped on Shutdown.
func (b *Breaker) Subscribe(fn Listener) (cancel func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	if b.subs == nil {
		b.subs = make(map[uint64]Listener)
	}
	b.subs[id] = fn

	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		delete(b.subs, id)
	}
}

// emit delivers ev to every current subscriber. Never called with the
// state mutex held.
func (b *Breaker) emit(ev Event) {
	ev.Name = b.name
	ev.Group = b.group

	b.subMu.RLock()
	listeners := make([]Listener, 0, len(b.subs))
	for _, fn := range b.subs {
		listeners = append(listeners, fn)
	}
	b.subMu.RUnlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

func (b *Breaker) clearSubscribers() {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	b.subs = nil
}
