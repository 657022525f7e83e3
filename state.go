package fuse

// State represents the circuit breaker state.
type State int

const (
	// Closed is the normal operating state. Calls flow through.
	Closed State = iota

	// Open is the tripped state. Calls are rejected immediately.
	Open

	// HalfOpen is the recovery testing state. A single trial call
	// is allowed through to probe the downstream.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
