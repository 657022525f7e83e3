package fuse

import "errors"

// ErrOpen is returned when the circuit is open and rejecting calls.
var ErrOpen = errors.New("circuit open")

// ErrTimeout is returned when the action does not complete within the
// configured timeout.
var ErrTimeout = errors.New("action timed out")

// ErrSemaphoreLocked is returned when the admission gate is saturated
// and no further concurrent calls are allowed.
var ErrSemaphoreLocked = errors.New("semaphore locked")

// ErrShutdown is returned by every call made after Shutdown. It is
// terminal: no fallback intercepts it and no statistics are recorded.
var ErrShutdown = errors.New("breaker has been shut down")

// IsOpen reports whether err is because the circuit is open.
func IsOpen(err error) bool {
	return errors.Is(err, ErrOpen)
}

// IsTimeout reports whether err is a breaker-imposed timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsLocked reports whether err is an admission-gate rejection.
func IsLocked(err error) bool {
	return errors.Is(err, ErrSemaphoreLocked)
}

// IsShutdown reports whether err is because the breaker was shut down.
func IsShutdown(err error) bool {
	return errors.Is(err, ErrShutdown)
}
