package fuse

import "context"

// Fallback produces a substitute result when the primary call path
// fails, times out, or is rejected. cause is the error that triggered
// the fallback; args are the original call arguments.
type Fallback interface {
	Invoke(ctx context.Context, cause error, args ...any) (any, error)
}

// FallbackFunc adapts a plain function to the Fallback interface.
type FallbackFunc func(ctx context.Context, cause error, args ...any) (any, error)

// Invoke calls fn.
func (fn FallbackFunc) Invoke(ctx context.Context, cause error, args ...any) (any, error) {
	return fn(ctx, cause, args...)
}

// breakerFallback delegates to another breaker, invoked through its
// own full admission and state logic. The triggering error is appended
// to the original arguments.
type breakerFallback struct {
	b *Breaker
}

func (f breakerFallback) Invoke(ctx context.Context, cause error, args ...any) (any, error) {
	return f.b.Fire(ctx, append(args, cause)...)
}

// Fallback sets fb as the breaker's fallback. Passing nil removes any
// configured fallback.
func (b *Breaker) Fallback(fb Fallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fallback = fb
}

// FallbackBreaker chains next as the fallback: whenever this breaker's
// primary path fails, next is fired with the original arguments plus
// the triggering error.
func (b *Breaker) FallbackBreaker(next *Breaker) {
	b.Fallback(breakerFallback{b: next})
}

func (b *Breaker) currentFallback() Fallback {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fallback
}
