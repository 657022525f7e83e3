package fuse

import (
	"context"
	"fmt"
)

// Call fires b and returns its result as T. This is a convenience
// wrapper for actions with a known result type.
func Call[T any](ctx context.Context, b *Breaker, args ...any) (T, error) {
	v, err := b.Fire(ctx, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("fuse: result is %T, not %T", v, zero)
	}
	return t, nil
}
