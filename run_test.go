package fuse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bjaus/fuse"
)

type testResult struct {
	value string
}

func TestCall(t *testing.T) {
	t.Run("returns typed value on success", func(t *testing.T) {
		b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
			return &testResult{value: "hello"}, nil
		}, fuse.WithRegistry(fuse.NewRegistry()))

		result, err := fuse.Call[*testResult](context.Background(), b)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if result.value != "hello" {
			t.Fatalf("expected 'hello', got %q", result.value)
		}
	})

	t.Run("returns error on failure", func(t *testing.T) {
		b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
			return nil, errTest
		}, fuse.WithRegistry(fuse.NewRegistry()))

		result, err := fuse.Call[*testResult](context.Background(), b)

		if !errors.Is(err, errTest) {
			t.Fatalf("expected errTest, got %v", err)
		}
		if result != nil {
			t.Fatalf("expected nil result, got %v", result)
		}
	})

	t.Run("returns ErrOpen when circuit open", func(t *testing.T) {
		b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
			return &testResult{value: "should not reach"}, nil
		}, fuse.WithRegistry(fuse.NewRegistry()))
		b.Open()

		result, err := fuse.Call[*testResult](context.Background(), b)

		if !fuse.IsOpen(err) {
			t.Fatalf("expected ErrOpen, got %v", err)
		}
		if result != nil {
			t.Fatalf("expected nil result, got %v", result)
		}
	})

	t.Run("works with value types", func(t *testing.T) {
		b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
			return 42, nil
		}, fuse.WithRegistry(fuse.NewRegistry()))

		result, err := fuse.Call[int](context.Background(), b)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if result != 42 {
			t.Fatalf("expected 42, got %d", result)
		}
	})

	t.Run("rejects mismatched result type", func(t *testing.T) {
		b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
			return "not an int", nil
		}, fuse.WithRegistry(fuse.NewRegistry()))

		_, err := fuse.Call[int](context.Background(), b)
		if err == nil {
			t.Fatal("expected type mismatch error, got nil")
		}
	})

	t.Run("passes arguments through", func(t *testing.T) {
		b := fuse.New(func(ctx context.Context, args ...any) (any, error) {
			return args[0], nil
		}, fuse.WithRegistry(fuse.NewRegistry()))

		result, err := fuse.Call[string](context.Background(), b, "echo")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if result != "echo" {
			t.Fatalf("expected 'echo', got %q", result)
		}
	})
}
