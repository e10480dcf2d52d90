// Package xiter holds small iter.Seq helpers shared by the resolution packages.
package xiter

import (
	"context"
	"iter"
	"slices"
)

// Backward yields items from last to first.
func Backward[T any](items []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := len(items) - 1; i >= 0; i-- {
			if !yield(items[i]) {
				return
			}
		}
	}
}

// Collect gathers all values from a sequence.
func Collect[T any](seq iter.Seq[T]) []T {
	return slices.Collect(seq)
}

// First returns the first value of a sequence.
func First[T any](seq iter.Seq[T]) (T, bool) {
	for item := range seq {
		return item, true
	}
	var zero T
	return zero, false
}

// Count returns how many values are yielded by a sequence.
func Count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// Cancellable stops seq at the first element boundary after ctx is done.
// Stopping is silent; callers that care inspect ctx.Err().
func Cancellable[T any](ctx context.Context, seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		if ctx.Err() != nil {
			return
		}
		for item := range seq {
			if ctx.Err() != nil || !yield(item) {
				return
			}
		}
	}
}
