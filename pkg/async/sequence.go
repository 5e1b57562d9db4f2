package async

import (
	"errors"
	"iter"
	"sync/atomic"
)

// ErrSequenceConsumed is yielded when a one-shot sequence is ranged over twice.
var ErrSequenceConsumed = errors.New("sequence already consumed")

// Once wraps seq so that it can be iterated a single time.
// Later iterations yield ErrSequenceConsumed and stop.
func Once[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	var used atomic.Bool
	return func(yield func(T, error) bool) {
		if used.Swap(true) {
			var zero T
			yield(zero, ErrSequenceConsumed)
			return
		}
		seq(yield)
	}
}

// Fail returns a sequence that yields err once.
func Fail[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Collect drains seq into a slice, stopping at the first error.
// The returned slice is never nil.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	out := make([]T, 0)
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
