// Package concurrent holds small fan-out helpers built on errgroup.
package concurrent

import (
	"golang.org/x/sync/errgroup"
)

// ForEach runs action for each element in a separate goroutine, at most
// limit at a time; limit <= 0 means no bound. It waits for all goroutines
// to finish and returns the first error encountered.
func ForEach[T any](items []T, limit int, action func(int, T) error) error {
	errGroup := errgroup.Group{}
	if limit > 0 {
		errGroup.SetLimit(limit)
	}
	for i, value := range items {
		errGroup.Go(func() error {
			return action(i, value)
		})
	}
	return errGroup.Wait()
}

// Filter returns the elements for which keep reports true, in order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
