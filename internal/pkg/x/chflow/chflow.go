// Package chflow provides context-aware helpers for receiving from and
// sending to channels, so channel operations respect cancellation.
package chflow

import "context"

// Receive waits for a value from the channel or for the context to be
// canceled. The boolean is false when the context ended first or the channel
// was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Send attempts to send a value to the channel unless the context is canceled
// first, reporting whether the send happened.
func Send[T any](ctx context.Context, ch chan<- T, data T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- data:
		return true
	}
}
