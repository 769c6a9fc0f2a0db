package pipeline

import "context"

// DefaultCapacity is the connector capacity used when none is configured.
const DefaultCapacity = 4

// Connector is a bounded FIFO between two adjacent stages. The producing
// stage is its only writer and the consuming stage its only reader.
type Connector[T any] struct {
	ch chan T
}

// NewConnector creates a connector holding at most capacity values.
// A capacity <= 0 selects DefaultCapacity.
func NewConnector[T any](capacity int) *Connector[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Connector[T]{ch: make(chan T, capacity)}
}

// Put blocks until a slot is free, then enqueues v.
func (c *Connector[T]) Put(v T) {
	c.ch <- v
}

// Get blocks until a value is available, then dequeues it.
func (c *Connector[T]) Get() T {
	return <-c.ch
}

// PutContext is Put that gives up when ctx ends. v is not enqueued when an
// error is returned.
func (c *Connector[T]) PutContext(ctx context.Context, v T) error {
	select {
	case c.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetContext is Get that gives up when ctx ends.
func (c *Connector[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Len returns the number of buffered values. The result is a snapshot for
// diagnostics and must not drive flow control.
func (c *Connector[T]) Len() int {
	return len(c.ch)
}

// Cap returns the connector capacity.
func (c *Connector[T]) Cap() int {
	return cap(c.ch)
}
