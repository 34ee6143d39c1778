package mpsc

import (
	"errors"
	"iter"
)

// ErrConsumerTaken is returned by Queue.Consumer once the handle has
// already been given out.
var ErrConsumerTaken = errors.New("mpsc: consumer already taken")

// Consumer is the single-consumer side of a Queue. There is at most one per
// queue; it must not be shared between goroutines that may pop concurrently.
type Consumer[T any] struct {
	q *Queue[T]
}

// Consumer hands out the queue's only Consumer. Every call after the first
// returns ErrConsumerTaken.
func (q *Queue[T]) Consumer() (*Consumer[T], error) {
	if !q.consumer.CompareAndSwap(false, true) {
		return nil, ErrConsumerTaken
	}
	return &Consumer[T]{q: q}, nil
}

// Queue returns the queue c consumes from. Producers may push to it freely.
func (c *Consumer[T]) Queue() *Queue[T] {
	return c.q
}

// Pop removes the oldest reachable node. See Queue.Pop for what false means.
func (c *Consumer[T]) Pop() (*Node[T], bool) {
	return c.q.Pop()
}

// Drain yields nodes until Pop reports false. A producer that is still
// linking will end the iteration early; drain again later to pick its node
// up.
func (c *Consumer[T]) Drain() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for {
			n, ok := c.q.Pop()
			if !ok || !yield(n) {
				return
			}
		}
	}
}
