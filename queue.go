// Package mpsc implements an intrusive multi-producer single-consumer queue.
//
// The algorithm is Dmitry Vyukov's intrusive MPSC node-based queue:
// http://www.1024cores.net/home/lock-free-algorithms/queues/intrusive-mpsc-node-based-queue
//
// Push is lock-free and may be called from any number of goroutines.
// Pop must only be called by one goroutine at a time; use Queue.Consumer
// to get a handle that enforces this.
//
// Pop returning false does not mean the queue is empty. A producer may have
// swapped itself in as head without having linked its predecessor yet; the
// node becomes visible once that write lands. Consumers must treat false as
// "try again later".
package mpsc

import (
	"sync/atomic"
)

// Queue is an intrusive MPSC queue of *Node[T].
//
// The zero value is an empty queue ready to use. A Queue must not be copied
// after first use.
type Queue[T any] struct {
	// head is the most recently pushed node. nil means nothing has ever
	// been linked, in which case the first push links from stub.
	head atomic.Pointer[Node[T]]

	// tail is the next node to pop. Only the consumer touches it.
	// nil means start at stub.
	tail *Node[T]

	// stub is re-pushed by Pop whenever the last node is taken, so the
	// chain never runs dry under the consumer.
	stub Node[T]

	// consumer is set once the Consumer handle has been taken.
	consumer atomic.Bool

	// beforeStubPush, when set, runs after Pop has found tail to be head
	// and before it pushes the stub. Tests use it to land a producer in
	// that window.
	beforeStubPush func()
}

// New return an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push links n as the newest element of the queue.
//
// n must not be nil and must not currently be in any queue. Push never
// blocks and never retries.
func (q *Queue[T]) Push(n *Node[T]) {
	if n == nil {
		panic("mpsc: Push of nil node")
	}
	q.link(q.swapHead(n), n)
}

// swapHead publishes n as head and returns the node it replaced. Every
// producer gets a distinct predecessor back, so no two producers ever write
// the same link.
func (q *Queue[T]) swapHead(n *Node[T]) *Node[T] {
	n.storeNext(nil)
	return q.head.Swap(n)
}

// link makes n reachable from its predecessor. Until it runs, n is head but
// the consumer cannot see it.
func (q *Queue[T]) link(prev, n *Node[T]) {
	if prev == nil {
		// first push ever
		q.stub.storeNext(n)
		return
	}
	prev.storeNext(n)
}

// Pop removes the oldest reachable node.
//
// It returns false when the queue is empty or when a concurrent Push has
// not finished linking; the two cases cannot be told apart. Pop must not be
// called from more than one goroutine at a time.
func (q *Queue[T]) Pop() (*Node[T], bool) {
	stub := &q.stub
	tail := q.tail
	if tail == nil {
		tail = stub
	}
	next := tail.loadNext()

	// skip over the stub
	if tail == stub {
		if next == nil {
			return nil, false
		}
		q.tail = next
		tail = next
		next = next.loadNext()
	}

	if next != nil {
		q.tail = next
		return tail, true
	}

	// tail has no successor. Unless it is also head, some producer has
	// swapped head but not linked tail yet.
	if tail != q.head.Load() {
		return nil, false
	}

	// tail is the last node. Put the stub behind it so tail can be
	// handed out without leaving the chain empty.
	if q.beforeStubPush != nil {
		q.beforeStubPush()
	}
	q.Push(stub)
	next = tail.loadNext()
	if next != nil {
		q.tail = next
		return tail, true
	}
	// a producer got between the head check and the stub push
	return nil, false
}
