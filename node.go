package mpsc

import (
	"sync/atomic"
)

// Node is an intrusive queue element. The caller allocates it, fills Value
// and hands it to Push; the queue only ever writes the link.
//
// A pushed node must not be reused or mutated until Pop has returned it.
type Node[T any] struct {
	// next is written by exactly one producer (the one whose head swap
	// returned this node) and read by the consumer.
	next atomic.Pointer[Node[T]]

	Value T
}

// NewNode return a node carrying v.
func NewNode[T any](v T) *Node[T] {
	return &Node[T]{Value: v}
}

func (n *Node[T]) loadNext() *Node[T] {
	return n.next.Load()
}

func (n *Node[T]) storeNext(next *Node[T]) {
	n.next.Store(next)
}
