package mpsc_test

import (
	"sync"

	"github.com/min1324/mpsc"
)

// QInterface use in queue testing
type QInterface interface {
	Push(*mpsc.Node[int])
	Pop() (*mpsc.Node[int], bool)
}

var (
	_ QInterface = &mpsc.Queue[int]{}
	_ QInterface = &MutexQueue{}
)

// MutexQueue is a FIFO of nodes guarded by one mutex. It keeps its own
// links so the nodes it holds stay usable with mpsc.Queue afterwards.
type MutexQueue struct {
	mu sync.Mutex

	head, tail *listNode
	free       *listNode
}

type listNode struct {
	n    *mpsc.Node[int]
	next *listNode
}

func (q *MutexQueue) Push(n *mpsc.Node[int]) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ln := q.free
	if ln != nil {
		q.free = ln.next
		ln.next = nil
	} else {
		ln = &listNode{}
	}
	ln.n = n
	if q.tail == nil {
		q.head = ln
	} else {
		q.tail.next = ln
	}
	q.tail = ln
}

func (q *MutexQueue) Pop() (*mpsc.Node[int], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ln := q.head
	if ln == nil {
		return nil, false
	}
	q.head = ln.next
	if q.head == nil {
		q.tail = nil
	}
	n := ln.n
	ln.n = nil
	ln.next = q.free
	q.free = ln
	return n, true
}
