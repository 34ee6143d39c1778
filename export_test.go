package mpsc

// SwapHead and Link split Push in two so tests can stop a producer between
// publishing head and linking its predecessor.
func (q *Queue[T]) SwapHead(n *Node[T]) *Node[T] { return q.swapHead(n) }

func (q *Queue[T]) Link(prev, n *Node[T]) { q.link(prev, n) }

// SetBeforeStubPush installs f to run inside Pop right before the stub is
// pushed back. nil removes it.
func (q *Queue[T]) SetBeforeStubPush(f func()) { q.beforeStubPush = f }
