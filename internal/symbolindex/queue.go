package symbolindex

import (
	"sync"

	"github.com/ktnyt/fae-sub001/internal/message"
)

// opQueue is the builder's pending-operation deque. It enforces the
// invariant from spec.md §3: at most one pending operation per path, and a
// path's position is the position of its latest operation (DESIGN NOTES §9:
// "queue deduplication").
type opQueue struct {
	mu         sync.Mutex
	order      []string
	pending    map[string]message.FileOperation
	processing map[string]bool // paths currently being processed by a prior pop, not yet markDone
	hadWork    bool            // true once non-empty since the last drain, cleared on drain
	notify     chan struct{}
}

func newOpQueue() *opQueue {
	return &opQueue{
		pending:    make(map[string]message.FileOperation),
		processing: make(map[string]bool),
		notify:     make(chan struct{}, 1),
	}
}

// push enqueues op, discarding any earlier pending operation for the same
// path and moving the path to the back of the deque.
func (q *opQueue) push(op message.FileOperation) {
	q.mu.Lock()
	if _, exists := q.pending[op.Path]; exists {
		q.removeFromOrder(op.Path)
	}
	q.order = append(q.order, op.Path)
	q.pending[op.Path] = op
	q.hadWork = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// removeFromOrder must be called with q.mu held.
func (q *opQueue) removeFromOrder(path string) {
	for i, p := range q.order {
		if p == path {
			q.order = append(q.order[:i], q.order[i+1:]...)
			return
		}
	}
}

// pop removes and returns the earliest operation whose path is not already
// being processed, or false if none is available. A path stays marked
// processing (and thus unpoppable, even if a new event re-queues it) until
// markDone is called, so the store never sees two concurrent mutations for
// the same file (spec.md §3's SymbolIndex invariant).
func (q *opQueue) pop() (message.FileOperation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, path := range q.order {
		if q.processing[path] {
			continue
		}
		op, ok := q.pending[path]
		if !ok {
			continue
		}
		q.order = append(q.order[:i:i], q.order[i+1:]...)
		delete(q.pending, path)
		q.processing[path] = true
		return op, true
	}
	return message.FileOperation{}, false
}

// markDone releases the processing lock on path, allowing a re-queued
// operation for it to be popped.
func (q *opQueue) markDone(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.processing, path)
}

// len reports the number of pending operations.
func (q *opQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// drainedSinceWork reports whether the queue is currently empty and had at
// least one operation enqueued since the last time this returned true; if
// so it resets the tracking flag. This implements spec.md §4.3's "emits
// CompleteInitialIndexing exactly once per drain after a prior non-empty
// state".
func (q *opQueue) drainedSinceWork() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 && q.hadWork {
		q.hadWork = false
		return true
	}
	return false
}
