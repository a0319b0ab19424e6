package engine

import (
	"sync"

	"github.com/roach88/pvmcdm/internal/pvm"
)

// txQueue is a thread-safe FIFO of transactions waiting for one view
// instance.
//
// The queue is unbounded so that Ingest never blocks on a slow view; each
// instance drains its own queue at its own pace.
//
// The queue uses a channel for signaling so the pump can wait on it together
// with the instance's Done channel.
type txQueue struct {
	mu     sync.Mutex
	txs    []*pvm.Transaction
	closed bool
	signal chan struct{} // Signals availability (buffered, size 1)
}

func newTxQueue() *txQueue {
	return &txQueue{
		txs:    make([]*pvm.Transaction, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds tr to the back of the queue.
// Returns false if the queue is closed.
func (q *txQueue) Enqueue(tr *pvm.Transaction) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.txs = append(q.txs, tr)

	// Non-blocking: a buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes and returns the front transaction without blocking.
// Returns (nil, false) if the queue is empty.
func (q *txQueue) TryDequeue() (*pvm.Transaction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.txs) == 0 {
		return nil, false
	}

	tr := q.txs[0]

	// Nil out the slot so the backing array does not pin delivered transactions.
	q.txs[0] = nil

	if len(q.txs) == 1 {
		q.txs = q.txs[:0]
	} else {
		q.txs = q.txs[1:]
	}

	return tr, true
}

// Wait returns a channel that signals when transactions may be available.
// It is closed once the queue is closed.
func (q *txQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *txQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.txs)
}

// Drained reports whether the queue is closed and empty.
func (q *txQueue) Drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.txs) == 0
}

// Close signals that no more transactions will be enqueued.
// Transactions already queued can still be dequeued.
func (q *txQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}

// Discard closes the queue and drops everything still in it.
func (q *txQueue) Discard() int {
	q.mu.Lock()
	n := len(q.txs)
	q.txs = nil
	q.mu.Unlock()
	q.Close()
	return n
}
