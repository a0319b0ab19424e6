// Package engine hosts views and fans the mutation stream out to them.
//
// The engine does not build the provenance graph. It receives transactions
// that are already formed and delivers each one, in ingestion order, to every
// view instance that exists at the time of ingestion.
//
// ARCHITECTURE:
//
// Per-instance queues:
// Every instance owns an unbounded FIFO (txQueue) and a pump goroutine that
// moves transactions from the queue into the instance's channel. Ingest only
// appends to queues, so it never blocks on a slow view, and one slow or dead
// view never holds back its siblings.
//
// Lifecycle:
//  1. RegisterViewType declares the available view types.
//  2. CreateView instantiates a type. Configuration errors surface here,
//     before any transaction is delivered.
//  3. Ingest appends a transaction to every live instance's queue.
//  4. Shutdown closes every queue, lets the pumps deliver what is queued,
//     and waits for every worker to drain. Worker errors are joined.
//
// A pump whose instance terminates early (a worker error) discards its queue
// so the dead instance stops accumulating transactions.
package engine
