// Package store is the SQLite log behind the process tree view's sqlite
// format.
//
// The log has two tables:
//   - proc_nodes: actor labels, one row per label change
//   - proc_rels: inference edges between known actors
//
// Create starts a fresh log (rows of an earlier run are dropped); Open keeps
// what is there and appends after it.
//
// # Ordering
//
// Both tables share one sequence, assigned by AppendNode and AppendRel,
// never a timestamp. Reads order by seq ASC, so the log reads back in the
// order the view wrote it.
//
// # Connection settings
//
// Passed to the driver in the DSN so every connection gets them: WAL
// journal, synchronous=NORMAL, a 5 second busy timeout, foreign keys on.
package store
