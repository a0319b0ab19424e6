// Package pvm provides the internal provenance graph model as it is seen by
// exported views.
//
// The graph engine that builds the model lives outside this module. Views only
// ever observe immutable snapshots of its entities, delivered one
// Transaction at a time over a channel.
//
// This package contains type definitions only (plus their wire form). All
// other internal packages import pvm; pvm imports nothing internal.
//
// Key invariants:
//   - Every entity carries an ID assigned by the engine, unique for the
//     engine's lifetime, and never changed after creation
//   - An Update transaction always names an ID that was previously the subject
//     of a Create transaction
//   - The entity taxonomy is closed: EntityKind enumerates every variant and
//     consumers switch over it exhaustively
package pvm
