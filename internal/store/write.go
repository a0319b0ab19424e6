package store

import (
	"context"
	"fmt"

	"github.com/roach88/pvmcdm/internal/pvm"
)

// ProcNode is one label written for an actor.
type ProcNode struct {
	Seq   int64
	ID    pvm.ID
	Label string
}

// ProcRel is one inference edge between two actors.
type ProcRel struct {
	Seq int64
	Src pvm.ID
	Dst pvm.ID
}

// WriteNode appends a node label.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency - rewriting a seq is silently ignored.
func (s *Store) WriteNode(ctx context.Context, n ProcNode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proc_nodes (seq, node_id, label)
		VALUES (?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, n.Seq, int64(n.ID), n.Label)
	if err != nil {
		return fmt.Errorf("write node %d: %w", n.ID, err)
	}
	return nil
}

// WriteRel appends an edge.
// Uses ON CONFLICT(seq) DO NOTHING for idempotency.
func (s *Store) WriteRel(ctx context.Context, r ProcRel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO proc_rels (seq, src, dst)
		VALUES (?, ?, ?)
		ON CONFLICT(seq) DO NOTHING
	`, r.Seq, int64(r.Src), int64(r.Dst))
	if err != nil {
		return fmt.Errorf("write rel %d -> %d: %w", r.Src, r.Dst, err)
	}
	return nil
}

// AppendNode writes a label for actor id under the next sequence number.
func (s *Store) AppendNode(ctx context.Context, id pvm.ID, label string) (ProcNode, error) {
	n := ProcNode{Seq: s.seq + 1, ID: id, Label: label}
	if err := s.WriteNode(ctx, n); err != nil {
		return ProcNode{}, err
	}
	s.seq = n.Seq
	return n, nil
}

// AppendRel writes an edge under the next sequence number.
func (s *Store) AppendRel(ctx context.Context, src, dst pvm.ID) (ProcRel, error) {
	r := ProcRel{Seq: s.seq + 1, Src: src, Dst: dst}
	if err := s.WriteRel(ctx, r); err != nil {
		return ProcRel{}, err
	}
	s.seq = r.Seq
	return r, nil
}
