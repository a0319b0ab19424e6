package store

import (
	"context"
	"fmt"

	"github.com/roach88/pvmcdm/internal/pvm"
)

// ReadNodes returns every node label in write order (ORDER BY seq ASC).
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ReadNodes(ctx context.Context) ([]ProcNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, node_id, label
		FROM proc_nodes
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []ProcNode{}
	for rows.Next() {
		var (
			n  ProcNode
			id int64
		)
		if err := rows.Scan(&n.Seq, &id, &n.Label); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.ID = pvm.ID(id)
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// ReadRels returns every edge in write order.
func (s *Store) ReadRels(ctx context.Context) ([]ProcRel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, src, dst
		FROM proc_rels
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rels: %w", err)
	}
	defer rows.Close()

	rels := []ProcRel{}
	for rows.Next() {
		var (
			r        ProcRel
			src, dst int64
		)
		if err := rows.Scan(&r.Seq, &src, &dst); err != nil {
			return nil, fmt.Errorf("scan rel: %w", err)
		}
		r.Src, r.Dst = pvm.ID(src), pvm.ID(dst)
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rels: %w", err)
	}
	return rels, nil
}

// CurrentLabels returns the latest label of every actor.
func (s *Store) CurrentLabels(ctx context.Context) (map[pvm.ID]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.node_id, p.label
		FROM proc_nodes p
		WHERE p.seq = (SELECT MAX(seq) FROM proc_nodes WHERE node_id = p.node_id)
		ORDER BY p.node_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[pvm.ID]string)
	for rows.Next() {
		var (
			id    int64
			label string
		)
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels[pvm.ID(id)] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labels: %w", err)
	}
	return labels, nil
}
