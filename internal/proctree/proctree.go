// Package proctree exports the process ancestry of the stream.
//
// Every actor becomes a node labelled with the current value of one of its
// properties (cmdline by default) and every inference edge between two known
// actors becomes an edge. A node is written again whenever its label changes.
package proctree

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/view"
)

// Name is the registered view type name.
const Name = "ProcTreeView"

// Parameter names.
const (
	ParamOutput  = "output"
	ParamFormat  = "fmt"
	ParamMetaKey = "meta_key"
)

// Output formats.
const (
	FormatJSON   = "json"
	FormatDot    = "dot"
	FormatSQLite = "sqlite"
)

// Unlabelled is written for an actor that has no value for the label key.
const Unlabelled = "???"

// View is the process tree view type.
type View struct{}

// New returns the process tree view type.
func New() *View {
	return &View{}
}

func (*View) Name() string { return Name }

func (*View) Desc() string { return "View for storing a process tree." }

func (*View) Params() []view.ParamSpec {
	return []view.ParamSpec{
		{Name: ParamOutput, Desc: "Output file location", Default: "./proc_tree.json"},
		{Name: ParamFormat, Desc: "Output format: json, dot or sqlite", Default: FormatJSON},
		{Name: ParamMetaKey, Desc: "Actor property used as the node label", Default: "cmdline"},
	}
}

func (v *View) Create(id int, params view.Params, cfg *config.Config, stream <-chan *pvm.Transaction) (*view.Instance, error) {
	params, err := view.WithDefaults(Name, v.Params(), params)
	if err != nil {
		return nil, err
	}
	if err := view.OneOf(Name, params, ParamFormat, FormatJSON, FormatDot, FormatSQLite); err != nil {
		return nil, err
	}

	path := cfg.Resolve(params[ParamOutput])
	out, err := openSink(params[ParamFormat], path)
	if err != nil {
		return nil, view.NewConfigError(Name, "open output", err)
	}

	inst := view.NewInstance(id, Name, params)
	slog.Debug("process tree output opened", "instance", id, "path", path, "fmt", params[ParamFormat])
	inst.Start(stream, newWorker(out, params[ParamMetaKey]))
	return inst, nil
}

func openSink(format, path string) (sink, error) {
	switch format {
	case FormatJSON:
		return newJSONSink(path)
	case FormatDot:
		return newDotSink(path)
	case FormatSQLite:
		return newSQLiteSink(path)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

type worker struct {
	out     sink
	metaKey string

	// labels holds the last label written per actor; nil means unset.
	labels map[pvm.ID]*string
}

func newWorker(out sink, metaKey string) *worker {
	return &worker{out: out, metaKey: metaKey, labels: make(map[pvm.ID]*string)}
}

func (w *worker) Handle(tr *pvm.Transaction) error {
	switch tr.Op {
	case pvm.OpCreateNode, pvm.OpUpdateNode:
		n, ok := tr.Node.(*pvm.DataNode)
		if !ok || n.Type != pvm.Actor {
			return nil
		}
		return w.actor(n)
	case pvm.OpCreateRel:
		r, ok := tr.Rel.(*pvm.InfRel)
		if !ok {
			return nil
		}
		_, src := w.labels[r.Src]
		_, dst := w.labels[r.Dst]
		if !src || !dst {
			return nil
		}
		if err := w.out.WriteRel(r.Src, r.Dst); err != nil {
			return view.NewIOError(Name, fmt.Sprintf("write edge %d", r.ID), err)
		}
	}
	return nil
}

func (w *worker) actor(n *pvm.DataNode) error {
	var cur *string
	if v, ok := n.Meta.Cur(w.metaKey); ok {
		cur = &v
	}
	prev, seen := w.labels[n.ID]
	if seen && sameLabel(prev, cur) {
		return nil
	}

	label := Unlabelled
	if cur != nil {
		label = *cur
	}
	if err := w.out.WriteNode(n.ID, label); err != nil {
		return view.NewIOError(Name, fmt.Sprintf("write node %d", n.ID), err)
	}
	w.labels[n.ID] = cur
	return nil
}

func sameLabel(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (w *worker) Drain() error {
	if err := w.out.Close(); err != nil {
		return view.NewIOError(Name, "close output", err)
	}
	slog.Debug("process tree output closed", "actors", len(w.labels))
	return nil
}
