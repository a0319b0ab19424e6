// Package nettraffic correlates actors with the network endpoints they talk
// to.
//
// The view tracks actors, conduits and network names. An inference edge
// between a conduit and an actor logs a flow line; a named edge from a
// conduit to a network name logs the endpoint the conduit is bound to.
// Actor details are taken from the actor's latest snapshot.
//
// Output lines:
//
//	flow <actor uuid> <pid> <cmdline> <in|out> <conduit id>
//	bind <conduit id> <addr:port>
//
// pid is "-" when unset and cmdline is always quoted.
package nettraffic

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/roach88/pvmcdm/internal/config"
	"github.com/roach88/pvmcdm/internal/pvm"
	"github.com/roach88/pvmcdm/internal/view"
)

// Name is the registered view type name.
const Name = "NetworkTrafficView"

// ParamOutput names the output file parameter.
const ParamOutput = "output"

// Flow directions relative to the actor.
const (
	DirIn  = "in"
	DirOut = "out"
)

// View is the network traffic view type.
type View struct{}

// New returns the network traffic view type.
func New() *View {
	return &View{}
}

func (*View) Name() string { return Name }

func (*View) Desc() string { return "View for storing a network traffic log." }

func (*View) Params() []view.ParamSpec {
	return []view.ParamSpec{
		{Name: ParamOutput, Desc: "Output file location", Default: "./network.log"},
	}
}

func (v *View) Create(id int, params view.Params, cfg *config.Config, stream <-chan *pvm.Transaction) (*view.Instance, error) {
	params, err := view.WithDefaults(Name, v.Params(), params)
	if err != nil {
		return nil, err
	}
	path := cfg.Resolve(params[ParamOutput])
	f, err := os.Create(path)
	if err != nil {
		return nil, view.NewConfigError(Name, "open output", err)
	}

	inst := view.NewInstance(id, Name, params)
	inst.Start(stream, newWorker(f))
	return inst, nil
}

type actor struct {
	uuid    uuid.UUID
	pid     string
	cmdline string
}

func actorOf(n *pvm.DataNode) actor {
	a := actor{uuid: n.UUID, pid: "-"}
	if pid, ok := n.Meta.Cur("pid"); ok {
		a.pid = pid
	}
	a.cmdline, _ = n.Meta.Cur("cmdline")
	return a
}

type worker struct {
	f   *os.File
	out *bufio.Writer

	actors   map[pvm.ID]actor
	conduits map[pvm.ID]struct{}
	addrs    map[pvm.ID]string
	lines    int
}

func newWorker(f *os.File) *worker {
	return &worker{
		f:        f,
		out:      bufio.NewWriter(f),
		actors:   make(map[pvm.ID]actor),
		conduits: make(map[pvm.ID]struct{}),
		addrs:    make(map[pvm.ID]string),
	}
}

func (w *worker) Handle(tr *pvm.Transaction) error {
	switch tr.Op {
	case pvm.OpCreateNode, pvm.OpUpdateNode:
		w.node(tr.Node)
		return nil
	case pvm.OpCreateRel:
		return w.rel(tr.Rel)
	}
	return nil
}

func (w *worker) node(n pvm.Node) {
	switch n := n.(type) {
	case *pvm.DataNode:
		switch n.Type {
		case pvm.Actor:
			w.actors[n.ID] = actorOf(n)
		case pvm.Conduit:
			w.conduits[n.ID] = struct{}{}
		}
	case *pvm.NetNode:
		w.addrs[n.ID] = net.JoinHostPort(n.Addr, strconv.Itoa(int(n.Port)))
	}
}

func (w *worker) rel(r pvm.Rel) error {
	src, dst := r.Source(), r.Dest()
	switch r.(type) {
	case *pvm.InfRel:
		if _, ok := w.conduits[src]; ok {
			if a, ok := w.actors[dst]; ok {
				return w.flow(a, DirIn, src)
			}
		} else if _, ok := w.conduits[dst]; ok {
			if a, ok := w.actors[src]; ok {
				return w.flow(a, DirOut, dst)
			}
		}
	case *pvm.NamedRel:
		_, isConduit := w.conduits[src]
		addr, isNet := w.addrs[dst]
		if isConduit && isNet {
			return w.write("bind %d %s\n", uint64(src), addr)
		}
	}
	return nil
}

func (w *worker) flow(a actor, dir string, conduit pvm.ID) error {
	return w.write("flow %s %s %s %s %d\n", a.uuid, a.pid, strconv.Quote(a.cmdline), dir, uint64(conduit))
}

func (w *worker) write(format string, args ...any) error {
	if _, err := fmt.Fprintf(w.out, format, args...); err != nil {
		return view.NewIOError(Name, "write log", err)
	}
	w.lines++
	return nil
}

func (w *worker) Drain() error {
	err := w.out.Flush()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return view.NewIOError(Name, "close output", err)
	}
	slog.Debug("network log closed", "lines", w.lines, "actors", len(w.actors), "conduits", len(w.conduits))
	return nil
}
