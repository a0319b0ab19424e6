package testutil

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/pvmcdm/internal/pvm"
)

// Graph builds a deterministic mutation stream for tests.
//
// Identifiers are assigned sequentially from 1 in call order and data node
// UUIDs are name-based, so the same sequence of calls always produces the
// same transactions. Every builder call appends the matching transaction.
//
// Thread-safety: all methods are safe for concurrent use, but concurrent
// callers get a nondeterministic interleaving.
type Graph struct {
	mu  sync.Mutex
	ids pvm.ID
	gen int64
	txs []*pvm.Transaction
}

// NewGraph creates an empty graph. The first entity gets ID 1.
func NewGraph() *Graph {
	return &Graph{}
}

// NodeUUID is the UUID the builder assigns to the data node with the given ID.
func NodeUUID(id pvm.ID) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("pvm-node-%d", uint64(id))))
}

func (g *Graph) next() pvm.ID {
	g.ids++
	return g.ids
}

func (g *Graph) emit(tr *pvm.Transaction) {
	g.txs = append(g.txs, tr)
}

// DataSchema publishes a data schema.
func (g *Graph) DataSchema(name string, base pvm.DataType, props ...string) *pvm.DataSchema {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := &pvm.DataSchema{ID: g.next(), Name: name, Base: base, Props: props}
	g.emit(pvm.CreateNode(&pvm.DataSchemaNode{ID: s.ID, Schema: *s}))
	return s
}

// ContextSchema publishes a context schema.
func (g *Graph) ContextSchema(name string, props ...string) *pvm.ContextSchema {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := &pvm.ContextSchema{ID: g.next(), Name: name, Props: props}
	g.emit(pvm.CreateNode(&pvm.ContextSchemaNode{ID: s.ID, Schema: *s}))
	return s
}

// Context creates a context node. Values are matched to the schema's
// declared fields in order.
func (g *Graph) Context(schema *pvm.ContextSchema, values ...string) *pvm.ContextNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(values) != len(schema.Props) {
		panic(fmt.Sprintf("testutil: context %s takes %d values, got %d", schema.Name, len(schema.Props), len(values)))
	}
	n := &pvm.ContextNode{ID: g.next(), Schema: schema}
	for i, p := range schema.Props {
		n.Fields = append(n.Fields, pvm.Field{Name: p, Value: values[i]})
	}
	g.emit(pvm.CreateNode(n))
	return n
}

// Data creates a data node of the schema's base type. kv are alternating
// property names and values recorded at the current generation.
func (g *Graph) Data(schema *pvm.DataSchema, ctx pvm.ID, kv ...string) *pvm.DataNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(kv)%2 != 0 {
		panic("testutil: odd number of property arguments")
	}
	id := g.next()
	n := &pvm.DataNode{ID: id, Type: schema.Base, Schema: schema, UUID: NodeUUID(id), Ctx: ctx}
	for i := 0; i < len(kv); i += 2 {
		n.Meta.Update(kv[i], kv[i+1], g.gen)
	}
	g.emit(pvm.CreateNode(snapshot(n)))
	return n
}

// SetMeta records a new property value on n at the next generation and
// emits an update carrying a snapshot of n.
func (g *Graph) SetMeta(n *pvm.DataNode, key, value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	n.Meta.Update(key, value, g.gen)
	g.emit(pvm.UpdateNode(snapshot(n)))
}

// Path creates a path name node.
func (g *Graph) Path(path string) *pvm.PathNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := &pvm.PathNode{ID: g.next(), Path: path}
	g.emit(pvm.CreateNode(n))
	return n
}

// Net creates a network name node.
func (g *Graph) Net(addr string, port uint16) *pvm.NetNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := &pvm.NetNode{ID: g.next(), Addr: addr, Port: port}
	g.emit(pvm.CreateNode(n))
	return n
}

// Inf creates an inference edge from src to dst observed under ctx.
func (g *Graph) Inf(src, dst, ctx pvm.ID) *pvm.InfRel {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := &pvm.InfRel{ID: g.next(), Src: src, Dst: dst, Ctx: ctx}
	g.emit(pvm.CreateRel(r))
	return r
}

// Named creates a named edge from src to dst bound over [start, end].
func (g *Graph) Named(src, dst, start, end pvm.ID) *pvm.NamedRel {
	g.mu.Lock()
	defer g.mu.Unlock()
	r := &pvm.NamedRel{ID: g.next(), Src: src, Dst: dst, Start: start, End: end}
	g.emit(pvm.CreateRel(r))
	return r
}

// Transactions returns the stream built so far.
func (g *Graph) Transactions() []*pvm.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*pvm.Transaction, len(g.txs))
	copy(out, g.txs)
	return out
}

// Stream returns a closed channel holding the stream built so far.
func (g *Graph) Stream() <-chan *pvm.Transaction {
	txs := g.Transactions()
	ch := make(chan *pvm.Transaction, len(txs))
	for _, tr := range txs {
		ch <- tr
	}
	close(ch)
	return ch
}

func snapshot(n *pvm.DataNode) *pvm.DataNode {
	c := *n
	c.Meta = n.Meta.Clone()
	return &c
}

// Fixture builds the reference stream used across packages: one entity of
// every kind, two contexts, both edge kinds and one property update.
//
//	 1 context schema "syscall"       9 conduit (Socket)
//	 2 data schema "Process" (Actor) 10 edit session (Editor)
//	 3 data schema "File" (Store)    11 path /etc/passwd
//	 4 data schema "Socket"          12 net 10.0.0.1:443
//	 5 data schema "Editor"          13 context time=200
//	 6 context time=100              14 inf 7 -> 8 under 13
//	 7 actor pid=812 cmdline=sh      15 named 8 -> 11 over [6, 13]
//	 8 store (File)                     update 7 cmdline="sshd -D"
func Fixture() *Graph {
	g := NewGraph()
	sys := g.ContextSchema("syscall", "host", "time")
	proc := g.DataSchema("Process", pvm.Actor, "pid", "cmdline")
	file := g.DataSchema("File", pvm.Store, "name")
	sock := g.DataSchema("Socket", pvm.Conduit)
	editor := g.DataSchema("Editor", pvm.EditSession)

	c1 := g.Context(sys, "h1", "100")
	sh := g.Data(proc, c1.ID, "pid", "812", "cmdline", "sh")
	f := g.Data(file, c1.ID)
	g.Data(sock, c1.ID)
	g.Data(editor, c1.ID)
	p := g.Path("/etc/passwd")
	g.Net("10.0.0.1", 443)
	c2 := g.Context(sys, "h1", "200")
	g.Inf(sh.ID, f.ID, c2.ID)
	g.Named(f.ID, p.ID, c1.ID, c2.ID)
	g.SetMeta(sh, "cmdline", "sshd -D")
	return g
}
