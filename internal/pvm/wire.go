package pvm

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Wire form of a Transaction, used to record and replay mutation streams.
//
//	{"op":"create_node","entity":{"kind":"actor","id":7,"uuid":"...","ctx":3,
//	 "schema":{"id":2,"name":"Process","base":"Actor","props":["pid","cmdline"]},
//	 "meta":{"cmdline":[{"val":"sshd","gen":1}]}}}
//
// Kind selects which of the optional entity fields are meaningful.
type wireTransaction struct {
	Op     string     `json:"op" yaml:"op"`
	Entity wireEntity `json:"entity" yaml:"entity"`
}

type wireSchema struct {
	ID    ID       `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Base  string   `json:"base,omitempty" yaml:"base,omitempty"`
	Props []string `json:"props,omitempty" yaml:"props,omitempty"`
}

type wireEntity struct {
	Kind string `json:"kind" yaml:"kind"`
	ID   ID     `json:"id" yaml:"id"`

	// data nodes
	UUID   string                 `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Ctx    ID                     `json:"ctx,omitempty" yaml:"ctx,omitempty"`
	Schema *wireSchema            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Meta   map[string][]MetaValue `json:"meta,omitempty" yaml:"meta,omitempty"`

	// name nodes
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Port uint16 `json:"port,omitempty" yaml:"port,omitempty"`

	// context nodes
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// relationships
	Src   ID     `json:"src,omitempty" yaml:"src,omitempty"`
	Dst   ID     `json:"dst,omitempty" yaml:"dst,omitempty"`
	Start ID     `json:"start,omitempty" yaml:"start,omitempty"`
	End   ID     `json:"end,omitempty" yaml:"end,omitempty"`
	PVMOp string `json:"pvm_op,omitempty" yaml:"pvm_op,omitempty"`
	Call  string `json:"call,omitempty" yaml:"call,omitempty"`
	Bytes int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	w, err := t.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w wireTransaction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return t.fromWire(w)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Transaction) UnmarshalYAML(value *yaml.Node) error {
	var w wireTransaction
	if err := value.Decode(&w); err != nil {
		return err
	}
	return t.fromWire(w)
}

func parseOp(s string) (Op, error) {
	for _, op := range []Op{OpCreateNode, OpUpdateNode, OpCreateRel, OpUpdateRel} {
		if op.String() == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown op %q", s)
}

func (t *Transaction) fromWire(w wireTransaction) error {
	op, err := parseOp(w.Op)
	if err != nil {
		return err
	}
	e := w.Entity

	var node Node
	var rel Rel
	switch e.Kind {
	case "actor", "store", "conduit", "edit_session":
		n, err := dataNodeFromWire(e)
		if err != nil {
			return err
		}
		node = n
	case "path":
		node = &PathNode{ID: e.ID, Path: e.Path}
	case "net":
		node = &NetNode{ID: e.ID, Addr: e.Addr, Port: e.Port}
	case "context":
		n := &ContextNode{ID: e.ID, Fields: e.Fields}
		if e.Schema != nil {
			n.Schema = &ContextSchema{ID: e.Schema.ID, Name: e.Schema.Name, Props: e.Schema.Props}
		}
		node = n
	case "data_schema":
		if e.Schema == nil {
			return fmt.Errorf("entity %d: data_schema requires schema", e.ID)
		}
		base, err := ParseDataType(e.Schema.Base)
		if err != nil {
			return fmt.Errorf("entity %d: %w", e.ID, err)
		}
		node = &DataSchemaNode{ID: e.ID, Schema: DataSchema{
			ID: e.Schema.ID, Name: e.Schema.Name, Base: base, Props: e.Schema.Props,
		}}
	case "context_schema":
		if e.Schema == nil {
			return fmt.Errorf("entity %d: context_schema requires schema", e.ID)
		}
		node = &ContextSchemaNode{ID: e.ID, Schema: ContextSchema{
			ID: e.Schema.ID, Name: e.Schema.Name, Props: e.Schema.Props,
		}}
	case "inf":
		rel = &InfRel{ID: e.ID, Src: e.Src, Dst: e.Dst, Ctx: e.Ctx, Op: e.PVMOp, GeneratingCall: e.Call, ByteCount: e.Bytes}
	case "named":
		rel = &NamedRel{ID: e.ID, Src: e.Src, Dst: e.Dst, Start: e.Start, End: e.End}
	default:
		return fmt.Errorf("entity %d: unknown kind %q", e.ID, e.Kind)
	}

	*t = Transaction{Op: op, Node: node, Rel: rel}
	return t.Validate()
}

func dataNodeFromWire(e wireEntity) (*DataNode, error) {
	n := &DataNode{ID: e.ID, Ctx: e.Ctx}
	switch e.Kind {
	case "actor":
		n.Type = Actor
	case "store":
		n.Type = Store
	case "conduit":
		n.Type = Conduit
	case "edit_session":
		n.Type = EditSession
	}
	if e.UUID != "" {
		u, err := uuid.Parse(e.UUID)
		if err != nil {
			return nil, fmt.Errorf("entity %d: invalid uuid: %w", e.ID, err)
		}
		n.UUID = u
	}
	if e.Schema != nil {
		n.Schema = &DataSchema{ID: e.Schema.ID, Name: e.Schema.Name, Base: n.Type, Props: e.Schema.Props}
	}
	for _, k := range sortedMetaKeys(e.Meta) {
		for _, v := range e.Meta[k] {
			n.Meta.Update(k, v.Value, v.Gen)
		}
	}
	return n, nil
}

func sortedMetaKeys(m map[string][]MetaValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (t *Transaction) toWire() (wireTransaction, error) {
	if err := t.Validate(); err != nil {
		return wireTransaction{}, err
	}
	w := wireTransaction{Op: t.Op.String()}
	e := &w.Entity
	ent := t.Entity()
	e.Kind = ent.Kind().String()
	e.ID = ent.EntityID()

	switch v := ent.(type) {
	case *DataNode:
		if v.UUID != uuid.Nil {
			e.UUID = v.UUID.String()
		}
		e.Ctx = v.Ctx
		if v.Schema != nil {
			e.Schema = &wireSchema{ID: v.Schema.ID, Name: v.Schema.Name, Base: v.Schema.Base.String(), Props: v.Schema.Props}
		}
		if v.Meta.Len() > 0 {
			e.Meta = make(map[string][]MetaValue, v.Meta.Len())
			for _, k := range v.Meta.Keys() {
				e.Meta[k] = v.Meta.History(k)
			}
		}
	case *PathNode:
		e.Path = v.Path
	case *NetNode:
		e.Addr = v.Addr
		e.Port = v.Port
	case *ContextNode:
		if v.Schema != nil {
			e.Schema = &wireSchema{ID: v.Schema.ID, Name: v.Schema.Name, Props: v.Schema.Props}
		}
		e.Fields = v.Fields
	case *DataSchemaNode:
		e.Schema = &wireSchema{ID: v.Schema.ID, Name: v.Schema.Name, Base: v.Schema.Base.String(), Props: v.Schema.Props}
	case *ContextSchemaNode:
		e.Schema = &wireSchema{ID: v.Schema.ID, Name: v.Schema.Name, Props: v.Schema.Props}
	case *InfRel:
		e.Src, e.Dst, e.Ctx = v.Src, v.Dst, v.Ctx
		e.PVMOp, e.Call, e.Bytes = v.Op, v.GeneratingCall, v.ByteCount
	case *NamedRel:
		e.Src, e.Dst, e.Start, e.End = v.Src, v.Dst, v.Start, v.End
	default:
		return wireTransaction{}, fmt.Errorf("unsupported entity type %T", ent)
	}
	return w, nil
}

// StreamDecoder reads a recorded mutation stream: one JSON transaction per
// line (JSON Lines). Blank lines are skipped.
type StreamDecoder struct {
	dec  *json.Decoder
	read int
}

// NewStreamDecoder creates a decoder reading from r.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{dec: json.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next transaction, or io.EOF at the end of the stream.
func (d *StreamDecoder) Next() (*Transaction, error) {
	var tr Transaction
	if err := d.dec.Decode(&tr); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("transaction %d: %w", d.read+1, err)
	}
	d.read++
	return &tr, nil
}

// Count returns the number of transactions decoded so far.
func (d *StreamDecoder) Count() int {
	return d.read
}

// StreamEncoder writes transactions in the form StreamDecoder reads.
type StreamEncoder struct {
	enc *json.Encoder
}

// NewStreamEncoder creates an encoder writing to w.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &StreamEncoder{enc: enc}
}

// Encode writes tr followed by a newline.
func (e *StreamEncoder) Encode(tr *Transaction) error {
	return e.enc.Encode(tr)
}

// ReadYAML decodes a YAML document holding a list of transactions.
func ReadYAML(r io.Reader) ([]*Transaction, error) {
	var txs []*Transaction
	if err := yaml.NewDecoder(r).Decode(&txs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml stream: %w", err)
	}
	for i, tr := range txs {
		if tr == nil {
			return nil, fmt.Errorf("transaction %d: empty entry", i+1)
		}
	}
	return txs, nil
}

// SliceSource yields a fixed list of transactions, then io.EOF.
type SliceSource struct {
	txs []*Transaction
}

// NewSliceSource returns a source over txs.
func NewSliceSource(txs []*Transaction) *SliceSource {
	return &SliceSource{txs: txs}
}

// Next returns the next transaction, or io.EOF when none are left.
func (s *SliceSource) Next() (*Transaction, error) {
	if len(s.txs) == 0 {
		return nil, io.EOF
	}
	tr := s.txs[0]
	s.txs = s.txs[1:]
	return tr, nil
}
