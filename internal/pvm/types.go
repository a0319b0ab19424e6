package pvm

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the engine-assigned identifier of a graph entity.
type ID uint64

// String returns the stable textual form of the ID ("ID(42)").
// Identifier derivation hashes this form, so it must never change.
func (id ID) String() string {
	return fmt.Sprintf("ID(%d)", uint64(id))
}

// EntityKind enumerates every concrete entity variant of the model.
type EntityKind int

const (
	KindActor EntityKind = iota + 1
	KindStore
	KindConduit
	KindEditSession
	KindPathName
	KindNetName
	KindContext
	KindDataSchema
	KindContextSchema
	KindInfRel
	KindNamedRel
)

// AllEntityKinds lists every EntityKind in declaration order.
// Consumers that map entities to another model test against this list.
var AllEntityKinds = []EntityKind{
	KindActor,
	KindStore,
	KindConduit,
	KindEditSession,
	KindPathName,
	KindNetName,
	KindContext,
	KindDataSchema,
	KindContextSchema,
	KindInfRel,
	KindNamedRel,
}

func (k EntityKind) String() string {
	switch k {
	case KindActor:
		return "actor"
	case KindStore:
		return "store"
	case KindConduit:
		return "conduit"
	case KindEditSession:
		return "edit_session"
	case KindPathName:
		return "path"
	case KindNetName:
		return "net"
	case KindContext:
		return "context"
	case KindDataSchema:
		return "data_schema"
	case KindContextSchema:
		return "context_schema"
	case KindInfRel:
		return "inf"
	case KindNamedRel:
		return "named"
	default:
		return fmt.Sprintf("EntityKind(%d)", int(k))
	}
}

// DataType is the base category of a data node.
type DataType int

const (
	Actor DataType = iota + 1
	Store
	Conduit
	EditSession
)

func (t DataType) String() string {
	switch t {
	case Actor:
		return "Actor"
	case Store:
		return "Store"
	case Conduit:
		return "Conduit"
	case EditSession:
		return "EditSession"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "Actor":
		return Actor, nil
	case "Store":
		return Store, nil
	case "Conduit":
		return Conduit, nil
	case "EditSession":
		return EditSession, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}

// Kind maps a data type to its entity kind.
func (t DataType) Kind() EntityKind {
	switch t {
	case Actor:
		return KindActor
	case Store:
		return KindStore
	case Conduit:
		return KindConduit
	case EditSession:
		return KindEditSession
	default:
		panic(fmt.Sprintf("pvm: unknown data type %d", int(t)))
	}
}

// DataSchema declares the property set of a family of data nodes.
// Props are kept in declaration order.
type DataSchema struct {
	ID    ID
	Name  string
	Base  DataType
	Props []string
}

// ContextSchema declares the field list of a family of context nodes.
type ContextSchema struct {
	ID    ID
	Name  string
	Props []string
}

// Entity is implemented by every node and relationship.
type Entity interface {
	EntityID() ID
	Kind() EntityKind
}

// Node is a graph vertex. The set of implementations is closed.
type Node interface {
	Entity
	isNode()
}

// Rel is a graph edge. The set of implementations is closed.
type Rel interface {
	Entity
	Source() ID
	Dest() ID
	isRel()
}

// DataNode is an actor, store, conduit or edit session.
type DataNode struct {
	ID     ID
	Type   DataType
	Schema *DataSchema
	UUID   uuid.UUID
	Ctx    ID
	Meta   MetaStore
}

func (n *DataNode) EntityID() ID     { return n.ID }
func (n *DataNode) Kind() EntityKind { return n.Type.Kind() }
func (*DataNode) isNode()            {}

// SchemaName returns the declared schema name, or "" when the node is untyped.
func (n *DataNode) SchemaName() string {
	if n.Schema == nil {
		return ""
	}
	return n.Schema.Name
}

// PathNode names a filesystem path.
type PathNode struct {
	ID   ID
	Path string
}

func (n *PathNode) EntityID() ID   { return n.ID }
func (*PathNode) Kind() EntityKind { return KindPathName }
func (*PathNode) isNode()          {}

// NetNode names a network endpoint.
type NetNode struct {
	ID   ID
	Addr string
	Port uint16
}

func (n *NetNode) EntityID() ID   { return n.ID }
func (*NetNode) Kind() EntityKind { return KindNetName }
func (*NetNode) isNode()          {}

// Field is one named scalar of a context node.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ContextNode records the circumstances of an operation (e.g. a syscall).
// Fields are ordered as the schema declares them.
type ContextNode struct {
	ID     ID
	Schema *ContextSchema
	Fields []Field
}

func (n *ContextNode) EntityID() ID   { return n.ID }
func (*ContextNode) Kind() EntityKind { return KindContext }
func (*ContextNode) isNode()          {}

// SchemaName returns the declared schema name, or "" when the node is untyped.
func (n *ContextNode) SchemaName() string {
	if n.Schema == nil {
		return ""
	}
	return n.Schema.Name
}

// DataSchemaNode publishes a data schema into the graph.
type DataSchemaNode struct {
	ID     ID
	Schema DataSchema
}

func (n *DataSchemaNode) EntityID() ID   { return n.ID }
func (*DataSchemaNode) Kind() EntityKind { return KindDataSchema }
func (*DataSchemaNode) isNode()          {}

// ContextSchemaNode publishes a context schema into the graph.
type ContextSchemaNode struct {
	ID     ID
	Schema ContextSchema
}

func (n *ContextSchemaNode) EntityID() ID   { return n.ID }
func (*ContextSchemaNode) Kind() EntityKind { return KindContextSchema }
func (*ContextSchemaNode) isNode()          {}

// InfRel is an inferred information flow from Src to Dst, observed under Ctx.
type InfRel struct {
	ID             ID
	Src            ID
	Dst            ID
	Ctx            ID
	Op             string
	GeneratingCall string
	ByteCount      int64
}

func (r *InfRel) EntityID() ID   { return r.ID }
func (*InfRel) Kind() EntityKind { return KindInfRel }
func (r *InfRel) Source() ID     { return r.Src }
func (r *InfRel) Dest() ID       { return r.Dst }
func (*InfRel) isRel()           {}

// NamedRel binds an entity to a name node over the interval [Start, End],
// where Start and End are the context nodes that opened and closed the binding.
type NamedRel struct {
	ID    ID
	Src   ID
	Dst   ID
	Start ID
	End   ID
}

func (r *NamedRel) EntityID() ID   { return r.ID }
func (*NamedRel) Kind() EntityKind { return KindNamedRel }
func (r *NamedRel) Source() ID     { return r.Src }
func (r *NamedRel) Dest() ID       { return r.Dst }
func (*NamedRel) isRel()           {}
