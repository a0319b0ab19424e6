package pvm

import "fmt"

// Op distinguishes the four kinds of graph mutation.
type Op int

const (
	// OpCreateNode announces a new node.
	OpCreateNode Op = iota + 1
	// OpUpdateNode announces a new snapshot of an existing node.
	OpUpdateNode
	// OpCreateRel announces a new relationship.
	OpCreateRel
	// OpUpdateRel announces a new snapshot of an existing relationship.
	OpUpdateRel
)

func (o Op) String() string {
	switch o {
	case OpCreateNode:
		return "create_node"
	case OpUpdateNode:
		return "update_node"
	case OpCreateRel:
		return "create_rel"
	case OpUpdateRel:
		return "update_rel"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// IsNodeOp reports whether the op carries a Node.
func (o Op) IsNodeOp() bool {
	return o == OpCreateNode || o == OpUpdateNode
}

// Transaction is a single mutation event emitted by the graph engine.
//
// Exactly one of Node and Rel is set, matching Op. Transactions are
// snapshots: consumers must treat them (and the entity they carry) as
// read-only because the same value is delivered to every registered view.
type Transaction struct {
	Op   Op
	Node Node
	Rel  Rel
}

// CreateNode wraps n in an OpCreateNode transaction.
func CreateNode(n Node) *Transaction {
	return &Transaction{Op: OpCreateNode, Node: n}
}

// UpdateNode wraps n in an OpUpdateNode transaction.
func UpdateNode(n Node) *Transaction {
	return &Transaction{Op: OpUpdateNode, Node: n}
}

// CreateRel wraps r in an OpCreateRel transaction.
func CreateRel(r Rel) *Transaction {
	return &Transaction{Op: OpCreateRel, Rel: r}
}

// UpdateRel wraps r in an OpUpdateRel transaction.
func UpdateRel(r Rel) *Transaction {
	return &Transaction{Op: OpUpdateRel, Rel: r}
}

// Entity returns the node or relationship carried by the transaction.
func (t *Transaction) Entity() Entity {
	if t.Op.IsNodeOp() {
		return t.Node
	}
	return t.Rel
}

// Validate checks that the payload matches the op.
func (t *Transaction) Validate() error {
	switch t.Op {
	case OpCreateNode, OpUpdateNode:
		if t.Node == nil || t.Rel != nil {
			return fmt.Errorf("%s transaction must carry exactly one node", t.Op)
		}
	case OpCreateRel, OpUpdateRel:
		if t.Rel == nil || t.Node != nil {
			return fmt.Errorf("%s transaction must carry exactly one rel", t.Op)
		}
	default:
		return fmt.Errorf("unknown op: %d", int(t.Op))
	}
	if isNilEntity(t.Entity()) {
		return fmt.Errorf("%s transaction carries a nil %T", t.Op, t.Entity())
	}
	return nil
}

// isNilEntity reports whether e is a typed nil pointer.
func isNilEntity(e Entity) bool {
	switch v := e.(type) {
	case *DataNode:
		return v == nil
	case *PathNode:
		return v == nil
	case *NetNode:
		return v == nil
	case *ContextNode:
		return v == nil
	case *DataSchemaNode:
		return v == nil
	case *ContextSchemaNode:
		return v == nil
	case *InfRel:
		return v == nil
	case *NamedRel:
		return v == nil
	}
	return e == nil
}
