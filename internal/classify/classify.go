// Package classify maps graph mutations to CDM records.
//
// Classify is pure: the record depends only on the transaction and on the
// identifier mapping. The entity taxonomy is closed, so a transaction whose
// entity has no mapping is a programming error and panics.
package classify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/pvmcdm/internal/cdm"
	"github.com/roach88/pvmcdm/internal/ident"
	"github.com/roach88/pvmcdm/internal/pvm"
)

// Property "type" tags.
const (
	TagActor         = "Node;Actor"
	TagStore         = "Node;Object;Store"
	TagConduit       = "Node;Object;Conduit"
	TagEditSession   = "Node;Object;EditSession"
	TagPath          = "Node;Name;Path"
	TagNet           = "Node;Name;Net"
	TagContext       = "Node;Context"
	TagSchema        = "Node;Schema"
	TagInf           = "INF"
	TagNamed         = "NAMED"
	contextSchemaTag = "Context"
)

// Classify returns the record for one transaction. Create and update of the
// same entity produce the same record kind; the record reflects the snapshot.
func Classify(tr *pvm.Transaction) cdm.Record {
	switch e := tr.Entity().(type) {
	case *pvm.DataNode:
		return dataNode(e)
	case *pvm.PathNode:
		return tagNode(e.ID, cdm.Properties{
			"type": TagPath,
			"path": e.Path,
		})
	case *pvm.NetNode:
		return tagNode(e.ID, cdm.Properties{
			"type": TagNet,
			"addr": e.Addr,
			"port": strconv.FormatUint(uint64(e.Port), 10),
		})
	case *pvm.ContextNode:
		props := cdm.Properties{
			"type":   TagContext,
			"schema": e.SchemaName(),
		}
		for _, f := range e.Fields {
			props[f.Name] = f.Value
		}
		return tagNode(e.ID, props)
	case *pvm.DataSchemaNode:
		return tagNode(e.ID, cdm.Properties{
			"type":  TagSchema,
			"name":  e.Schema.Name,
			"base":  e.Schema.Base.String(),
			"props": strings.Join(e.Schema.Props, ";"),
		})
	case *pvm.ContextSchemaNode:
		return tagNode(e.ID, cdm.Properties{
			"type":  TagSchema,
			"name":  e.Schema.Name,
			"base":  contextSchemaTag,
			"props": strings.Join(e.Schema.Props, ";"),
		})
	case *pvm.InfRel:
		return &cdm.Event{
			UUID:             ident.Derive(e.ID),
			Type:             cdm.EventFlowsTo,
			PredicateObject:  ident.DeriveOptional(e.Src, true),
			PredicateObject2: ident.DeriveOptional(e.Dst, true),
			Properties: cdm.Properties{
				"type": TagInf,
				"ctx":  ident.DeriveString(e.Ctx),
			},
		}
	case *pvm.NamedRel:
		return &cdm.Event{
			UUID:            ident.Derive(e.ID),
			Type:            cdm.EventOther,
			Subject:         ident.DeriveOptional(e.Src, true),
			PredicateObject: ident.DeriveOptional(e.Dst, true),
			Properties: cdm.Properties{
				"type":  TagNamed,
				"start": ident.DeriveString(e.Start),
				"end":   ident.DeriveString(e.End),
			},
		}
	default:
		panic(fmt.Sprintf("unreachable: no record mapping for %T in %s transaction", e, tr.Op))
	}
}

func dataNode(d *pvm.DataNode) cdm.Record {
	props := cdm.Properties{
		"schema": d.SchemaName(),
		"uuid":   d.UUID.String(),
		"ctx":    ident.DeriveString(d.Ctx),
	}
	switch d.Type {
	case pvm.Actor:
		props["type"] = TagActor
		return &cdm.Subject{
			UUID:       ident.Derive(d.ID),
			Type:       cdm.SubjectOther,
			Properties: props,
		}
	case pvm.Store:
		props["type"] = TagStore
	case pvm.Conduit:
		props["type"] = TagConduit
	case pvm.EditSession:
		props["type"] = TagEditSession
	default:
		panic(fmt.Sprintf("unreachable: no record mapping for data type %s", d.Type))
	}
	return &cdm.SrcSinkObject{
		UUID:       ident.Derive(d.ID),
		BaseObject: cdm.AbstractObject{Properties: props},
		Type:       cdm.SrcSinkUnknown,
	}
}

func tagNode(id pvm.ID, props cdm.Properties) cdm.Record {
	return &cdm.ProvenanceTagNode{
		TagID:      ident.Derive(id),
		Subject:    ident.Nil(),
		Properties: props,
	}
}

// Envelope classifies tr and wraps the record for the output stream.
func Envelope(tr *pvm.Transaction) cdm.Envelope {
	return cdm.Wrap(Classify(tr))
}
