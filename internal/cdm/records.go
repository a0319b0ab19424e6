package cdm

import (
	"fmt"

	"github.com/google/uuid"
)

// Datum is a record instance shaped for one schema version: the unqualified
// Avro record name plus field values keyed by field name.
//
// Field values are limited to the shapes the encoder understands:
// string, bool, int32, int64, int, Enum, uuid.UUID, *uuid.UUID (nil = absent),
// Properties (nil = absent), []string, Datum and nil. Omitted fields take the
// schema default.
type Datum struct {
	Name   string
	Fields map[string]any
}

// Plain converts d into plain values for textual rendering, keyed by record
// name the way Avro's JSON encoding keys a union branch. Identifiers become
// hyphenated strings and enums their symbols.
func (d Datum) Plain() map[string]any {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = plain(v)
	}
	return map[string]any{d.Name: fields}
}

func plain(v any) any {
	switch v := v.(type) {
	case nil, string, bool, int, int32, int64:
		return v
	case Enum:
		return string(v)
	case uuid.UUID:
		return v.String()
	case *uuid.UUID:
		if v == nil {
			return nil
		}
		return v.String()
	case Properties:
		if v == nil {
			return nil
		}
		return map[string]string(v)
	case []string:
		return v
	case Datum:
		return v.Plain()
	default:
		panic(fmt.Sprintf("cdm: unsupported datum value %T", v))
	}
}

// Properties is a string-only property bag. Key order is irrelevant.
type Properties map[string]string

// Record is a record kind that can be wrapped in an Envelope.
type Record interface {
	RecordType() RecordType
	Datum(v *Version) Datum
}

// Host describes the machine a stream was recorded on.
type Host struct {
	UUID       uuid.UUID
	HostName   string
	TA1Version string
	HostType   HostType
}

func (*Host) RecordType() RecordType { return RecordHost }

func (h *Host) Datum(v *Version) Datum {
	f := map[string]any{
		"uuid":     h.UUID,
		"hostName": h.HostName,
		"hostType": h.HostType.Symbol(),
	}
	if v.HostTA1Version {
		f["ta1Version"] = h.TA1Version
	}
	return Datum{Name: RecordHost.TypeName(), Fields: f}
}

// Subject is an active entity (a process-like actor).
type Subject struct {
	UUID       uuid.UUID
	Type       SubjectType
	CID        int32
	Properties Properties
}

func (*Subject) RecordType() RecordType { return RecordSubject }

func (s *Subject) Datum(*Version) Datum {
	return Datum{Name: RecordSubject.TypeName(), Fields: map[string]any{
		"uuid":       s.UUID,
		"type":       s.Type.Symbol(),
		"cid":        s.CID,
		"properties": s.Properties,
	}}
}

// AbstractObject holds the attributes common to every object record.
// It never appears on its own in an envelope.
type AbstractObject struct {
	Properties Properties
}

func (o *AbstractObject) Datum(*Version) Datum {
	return Datum{Name: "AbstractObject", Fields: map[string]any{
		"properties": o.Properties,
	}}
}

// SrcSinkObject is a passive entity that is neither a file nor a socket.
type SrcSinkObject struct {
	UUID       uuid.UUID
	BaseObject AbstractObject
	Type       SrcSinkType
}

func (*SrcSinkObject) RecordType() RecordType { return RecordSrcSinkObject }

func (o *SrcSinkObject) Datum(v *Version) Datum {
	return Datum{Name: RecordSrcSinkObject.TypeName(), Fields: map[string]any{
		"uuid":       o.UUID,
		"baseObject": o.BaseObject.Datum(v),
		"type":       o.Type.Symbol(),
	}}
}

// Event is an interaction between up to three participants.
// A nil participant is absent and is encoded as null.
type Event struct {
	UUID             uuid.UUID
	Type             EventType
	Subject          *uuid.UUID
	PredicateObject  *uuid.UUID
	PredicateObject2 *uuid.UUID
	TimestampNanos   int64
	Properties       Properties
}

func (*Event) RecordType() RecordType { return RecordEvent }

func (e *Event) Datum(*Version) Datum {
	return Datum{Name: RecordEvent.TypeName(), Fields: map[string]any{
		"uuid":             e.UUID,
		"type":             e.Type.Symbol(),
		"subject":          e.Subject,
		"predicateObject":  e.PredicateObject,
		"predicateObject2": e.PredicateObject2,
		"timestampNanos":   e.TimestampNanos,
		"properties":       e.Properties,
	}}
}

// ProvenanceTagNode carries names, contexts and schemas.
// Subject is always the nil identifier.
type ProvenanceTagNode struct {
	TagID      uuid.UUID
	Subject    uuid.UUID
	Properties Properties
}

func (*ProvenanceTagNode) RecordType() RecordType { return RecordProvenanceTagNode }

func (p *ProvenanceTagNode) Datum(*Version) Datum {
	return Datum{Name: RecordProvenanceTagNode.TypeName(), Fields: map[string]any{
		"tagId":      p.TagID,
		"subject":    p.Subject,
		"properties": p.Properties,
	}}
}

var (
	_ Record = (*Host)(nil)
	_ Record = (*Subject)(nil)
	_ Record = (*SrcSinkObject)(nil)
	_ Record = (*Event)(nil)
	_ Record = (*ProvenanceTagNode)(nil)
)
