package cdm

import "fmt"

// Enum is an enumeration symbol as it appears in the schema.
type Enum string

// EnumKind names an enumeration of the schema. The value is the Avro type name.
type EnumKind string

const (
	EnumRecordType            EnumKind = "RecordType"
	EnumHostType              EnumKind = "HostType"
	EnumSubjectType           EnumKind = "SubjectType"
	EnumSrcSinkType           EnumKind = "SrcSinkType"
	EnumEventType             EnumKind = "EventType"
	EnumInstrumentationSource EnumKind = "InstrumentationSource"
)

// VersionedEnums lists the enumerations whose code tables vary by version.
var VersionedEnums = []EnumKind{
	EnumRecordType,
	EnumHostType,
	EnumSubjectType,
	EnumSrcSinkType,
	EnumEventType,
	EnumInstrumentationSource,
}

// RecordType is the envelope discriminator: which record kind is wrapped.
type RecordType int

const (
	RecordHost RecordType = iota + 1
	RecordProvenanceTagNode
	RecordSubject
	RecordSrcSinkObject
	RecordEvent
)

// RecordTypes lists every record kind that can be wrapped in an envelope,
// in the order the envelope's datum union declares them.
var RecordTypes = []RecordType{
	RecordHost,
	RecordProvenanceTagNode,
	RecordSubject,
	RecordSrcSinkObject,
	RecordEvent,
}

// Symbol returns the RecordType enumeration symbol.
func (t RecordType) Symbol() Enum {
	switch t {
	case RecordHost:
		return "RECORD_HOST"
	case RecordProvenanceTagNode:
		return "RECORD_PROVENANCE_TAG_NODE"
	case RecordSubject:
		return "RECORD_SUBJECT"
	case RecordSrcSinkObject:
		return "RECORD_SRC_SINK_OBJECT"
	case RecordEvent:
		return "RECORD_EVENT"
	default:
		panic(fmt.Sprintf("cdm: unknown record type %d", int(t)))
	}
}

// TypeName returns the (unqualified) Avro record name of the kind.
func (t RecordType) TypeName() string {
	switch t {
	case RecordHost:
		return "Host"
	case RecordProvenanceTagNode:
		return "ProvenanceTagNode"
	case RecordSubject:
		return "Subject"
	case RecordSrcSinkObject:
		return "SrcSinkObject"
	case RecordEvent:
		return "Event"
	default:
		panic(fmt.Sprintf("cdm: unknown record type %d", int(t)))
	}
}

func (t RecordType) String() string {
	return t.TypeName()
}

// HostType classifies a Host record.
type HostType int

const (
	HostOther HostType = iota + 1
)

func (t HostType) Symbol() Enum {
	switch t {
	case HostOther:
		return "HOST_OTHER"
	default:
		panic(fmt.Sprintf("cdm: unknown host type %d", int(t)))
	}
}

// SubjectType classifies a Subject record.
type SubjectType int

const (
	// SubjectOther is the "process-like actor" subtype.
	SubjectOther SubjectType = iota + 1
)

func (t SubjectType) Symbol() Enum {
	switch t {
	case SubjectOther:
		return "SUBJECT_OTHER"
	default:
		panic(fmt.Sprintf("cdm: unknown subject type %d", int(t)))
	}
}

// SrcSinkType classifies a SrcSinkObject record.
type SrcSinkType int

const (
	SrcSinkUnknown SrcSinkType = iota + 1
)

func (t SrcSinkType) Symbol() Enum {
	switch t {
	case SrcSinkUnknown:
		return "SRCSINK_UNKNOWN"
	default:
		panic(fmt.Sprintf("cdm: unknown srcsink type %d", int(t)))
	}
}

// EventType classifies an Event record.
type EventType int

const (
	EventFlowsTo EventType = iota + 1
	EventOther
)

func (t EventType) Symbol() Enum {
	switch t {
	case EventFlowsTo:
		return "EVENT_FLOWS_TO"
	case EventOther:
		return "EVENT_OTHER"
	default:
		panic(fmt.Sprintf("cdm: unknown event type %d", int(t)))
	}
}
