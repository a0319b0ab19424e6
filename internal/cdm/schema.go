package cdm

import (
	"encoding/json"
	"fmt"
)

// Avro schema generation. The envelope schema of a version is assembled from
// the version's code tables; named types are defined at first use and
// referenced by full name afterwards.

type avroField struct {
	Name    string          `json:"name"`
	Type    any             `json:"type"`
	Default json.RawMessage `json:"default,omitempty"`
}

type avroRecord struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

type avroEnum struct {
	Type    string   `json:"type"`
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}

type avroFixed struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

type avroArray struct {
	Type  string `json:"type"`
	Items any    `json:"items"`
}

type avroMap struct {
	Type   string `json:"type"`
	Values any    `json:"values"`
}

var jsonNull = json.RawMessage("null")

// Enumerations whose symbols are the same in every version.
var (
	privilegeLevels = []string{"LIMITED", "ELEVATED", "FULL"}
	tagOpCodes      = []string{"TAG_OP_UNION", "TAG_OP_ENCODE", "TAG_OP_STRONG", "TAG_OP_MEDIUM", "TAG_OP_WEAK"}
	integrityTags   = []string{"INTEGRITY_UNTRUSTED", "INTEGRITY_BENIGN", "INTEGRITY_INVULNERABLE"}
	confidentiality = []string{"CONFIDENTIALITY_SECRET", "CONFIDENTIALITY_SENSITIVE", "CONFIDENTIALITY_PRIVATE", "CONFIDENTIALITY_PUBLIC"}
)

type schemaBuilder struct {
	v       *Version
	defined map[string]bool
}

func buildSchema(v *Version) string {
	b := &schemaBuilder{v: v, defined: make(map[string]bool)}
	out, err := json.MarshalIndent(b.envelope(), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("cdm: marshal schema %s: %v", v.Name, err))
	}
	return string(out)
}

// named returns the definition of a named type the first time it is seen and
// its full name on every later use.
func (b *schemaBuilder) named(name string, def func(full string) any) any {
	full := b.v.FullName(name)
	if b.defined[full] {
		return full
	}
	b.defined[full] = true
	return def(full)
}

func (b *schemaBuilder) record(name string, fields func() []avroField) any {
	return b.named(name, func(full string) any {
		return avroRecord{Type: "record", Name: full, Fields: fields()}
	})
}

func (b *schemaBuilder) enum(name string, symbols []string) any {
	return b.named(name, func(full string) any {
		return avroEnum{Type: "enum", Name: full, Symbols: symbols}
	})
}

func (b *schemaBuilder) versioned(k EnumKind) any {
	return b.enum(string(k), b.v.symbols[k])
}

func (b *schemaBuilder) uuid() any {
	return b.named("UUID", func(full string) any {
		return avroFixed{Type: "fixed", Name: full, Size: 16}
	})
}

func (b *schemaBuilder) short() any {
	return b.named("SHORT", func(full string) any {
		return avroFixed{Type: "fixed", Name: full, Size: 2}
	})
}

func field(name string, typ any) avroField {
	return avroField{Name: name, Type: typ}
}

// optional declares a nullable field defaulting to null.
func optional(name string, typ any) avroField {
	return avroField{Name: name, Type: []any{"null", typ}, Default: jsonNull}
}

func arrayOf(items any) any { return avroArray{Type: "array", Items: items} }

func stringMap() any { return avroMap{Type: "map", Values: "string"} }

func (b *schemaBuilder) envelope() any {
	return b.record(EnvelopeName, func() []avroField {
		return []avroField{
			field("datum", []any{b.host(), b.provenanceTagNode(), b.subject(), b.srcSinkObject(), b.event()}),
			field("CDMVersion", "string"),
			field("type", b.versioned(EnumRecordType)),
			field("hostId", b.uuid()),
			field("sessionNumber", "int"),
			field("source", b.versioned(EnumInstrumentationSource)),
		}
	})
}

func (b *schemaBuilder) host() any {
	return b.record(RecordHost.TypeName(), func() []avroField {
		fields := []avroField{
			field("uuid", b.uuid()),
			field("hostName", "string"),
		}
		if b.v.HostTA1Version {
			fields = append(fields, field("ta1Version", "string"))
		}
		return append(fields,
			optional("hostIdentifiers", arrayOf(b.record("HostIdentifier", func() []avroField {
				return []avroField{field("idType", "string"), field("idValue", "string")}
			}))),
			optional("osDetails", "string"),
			field("hostType", b.versioned(EnumHostType)),
			optional("interfaces", arrayOf(b.record("Interface", func() []avroField {
				return []avroField{
					field("name", "string"),
					field("macAddress", "string"),
					field("ipAddresses", arrayOf("string")),
				}
			}))),
		)
	})
}

func (b *schemaBuilder) provenanceTagNode() any {
	return b.record(RecordProvenanceTagNode.TypeName(), func() []avroField {
		return []avroField{
			field("tagId", b.uuid()),
			optional("flowObject", b.uuid()),
			field("subject", b.uuid()),
			optional("systemCall", "string"),
			optional("programPoint", "string"),
			optional("prevTagId", b.uuid()),
			optional("opcode", b.enum("TagOpCode", tagOpCodes)),
			optional("tagIds", arrayOf(b.uuid())),
			optional("itag", b.enum("IntegrityTag", integrityTags)),
			optional("ctag", b.enum("ConfidentialityTag", confidentiality)),
			optional("properties", stringMap()),
		}
	})
}

func (b *schemaBuilder) subject() any {
	return b.record(RecordSubject.TypeName(), func() []avroField {
		return []avroField{
			field("uuid", b.uuid()),
			field("type", b.versioned(EnumSubjectType)),
			field("cid", "int"),
			optional("parentSubject", b.uuid()),
			optional("localPrincipal", b.uuid()),
			optional("startTimestampNanos", "long"),
			optional("unitId", "int"),
			optional("iteration", "int"),
			optional("count", "int"),
			optional("cmdLine", "string"),
			optional("privilegeLevel", b.enum("PrivilegeLevel", privilegeLevels)),
			optional("importedLibraries", arrayOf("string")),
			optional("exportedLibraries", arrayOf("string")),
			optional("properties", stringMap()),
		}
	})
}

func (b *schemaBuilder) abstractObject() any {
	return b.record("AbstractObject", func() []avroField {
		return []avroField{
			optional("permission", b.short()),
			optional("epoch", "int"),
			optional("properties", stringMap()),
		}
	})
}

func (b *schemaBuilder) srcSinkObject() any {
	return b.record(RecordSrcSinkObject.TypeName(), func() []avroField {
		return []avroField{
			field("uuid", b.uuid()),
			field("baseObject", b.abstractObject()),
			field("type", b.versioned(EnumSrcSinkType)),
			optional("fileDescriptor", "int"),
		}
	})
}

func (b *schemaBuilder) event() any {
	return b.record(RecordEvent.TypeName(), func() []avroField {
		return []avroField{
			field("uuid", b.uuid()),
			optional("sequence", "long"),
			field("type", b.versioned(EnumEventType)),
			optional("threadId", "int"),
			optional("subject", b.uuid()),
			optional("predicateObject", b.uuid()),
			optional("predicateObjectPath", "string"),
			optional("predicateObject2", b.uuid()),
			optional("predicateObject2Path", "string"),
			field("timestampNanos", "long"),
			optional("name", "string"),
			optional("location", "long"),
			optional("size", "long"),
			optional("programPoint", "string"),
			optional("properties", stringMap()),
		}
	})
}
