// Package codec serializes CDM records to Avro binary and appends them to
// Avro object container files.
//
// The Encoder walks the parsed envelope schema of one cdm.Version and writes
// each cdm.Datum field by field. Omitted fields take their schema default,
// unions are resolved from the value, and enum symbols are written as their
// index in the version's code table. Map entries are written in sorted key
// order so encoding the same record twice yields identical bytes.
package codec

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/hamba/avro/v2"

	"github.com/roach88/pvmcdm/internal/cdm"
)

// Encoder encodes envelopes for one schema version. It is safe for
// concurrent use.
type Encoder struct {
	version *cdm.Version
	schema  *avro.RecordSchema
}

// NewEncoder parses the envelope schema of v.
func NewEncoder(v *cdm.Version) (*Encoder, error) {
	s, err := avro.ParseWithCache(v.Schema(), "", &avro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", v, err)
	}
	rec, ok := s.(*avro.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("%s schema: expected record, got %s", v, s.Type())
	}
	return &Encoder{version: v, schema: rec}, nil
}

// Version returns the schema version the encoder writes.
func (e *Encoder) Version() *cdm.Version {
	return e.version
}

// Schema returns the parsed envelope schema.
func (e *Encoder) Schema() avro.Schema {
	return e.schema
}

// EncodeError reports a record the schema cannot represent.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return e.Err.Error() }

func (e *EncodeError) Unwrap() error { return e.Err }

// Encode returns the Avro binary encoding of env.
func (e *Encoder) Encode(env cdm.Envelope) ([]byte, error) {
	if env.Record == nil {
		return nil, &EncodeError{Err: fmt.Errorf("encode envelope: no record")}
	}
	b, err := e.EncodeDatum(env.Datum(e.version))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", env.Type(), err)
	}
	return b, nil
}

// EncodeDatum returns the Avro binary encoding of an envelope-shaped datum.
// Schema mismatches are reported as *EncodeError.
func (e *Encoder) EncodeDatum(d cdm.Datum) ([]byte, error) {
	var buf bytes.Buffer
	w := avro.NewWriter(&buf, 512)
	if err := write(w, e.schema, d, d.Name); err != nil {
		return nil, &EncodeError{Err: err}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write(w *avro.Writer, s avro.Schema, v any, path string) error {
	switch s := s.(type) {
	case *avro.RefSchema:
		return write(w, s.Schema(), v, path)
	case *avro.RecordSchema:
		return writeRecord(w, s, v, path)
	case *avro.UnionSchema:
		i, err := branch(s, v)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		w.WriteLong(int64(i))
		return write(w, s.Types()[i], v, path)
	case *avro.EnumSchema:
		sym, ok := v.(cdm.Enum)
		if !ok {
			return fmt.Errorf("%s: enum %s needs a symbol, got %T", path, s.Name(), v)
		}
		i := slices.Index(s.Symbols(), string(sym))
		if i < 0 {
			return fmt.Errorf("%s: %s has no symbol %s", path, s.Name(), sym)
		}
		w.WriteInt(int32(i))
		return nil
	case *avro.FixedSchema:
		b, err := fixedBytes(v)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(b) != s.Size() {
			return fmt.Errorf("%s: fixed %s has size %d, got %d bytes", path, s.Name(), s.Size(), len(b))
		}
		_, err = w.Write(b)
		return err
	case *avro.MapSchema:
		m, ok := stringMap(v)
		if !ok {
			return fmt.Errorf("%s: map needs string values, got %T", path, v)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if len(keys) > 0 {
			w.WriteLong(int64(len(keys)))
			for _, k := range keys {
				w.WriteString(k)
				if err := write(w, s.Values(), m[k], path+"."+k); err != nil {
					return err
				}
			}
		}
		w.WriteLong(0)
		return nil
	case *avro.ArraySchema:
		items, ok := v.([]string)
		if !ok {
			return fmt.Errorf("%s: array needs []string, got %T", path, v)
		}
		if len(items) > 0 {
			w.WriteLong(int64(len(items)))
			for i, item := range items {
				if err := write(w, s.Items(), item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
		w.WriteLong(0)
		return nil
	case *avro.NullSchema:
		return writePrimitive(w, avro.Null, v, path)
	case *avro.PrimitiveSchema:
		return writePrimitive(w, s.Type(), v, path)
	default:
		return fmt.Errorf("%s: unsupported schema type %s", path, s.Type())
	}
}

func writeRecord(w *avro.Writer, s *avro.RecordSchema, v any, path string) error {
	d, ok := v.(cdm.Datum)
	if !ok {
		return fmt.Errorf("%s: record %s needs a datum, got %T", path, s.Name(), v)
	}
	if d.Name != s.Name() {
		return fmt.Errorf("%s: record %s cannot hold a %s datum", path, s.Name(), d.Name)
	}

	known := make(map[string]bool, len(s.Fields()))
	for _, f := range s.Fields() {
		known[f.Name()] = true
	}
	var unknown []string
	for name := range d.Fields {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fmt.Errorf("%s: record %s has no field %s", path, s.Name(), strings.Join(unknown, ", "))
	}

	for _, f := range s.Fields() {
		val, ok := d.Fields[f.Name()]
		if !ok {
			if !f.HasDefault() {
				return fmt.Errorf("%s: missing required field %s", path, f.Name())
			}
			val = f.Default()
		}
		if err := write(w, f.Type(), val, path+"."+f.Name()); err != nil {
			return err
		}
	}
	return nil
}

func writePrimitive(w *avro.Writer, t avro.Type, v any, path string) error {
	switch t {
	case avro.Null:
		if !isNull(v) {
			return fmt.Errorf("%s: null field got %T", path, v)
		}
		return nil
	case avro.String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: string field got %T", path, v)
		}
		w.WriteString(s)
		return nil
	case avro.Boolean:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%s: boolean field got %T", path, v)
		}
		w.WriteBool(b)
		return nil
	case avro.Int:
		switch n := v.(type) {
		case int32:
			w.WriteInt(n)
		case int:
			if int(int32(n)) != n {
				return fmt.Errorf("%s: %d overflows int", path, n)
			}
			w.WriteInt(int32(n))
		default:
			return fmt.Errorf("%s: int field got %T", path, v)
		}
		return nil
	case avro.Long:
		switch n := v.(type) {
		case int64:
			w.WriteLong(n)
		case int32:
			w.WriteLong(int64(n))
		case int:
			w.WriteLong(int64(n))
		default:
			return fmt.Errorf("%s: long field got %T", path, v)
		}
		return nil
	default:
		return fmt.Errorf("%s: unsupported primitive %s", path, t)
	}
}

// branch picks the union member that holds v. Absent values select null;
// datums select the record of the same name; anything else selects the
// first member whose type accepts it.
func branch(s *avro.UnionSchema, v any) (int, error) {
	types := s.Types()
	if isNull(v) {
		for i, t := range types {
			if t.Type() == avro.Null {
				return i, nil
			}
		}
		return 0, fmt.Errorf("union %s has no null member", s.String())
	}
	for i, t := range types {
		if accepts(t, v) {
			return i, nil
		}
	}
	if d, ok := v.(cdm.Datum); ok {
		return 0, fmt.Errorf("union has no record %s", d.Name)
	}
	return 0, fmt.Errorf("union has no member for %T", v)
}

func accepts(s avro.Schema, v any) bool {
	if ref, ok := s.(*avro.RefSchema); ok {
		s = ref.Schema()
	}
	switch s := s.(type) {
	case *avro.RecordSchema:
		d, ok := v.(cdm.Datum)
		return ok && d.Name == s.Name()
	case *avro.EnumSchema:
		sym, ok := v.(cdm.Enum)
		return ok && slices.Contains(s.Symbols(), string(sym))
	case *avro.FixedSchema:
		b, err := fixedBytes(v)
		return err == nil && len(b) == s.Size()
	case *avro.MapSchema:
		_, ok := stringMap(v)
		return ok
	case *avro.ArraySchema:
		_, ok := v.([]string)
		return ok
	case *avro.PrimitiveSchema:
		switch s.Type() {
		case avro.String:
			_, ok := v.(string)
			return ok
		case avro.Boolean:
			_, ok := v.(bool)
			return ok
		case avro.Int:
			switch v.(type) {
			case int32, int:
				return true
			}
		case avro.Long:
			switch v.(type) {
			case int64, int32, int:
				return true
			}
		}
	}
	return false
}

func isNull(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *uuid.UUID:
		return v == nil
	case cdm.Properties:
		return v == nil
	case map[string]string:
		return v == nil
	case []string:
		return v == nil
	}
	return false
}

func fixedBytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v[:], nil
	case *uuid.UUID:
		if v == nil {
			return nil, fmt.Errorf("absent identifier in required field")
		}
		return v[:], nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("fixed field got %T", v)
	}
}

func stringMap(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case cdm.Properties:
		return m, true
	case map[string]string:
		return m, true
	}
	return nil, false
}
