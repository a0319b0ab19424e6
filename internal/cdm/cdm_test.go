package cdm

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCodes(t *testing.T) {
	tests := []struct {
		kind EnumKind
		sym  Enum
		v19  int
		v20  int
	}{
		{EnumRecordType, RecordHost.Symbol(), 0, 0},
		{EnumRecordType, RecordProvenanceTagNode.Symbol(), 2, 2},
		{EnumRecordType, RecordSubject.Symbol(), 3, 4},
		{EnumRecordType, RecordSrcSinkObject.Symbol(), 9, 11},
		{EnumRecordType, RecordEvent.Symbol(), 10, 12},
		{EnumHostType, HostOther.Symbol(), 2, 3},
		{EnumSubjectType, SubjectOther.Symbol(), 3, 4},
		{EnumSrcSinkType, SrcSinkUnknown.Symbol(), 110, 123},
		{EnumEventType, EventFlowsTo.Symbol(), 15, 16},
		{EnumEventType, EventOther.Symbol(), 28, 31},
		{EnumInstrumentationSource, V19.Source, 3, 3},
		{EnumInstrumentationSource, V20.Source, -1, 16},
	}
	for _, tt := range tests {
		t.Run(string(tt.sym), func(t *testing.T) {
			for _, c := range []struct {
				v    *Version
				want int
			}{{V19, tt.v19}, {V20, tt.v20}} {
				got, err := c.v.Code(tt.kind, tt.sym)
				if c.want < 0 {
					assert.Error(t, err, "%s should not define %s", c.v, tt.sym)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, c.want, got, "%s code of %s", c.v, tt.sym)
			}
		})
	}
}

func TestVersionTableSizes(t *testing.T) {
	sizes := map[EnumKind][2]int{
		EnumRecordType:            {13, 16},
		EnumHostType:              {3, 4},
		EnumSubjectType:           {4, 5},
		EnumSrcSinkType:           {111, 124},
		EnumEventType:             {49, 55},
		EnumInstrumentationSource: {15, 17},
	}
	for _, k := range VersionedEnums {
		assert.Len(t, V19.Symbols(k), sizes[k][0], "v19 %s", k)
		assert.Len(t, V20.Symbols(k), sizes[k][1], "v20 %s", k)
	}
}

func TestVersionSymbolsUnique(t *testing.T) {
	for _, v := range []*Version{V19, V20} {
		for _, k := range VersionedEnums {
			seen := make(map[string]bool)
			for _, s := range v.Symbols(k) {
				assert.False(t, seen[s], "%s %s repeats %s", v, k, s)
				seen[s] = true
			}
		}
	}
}

func TestVersionCode_UnknownEnumeration(t *testing.T) {
	_, err := V20.Code("Gadget", "X")
	assert.Error(t, err)
}

func TestLookupVersion(t *testing.T) {
	v, err := LookupVersion("19")
	require.NoError(t, err)
	assert.Same(t, V19, v)

	v, err = LookupVersion("20")
	require.NoError(t, err)
	assert.Same(t, V20, v)

	_, err = LookupVersion("18")
	assert.ErrorContains(t, err, "unsupported schema version")

	assert.Equal(t, []string{"19", "20"}, VersionNames())
	assert.Same(t, V20, DefaultVersion)
}

func TestSchemaParses(t *testing.T) {
	for _, v := range []*Version{V19, V20} {
		t.Run(v.String(), func(t *testing.T) {
			s, err := avro.ParseWithCache(v.Schema(), "", &avro.SchemaCache{})
			require.NoError(t, err)

			rec, ok := s.(*avro.RecordSchema)
			require.True(t, ok)
			assert.Equal(t, v.FullName(EnvelopeName), rec.FullName())

			names := make([]string, 0, len(rec.Fields()))
			for _, f := range rec.Fields() {
				names = append(names, f.Name())
			}
			assert.Equal(t, []string{"datum", "CDMVersion", "type", "hostId", "sessionNumber", "source"}, names)
		})
	}
}

func TestSchemaEnumsFollowCodeTables(t *testing.T) {
	for _, v := range []*Version{V19, V20} {
		s, err := avro.ParseWithCache(v.Schema(), "", &avro.SchemaCache{})
		require.NoError(t, err)

		found := make(map[EnumKind][]string)
		collectEnums(s, found, make(map[string]bool))
		for _, k := range VersionedEnums {
			assert.Equal(t, v.Symbols(k), found[k], "%s %s", v, k)
		}
	}
}

func collectEnums(s avro.Schema, out map[EnumKind][]string, seen map[string]bool) {
	switch s := s.(type) {
	case *avro.RecordSchema:
		if seen[s.FullName()] {
			return
		}
		seen[s.FullName()] = true
		for _, f := range s.Fields() {
			collectEnums(f.Type(), out, seen)
		}
	case *avro.UnionSchema:
		for _, t := range s.Types() {
			collectEnums(t, out, seen)
		}
	case *avro.ArraySchema:
		collectEnums(s.Items(), out, seen)
	case *avro.RefSchema:
		collectEnums(s.Schema(), out, seen)
	case *avro.EnumSchema:
		out[EnumKind(s.Name())] = s.Symbols()
	}
}

func TestSchemaHostTA1Version(t *testing.T) {
	var v19, v20 map[string]any
	require.NoError(t, json.Unmarshal([]byte(V19.Schema()), &v19))
	require.NoError(t, json.Unmarshal([]byte(V20.Schema()), &v20))

	assert.NotContains(t, hostFieldNames(t, v19), "ta1Version")
	assert.Contains(t, hostFieldNames(t, v20), "ta1Version")
}

func hostFieldNames(t *testing.T, schema map[string]any) []string {
	t.Helper()
	fields := schema["fields"].([]any)
	union := fields[0].(map[string]any)["type"].([]any)
	host := union[0].(map[string]any)
	var names []string
	for _, f := range host["fields"].([]any) {
		names = append(names, f.(map[string]any)["name"].(string))
	}
	return names
}

func TestHostDatum(t *testing.T) {
	h := &Host{UUID: uuid.Nil, HostType: HostOther}

	d := h.Datum(V20)
	assert.Equal(t, "Host", d.Name)
	assert.Equal(t, "", d.Fields["ta1Version"])
	assert.Equal(t, Enum("HOST_OTHER"), d.Fields["hostType"])

	d = h.Datum(V19)
	assert.NotContains(t, d.Fields, "ta1Version")
}

func TestEnvelopeDiscriminatorAgreement(t *testing.T) {
	id := uuid.MustParse("85b72ba2-bce3-57dd-bde0-30acc20b739a")
	records := []Record{
		&Host{HostType: HostOther},
		&ProvenanceTagNode{TagID: id},
		&Subject{UUID: id, Type: SubjectOther},
		&SrcSinkObject{UUID: id, Type: SrcSinkUnknown},
		&Event{UUID: id, Type: EventFlowsTo},
	}
	require.Len(t, records, len(RecordTypes))

	for _, v := range []*Version{V19, V20} {
		for _, r := range records {
			env := Wrap(r)
			d := env.Datum(v)

			assert.Equal(t, EnvelopeName, d.Name)
			assert.Equal(t, r.RecordType().Symbol(), d.Fields["type"])
			assert.Equal(t, r.RecordType().TypeName(), d.Fields["datum"].(Datum).Name)
			assert.Equal(t, v.Name, d.Fields["CDMVersion"])
			assert.Equal(t, v.Source, d.Fields["source"])
			assert.Equal(t, uuid.Nil, d.Fields["hostId"])
			assert.Equal(t, int32(0), d.Fields["sessionNumber"])
		}
	}
}

func TestEventAbsentParticipants(t *testing.T) {
	src := uuid.New()
	e := &Event{Type: EventOther, Subject: &src}
	d := e.Datum(V20)

	assert.Equal(t, &src, d.Fields["subject"])
	assert.Nil(t, d.Fields["predicateObject"])
	assert.Nil(t, d.Fields["predicateObject2"])
}

func TestSymbolPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { _ = RecordType(0).Symbol() })
	assert.Panics(t, func() { _ = EventType(99).Symbol() })
}

func TestDatumPlain(t *testing.T) {
	id := uuid.MustParse("85b72ba2-bce3-57dd-bde0-30acc20b739a")
	o := &SrcSinkObject{
		UUID:       id,
		BaseObject: AbstractObject{Properties: Properties{"type": "Node;Object;Store"}},
		Type:       SrcSinkUnknown,
	}

	got := o.Datum(V20).Plain()
	assert.Equal(t, map[string]any{
		"SrcSinkObject": map[string]any{
			"uuid": id.String(),
			"type": "SRCSINK_UNKNOWN",
			"baseObject": map[string]any{
				"AbstractObject": map[string]any{
					"properties": map[string]string{"type": "Node;Object;Store"},
				},
			},
		},
	}, got)

	e := (&Event{UUID: id, Type: EventOther}).Datum(V20).Plain()
	fields := e["Event"].(map[string]any)
	assert.Nil(t, fields["subject"])
	assert.Nil(t, fields["properties"])
	assert.Equal(t, int64(0), fields["timestampNanos"])
}
