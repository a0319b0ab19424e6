package cdm

import "github.com/google/uuid"

// EnvelopeName is the Avro record name of the envelope.
const EnvelopeName = "TCCDMDatum"

// Envelope wraps one record for the output stream.
type Envelope struct {
	Record        Record
	SessionNumber int32
	HostID        uuid.UUID
}

// Wrap returns the envelope of r with a zero session number and nil host id.
func Wrap(r Record) Envelope {
	return Envelope{Record: r, HostID: uuid.Nil}
}

// Type returns the discriminator. It is always the kind of the wrapped record.
func (e Envelope) Type() RecordType {
	return e.Record.RecordType()
}

// Datum shapes the envelope for version v.
func (e Envelope) Datum(v *Version) Datum {
	return Datum{Name: EnvelopeName, Fields: map[string]any{
		"datum":         e.Record.Datum(v),
		"CDMVersion":    v.Name,
		"type":          e.Type().Symbol(),
		"hostId":        e.HostID,
		"sessionNumber": e.SessionNumber,
		"source":        v.Source,
	}}
}
