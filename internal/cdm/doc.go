// Package cdm models the external Common Data Model (CDM) record schema.
//
// The schema is closed and versioned. Every record kind is a Go type with an
// explicit builder (Record.Datum) that turns it into a schema-shaped Datum for
// one Version; there is no reflection between the two. A Version carries the
// code tables of that schema release: each enumeration is an ordered symbol
// list and a symbol's integer code is its position in the list, exactly as the
// Avro enum encoding defines it. The Avro schema of a version is generated
// from the same tables, so codes and schema can never disagree.
//
// Every emitted record travels inside an Envelope (TCCDMDatum) whose "type"
// discriminator is derived from the wrapped record itself.
package cdm
