// Package ident maps internal graph identifiers to external record identifiers.
//
// Derivation is a pure function: a name-based (version 5, SHA-1) UUID of the
// identifier's stable textual form under the nil namespace. Nothing is
// memoised, so the mapping is identical across restarts and machines.
package ident

import (
	"github.com/google/uuid"

	"github.com/roach88/pvmcdm/internal/pvm"
)

// Nil returns the reserved "absent/unknown" identifier (e.g. an unset host
// id). A derived identifier is a version 5 UUID and therefore never equals
// Nil.
func Nil() uuid.UUID {
	return uuid.Nil
}

// Derive returns the external identifier of the internal entity id. The
// namespace is the nil UUID.
func Derive(id pvm.ID) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte(id.String()))
}

// DeriveString returns Derive(id) in hyphenated form, as used in property bags.
func DeriveString(id pvm.ID) string {
	return Derive(id).String()
}

// DeriveOptional derives an identifier for a participant that may be absent.
// A nil result means "absent"; it is never mapped to Nil.
func DeriveOptional(id pvm.ID, present bool) *uuid.UUID {
	if !present {
		return nil
	}
	u := Derive(id)
	return &u
}
