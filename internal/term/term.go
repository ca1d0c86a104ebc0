// Package term defines the posting-list addressing key: a schema field
// tagged with payload bytes.
package term

import (
	"bytes"
	"encoding/binary"

	"indexcore/internal/schema"
)

// Term is a (Field, payload) pair. Two terms are equal iff their Field
// and payload bytes are byte-equal (spec.md §3).
type Term struct {
	Field   schema.Field
	Payload []byte
}

// FromText builds a Term whose payload is the UTF-8 bytes of token.
func FromText(f schema.Field, token string) Term {
	return Term{Field: f, Payload: []byte(token)}
}

// FromU32 builds a Term whose payload is the big-endian 4-byte
// encoding of v.
func FromU32(f schema.Field, v uint32) Term {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return Term{Field: f, Payload: buf}
}

// Equal reports whether two terms address the same posting list.
func (t Term) Equal(other Term) bool {
	return t.Field == other.Field && bytes.Equal(t.Payload, other.Payload)
}

// Less implements the lexicographic ordering on (field ordinal, payload
// bytes) that serialize-time term iteration uses (spec.md §4.3, §8
// property 6).
func (t Term) Less(other Term) bool {
	if t.Field != other.Field {
		return t.Field < other.Field
	}
	return bytes.Compare(t.Payload, other.Payload) < 0
}

// Key returns a value suitable for use as a map key or sort key: it
// concatenates the field ordinal and payload so that byte-comparison
// of Keys matches Less.
func (t Term) Key() string {
	buf := make([]byte, 4+len(t.Payload))
	binary.BigEndian.PutUint32(buf, uint32(t.Field))
	copy(buf[4:], t.Payload)
	return string(buf)
}
