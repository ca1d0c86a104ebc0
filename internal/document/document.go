// Package document defines the input record shape the writer ingests.
package document

import (
	"errors"
	"fmt"

	"indexcore/internal/schema"
)

// ErrFieldKindMismatch is returned when a value's Go type does not
// match the schema kind of the field it is set on.
var ErrFieldKindMismatch = errors.New("document: value does not match field kind")

// Document is one input record: a heterogeneous list of (Field, value)
// pairs, grounded on the teacher's Document{Fields map[string]any}
// shape but keyed by schema.Field rather than by name so repeated
// values for the same field are explicit.
type Document struct {
	textValues map[schema.Field][]string
	u32Values  map[schema.Field][]uint32
}

// New creates an empty Document.
func New() *Document {
	return &Document{
		textValues: make(map[schema.Field][]string),
		u32Values:  make(map[schema.Field][]uint32),
	}
}

// AddText appends a text value for a field. Text fields may be
// multi-valued; all values are indexed/stored independently.
func (d *Document) AddText(f schema.Field, v string) {
	d.textValues[f] = append(d.textValues[f], v)
}

// AddU32 appends a u32 value for a field.
func (d *Document) AddU32(f schema.Field, v uint32) {
	d.u32Values[f] = append(d.u32Values[f], v)
}

// TextValues returns the text values set for a field, in insertion
// order.
func (d *Document) TextValues(f schema.Field) []string {
	return d.textValues[f]
}

// U32Values returns the u32 values set for a field, in insertion
// order.
func (d *Document) U32Values(f schema.Field) []uint32 {
	return d.u32Values[f]
}

// FromJSON builds a Document from a decoded JSON object, dispatching
// each value to AddText/AddU32 according to the field's schema kind.
// Grounded on the teacher's indexTextField/indexKeywordField value
// switches in internal/indexing/writer.go.
func FromJSON(s *schema.Schema, fields map[string]any) (*Document, error) {
	d := New()
	for name, raw := range fields {
		f, ok := s.GetField(name)
		if !ok {
			continue // unknown fields are ignored, matching spec.md's silence on the topic
		}

		if text, err := s.TextFieldOptions(f); err == nil {
			_ = text
			switch v := raw.(type) {
			case string:
				d.AddText(f, v)
			case []any:
				for _, item := range v {
					s, ok := item.(string)
					if !ok {
						return nil, fmt.Errorf("%w: field %q array element must be a string", ErrFieldKindMismatch, name)
					}
					d.AddText(f, s)
				}
			default:
				return nil, fmt.Errorf("%w: field %q must be a string or string array", ErrFieldKindMismatch, name)
			}
			continue
		}

		if _, err := s.U32FieldOptions(f); err == nil {
			switch v := raw.(type) {
			case float64:
				d.AddU32(f, uint32(v))
			case []any:
				for _, item := range v {
					n, ok := item.(float64)
					if !ok {
						return nil, fmt.Errorf("%w: field %q array element must be numeric", ErrFieldKindMismatch, name)
					}
					d.AddU32(f, uint32(n))
				}
			default:
				return nil, fmt.Errorf("%w: field %q must be numeric or numeric array", ErrFieldKindMismatch, name)
			}
			continue
		}
	}
	return d, nil
}
