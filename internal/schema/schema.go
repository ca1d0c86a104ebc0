// Package schema defines the field registry that every document, term,
// and query in indexcore is validated against.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"indexcore/internal/storage"
)

// Field is a stable handle to a schema slot: its ordinal position in
// the Schema's field list.
type Field uint32

// Kind identifies which variant a FieldKind carries.
type Kind uint8

const (
	KindText Kind = iota
	KindU32
)

// TextOptions controls how a text field is handled.
type TextOptions struct {
	Indexed   bool
	Tokenized bool
	Stored    bool
}

// IsTokenizedIndexed is true when tokenization should feed the postings
// writer for this field.
func (o TextOptions) IsTokenizedIndexed() bool { return o.Indexed && o.Tokenized }

// IsStored is true when the raw field value is written to the
// stored-field stream.
func (o TextOptions) IsStored() bool { return o.Stored }

// U32Options controls how a u32 field is handled.
type U32Options struct {
	Indexed bool
	Fast    bool
}

// FieldKind is the (kind-tagged) declaration of a single field.
type FieldKind struct {
	Kind Kind
	Text TextOptions
	U32  U32Options
}

// fieldDef is the serializable form of one schema entry.
type fieldDef struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

var (
	// ErrFieldExists is returned when a name is registered twice.
	ErrFieldExists = errors.New("schema: field name already registered")
	// ErrWrongKind is returned when option retrieval targets a field of
	// the other kind. This is a programmer error (spec.md §7): callers
	// should not query text options of a u32 field or vice versa.
	ErrWrongKind = errors.New("schema: field is not of the requested kind")
	// ErrFieldNotFound is returned by FieldName, TextFieldOptions and
	// U32FieldOptions for an unregistered ordinal.
	ErrFieldNotFound = errors.New("schema: field not found")
)

// Schema is an ordered, append-only registry of fields. Once a
// document has been indexed against a Schema, it must not be mutated
// further (spec.md §3 invariant).
type Schema struct {
	mu     sync.RWMutex
	names  map[string]Field
	fields []fieldDef
}

// New creates an empty Schema.
func New() *Schema {
	return &Schema{names: make(map[string]Field)}
}

// AddTextField appends a text field and returns its Field handle.
func (s *Schema) AddTextField(name string, opts TextOptions) (Field, error) {
	return s.add(name, FieldKind{Kind: KindText, Text: opts})
}

// AddU32Field appends a u32 field and returns its Field handle.
func (s *Schema) AddU32Field(name string, opts U32Options) (Field, error) {
	return s.add(name, FieldKind{Kind: KindU32, U32: opts})
}

func (s *Schema) add(name string, kind FieldKind) (Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.names[name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrFieldExists, name)
	}

	f := Field(len(s.fields))
	s.fields = append(s.fields, fieldDef{Name: name, Kind: kind})
	s.names[name] = f
	return f, nil
}

// GetField looks up a field by name.
func (s *Schema) GetField(name string) (Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.names[name]
	return f, ok
}

// FieldName returns the registered name for a Field.
func (s *Schema) FieldName(f Field) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(f) >= len(s.fields) {
		return "", fmt.Errorf("%w: ordinal %d", ErrFieldNotFound, f)
	}
	return s.fields[f].Name, nil
}

// NumFields returns the number of registered fields.
func (s *Schema) NumFields() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

// Fields returns the registered fields in registration order.
// The returned slice must not be mutated.
func (s *Schema) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Field, len(s.fields))
	for i := range s.fields {
		out[i] = Field(i)
	}
	return out
}

// TextFieldOptions returns the TextOptions for a text field. It fails
// if Field does not exist or is not a text field.
func (s *Schema) TextFieldOptions(f Field) (TextOptions, error) {
	kind, err := s.kindOf(f)
	if err != nil {
		return TextOptions{}, err
	}
	if kind.Kind != KindText {
		return TextOptions{}, fmt.Errorf("%w: field %d is u32", ErrWrongKind, f)
	}
	return kind.Text, nil
}

// U32FieldOptions returns the U32Options for a u32 field. It fails if
// Field does not exist or is not a u32 field.
func (s *Schema) U32FieldOptions(f Field) (U32Options, error) {
	kind, err := s.kindOf(f)
	if err != nil {
		return U32Options{}, err
	}
	if kind.Kind != KindU32 {
		return U32Options{}, fmt.Errorf("%w: field %d is text", ErrWrongKind, f)
	}
	return kind.U32, nil
}

func (s *Schema) kindOf(f Field) (FieldKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(f) >= len(s.fields) {
		return FieldKind{}, fmt.Errorf("%w: ordinal %d", ErrFieldNotFound, f)
	}
	return s.fields[f].Kind, nil
}

// schemaWire is the JSON wire format for a Schema, with an integrity
// checksum computed over the field list.
type schemaWire struct {
	Fields   []fieldDef       `json:"fields"`
	Checksum storage.Checksum `json:"checksum"`
}

// Marshal serializes the schema to JSON with a checksum, grounded on
// the teacher's MarshalSchema/UnmarshalSchema round trip.
func (s *Schema) Marshal() ([]byte, error) {
	s.mu.RLock()
	fields := append([]fieldDef(nil), s.fields...)
	s.mu.RUnlock()

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal schema fields: %w", err)
	}
	w := schemaWire{Fields: fields, Checksum: storage.ComputeChecksum(payload)}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// ErrSchemaCorrupt is returned by Unmarshal when the checksum does not
// match the field payload.
var ErrSchemaCorrupt = errors.New("schema: checksum verification failed")

// Unmarshal deserializes and verifies a Schema written by Marshal.
func Unmarshal(data []byte) (*Schema, error) {
	var w schemaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	if _, err := storage.ParseChecksum(w.Checksum); err != nil {
		return nil, fmt.Errorf("schema: checksum: %w", err)
	}

	payload, err := json.Marshal(w.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal schema fields for verification: %w", err)
	}
	if got := storage.ComputeChecksum(payload); got != w.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrSchemaCorrupt, w.Checksum, got)
	}

	s := New()
	for _, fd := range w.Fields {
		if _, err := s.add(fd.Name, fd.Kind); err != nil {
			return nil, err
		}
	}
	return s, nil
}
