// Package fastfield builds dense, columnar u32 storage for fields
// marked Fast in the schema, so range/value lookups at query time don't
// need to decompress a stored-field blob.
//
// Grounded on the teacher's internal/index/fastfield.go column-of-u32
// layout, generalized from a single hard-coded column to one column per
// schema.Field marked U32Options.Fast.
package fastfield

import (
	"encoding/binary"
	"io"

	"indexcore/internal/schema"
)

// Serializer receives one finished column per fast field, in field
// ordinal order.
type Serializer interface {
	// WriteColumn is called once per fast u32 field, values indexed by
	// docID (values[docID] is the field's value for that document;
	// docs that never set the field read back as 0).
	WriteColumn(f schema.Field, values []uint32) error
}

// Writer accumulates dense per-document columns for every fast u32
// field declared in the schema it was constructed from, as documents
// are added to a segment. Every declared fast field gets a column the
// moment the Writer is created — per spec.md §3's invariant that
// FastFieldColumn[field].len() == max_doc for every declared u32 fast
// field, even one no document in the segment ever sets — and columns
// are zero-filled for documents that did not set the field, matching
// the teacher's "absent fast field reads as zero" convention.
type Writer struct {
	fields  []schema.Field
	columns map[schema.Field][]uint32
	numDocs uint32
}

// NewWriter creates a Writer with one empty column pre-allocated for
// every field in sch marked U32Options.Fast, per spec.md §4.4's
// "Constructed from a Schema; allocates one column per fast field"
// contract.
func NewWriter(sch *schema.Schema) *Writer {
	w := &Writer{columns: make(map[schema.Field][]uint32)}
	for _, f := range sch.Fields() {
		opts, err := sch.U32FieldOptions(f)
		if err != nil || !opts.Fast {
			continue
		}
		w.fields = append(w.fields, f)
		w.columns[f] = nil
	}
	sortFields(w.fields)
	return w
}

// SetValue records the value of fast field f for docID. docID must be
// monotonically non-decreasing across calls within a segment, matching
// the SegmentWriter's document numbering. f must have been declared
// Fast in the schema NewWriter was built from.
func (w *Writer) SetValue(docID uint32, f schema.Field, v uint32) {
	if docID+1 > w.numDocs {
		w.numDocs = docID + 1
	}
	col := w.columns[f]
	if uint32(len(col)) < w.numDocs {
		grown := make([]uint32, w.numDocs)
		copy(grown, col)
		col = grown
	}
	col[docID] = v
	w.columns[f] = col
}

// AdvanceDoc records that docID exists even if it sets no fast field
// value, so columns stay aligned with the segment's document count.
func (w *Writer) AdvanceDoc(docID uint32) {
	if docID+1 > w.numDocs {
		w.numDocs = docID + 1
	}
}

// Serialize writes every declared fast field's column, padding each to
// the segment's total document count, in ascending field ordinal
// order. A field that received no value from any document in the
// segment is still written, as a column of zeros of length numDocs.
func (w *Writer) Serialize(s Serializer) error {
	for _, f := range w.fields {
		col := w.columns[f]
		if uint32(len(col)) < w.numDocs {
			padded := make([]uint32, w.numDocs)
			copy(padded, col)
			col = padded
		}
		if err := s.WriteColumn(f, col); err != nil {
			return err
		}
	}
	return nil
}

func sortFields(fields []schema.Field) {
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j] < fields[j-1]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}

// EncodeColumn packs a u32 column into its little-endian on-disk
// representation.
func EncodeColumn(values []uint32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// DecodeColumn reads back a column encoded by EncodeColumn.
func DecodeColumn(r io.Reader, numDocs uint32) ([]uint32, error) {
	buf := make([]byte, 4*numDocs)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	values := make([]uint32, numDocs)
	for i := range values {
		values[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return values, nil
}
