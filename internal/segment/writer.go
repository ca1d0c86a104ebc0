package segment

import (
	"fmt"
	"time"

	"indexcore/internal/analysis"
	"indexcore/internal/directory"
	"indexcore/internal/document"
	"indexcore/internal/fastfield"
	"indexcore/internal/postings"
	"indexcore/internal/schema"
	"indexcore/internal/term"
)

// Writer is the per-segment builder: it owns one PostingsWriter, one
// FastFieldWriter, and one FileSerializer, and assigns DocIds densely
// from 0. Grounded directly on original_source/src/core/writer.rs's
// SegmentWriter — the add_document step order below is a near-literal
// port of that function's body.
//
// State machine: Open -> Finalized, with no transition back. A writer
// that hits an I/O error is poisoned and must not be finalized; the
// caller is expected to discard it via directory.Directory.Discard.
type Writer struct {
	schema     *schema.Schema
	tokenizer  analysis.Tokenizer
	postings   *postings.Writer
	fastFields *fastfield.Writer
	serializer *FileSerializer

	maxDoc    uint32
	finalized bool
	poisoned  bool
}

// ForSegment allocates a fresh serializer for seg and returns a Writer
// ready to accept documents.
func ForSegment(seg directory.Segment, sch *schema.Schema, tokenizer analysis.Tokenizer) (*Writer, error) {
	ser, err := NewFileSerializer(seg)
	if err != nil {
		return nil, fmt.Errorf("segment: for_segment: %w", err)
	}
	return &Writer{
		schema:     sch,
		tokenizer:  tokenizer,
		postings:   postings.NewWriter(),
		fastFields: fastfield.NewWriter(sch),
		serializer: ser,
	}, nil
}

// MaxDoc returns the number of documents added so far.
func (w *Writer) MaxDoc() uint32 { return w.maxDoc }

// AddDocument performs the five-step indexing sequence from spec.md
// §4.6: tokenize+subscribe text fields, subscribe indexed u32 fields,
// append fast-field columns, emit stored fields, then advance max_doc.
func (w *Writer) AddDocument(doc *document.Document) error {
	if w.finalized {
		return ErrSegmentFinalized
	}
	if w.poisoned {
		return ErrSegmentPoisoned
	}

	docID := w.maxDoc
	var stored []StoredField

	for _, f := range w.schema.Fields() {
		if textOpts, err := w.schema.TextFieldOptions(f); err == nil {
			for _, v := range doc.TextValues(f) {
				if textOpts.IsTokenizedIndexed() {
					w.subscribeTokens(docID, f, v)
				}
				if textOpts.IsStored() {
					stored = append(stored, StoredField{Field: f, Value: v})
				}
			}
			continue
		}

		u32Opts, err := w.schema.U32FieldOptions(f)
		if err != nil {
			continue
		}
		for _, v := range doc.U32Values(f) {
			if u32Opts.Indexed {
				w.postings.Subscribe(docID, term.FromU32(f, v))
			}
			if u32Opts.Fast {
				w.fastFields.SetValue(docID, f, v)
			}
		}
	}
	w.fastFields.AdvanceDoc(docID)

	if err := w.serializer.StoreDoc(docID, stored); err != nil {
		w.poisoned = true
		return fmt.Errorf("segment: add_document: store_doc: %w", err)
	}

	w.maxDoc++
	return nil
}

func (w *Writer) subscribeTokens(docID uint32, f schema.Field, text string) {
	ts := w.tokenizer.Tokenize(text)
	var pos uint32
	for ts.Next() {
		t := term.FromText(f, ts.Token())
		w.postings.Subscribe(docID, t, pos)
		pos++
	}
}

// Finalize consumes the writer: it serializes postings and fast-field
// columns, writes segment metadata, and closes every stream. Exactly
// once; any call after Finalize (or after poisoning) fails.
func (w *Writer) Finalize() (*SegmentInfo, error) {
	if w.finalized {
		return nil, ErrSegmentFinalized
	}
	if w.poisoned {
		return nil, ErrSegmentPoisoned
	}

	if err := w.postings.Serialize(w.serializer); err != nil {
		w.poisoned = true
		return nil, fmt.Errorf("segment: finalize: serialize postings: %w", err)
	}
	if err := w.fastFields.Serialize(w.serializer); err != nil {
		w.poisoned = true
		return nil, fmt.Errorf("segment: finalize: serialize fast fields: %w", err)
	}

	info := &SegmentInfo{
		SegmentID: w.serializer.Segment().ID,
		MaxDoc:    w.maxDoc,
		CreatedAt: time.Now(),
	}
	if err := w.serializer.WriteSegmentInfo(info); err != nil {
		w.poisoned = true
		return nil, fmt.Errorf("segment: finalize: write_segment_info: %w", err)
	}
	if err := w.serializer.Close(); err != nil {
		w.poisoned = true
		return nil, fmt.Errorf("segment: finalize: close: %w", err)
	}

	w.finalized = true
	return info, nil
}

// Poisoned reports whether an earlier I/O failure has poisoned this
// writer. A poisoned writer's segment must be discarded, not published.
func (w *Writer) Poisoned() bool { return w.poisoned }

// Segment returns the identity of the segment this writer is building.
func (w *Writer) Segment() directory.Segment { return w.serializer.Segment() }
