// Package postings accumulates per-term posting lists in memory during
// segment construction and drains them in sorted term order at
// serialization time.
//
// Grounded on the teacher's in-memory inverted-index build step
// (internal/indexing/writer.go's term->postings map) generalized to use
// roaring bitmaps for the per-term docID set, the same representation
// the bleve/bluge "zap" segment format (see other_examples/) uses
// alongside a vellum FST dictionary and snappy-compressed stored
// fields — the same three libraries this module wires into
// internal/segment.
package postings

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"indexcore/internal/term"
)

// Serializer receives postings in sorted term order. Implementations
// build the on-disk postings block and term dictionary as WriteTerm is
// called; callers must exhaust Writer.Serialize before relying on any
// side effects the serializer accumulated.
type Serializer interface {
	// WriteTerm is called once per distinct term, in ascending
	// term.Less order. docs is the sorted set of document IDs the
	// term occurs in. positions, when non-nil, maps a docID to the
	// token positions the term occurred at within that document; it
	// is only populated for fields that index positions.
	WriteTerm(t term.Term, docs *roaring.Bitmap, positions map[uint32][]uint32) error
}

// postingList is the mutable, in-memory accumulation for one term.
type postingList struct {
	term      term.Term
	docs      *roaring.Bitmap
	positions map[uint32][]uint32
}

// Writer accumulates (docID, Term) subscriptions for a single segment
// under construction. A Writer is owned exclusively by the SegmentWriter
// building that segment and is not safe for concurrent use.
type Writer struct {
	terms map[string]*postingList
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{terms: make(map[string]*postingList)}
}

// Subscribe records that term t occurred in docID. position, when
// supplied, is the token's ordinal position within the field's token
// stream for that document and is recorded for fields that index
// positions; omit it for fields that only need presence (e.g. keyword
// fields, or term queries with no phrase support).
func (w *Writer) Subscribe(docID uint32, t term.Term, position ...uint32) {
	key := t.Key()
	pl, ok := w.terms[key]
	if !ok {
		pl = &postingList{term: t, docs: roaring.New()}
		w.terms[key] = pl
	}
	pl.docs.Add(docID)
	if len(position) > 0 {
		if pl.positions == nil {
			pl.positions = make(map[uint32][]uint32)
		}
		pl.positions[docID] = append(pl.positions[docID], position...)
	}
}

// NumTerms returns the number of distinct terms accumulated so far.
func (w *Writer) NumTerms() int {
	return len(w.terms)
}

// Serialize drains all accumulated terms in ascending term.Less order,
// calling s.WriteTerm once per term (spec.md §4.3, §8 property 6: terms
// are written to the dictionary in sorted order).
func (w *Writer) Serialize(s Serializer) error {
	lists := make([]*postingList, 0, len(w.terms))
	for _, pl := range w.terms {
		lists = append(lists, pl)
	}
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].term.Less(lists[j].term)
	})
	for _, pl := range lists {
		if err := s.WriteTerm(pl.term, pl.docs, pl.positions); err != nil {
			return err
		}
	}
	return nil
}
