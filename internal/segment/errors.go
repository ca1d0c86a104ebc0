package segment

import "errors"

var (
	// ErrSegmentFinalized is returned by AddDocument once Finalize has
	// run; the state machine is Open → Finalized with no way back.
	ErrSegmentFinalized = errors.New("segment: writer already finalized")
	// ErrSegmentPoisoned is returned by any operation on a SegmentWriter
	// after an earlier I/O failure. A poisoned writer must not be
	// finalized; the worker discards it (spec.md §4.6).
	ErrSegmentPoisoned = errors.New("segment: writer poisoned by a previous error")
	// ErrSerializerClosed is returned by serializer methods called after
	// Close.
	ErrSerializerClosed = errors.New("segment: serializer already closed")
	// ErrSegmentInfoNotWritten is returned by Close when
	// WriteSegmentInfo was never called, violating the "write_segment_info
	// must precede close" ordering requirement (spec.md §4.5).
	ErrSegmentInfoNotWritten = errors.New("segment: close called before write_segment_info")
	// ErrStoreDocOutOfOrder is returned when StoreDoc is called with a
	// docID that does not match the next expected document in sequence.
	ErrStoreDocOutOfOrder = errors.New("segment: store_doc called out of docID order")
	// ErrSegmentInfoCorrupt is returned by UnmarshalSegmentInfo when the
	// embedded checksum does not match the payload, mirroring
	// schema.ErrSchemaCorrupt.
	ErrSegmentInfoCorrupt = errors.New("segment: segment info checksum verification failed")
)
