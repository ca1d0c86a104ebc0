// Package segment implements a concrete SegmentSerializer and the
// SegmentWriter state machine that drives it.
//
// The on-disk layout is grounded on harshagw-postings'
// internal/segment/builder_write.go: a postings stream of
// roaring-bitmap-encoded blocks, a couchbase/vellum FST term
// dictionary mapping term bytes to block offsets, a snappy-compressed
// chunked stored-field stream, one dense fast-field column per field,
// and a checksummed meta.json — the same file-per-concern split the
// teacher uses in internal/index/segment_meta.go, generalized from a
// single monolithic segment description to the richer one this module
// actually writes.
package segment

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/couchbase/vellum"
	"github.com/golang/snappy"

	"indexcore/internal/directory"
	"indexcore/internal/fastfield"
	"indexcore/internal/schema"
	"indexcore/internal/storage"
	"indexcore/internal/term"
)

const (
	postingsFileName = "postings.bin"
	fstFileName      = "fst.bin"
	storedFileName   = "stored.bin"
	metaFileName     = "meta.json"
)

// SegmentInfo is the on-disk metadata record a segment carries: just
// enough for a reader to know how many documents it holds, matching
// spec.md §4.5's "write_segment_info" contract, which names only
// max_doc as the required field.
type SegmentInfo struct {
	SegmentID string           `json:"segment_id"`
	MaxDoc    uint32           `json:"max_doc"`
	CreatedAt time.Time        `json:"created_at"`
	Checksum  storage.Checksum `json:"checksum"`
}

func marshalSegmentInfo(info *SegmentInfo) ([]byte, error) {
	saved := info.Checksum
	info.Checksum = ""
	payload, err := json.Marshal(info)
	info.Checksum = saved
	if err != nil {
		return nil, fmt.Errorf("marshal segment info: %w", err)
	}
	info.Checksum = storage.ComputeChecksum(payload)
	return json.MarshalIndent(info, "", "  ")
}

// UnmarshalSegmentInfo deserializes and verifies a SegmentInfo written
// by marshalSegmentInfo, mirroring schema.Unmarshal's round trip.
func UnmarshalSegmentInfo(data []byte) (*SegmentInfo, error) {
	var info SegmentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("segment: unmarshal segment info: %w", err)
	}
	if _, err := storage.ParseChecksum(info.Checksum); err != nil {
		return nil, fmt.Errorf("segment: segment info checksum: %w", err)
	}

	saved := info.Checksum
	info.Checksum = ""
	payload, err := json.Marshal(&info)
	info.Checksum = saved
	if err != nil {
		return nil, fmt.Errorf("segment: marshal segment info for verification: %w", err)
	}
	if got := storage.ComputeChecksum(payload); got != saved {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrSegmentInfoCorrupt, saved, got)
	}
	return &info, nil
}

// ReadSegmentInfo reads and verifies meta.json from a segment
// directory (published or still staged).
func ReadSegmentInfo(dir string) (*SegmentInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, metaFileName))
	if err != nil {
		return nil, fmt.Errorf("segment: read segment info: %w", err)
	}
	return UnmarshalSegmentInfo(data)
}

// StoredField is one (field, raw text value) pair destined for the
// stored-field stream.
type StoredField struct {
	Field schema.Field
	Value string
}

// FileSerializer is the concrete SegmentSerializer: it writes postings,
// an FST dictionary, stored fields, fast-field columns, and segment
// metadata under one directory.Segment's staging directory. Methods
// satisfy postings.Serializer and fastfield.Serializer directly so a
// SegmentWriter can hand it straight to PostingsWriter.Serialize and
// FastFieldWriter.Serialize.
type FileSerializer struct {
	seg directory.Segment

	postingsFile   *os.File
	postingsWriter io.Writer // postingsFile, tee'd through postingsHash
	postingsHash   hash.Hash
	postingsOffset uint64

	fstBuf     bytes.Buffer
	fstBuilder *vellum.Builder

	storedFile     *os.File
	storedWriter   io.Writer // storedFile, tee'd through storedHash
	storedHash     hash.Hash
	storedDocCount uint32

	infoWritten bool
	closed      bool
}

// NewFileSerializer opens the on-disk streams for seg. Callers must
// eventually call Close exactly once.
func NewFileSerializer(seg directory.Segment) (*FileSerializer, error) {
	postingsFile, err := os.Create(filepath.Join(seg.Dir, postingsFileName))
	if err != nil {
		return nil, fmt.Errorf("segment: create postings stream: %w", err)
	}
	storedFile, err := os.Create(filepath.Join(seg.Dir, storedFileName))
	if err != nil {
		postingsFile.Close()
		return nil, fmt.Errorf("segment: create stored stream: %w", err)
	}

	s := &FileSerializer{seg: seg, postingsFile: postingsFile, storedFile: storedFile}
	s.postingsHash = sha256.New()
	s.postingsWriter = io.MultiWriter(postingsFile, s.postingsHash)
	s.storedHash = sha256.New()
	s.storedWriter = io.MultiWriter(storedFile, s.storedHash)

	builder, err := vellum.New(&s.fstBuf, nil)
	if err != nil {
		postingsFile.Close()
		storedFile.Close()
		return nil, fmt.Errorf("segment: create fst builder: %w", err)
	}
	s.fstBuilder = builder
	return s, nil
}

// Segment returns the identity this serializer is writing to.
func (s *FileSerializer) Segment() directory.Segment { return s.seg }

// WriteTerm implements postings.Serializer: it appends a
// roaring-bitmap-encoded posting block to the postings stream and
// records the term's dictionary entry (term bytes -> block offset) in
// the FST builder, which requires strictly ascending key order — the
// same order PostingsWriter.Serialize already drains terms in.
func (s *FileSerializer) WriteTerm(t term.Term, docs *roaring.Bitmap, positions map[uint32][]uint32) error {
	if s.closed {
		return ErrSerializerClosed
	}

	block, err := encodePostingBlock(docs, positions)
	if err != nil {
		return fmt.Errorf("segment: encode posting block: %w", err)
	}
	offset := s.postingsOffset
	n, err := s.postingsWriter.Write(block)
	if err != nil {
		return fmt.Errorf("segment: write posting block: %w", err)
	}
	s.postingsOffset += uint64(n)

	if err := s.fstBuilder.Insert([]byte(t.Key()), offset); err != nil {
		return fmt.Errorf("segment: fst insert: %w", err)
	}
	return nil
}

// WriteColumn implements fastfield.Serializer: each fast field's
// column is its own file, named by field ordinal.
func (s *FileSerializer) WriteColumn(f schema.Field, values []uint32) error {
	if s.closed {
		return ErrSerializerClosed
	}
	path := filepath.Join(s.seg.Dir, fmt.Sprintf("fastfield_%d.bin", f))
	if err := storage.WriteFileSync(path, fastfield.EncodeColumn(values), storage.FilePerm); err != nil {
		return fmt.Errorf("segment: write fast field column %d: %w", f, err)
	}
	return nil
}

// StoreDoc appends one document's stored fields to the stored-field
// stream, snappy-compressed per document, in strict docID order
// (spec.md §4.5 ordering requirement).
func (s *FileSerializer) StoreDoc(docID uint32, fields []StoredField) error {
	if s.closed {
		return ErrSerializerClosed
	}
	if docID != s.storedDocCount {
		return fmt.Errorf("%w: expected %d, got %d", ErrStoreDocOutOfOrder, s.storedDocCount, docID)
	}

	var raw bytes.Buffer
	appendUvarint(&raw, uint64(len(fields)))
	for _, sf := range fields {
		appendUvarint(&raw, uint64(sf.Field))
		valBytes := []byte(sf.Value)
		appendUvarint(&raw, uint64(len(valBytes)))
		raw.Write(valBytes)
	}

	compressed := snappy.Encode(nil, raw.Bytes())
	var header [4]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(compressed)))
	if _, err := s.storedWriter.Write(header[:]); err != nil {
		return fmt.Errorf("segment: write stored chunk header: %w", err)
	}
	if _, err := s.storedWriter.Write(compressed); err != nil {
		return fmt.Errorf("segment: write stored chunk: %w", err)
	}

	s.storedDocCount++
	return nil
}

// WriteSegmentInfo writes meta.json. Must precede Close.
func (s *FileSerializer) WriteSegmentInfo(info *SegmentInfo) error {
	if s.closed {
		return ErrSerializerClosed
	}
	data, err := marshalSegmentInfo(info)
	if err != nil {
		return err
	}
	if err := storage.WriteFileSync(filepath.Join(s.seg.Dir, metaFileName), data, storage.FilePerm); err != nil {
		return fmt.Errorf("segment: write segment info: %w", err)
	}
	s.infoWritten = true
	return nil
}

// Close flushes the FST dictionary to fst.bin, seals every stream, and
// verifies each finalized file reads back with the checksum of the
// bytes actually handed to it — a write-once-verify-via-checksum step
// matching the teacher's commit-protocol idiom, catching a short write
// or rename corruption before the segment is ever handed to
// directory.Publish. Must be the last operation; WriteSegmentInfo must
// have already run.
func (s *FileSerializer) Close() error {
	if s.closed {
		return ErrSerializerClosed
	}
	if !s.infoWritten {
		return ErrSegmentInfoNotWritten
	}

	if err := s.fstBuilder.Close(); err != nil {
		return fmt.Errorf("segment: close fst builder: %w", err)
	}
	fstPath := filepath.Join(s.seg.Dir, fstFileName)
	fstBytes := s.fstBuf.Bytes()
	if err := storage.WriteFileSync(fstPath, fstBytes, storage.FilePerm); err != nil {
		return fmt.Errorf("segment: write fst: %w", err)
	}
	if err := storage.VerifyFileChecksum(fstPath, storage.ComputeChecksum(fstBytes)); err != nil {
		return fmt.Errorf("segment: verify fst stream: %w", err)
	}

	postingsPath := filepath.Join(s.seg.Dir, postingsFileName)
	postingsSum := storage.FormatChecksum(s.postingsHash.Sum(nil))
	if err := s.postingsFile.Sync(); err != nil {
		return fmt.Errorf("segment: sync postings stream: %w", err)
	}
	if err := s.postingsFile.Close(); err != nil {
		return fmt.Errorf("segment: close postings stream: %w", err)
	}
	if err := storage.VerifyFileChecksum(postingsPath, postingsSum); err != nil {
		return fmt.Errorf("segment: verify postings stream: %w", err)
	}

	storedPath := filepath.Join(s.seg.Dir, storedFileName)
	storedSum := storage.FormatChecksum(s.storedHash.Sum(nil))
	if err := s.storedFile.Sync(); err != nil {
		return fmt.Errorf("segment: sync stored stream: %w", err)
	}
	if err := s.storedFile.Close(); err != nil {
		return fmt.Errorf("segment: close stored stream: %w", err)
	}
	if err := storage.VerifyFileChecksum(storedPath, storedSum); err != nil {
		return fmt.Errorf("segment: verify stored stream: %w", err)
	}

	s.closed = true
	return nil
}

func encodePostingBlock(docs *roaring.Bitmap, positions map[uint32][]uint32) ([]byte, error) {
	bitmapBytes, err := docs.ToBytes()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	appendUvarint(&buf, uint64(len(bitmapBytes)))
	buf.Write(bitmapBytes)

	var posBuf bytes.Buffer
	if positions != nil {
		it := docs.Iterator()
		for it.HasNext() {
			docID := it.Next()
			pos := positions[docID]
			appendUvarint(&posBuf, uint64(docID))
			appendUvarint(&posBuf, uint64(len(pos)))
			for _, p := range pos {
				appendUvarint(&posBuf, uint64(p))
			}
		}
	}
	appendUvarint(&buf, uint64(posBuf.Len()))
	buf.Write(posBuf.Bytes())

	return buf.Bytes(), nil
}

func appendUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}
