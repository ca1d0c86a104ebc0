package segment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"indexcore/internal/analysis"
	"indexcore/internal/directory"
	"indexcore/internal/document"
	"indexcore/internal/schema"
)

func newTestSegment(t *testing.T) directory.Segment {
	t.Helper()
	dir := t.TempDir()
	segDir := filepath.Join(dir, "seg")
	require.NoError(t, os.MkdirAll(segDir, 0755))
	return directory.Segment{ID: "test-segment", Dir: segDir}
}

func TestSegmentWriterAddDocumentAndFinalize(t *testing.T) {
	s := schema.New()
	title, err := s.AddTextField("title", schema.TextOptions{Indexed: true, Tokenized: true, Stored: true})
	require.NoError(t, err)
	rank, err := s.AddU32Field("rank", schema.U32Options{Indexed: true, Fast: true})
	require.NoError(t, err)

	w, err := ForSegment(newTestSegment(t), s, analysis.NewStandardTokenizer())
	require.NoError(t, err)

	d1 := document.New()
	d1.AddText(title, "hello world")
	d1.AddU32(rank, 7)
	require.NoError(t, w.AddDocument(d1))

	d2 := document.New()
	d2.AddText(title, "hello again")
	d2.AddU32(rank, 3)
	require.NoError(t, w.AddDocument(d2))

	require.Equal(t, uint32(2), w.MaxDoc())

	info, err := w.Finalize()
	require.NoError(t, err)
	require.Equal(t, uint32(2), info.MaxDoc)
	require.False(t, w.Poisoned())

	for _, name := range []string{postingsFileName, fstFileName, storedFileName, metaFileName} {
		_, err := os.Stat(filepath.Join(w.Segment().Dir, name))
		require.NoError(t, err, "expected %s to exist", name)
	}
	_, err = os.Stat(filepath.Join(w.Segment().Dir, "fastfield_1.bin"))
	require.NoError(t, err)
}

func TestSegmentWriterRejectsOperationsAfterFinalize(t *testing.T) {
	s := schema.New()
	_, err := s.AddTextField("body", schema.TextOptions{Indexed: true, Tokenized: true})
	require.NoError(t, err)

	w, err := ForSegment(newTestSegment(t), s, analysis.NewStandardTokenizer())
	require.NoError(t, err)

	_, err = w.Finalize()
	require.NoError(t, err)

	err = w.AddDocument(document.New())
	require.ErrorIs(t, err, ErrSegmentFinalized)

	_, err = w.Finalize()
	require.ErrorIs(t, err, ErrSegmentFinalized)
}

func TestSegmentWriterEmptySegmentFinalizesCleanly(t *testing.T) {
	s := schema.New()
	w, err := ForSegment(newTestSegment(t), s, analysis.NewStandardTokenizer())
	require.NoError(t, err)

	info, err := w.Finalize()
	require.NoError(t, err)
	require.Equal(t, uint32(0), info.MaxDoc)
}

func TestSegmentInfoChecksumRoundTrip(t *testing.T) {
	info := &SegmentInfo{SegmentID: "abc", MaxDoc: 42}
	data, err := marshalSegmentInfo(info)
	require.NoError(t, err)

	var got SegmentInfo
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "abc", got.SegmentID)
	require.Equal(t, uint32(42), got.MaxDoc)
	require.NotEmpty(t, got.Checksum)
}
