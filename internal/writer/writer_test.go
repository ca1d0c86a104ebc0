package writer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"indexcore/internal/analysis"
	"indexcore/internal/directory"
	"indexcore/internal/document"
	"indexcore/internal/schema"
)

func newTestWriter(t *testing.T, numThreads int) (*Writer, *schema.Schema, schema.Field) {
	t.Helper()
	s := schema.New()
	body, err := s.AddTextField("body", schema.TextOptions{Indexed: true, Tokenized: true, Stored: true})
	require.NoError(t, err)

	dir, err := directory.Open(t.TempDir())
	require.NoError(t, err)

	w, err := Open(dir, s, analysis.NewStandardTokenizer(), numThreads, nil)
	require.NoError(t, err)
	return w, s, body
}

func TestWriterSingleThreadAllDocsPublished(t *testing.T) {
	w, _, body := newTestWriter(t, 1)

	const n = 1200
	for i := 0; i < n; i++ {
		d := document.New()
		d.AddText(body, fmt.Sprintf("doc number %d", i))
		require.NoError(t, w.AddDocument(d))
	}

	segments := w.Wait()
	var total uint32
	for _, info := range segments {
		require.LessOrEqual(t, info.MaxDoc, uint32(SegmentRoll))
		total += info.MaxDoc
	}
	require.Equal(t, uint32(n), total)
}

func TestWriterMultipleThreadsSumToTotal(t *testing.T) {
	for _, threads := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("threads=%d", threads), func(t *testing.T) {
			w, _, body := newTestWriter(t, threads)

			const n = 1000
			for i := 0; i < n; i++ {
				d := document.New()
				d.AddText(body, "hello")
				require.NoError(t, w.AddDocument(d))
			}

			segments := w.Wait()
			var total uint32
			for _, info := range segments {
				total += info.MaxDoc
			}
			require.Equal(t, uint32(n), total)
		})
	}
}

func TestWriterAddDocumentAfterWaitReturnsClosed(t *testing.T) {
	w, _, body := newTestWriter(t, 1)
	w.Wait()

	d := document.New()
	d.AddText(body, "too late")
	err := w.AddDocument(d)
	require.ErrorIs(t, err, ErrWriterClosed)
}

func TestWriterCommitIsNoop(t *testing.T) {
	w, _, _ := newTestWriter(t, 1)
	defer w.Wait()

	segs, err := w.Commit()
	require.NoError(t, err)
	require.Nil(t, segs)
}

func TestWriterEmptyInputProducesNoSegments(t *testing.T) {
	w, _, _ := newTestWriter(t, 2)
	segments := w.Wait()
	require.Empty(t, segments)
}
