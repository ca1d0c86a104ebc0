// Package writer implements the top-level concurrent ingestion
// coordinator: a bounded submission queue fanning out to a pool of
// worker goroutines, each of which builds and rolls segments.
//
// Grounded directly on original_source/src/core/writer.rs's
// IndexWriter. The Rust original wraps its channel's receive end in a
// Mutex so multiple worker threads can share one mpsc::Receiver; Go's
// channels are natively safe for multiple concurrent receivers, so
// this implementation uses one plain buffered chan *document.Document
// with no wrapper lock at all (the "shared receiver across workers"
// design note this module's expanded spec resolves in favor of the
// native-channel approach).
package writer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"indexcore/internal/analysis"
	"indexcore/internal/directory"
	"indexcore/internal/document"
	"indexcore/internal/schema"
	"indexcore/internal/segment"
)

const (
	// submissionQueueCapacity matches spec.md §4.7's "capacity order of
	// 10,000 document handles".
	submissionQueueCapacity = 10_000
	// SegmentRoll is the number of documents a worker indexes into one
	// segment before finalizing it and starting a fresh one.
	SegmentRoll = 500
)

// ErrWriterClosed is returned by AddDocument once Wait has closed the
// submission queue (spec.md §9 open question: submission after
// shutdown is "unspecified"; this module surfaces it explicitly rather
// than silently dropping the document).
var ErrWriterClosed = errors.New("writer: submission queue closed")

// Writer is the concurrent ingestion coordinator. Construct with Open
// and shut down with Wait; Commit is a documented no-op (DESIGN.md
// Open Question 1).
type Writer struct {
	schema    *schema.Schema
	tokenizer analysis.Tokenizer
	directory *directory.Directory
	logger    *slog.Logger

	docs   chan *document.Document
	wg     sync.WaitGroup
	closed chan struct{}

	mu       sync.Mutex
	segments []*segment.SegmentInfo
}

// Open allocates the submission queue and spawns numThreads workers,
// each running the loop described in spec.md §4.7.
func Open(dir *directory.Directory, sch *schema.Schema, tokenizer analysis.Tokenizer, numThreads int, logger *slog.Logger) (*Writer, error) {
	if numThreads < 1 {
		return nil, fmt.Errorf("writer: open: num_threads must be >= 1, got %d", numThreads)
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Writer{
		schema:    sch,
		tokenizer: tokenizer,
		directory: dir,
		logger:    logger,
		docs:      make(chan *document.Document, submissionQueueCapacity),
		closed:    make(chan struct{}),
	}

	for i := 0; i < numThreads; i++ {
		w.wg.Add(1)
		go w.runWorker(i)
	}
	return w, nil
}

// AddDocument enqueues doc and returns. The send blocks when the queue
// is full, providing the backpressure spec.md §5 describes.
func (w *Writer) AddDocument(doc *document.Document) error {
	select {
	case <-w.closed:
		return ErrWriterClosed
	default:
	}

	select {
	case w.docs <- doc:
		return nil
	case <-w.closed:
		return ErrWriterClosed
	}
}

// Wait closes the input side of the queue, causing every worker to
// drain its remaining documents, finalize its current segment, and
// exit, then joins all workers. After Wait returns, every produced
// segment is finalized and published.
func (w *Writer) Wait() []*segment.SegmentInfo {
	close(w.closed)
	close(w.docs)
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*segment.SegmentInfo(nil), w.segments...)
}

// Commit is a documented no-op stub: spec.md §4.7 leaves its semantics
// (snapshot visible segments, rotate writers, persist a manifest) as
// an open question, and this module does not invent them (see
// DESIGN.md Open Question 1). Published segments already become
// visible via Wait.
func (w *Writer) Commit() ([]*segment.SegmentInfo, error) {
	return nil, nil
}

func (w *Writer) runWorker(id int) {
	defer w.wg.Done()

	for {
		seg, err := w.directory.NewSegment()
		if err != nil {
			w.logger.Error("writer: allocate segment failed", "worker", id, "error", err)
			return
		}
		sw, err := segment.ForSegment(seg, w.schema, w.tokenizer)
		if err != nil {
			w.logger.Error("writer: build segment writer failed", "worker", id, "error", err)
			return
		}

		closed := w.fillSegment(id, sw)

		if sw.Poisoned() {
			w.logger.Error("writer: discarding poisoned segment", "worker", id, "segment", seg.ID)
			if err := w.directory.Discard(seg); err != nil {
				w.logger.Error("writer: discard failed", "worker", id, "segment", seg.ID, "error", err)
			}
		} else if sw.MaxDoc() > 0 || closed {
			info, err := sw.Finalize()
			if err != nil {
				w.logger.Error("writer: finalize failed", "worker", id, "segment", seg.ID, "error", err)
				if discardErr := w.directory.Discard(seg); discardErr != nil {
					w.logger.Error("writer: discard after finalize failure failed", "worker", id, "segment", seg.ID, "error", discardErr)
				}
			} else if info.MaxDoc > 0 {
				if err := w.directory.Publish(seg); err != nil {
					w.logger.Error("writer: publish failed", "worker", id, "segment", seg.ID, "error", err)
				} else {
					w.mu.Lock()
					w.segments = append(w.segments, info)
					w.mu.Unlock()
				}
			} else {
				// empty segment at shutdown: nothing to publish.
				if err := w.directory.Discard(seg); err != nil {
					w.logger.Error("writer: discard empty segment failed", "worker", id, "segment", seg.ID, "error", err)
				}
			}
		}

		if closed {
			return
		}
	}
}

// fillSegment pulls up to SegmentRoll documents from the shared queue
// into sw, returning true if the queue was closed (no more segments
// should be started by this worker after it finalizes this one).
func (w *Writer) fillSegment(id int, sw *segment.Writer) bool {
	for i := 0; i < SegmentRoll; i++ {
		doc, ok := <-w.docs
		if !ok {
			return true
		}
		if err := sw.AddDocument(doc); err != nil {
			w.logger.Error("writer: add_document failed, segment poisoned", "worker", id, "error", err)
			return false
		}
	}
	return false
}
