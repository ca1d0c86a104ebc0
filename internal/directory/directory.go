// Package directory is the minimal external collaborator the writer
// needs: something that can hand out a fresh segment identity and
// later publish or discard it, plus listing of published segments and
// clean-up of the staging area for the CLI. It deliberately does not
// implement manifests or generations — those belong to a layer above
// the indexing core.
//
// Grounded on the teacher's internal/index directory/generation/
// manifest trio, trimmed to the operations the writer actually calls
// (NewSegment, Publish, Discard), with segment identity switched from the teacher's
// crypto/rand+hex scheme to github.com/google/uuid (the identity
// scheme used elsewhere in the retrieved corpus).
package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"indexcore/internal/storage"
)

// Segment identifies one on-disk unit. Dir is the filesystem path a
// SegmentSerializer should write into; it moves from the tmp area to
// the published area when Publish succeeds.
type Segment struct {
	ID  string
	Dir string
}

// Directory allocates segment identities under root and moves them
// between the tmp/ staging area and the segments/ published area.
// Safe for concurrent use by multiple writer workers.
type Directory struct {
	root string
	mu   sync.Mutex
}

// Open prepares the on-disk layout under root (segments/ and tmp/) and
// returns a Directory over it.
func Open(root string) (*Directory, error) {
	d := &Directory{root: root}
	for _, sub := range []string{d.segmentsDir(), d.tmpDir()} {
		if err := storage.EnsureDir(sub); err != nil {
			return nil, fmt.Errorf("directory: ensure %s: %w", sub, err)
		}
	}
	return d, nil
}

func (d *Directory) segmentsDir() string { return filepath.Join(d.root, "segments") }
func (d *Directory) tmpDir() string      { return filepath.Join(d.root, "tmp") }

// NewSegment allocates a fresh segment identity and creates its
// staging directory under tmp/. Thread-safe, matching spec.md §5's
// requirement that segment allocation be safe across concurrent
// workers.
func (d *Directory) NewSegment() (Segment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := uuid.NewString()
	dir := filepath.Join(d.tmpDir(), id)
	if err := storage.EnsureDir(dir); err != nil {
		return Segment{}, fmt.Errorf("directory: new segment %s: %w", id, err)
	}
	return Segment{ID: id, Dir: dir}, nil
}

// Publish moves a finalized segment from tmp/ into the published
// segments/ area. Must be called at most once per segment, after its
// SegmentSerializer has closed successfully.
func (d *Directory) Publish(seg Segment) error {
	final := filepath.Join(d.segmentsDir(), seg.ID)
	if err := os.Rename(seg.Dir, final); err != nil {
		return fmt.Errorf("directory: publish %s: %w", seg.ID, err)
	}
	if err := storage.FsyncDir(d.segmentsDir()); err != nil {
		return fmt.Errorf("directory: fsync segments dir after publishing %s: %w", seg.ID, err)
	}
	return nil
}

// Discard removes a segment's staging directory. Called when a
// SegmentWriter is poisoned by a mid-flush I/O failure (spec.md §9
// open question: partial segments are deleted, never published).
func (d *Directory) Discard(seg Segment) error {
	if err := os.RemoveAll(seg.Dir); err != nil {
		return fmt.Errorf("directory: discard %s: %w", seg.ID, err)
	}
	return nil
}

// ListSegments returns the IDs of every published segment.
func (d *Directory) ListSegments() ([]string, error) {
	ids, err := storage.ListSubdirs(d.segmentsDir())
	if err != nil {
		return nil, fmt.Errorf("directory: list segments: %w", err)
	}
	return ids, nil
}

// SegmentDir returns the published path for a segment ID.
func (d *Directory) SegmentDir(id string) string {
	return filepath.Join(d.segmentsDir(), id)
}

// ResetStaging removes every leftover entry in tmp/, discarding
// segment directories orphaned by a prior process that crashed between
// NewSegment and Publish/Discard. Returns the removed paths for audit
// logging, matching the teacher's RemoveDirContents convention.
func (d *Directory) ResetStaging() ([]string, error) {
	removed, err := storage.RemoveDirContents(d.tmpDir())
	if err != nil {
		return removed, fmt.Errorf("directory: reset staging: %w", err)
	}
	return removed, nil
}
