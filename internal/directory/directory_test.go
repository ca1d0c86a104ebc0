package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSegmentCreatesStagingDir(t *testing.T) {
	d, err := Open(t.TempDir())
	require.NoError(t, err)

	seg, err := d.NewSegment()
	require.NoError(t, err)
	require.NotEmpty(t, seg.ID)

	info, err := os.Stat(seg.Dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestNewSegmentAllocatesDistinctIDs(t *testing.T) {
	d, err := Open(t.TempDir())
	require.NoError(t, err)

	a, err := d.NewSegment()
	require.NoError(t, err)
	b, err := d.NewSegment()
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
}

func TestPublishMovesSegmentOutOfStaging(t *testing.T) {
	root := t.TempDir()
	d, err := Open(root)
	require.NoError(t, err)

	seg, err := d.NewSegment()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(seg.Dir, "meta.json"), []byte("{}"), 0644))

	require.NoError(t, d.Publish(seg))

	_, err = os.Stat(seg.Dir)
	require.True(t, os.IsNotExist(err))

	published := filepath.Join(root, "segments", seg.ID, "meta.json")
	data, err := os.ReadFile(published)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestDiscardRemovesStagingDir(t *testing.T) {
	d, err := Open(t.TempDir())
	require.NoError(t, err)

	seg, err := d.NewSegment()
	require.NoError(t, err)
	require.NoError(t, d.Discard(seg))

	_, err = os.Stat(seg.Dir)
	require.True(t, os.IsNotExist(err))
}

func TestListSegmentsReturnsOnlyPublished(t *testing.T) {
	root := t.TempDir()
	d, err := Open(root)
	require.NoError(t, err)

	published, err := d.NewSegment()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(published.Dir, "meta.json"), []byte("{}"), 0644))
	require.NoError(t, d.Publish(published))

	_, err = d.NewSegment() // left staged, never published
	require.NoError(t, err)

	ids, err := d.ListSegments()
	require.NoError(t, err)
	require.Equal(t, []string{published.ID}, ids)
	require.Equal(t, filepath.Join(root, "segments", published.ID), d.SegmentDir(published.ID))
}

func TestResetStagingRemovesOrphans(t *testing.T) {
	d, err := Open(t.TempDir())
	require.NoError(t, err)

	orphan, err := d.NewSegment()
	require.NoError(t, err)

	removed, err := d.ResetStaging()
	require.NoError(t, err)
	require.Equal(t, []string{orphan.Dir}, removed)

	_, err = os.Stat(orphan.Dir)
	require.True(t, os.IsNotExist(err))
}
