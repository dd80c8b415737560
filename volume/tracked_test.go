package volume_test

import (
	"io"
	"testing"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/billy"
	"github.com/jmgilman/busybox/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracked(t *testing.T, kind volume.Kind) *volume.Tracked {
	t.Helper()
	v, err := volume.New(kind, billy.NewMemory())
	require.NoError(t, err)
	return volume.Track(v)
}

func TestTracked_Ledger(t *testing.T) {
	tv := newTracked(t, volume.KindLittleFS)
	require.NoError(t, tv.Mkdir("/logs"))

	w, err := tv.Open("/logs/a.txt", volume.ModeWrite)
	require.NoError(t, err)
	assert.Equal(t, []string{"/logs/a.txt"}, tv.Leaks())
	require.NoError(t, w.Close())

	dir, err := tv.Open("/logs", volume.ModeRead)
	require.NoError(t, err)
	child, err := dir.Next()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", child.Name())
	assert.Equal(t, []string{"/logs", "/logs/a.txt"}, tv.Leaks())

	_, err = dir.Next()
	assert.Equal(t, io.EOF, err)

	require.NoError(t, child.Close())
	require.NoError(t, dir.Close())

	assert.Equal(t, int64(3), tv.Opened())
	assert.Equal(t, int64(3), tv.Closed())
	assert.Empty(t, tv.Leaks())
}

func TestTracked_DoubleCloseCountsOnce(t *testing.T) {
	tv := newTracked(t, volume.KindFATFS)

	h, err := tv.Open("/", volume.ModeRead)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.True(t, errors.HasCode(h.Close(), errors.CodeClosed))

	assert.Equal(t, int64(1), tv.Opened())
	assert.Equal(t, int64(1), tv.Closed())
}

func TestTracked_FailedOpenNotCounted(t *testing.T) {
	tv := newTracked(t, volume.KindSPIFFS)

	_, err := tv.Open("/missing", volume.ModeRead)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	assert.Zero(t, tv.Opened())
	assert.True(t, errors.HasCode(tv.Mkdir("/d"), errors.CodeUnsupported))
}

func TestTracked_AbsoluteChildNames(t *testing.T) {
	tv := newTracked(t, volume.KindSPIFFS)
	w, err := tv.Open("/x.bin", volume.ModeWrite)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	root, err := tv.Open("/", volume.ModeRead)
	require.NoError(t, err)
	defer func() { _ = root.Close() }()
	child, err := root.Next()
	require.NoError(t, err)
	assert.Equal(t, "/x.bin", child.Name())
	assert.Contains(t, tv.Leaks(), "/x.bin")
	require.NoError(t, child.Close())
}
