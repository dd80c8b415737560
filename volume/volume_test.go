package volume_test

import (
	"net"
	"testing"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/billy"
	"github.com/jmgilman/busybox/fs/core"
	fssftp "github.com/jmgilman/busybox/fs/sftp"
	"github.com/jmgilman/busybox/volume"
	"github.com/jmgilman/busybox/volume/volumetest"
	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func factory(kind volume.Kind, newStore func(t *testing.T) core.FS) volumetest.Factory {
	return func(t *testing.T) volume.Volume {
		v, err := volume.New(kind, newStore(t))
		require.NoError(t, err)
		return v
	}
}

func memoryStore(*testing.T) core.FS {
	return billy.NewMemory()
}

func localStore(t *testing.T) core.FS {
	return billy.NewLocal(t.TempDir())
}

// sftpStore serves an in-memory SFTP tree over a pipe.
func sftpStore(t *testing.T) core.FS {
	serverConn, clientConn := net.Pipe()
	server := sftp.NewRequestServer(serverConn, sftp.InMemHandler())
	go func() { _ = server.Serve() }()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	require.NoError(t, err)

	s, err := fssftp.New(client, "/", fssftp.WithCapacity(1<<20))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
		_ = server.Close()
	})
	return s
}

func TestConformance(t *testing.T) {
	stores := []struct {
		name     string
		newStore func(t *testing.T) core.FS
	}{
		{"memory", memoryStore},
		{"local", localStore},
		{"sftp", sftpStore},
	}

	for _, kind := range volume.Kinds {
		for _, s := range stores {
			t.Run(string(kind)+"/"+s.name, func(t *testing.T) {
				volumetest.TestSuite(t, factory(kind, s.newStore))
			})
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    volume.Kind
		wantErr bool
	}{
		{"littlefs", volume.KindLittleFS, false},
		{"FATFS", volume.KindFATFS, false},
		{" spiffs ", volume.KindSPIFFS, false},
		{"ext4", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := volume.ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindCapabilities(t *testing.T) {
	assert.Equal(t, volume.Capabilities{Directories: true, SpaceInfo: true}, volume.KindLittleFS.Capabilities())
	assert.Equal(t, volume.Capabilities{Directories: true, AbsoluteChildNames: true}, volume.KindFATFS.Capabilities())
	assert.Equal(t, volume.Capabilities{AbsoluteChildNames: true, SpaceInfo: true}, volume.KindSPIFFS.Capabilities())
	assert.Equal(t, volume.Capabilities{}, volume.Kind("bogus").Capabilities())
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"":            "/",
		"/":           "/",
		"a":           "/a",
		"/a/":         "/a",
		"//a//b":      "/a/b",
		"/a/../b":     "/b",
		"../../../..": "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, volume.Clean(in), "Clean(%q)", in)
	}
}

func TestNew(t *testing.T) {
	_, err := volume.New("ntfs", billy.NewMemory())
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = volume.New(volume.KindLittleFS, nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	v, err := volume.New(volume.KindSPIFFS, billy.NewMemory())
	require.NoError(t, err)
	assert.Equal(t, volume.KindSPIFFS, v.Kind())
	assert.False(t, v.Capabilities().Directories)
}

func TestSpace_Free(t *testing.T) {
	assert.Equal(t, int64(60), volume.Space{Total: 100, Used: 40}.Free())
	assert.Equal(t, int64(0), volume.Space{Total: 100, Used: 140}.Free())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "read", volume.ModeRead.String())
	assert.Equal(t, "write", volume.ModeWrite.String())
	assert.Equal(t, "append", volume.ModeAppend.String())
	assert.Equal(t, "unknown", volume.Mode(9).String())
}

func TestFlat_NestedNamesArePruned(t *testing.T) {
	store := billy.NewMemory()
	v, err := volume.New(volume.KindSPIFFS, store)
	require.NoError(t, err)

	h, err := v.Open("/cfg/wifi/ssid", volume.ModeWrite)
	require.NoError(t, err)
	_, err = h.Write([]byte("lab"))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	assert.Equal(t, "/cfg/wifi/ssid", h.Name())

	require.NoError(t, v.Rename("/cfg/wifi/ssid", "/ssid"))
	ok, err := store.Exists("cfg")
	require.NoError(t, err)
	assert.False(t, ok, "empty store directories should be pruned")
	assert.True(t, v.Exists("/ssid"))
}
