package minio

import (
	"bytes"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/core"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid with connection fields",
			config: Config{
				Endpoint:  "localhost:9000",
				Bucket:    "flash",
				AccessKey: "access",
				SecretKey: "secret",
			},
		},
		{
			name:   "valid with client",
			config: Config{Client: &minio.Client{}, Bucket: "flash"},
		},
		{
			name:    "missing bucket",
			config:  Config{Client: &minio.Client{}},
			wantErr: true,
			errMsg:  "bucket is required",
		},
		{
			name:    "missing endpoint",
			config:  Config{Bucket: "flash", AccessKey: "a", SecretKey: "s"},
			wantErr: true,
			errMsg:  "endpoint is required",
		},
		{
			name:    "missing access key",
			config:  Config{Endpoint: "localhost:9000", Bucket: "flash", SecretKey: "s"},
			wantErr: true,
			errMsg:  "access key is required",
		},
		{
			name:    "missing secret key",
			config:  Config{Endpoint: "localhost:9000", Bucket: "flash", AccessKey: "a"},
			wantErr: true,
			errMsg:  "secret key is required",
		},
		{
			name:    "negative capacity",
			config:  Config{Client: &minio.Client{}, Bucket: "flash", Capacity: -1},
			wantErr: true,
			errMsg:  "capacity must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("invalid config returns error", func(t *testing.T) {
		s, err := New(Config{Endpoint: "localhost:9000"})
		require.Error(t, err)
		assert.Nil(t, s)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := New(Config{Client: &minio.Client{}, Bucket: "flash"})
		require.NoError(t, err)
		assert.Equal(t, "flash", s.bucket)
		assert.Equal(t, "", s.prefix)
		assert.Equal(t, defaultMultipartThreshold, s.multipartThreshold)
		assert.Equal(t, defaultRenameConcurrency, s.renameConcurrency)
		assert.Equal(t, defaultCapacity, s.capacity)
		assert.Equal(t, core.FSTypeRemote, s.Type())
	})

	t.Run("explicit settings", func(t *testing.T) {
		s, err := New(Config{
			Client:               &minio.Client{},
			Bucket:               "flash",
			Prefix:               "/devices/esp32/",
			MultipartThreshold:   1024,
			MaxRenameConcurrency: 2,
			Capacity:             4096,
		})
		require.NoError(t, err)
		assert.Equal(t, "devices/esp32", s.prefix)
		assert.Equal(t, int64(1024), s.multipartThreshold)
		assert.Equal(t, 2, s.renameConcurrency)
		assert.Equal(t, int64(4096), s.capacity)
	})
}

func TestKey(t *testing.T) {
	s := &Store{prefix: "devices/esp32"}
	assert.Equal(t, "devices/esp32", s.key("."))
	assert.Equal(t, "devices/esp32", s.key("/"))
	assert.Equal(t, "devices/esp32/logs/a.txt", s.key("/logs/a.txt"))

	root := &Store{}
	assert.Equal(t, "", root.key("/"))
	assert.Equal(t, "a.txt", root.key("a.txt"))
}

func TestOpenFileUnsupportedFlags(t *testing.T) {
	s := &Store{client: &minio.Client{}, bucket: "flash"}

	tests := []struct {
		name   string
		flag   int
		errMsg string
	}{
		{"O_RDWR", os.O_RDWR, "O_RDWR not supported"},
		{"O_RDWR|O_CREATE", os.O_RDWR | os.O_CREATE, "O_RDWR not supported"},
		{"O_EXCL", os.O_WRONLY | os.O_CREATE | os.O_EXCL, "O_EXCL not supported"},
		{"O_SYNC", os.O_WRONLY | os.O_SYNC, "O_SYNC not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := s.OpenFile("file.txt", tt.flag, 0644)
			require.Error(t, err)
			assert.Nil(t, f)
			assert.ErrorIs(t, err, core.ErrUnsupported)
			assert.Contains(t, err.Error(), tt.errMsg)

			var pathErr *fs.PathError
			require.ErrorAs(t, err, &pathErr)
			assert.Equal(t, "file.txt", pathErr.Path)
		})
	}
}

func TestWriterBuffersBelowThreshold(t *testing.T) {
	s := &Store{multipartThreshold: 16}
	w := &writer{store: s, name: "a", key: "a", buf: new(bytes.Buffer)}

	n, err := w.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Nil(t, w.pipeW)
	assert.Equal(t, "0123456789", w.buf.String())

	info, err := w.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size())
	assert.False(t, info.IsDir())

	_, err = w.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestWriterRejectsWriteAfterClose(t *testing.T) {
	w := &writer{store: &Store{multipartThreshold: 16}, name: "a", buf: new(bytes.Buffer), closed: true}
	_, err := w.Write([]byte("x"))
	assert.ErrorIs(t, err, fs.ErrClosed)
	assert.NoError(t, w.Close())
}

func TestFileInfo(t *testing.T) {
	dir := newFileInfo("logs", 0, time.Time{}, true)
	assert.True(t, dir.IsDir())
	assert.Equal(t, fs.ModeDir|0755, dir.Mode())

	file := newDirEntry("a.txt", false, 12, time.Time{})
	assert.False(t, file.IsDir())
	assert.Equal(t, fs.FileMode(0), file.Type())
	info, err := file.Info()
	require.NoError(t, err)
	assert.Equal(t, int64(12), info.Size())
	assert.Equal(t, "a.txt", info.Name())
}
