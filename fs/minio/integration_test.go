package minio

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/google/uuid"
	"github.com/jmgilman/busybox/volume"
	"github.com/jmgilman/busybox/volume/volumetest"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestMinIO starts a MinIO container and returns a store over a fresh
// bucket. The container is terminated when the test ends.
func setupTestMinIO(t *testing.T, cfg Config) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start MinIO container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)
	require.NoError(t, client.MakeBucket(ctx, "flash", minio.MakeBucketOptions{}))

	cfg.Client = client
	cfg.Bucket = "flash"
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestIntegration_Store(t *testing.T) {
	s := setupTestMinIO(t, Config{Prefix: "device", Capacity: 1 << 20, MultipartThreshold: 64})

	t.Run("write and read back", func(t *testing.T) {
		require.NoError(t, s.WriteFile("/boot.txt", []byte("hello"), 0644))
		data, err := s.ReadFile("boot.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))

		info, err := s.Stat("boot.txt")
		require.NoError(t, err)
		assert.False(t, info.IsDir())
		assert.Equal(t, int64(5), info.Size())
	})

	t.Run("streaming upload past threshold", func(t *testing.T) {
		payload := bytes.Repeat([]byte("0123456789abcdef"), 32)
		f, err := s.Create("big.bin")
		require.NoError(t, err)
		for i := 0; i < len(payload); i += 48 {
			end := min(i+48, len(payload))
			_, err := f.Write(payload[i:end])
			require.NoError(t, err)
		}
		require.NoError(t, f.Close())

		r, err := s.Open("big.bin")
		require.NoError(t, err)
		defer func() { _ = r.Close() }()
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("append rewrites object", func(t *testing.T) {
		require.NoError(t, s.WriteFile("log.txt", []byte("one\n"), 0644))
		f, err := s.OpenFile("log.txt", os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		require.NoError(t, err)
		_, err = f.Write([]byte("two\n"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := s.ReadFile("log.txt")
		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\n", string(data))
	})

	t.Run("open without create on missing object", func(t *testing.T) {
		_, err := s.OpenFile("missing.txt", os.O_WRONLY, 0644)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directories", func(t *testing.T) {
		require.NoError(t, s.Mkdir("empty", 0755))
		assert.ErrorIs(t, s.Mkdir("empty", 0755), fs.ErrExist)
		assert.ErrorIs(t, s.Mkdir("nope/child", 0755), fs.ErrNotExist)

		info, err := s.Stat("empty")
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := s.ReadDir("empty")
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.NoError(t, s.MkdirAll("tree/sub", 0755))
		require.NoError(t, s.WriteFile("tree/sub/leaf.txt", []byte("x"), 0644))
		assert.ErrorIs(t, s.Remove("tree/sub"), syscall.ENOTEMPTY)

		_, err = s.ReadDir("boot.txt")
		assert.ErrorIs(t, err, syscall.ENOTDIR)

		_, err = s.Open("tree")
		assert.ErrorIs(t, err, syscall.EISDIR)

		require.NoError(t, s.Remove("empty"))
		ok, err := s.Exists("empty")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rename directory", func(t *testing.T) {
		require.NoError(t, s.Rename("tree", "moved"))
		data, err := s.ReadFile("moved/sub/leaf.txt")
		require.NoError(t, err)
		assert.Equal(t, "x", string(data))

		ok, err := s.Exists("tree")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("walk", func(t *testing.T) {
		var files []string
		err := s.Walk(".", func(p string, d fs.DirEntry, err error) error {
			require.NoError(t, err)
			if !d.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"big.bin", "boot.txt", "log.txt", "moved/sub/leaf.txt"}, files)
	})

	t.Run("space", func(t *testing.T) {
		total, used, err := s.Space()
		require.NoError(t, err)
		assert.Equal(t, int64(1<<20), total)
		assert.Equal(t, int64(5+512+8+1), used)
	})

	t.Run("remove all empties the store", func(t *testing.T) {
		require.NoError(t, s.RemoveAll("."))
		entries, err := s.ReadDir(".")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

// TestIntegration_VolumeConformance runs the volume suite for every kind
// over one container, giving each volume its own key prefix.
func TestIntegration_VolumeConformance(t *testing.T) {
	base := setupTestMinIO(t, Config{Prefix: "base"})

	for _, kind := range volume.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			volumetest.TestSuite(t, func(t *testing.T) volume.Volume {
				s, err := New(Config{
					Client:   base.client,
					Bucket:   base.bucket,
					Prefix:   uuid.NewString(),
					Capacity: 1 << 20,
				})
				require.NoError(t, err)

				v, err := volume.New(kind, s)
				require.NoError(t, err)
				return v
			})
		})
	}
}
