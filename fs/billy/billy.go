package billy

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/busybox/fs/core"
)

// DefaultMemoryCapacity is the capacity reported by memory stores created
// without WithCapacity. It mirrors a small on-board flash partition.
const DefaultMemoryCapacity int64 = 1 << 20

// FS adapts a billy.Filesystem to core.FS. The same adapter serves the
// in-memory and the local-disk store; only the Type and the way space is
// measured differ.
type FS struct {
	bfs      billy.Filesystem
	fsType   core.FSType
	root     string
	capacity int64
}

// Option configures store creation.
type Option func(*FS)

// WithCapacity fixes the total size reported by Space. For local stores it
// replaces the disk statistics with a quota; used bytes are then the sum of
// file sizes under the root.
func WithCapacity(bytes int64) Option {
	return func(f *FS) {
		f.capacity = bytes
	}
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *FS {
	f := &FS{
		bfs:      memfs.New(),
		fsType:   core.FSTypeMemory,
		capacity: DefaultMemoryCapacity,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewLocal creates a store rooted at the given directory on disk.
// All names are resolved relative to root.
func NewLocal(root string, opts ...Option) *FS {
	f := &FS{
		bfs:    osfs.New(root),
		fsType: core.FSTypeLocal,
		root:   root,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// normalize converts names to slash-separated clean paths relative to the
// store root.
func normalize(name string) string {
	name = filepath.ToSlash(filepath.Clean(name))
	if name == "/" || name == "" {
		return "."
	}
	return name
}

// dirEntry wraps fs.FileInfo to implement fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// Open opens the named file for reading.
func (f *FS) Open(name string) (fs.File, error) {
	name = normalize(name)
	bf, err := f.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{file: bf, fs: f.bfs, name: name}, nil
}

// Stat returns file metadata for the named file.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	return f.bfs.Stat(normalize(name))
}

// ReadDir reads the named directory and returns its entries sorted by name.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	// billy returns []fs.FileInfo
	infos, err := f.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (f *FS) ReadFile(name string) ([]byte, error) {
	bf, err := f.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = bf.Close() }()
	return io.ReadAll(bf)
}

// Exists reports whether the named file or directory exists.
func (f *FS) Exists(name string) (bool, error) {
	_, err := f.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (f *FS) Create(name string) (core.File, error) {
	name = normalize(name)
	bf, err := f.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return &File{file: bf, fs: f.bfs, name: name}, nil
}

// OpenFile opens a file with the specified flags and permissions.
func (f *FS) OpenFile(name string, flag int, perm fs.FileMode) (core.File, error) {
	name = normalize(name)
	bf, err := f.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &File{file: bf, fs: f.bfs, name: name}, nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (f *FS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	bf, err := f.bfs.OpenFile(normalize(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := bf.Write(data); err != nil {
		_ = bf.Close()
		return err
	}
	return bf.Close()
}

// Mkdir creates a new directory. Unlike MkdirAll, it fails if the directory
// already exists or its parent does not.
func (f *FS) Mkdir(name string, perm fs.FileMode) error {
	name = normalize(name)
	if _, err := f.bfs.Stat(name); err == nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if parent := path.Dir(name); parent != "." {
		info, err := f.bfs.Stat(parent)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrInvalid}
		}
	}
	// parent verified, so MkdirAll creates exactly one level
	return f.bfs.MkdirAll(name, perm)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (f *FS) MkdirAll(name string, perm fs.FileMode) error {
	return f.bfs.MkdirAll(normalize(name), perm)
}

// Remove removes the named file or empty directory.
func (f *FS) Remove(name string) error {
	return f.bfs.Remove(normalize(name))
}

// RemoveAll removes path and any children it contains.
func (f *FS) RemoveAll(name string) error {
	name = normalize(name)
	// billy has no RemoveAll
	info, err := f.bfs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		return f.bfs.Remove(name)
	}

	entries, err := f.bfs.ReadDir(name)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := f.RemoveAll(path.Join(name, entry.Name())); err != nil {
			return err
		}
	}

	if name == "." {
		return nil
	}
	return f.bfs.Remove(name)
}

// Rename renames (moves) oldpath to newpath.
func (f *FS) Rename(oldpath, newpath string) error {
	return f.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// Walk walks the tree rooted at root, calling walkFn for each file or
// directory in the tree, including root.
func (f *FS) Walk(root string, walkFn fs.WalkDirFunc) error {
	return core.WalkDir(f, normalize(root), walkFn)
}

// Type returns FSTypeMemory or FSTypeLocal.
func (f *FS) Type() core.FSType {
	return f.fsType
}

// Space reports the store's capacity and usage. Memory stores and local
// stores with a quota report the configured capacity and the sum of file
// sizes; local stores without a quota report the backing disk.
func (f *FS) Space() (total, used int64, err error) {
	if f.fsType == core.FSTypeLocal && f.capacity == 0 {
		return diskSpace(f.root)
	}

	err = f.Walk(".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		used += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return f.capacity, used, nil
}

// Compile-time interface checks.
var (
	_ core.FS      = (*FS)(nil)
	_ core.SpaceFS = (*FS)(nil)
)
