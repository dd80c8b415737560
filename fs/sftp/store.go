// Package sftp provides an SFTP-backed store implementing core.FS.
//
// The store wraps an existing *sftp.Client; Dial builds one over SSH from a
// Config. Names are resolved under the configured remote root.
package sftp

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"syscall"

	"github.com/jmgilman/busybox/fs/core"
	"github.com/pkg/sftp"
)

// Store implements core.FS over an SFTP session.
type Store struct {
	client   *sftp.Client
	conn     io.Closer
	root     string
	capacity int64
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity reports a fixed total size and the sum of file sizes instead
// of the server's statvfs figures.
func WithCapacity(bytes int64) Option {
	return func(s *Store) {
		s.capacity = bytes
	}
}

// New wraps an SFTP client. The caller keeps ownership of the client unless
// the store was created by Dial.
func New(client *sftp.Client, root string, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("sftp client is nil")
	}
	if root == "" {
		root = "/"
	}
	s := &Store{client: client, root: path.Clean("/" + root)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close ends the SFTP session and, for dialed stores, the SSH connection.
func (s *Store) Close() error {
	err := s.client.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// remote maps a store name to the remote path. Names cannot escape root.
func (s *Store) remote(name string) string {
	return path.Join(s.root, path.Clean("/"+name))
}

// clean returns the store-relative form of name, "." for the root.
func clean(name string) string {
	name = path.Clean("/" + name)
	if name == "/" {
		return "."
	}
	return name[1:]
}

// file adapts *sftp.File to core.File, reporting the store name.
type file struct {
	*sftp.File
	name string
}

func (f *file) Name() string { return f.name }

// Open opens the named file for reading.
func (s *Store) Open(name string) (fs.File, error) {
	f, err := s.open(name, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) open(name string, flag int) (*file, error) {
	name = clean(name)
	f, err := s.client.OpenFile(s.remote(name), flag)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &file{File: f, name: name}, nil
}

// Stat returns file metadata.
func (s *Store) Stat(name string) (fs.FileInfo, error) {
	info, err := s.client.Stat(s.remote(name))
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: clean(name), Err: err}
	}
	return info, nil
}

// ReadDir reads the named directory and returns its entries sorted by name.
func (s *Store) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := s.client.ReadDir(s.remote(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: clean(name), Err: err}
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		if n := info.Name(); n == "." || n == ".." {
			continue
		}
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (s *Store) ReadFile(name string) ([]byte, error) {
	f, err := s.open(name, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named file or directory exists.
func (s *Store) Exists(name string) (bool, error) {
	_, err := s.client.Stat(s.remote(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (s *Store) Create(name string) (core.File, error) {
	return s.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0)
}

// OpenFile opens a file with the specified flags. Permissions are left to
// the server's umask. Appends position the handle at the current end of
// file, since servers differ in honouring the append flag.
func (s *Store) OpenFile(name string, flag int, _ fs.FileMode) (core.File, error) {
	f, err := s.open(name, flag)
	if err != nil {
		return nil, err
	}
	if flag&os.O_APPEND != 0 {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			_ = f.Close()
			return nil, &fs.PathError{Op: "open", Path: f.name, Err: err}
		}
	}
	return f, nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (s *Store) WriteFile(name string, data []byte, _ fs.FileMode) error {
	f, err := s.open(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return &fs.PathError{Op: "write", Path: f.name, Err: err}
	}
	return f.Close()
}

// Mkdir creates a directory. SFTP reports a generic failure for an existing
// target, so existence is checked first.
func (s *Store) Mkdir(name string, _ fs.FileMode) error {
	if ok, err := s.Exists(name); err != nil {
		return err
	} else if ok {
		return &fs.PathError{Op: "mkdir", Path: clean(name), Err: fs.ErrExist}
	}
	if err := s.client.Mkdir(s.remote(name)); err != nil {
		return &fs.PathError{Op: "mkdir", Path: clean(name), Err: err}
	}
	return nil
}

// MkdirAll creates a directory along with any necessary parents.
func (s *Store) MkdirAll(name string, _ fs.FileMode) error {
	if clean(name) == "." {
		return nil
	}
	return s.client.MkdirAll(s.remote(name))
}

// Remove removes the named file or empty directory.
func (s *Store) Remove(name string) error {
	info, err := s.Stat(name)
	if err != nil {
		return err
	}
	p := s.remote(name)
	if !info.IsDir() {
		err = s.client.Remove(p)
	} else {
		var children []os.FileInfo
		children, err = s.client.ReadDir(p)
		if err == nil && len(children) > 0 {
			err = syscall.ENOTEMPTY
		}
		if err == nil {
			err = s.client.RemoveDirectory(p)
		}
	}
	if err != nil {
		return &fs.PathError{Op: "remove", Path: clean(name), Err: err}
	}
	return nil
}

// RemoveAll removes path and any children it contains.
func (s *Store) RemoveAll(name string) error {
	name = clean(name)
	info, err := s.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		entries, err := s.ReadDir(name)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := s.RemoveAll(path.Join(name, e.Name())); err != nil {
				return err
			}
		}
		if name == "." {
			return nil
		}
	}
	return s.Remove(name)
}

// Rename renames (moves) oldpath to newpath.
func (s *Store) Rename(oldpath, newpath string) error {
	if err := s.client.Rename(s.remote(oldpath), s.remote(newpath)); err != nil {
		return &os.LinkError{Op: "rename", Old: clean(oldpath), New: clean(newpath), Err: err}
	}
	return nil
}

// Walk walks the tree rooted at root in lexical order.
func (s *Store) Walk(root string, walkFn fs.WalkDirFunc) error {
	return core.WalkDir(s, clean(root), walkFn)
}

// Type returns FSTypeRemote.
func (s *Store) Type() core.FSType {
	return core.FSTypeRemote
}

// Space reports the server's statvfs figures for the root, or the
// configured capacity and the sum of file sizes.
func (s *Store) Space() (total, used int64, err error) {
	if s.capacity == 0 {
		st, err := s.client.StatVFS(s.root)
		if err != nil {
			return 0, 0, &fs.PathError{Op: "statvfs", Path: s.root, Err: err}
		}
		total = int64(st.TotalSpace())
		return total, total - int64(st.FreeSpace()), nil
	}

	err = s.Walk(".", func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
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
	return s.capacity, used, nil
}

// Compile-time interface checks.
var (
	_ core.FS      = (*Store)(nil)
	_ core.SpaceFS = (*Store)(nil)
	_ core.File    = (*file)(nil)
)
