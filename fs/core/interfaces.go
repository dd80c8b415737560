package core

import (
	"io"
	"io/fs"
)

// FSType represents the underlying type of store implementation.
type FSType int

const (
	// FSTypeUnknown indicates the store type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a local, disk-backed store.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory store.
	FSTypeMemory
	// FSTypeRemote indicates a remote store (S3, SFTP).
	FSTypeRemote
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// FS is the storage primitive set a volume is built on.
// FS embeds fs.FS for stdlib compatibility.
//
// Names are slash-separated and relative to the store root ("." is the root).
// Stores differ in what a directory is: hierarchical stores keep real
// directories, object stores only have key prefixes. Volumes decide how to
// present those differences; stores only report them.
type FS interface {
	fs.FS
	ReadFS
	WriteFS
	ManageFS
	WalkFS

	// Type returns the underlying store type.
	Type() FSType
}

// ReadFS defines read-only store operations.
type ReadFS interface {
	// Open opens the named file for reading.
	// The returned file must be closed when no longer needed.
	Open(name string) (fs.File, error)

	// Stat returns file metadata.
	// If there is an error, it will be of type *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir reads the named directory and returns its entries sorted by filename.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file or directory exists.
	// A false result with a non-nil error means existence could not be determined.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
//
// Not all stores support all OpenFile flags; unsupported combinations
// return an error wrapping ErrUnsupported.
type WriteFS interface {
	// Create creates or truncates the named file for writing.
	Create(name string) (File, error)

	// OpenFile opens a file with the specified flags and permissions.
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Mkdir creates a new directory. It fails if the directory exists
	// or the parent is missing.
	Mkdir(name string, perm fs.FileMode) error

	// MkdirAll creates a directory named path, along with any necessary parents.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines file and directory management operations.
type ManageFS interface {
	// Remove removes the named file or empty directory.
	Remove(name string) error

	// RemoveAll removes path and any children it contains.
	// If the path does not exist, RemoveAll returns nil.
	RemoveAll(path string) error

	// Rename renames (moves) oldpath to newpath.
	//
	// Object stores implement rename as copy+delete and are not atomic.
	Rename(oldpath, newpath string) error
}

// WalkFS defines directory tree traversal operations.
type WalkFS interface {
	// Walk walks the tree rooted at root in lexical order, calling walkFn for
	// each file or directory, including root.
	Walk(root string, walkFn fs.WalkDirFunc) error
}

// File represents an open file handle.
// File extends fs.File with write operations.
type File interface {
	fs.File
	io.Writer

	// Name returns the name of the file as provided to Open or Create.
	Name() string
}

// SpaceFS is implemented by stores that can report their capacity.
//
// Use type assertion to check for it:
//
//	if sfs, ok := store.(core.SpaceFS); ok {
//	    total, used, err := sfs.Space()
//	}
type SpaceFS interface {
	// Space returns the total and used bytes of the store.
	Space() (total, used int64, err error)
}
