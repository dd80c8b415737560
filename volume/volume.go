// Package volume exposes a store through one uniform operation set whose
// behaviour depends on the volume kind.
//
// A kind fixes three capabilities: whether the volume has real directories,
// whether directory handles report child names as absolute paths, and
// whether the volume can report its size. Operations a kind cannot perform
// fail with an UNSUPPORTED error and leave the store untouched.
//
// All paths are absolute and slash-separated ("/logs/boot.txt"); Clean
// normalises caller input. Errors are errors.PlatformError values carrying
// one of the storage codes (NOT_FOUND, NOT_A_DIRECTORY, UNSUPPORTED,
// IO_FAILURE, ...).
package volume

import (
	"path"
	"strings"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/core"
	"github.com/jmgilman/busybox/internal/logging"
	"github.com/rs/zerolog"
)

// Kind names a volume flavour.
type Kind string

const (
	// KindLittleFS is a hierarchical volume whose directory handles report
	// bare child names.
	KindLittleFS Kind = "littlefs"

	// KindFATFS is a hierarchical volume whose directory handles report
	// absolute child paths and which cannot report its size.
	KindFATFS Kind = "fatfs"

	// KindSPIFFS is a flat volume: "/" is the only directory and every file
	// is named by its absolute path.
	KindSPIFFS Kind = "spiffs"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindLittleFS, KindFATFS, KindSPIFFS}

// ParseKind converts a name to a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.Newf(errors.CodeInvalidInput, "unknown volume kind %q", name)
}

func (k Kind) String() string {
	return string(k)
}

// Capabilities returns the fixed capability record of the kind.
func (k Kind) Capabilities() Capabilities {
	switch k {
	case KindLittleFS:
		return Capabilities{Directories: true, SpaceInfo: true}
	case KindFATFS:
		return Capabilities{Directories: true, AbsoluteChildNames: true}
	case KindSPIFFS:
		return Capabilities{AbsoluteChildNames: true, SpaceInfo: true}
	default:
		return Capabilities{}
	}
}

// Capabilities describes what a volume kind can do.
type Capabilities struct {
	// Directories is false for flat volumes, where Mkdir and Rmdir are
	// unsupported.
	Directories bool

	// AbsoluteChildNames reports whether Handle.Name returns the full path
	// instead of the last path element.
	AbsoluteChildNames bool

	// SpaceInfo reports whether SpaceInfo is available.
	SpaceInfo bool
}

// Mode selects how Open prepares a handle.
type Mode int

const (
	// ModeRead opens an existing file or directory.
	ModeRead Mode = iota

	// ModeWrite creates or truncates a file.
	ModeWrite

	// ModeAppend creates a file or positions writes at its end.
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// Volume is the uniform operation set over a store.
type Volume interface {
	// Kind returns the volume kind.
	Kind() Kind

	// Capabilities returns the capability record of the kind.
	Capabilities() Capabilities

	// Open returns a handle for path. Reading a missing path fails with
	// NOT_FOUND. The caller must Close the handle.
	Open(path string, mode Mode) (Handle, error)

	// Exists reports whether path names a file or directory.
	Exists(path string) bool

	// Remove deletes a file.
	Remove(path string) error

	// Rename moves a file, or a directory on hierarchical volumes.
	Rename(oldPath, newPath string) error

	// Mkdir creates a directory. UNSUPPORTED on flat volumes.
	Mkdir(path string) error

	// Rmdir deletes an empty directory. UNSUPPORTED on flat volumes.
	Rmdir(path string) error

	// SpaceInfo reports total and used bytes.
	SpaceInfo() (Space, error)

	// Format removes every file and directory.
	Format() error
}

// New returns a volume of the given kind over store.
func New(kind Kind, store core.FS) (Volume, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New(errors.CodeInvalidInput, "store is nil")
	}

	b := &base{
		kind:  kind,
		caps:  kind.Capabilities(),
		store: store,
		log:   logging.Get("volume"),
	}
	if b.caps.Directories {
		v := &hierarchical{base: b}
		b.list = v.list
		return v, nil
	}
	v := &flat{base: b}
	b.list = v.list
	return v, nil
}

// Clean returns the absolute, slash-separated form of p without a trailing
// slash. The empty path is the root.
func Clean(p string) string {
	return path.Clean("/" + p)
}

// key maps a volume path to a store name.
func key(p string) string {
	p = Clean(p)
	if p == "/" {
		return "."
	}
	return p[1:]
}

// entry describes one directory child.
type entry struct {
	path string
	dir  bool
	size int64
}

// base holds what every kind shares.
type base struct {
	kind  Kind
	caps  Capabilities
	store core.FS
	log   zerolog.Logger

	// list returns the children of a directory path.
	list func(p string) ([]entry, error)
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Capabilities() Capabilities {
	return b.caps
}

// reportedName is the name a handle for p reports.
func (b *base) reportedName(p string) string {
	if b.caps.AbsoluteChildNames || p == "/" {
		return p
	}
	return path.Base(p)
}

// Format removes everything in the store.
func (b *base) Format() error {
	b.log.Info().Str("kind", string(b.kind)).Msg("formatting volume")
	if err := b.store.RemoveAll("."); err != nil {
		return errors.FromFS("format", "/", err)
	}
	return nil
}

func unsupported(op, p string) error {
	return errors.WithContextMap(
		errors.Newf(errors.CodeUnsupported, "%s %s: operation not supported by this volume", op, p),
		map[string]interface{}{"op": op, "path": p},
	)
}

func invalid(op, p, msg string) error {
	return errors.Newf(errors.CodeInvalidInput, "%s %s: %s", op, p, msg)
}
