package volume

import (
	"io"
	"io/fs"
	"os"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/fs/core"
)

// Handle is an open file or directory cursor. It is owned by the code that
// opened it and must be closed on every path.
type Handle interface {
	io.ReadWriteCloser

	// Name returns the bare name or the absolute path of the entry,
	// depending on the kind's AbsoluteChildNames capability.
	Name() string

	// IsDir reports whether the handle is a directory cursor.
	IsDir() bool

	// Size returns the file size in bytes, or zero for directories.
	Size() int64

	// Next opens the next child of a directory handle. It returns io.EOF
	// after the last child.
	Next() (Handle, error)
}

// handle implements Handle for both kinds of volume. File contents are
// opened on the first Read, so walking a directory does not hold store
// files open.
type handle struct {
	vol  *base
	path string
	dir  bool
	size int64
	mode Mode

	r fs.File
	w core.File

	children []entry
	listed   bool
	closed   bool
}

func (b *base) fileHandle(p string, size int64) *handle {
	return &handle{vol: b, path: p, size: size, mode: ModeRead}
}

func (b *base) dirHandle(p string) *handle {
	return &handle{vol: b, path: p, dir: true, mode: ModeRead}
}

// create opens p for writing. Append handles start at the current size.
func (b *base) create(p string, mode Mode) (Handle, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	var size int64
	if mode == ModeAppend {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		if info, err := b.store.Stat(key(p)); err == nil {
			size = info.Size()
		}
	}

	f, err := b.store.OpenFile(key(p), flag, 0o644)
	if err != nil {
		return nil, errors.FromFS("open", p, err)
	}
	b.log.Debug().Str("path", p).Stringer("mode", mode).Msg("opened for writing")
	return &handle{vol: b, path: p, size: size, mode: mode, w: f}, nil
}

func (h *handle) Name() string {
	return h.vol.reportedName(h.path)
}

func (h *handle) IsDir() bool {
	return h.dir
}

func (h *handle) Size() int64 {
	return h.size
}

func (h *handle) Read(p []byte) (int, error) {
	switch {
	case h.closed:
		return 0, errClosed("read", h.path)
	case h.dir:
		return 0, errors.Newf(errors.CodeIsADirectory, "read %s: is a directory", h.path)
	case h.mode != ModeRead:
		return 0, invalid("read", h.path, "handle not open for reading")
	}

	if h.r == nil {
		f, err := h.vol.store.Open(key(h.path))
		if err != nil {
			return 0, errors.FromFS("open", h.path, err)
		}
		h.r = f
	}

	n, err := h.r.Read(p)
	if err != nil && err != io.EOF {
		return n, errors.FromFS("read", h.path, err)
	}
	return n, err
}

func (h *handle) Write(p []byte) (int, error) {
	switch {
	case h.closed:
		return 0, errClosed("write", h.path)
	case h.w == nil:
		return 0, invalid("write", h.path, "handle not open for writing")
	}

	n, err := h.w.Write(p)
	h.size += int64(n)
	if err != nil {
		return n, errors.FromFS("write", h.path, err)
	}
	return n, nil
}

// Close releases the handle. Closing twice returns a CLOSED error.
func (h *handle) Close() error {
	if h.closed {
		return errClosed("close", h.path)
	}
	h.closed = true
	h.children = nil

	var err error
	if h.r != nil {
		err = h.r.Close()
	}
	if h.w != nil {
		err = h.w.Close()
	}
	if err != nil {
		return errors.FromFS("close", h.path, err)
	}
	return nil
}

// Next lists the directory on first use and then hands out one child
// handle per call.
func (h *handle) Next() (Handle, error) {
	switch {
	case h.closed:
		return nil, errClosed("next", h.path)
	case !h.dir:
		return nil, errors.Newf(errors.CodeNotADirectory, "next %s: not a directory", h.path)
	}

	if !h.listed {
		children, err := h.vol.list(h.path)
		if err != nil {
			return nil, err
		}
		h.children, h.listed = children, true
	}
	if len(h.children) == 0 {
		return nil, io.EOF
	}

	e := h.children[0]
	h.children = h.children[1:]
	if e.dir {
		return h.vol.dirHandle(e.path), nil
	}
	return h.vol.fileHandle(e.path, e.size), nil
}

func errClosed(op, p string) error {
	return errors.Newf(errors.CodeClosed, "%s %s: handle already closed", op, p)
}
