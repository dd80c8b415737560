package volume

import (
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Tracked wraps a Volume and keeps a ledger of every handle it hands out,
// including children returned by Next. It is used to verify that commands
// close what they open.
type Tracked struct {
	Volume

	opened *xsync.Counter
	closed *xsync.Counter
	open   *xsync.Map[uint64, string]
	seq    atomic.Uint64
}

// Track returns a tracking decorator around v.
func Track(v Volume) *Tracked {
	return &Tracked{
		Volume: v,
		opened: xsync.NewCounter(),
		closed: xsync.NewCounter(),
		open:   xsync.NewMap[uint64, string](),
	}
}

// Open opens path on the wrapped volume and records the handle.
func (t *Tracked) Open(p string, mode Mode) (Handle, error) {
	h, err := t.Volume.Open(p, mode)
	if err != nil {
		return nil, err
	}
	return t.track(h, Clean(p)), nil
}

// Opened returns the number of handles handed out.
func (t *Tracked) Opened() int64 {
	return t.opened.Value()
}

// Closed returns the number of handles released.
func (t *Tracked) Closed() int64 {
	return t.closed.Value()
}

// Leaks returns the sorted paths of handles that are still open.
func (t *Tracked) Leaks() []string {
	var paths []string
	t.open.Range(func(_ uint64, p string) bool {
		paths = append(paths, p)
		return true
	})
	sort.Strings(paths)
	return paths
}

func (t *Tracked) track(h Handle, p string) Handle {
	id := t.seq.Add(1)
	t.opened.Inc()
	t.open.Store(id, p)
	return &trackedHandle{Handle: h, tracker: t, id: id, path: p}
}

type trackedHandle struct {
	Handle
	tracker  *Tracked
	id       uint64
	path     string
	released bool
}

func (h *trackedHandle) Close() error {
	err := h.Handle.Close()
	if !h.released {
		h.released = true
		h.tracker.closed.Inc()
		h.tracker.open.Delete(h.id)
	}
	return err
}

func (h *trackedHandle) Next() (Handle, error) {
	child, err := h.Handle.Next()
	if err != nil {
		return nil, err
	}
	p := child.Name()
	if !strings.HasPrefix(p, "/") {
		p = path.Join(h.path, p)
	}
	return h.tracker.track(child, p), nil
}
