package volumetest

import (
	"io"
	"path"
	"testing"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/volume"
)

func writeFile(t *testing.T, v volume.Volume, p string, data string) {
	t.Helper()
	h, err := v.Open(p, volume.ModeWrite)
	if err != nil {
		t.Fatalf("Open(%s, write): setup failed: %v", p, err)
	}
	if _, err := io.WriteString(h, data); err != nil {
		_ = h.Close()
		t.Fatalf("Write(%s): setup failed: %v", p, err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close(%s): setup failed: %v", p, err)
	}
}

func readFile(t *testing.T, v volume.Volume, p string) string {
	t.Helper()
	h, err := v.Open(p, volume.ModeRead)
	if err != nil {
		t.Fatalf("Open(%s, read): got error %v, want nil", p, err)
	}
	defer func() { _ = h.Close() }()

	data, err := io.ReadAll(h)
	if err != nil {
		t.Fatalf("Read(%s): got error %v, want nil", p, err)
	}
	return string(data)
}

func mkdir(t *testing.T, v volume.Volume, p string) {
	t.Helper()
	if err := v.Mkdir(p); err != nil {
		t.Fatalf("Mkdir(%s): setup failed: %v", p, err)
	}
}

// child is what a directory cursor reported for one entry.
type child struct {
	name string
	dir  bool
	size int64
}

// children drains a directory cursor, closing every child handle.
func children(t *testing.T, v volume.Volume, dir string) []child {
	t.Helper()
	h, err := v.Open(dir, volume.ModeRead)
	if err != nil {
		t.Fatalf("Open(%s, read): got error %v, want nil", dir, err)
	}
	defer func() { _ = h.Close() }()

	var out []child
	for {
		c, err := h.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next(%s): got error %v, want nil", dir, err)
		}
		out = append(out, child{name: c.Name(), dir: c.IsDir(), size: c.Size()})
		if err := c.Close(); err != nil {
			t.Errorf("Close(%s): got error %v", c.Name(), err)
		}
	}
}

func names(cs []child) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.name
	}
	return out
}

func wantCode(t *testing.T, call string, err error, want errors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: got nil error, want %s", call, want)
		return
	}
	if got := errors.GetCode(err); got != want {
		t.Errorf("%s: got code %s (%v), want %s", call, got, err, want)
	}
}

// childName is the name a kind reports for the entry at p.
func childName(v volume.Volume, p string) string {
	if v.Capabilities().AbsoluteChildNames {
		return p
	}
	return path.Base(p)
}
