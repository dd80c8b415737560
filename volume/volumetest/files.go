package volumetest

import (
	"io"
	"testing"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/volume"
)

// TestFiles covers file creation, reading, appending, renaming and removal.
func TestFiles(t *testing.T, v volume.Volume, config Config) {
	run(t, config, "Files", "WriteRead", func(t *testing.T) {
		writeFile(t, v, "/hello.txt", "hello, volume")
		if got := readFile(t, v, "/hello.txt"); got != "hello, volume" {
			t.Errorf("Read(/hello.txt): got %q, want %q", got, "hello, volume")
		}

		h, err := v.Open("/hello.txt", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/hello.txt): got error %v, want nil", err)
		}
		defer func() { _ = h.Close() }()
		if h.IsDir() {
			t.Errorf("IsDir(/hello.txt): got true, want false")
		}
		if h.Size() != 13 {
			t.Errorf("Size(/hello.txt): got %d, want 13", h.Size())
		}
		if want := childName(v, "/hello.txt"); h.Name() != want {
			t.Errorf("Name(/hello.txt): got %q, want %q", h.Name(), want)
		}
	})

	run(t, config, "Files", "Truncate", func(t *testing.T) {
		writeFile(t, v, "/trunc.txt", "a long first version")
		writeFile(t, v, "/trunc.txt", "short")
		if got := readFile(t, v, "/trunc.txt"); got != "short" {
			t.Errorf("Read(/trunc.txt): got %q, want %q", got, "short")
		}
	})

	run(t, config, "Files", "Append", func(t *testing.T) {
		writeFile(t, v, "/log.txt", "one\n")
		h, err := v.Open("/log.txt", volume.ModeAppend)
		if err != nil {
			t.Fatalf("Open(/log.txt, append): got error %v, want nil", err)
		}
		if _, err := io.WriteString(h, "two\n"); err != nil {
			t.Errorf("Write(/log.txt): got error %v, want nil", err)
		}
		if h.Size() != 8 {
			t.Errorf("Size(/log.txt) after append: got %d, want 8", h.Size())
		}
		if err := h.Close(); err != nil {
			t.Fatalf("Close(/log.txt): got error %v, want nil", err)
		}
		if got := readFile(t, v, "/log.txt"); got != "one\ntwo\n" {
			t.Errorf("Read(/log.txt): got %q, want %q", got, "one\ntwo\n")
		}
	})

	run(t, config, "Files", "OpenNotExist", func(t *testing.T) {
		_, err := v.Open("/missing.txt", volume.ModeRead)
		wantCode(t, "Open(/missing.txt)", err, errors.CodeNotFound)
		if v.Exists("/missing.txt") {
			t.Errorf("Exists(/missing.txt): got true, want false")
		}
	})

	run(t, config, "Files", "Remove", func(t *testing.T) {
		writeFile(t, v, "/gone.txt", "x")
		if !v.Exists("/gone.txt") {
			t.Fatalf("Exists(/gone.txt): got false, want true")
		}
		if err := v.Remove("/gone.txt"); err != nil {
			t.Fatalf("Remove(/gone.txt): got error %v, want nil", err)
		}
		if v.Exists("/gone.txt") {
			t.Errorf("Exists(/gone.txt) after Remove: got true, want false")
		}
		wantCode(t, "Remove(/gone.txt) twice", v.Remove("/gone.txt"), errors.CodeNotFound)
	})

	run(t, config, "Files", "Rename", func(t *testing.T) {
		writeFile(t, v, "/old.txt", "payload")
		if err := v.Rename("/old.txt", "/new.txt"); err != nil {
			t.Fatalf("Rename(/old.txt, /new.txt): got error %v, want nil", err)
		}
		if v.Exists("/old.txt") {
			t.Errorf("Exists(/old.txt) after Rename: got true, want false")
		}
		if got := readFile(t, v, "/new.txt"); got != "payload" {
			t.Errorf("Read(/new.txt): got %q, want %q", got, "payload")
		}
		wantCode(t, "Rename(/old.txt) again", v.Rename("/old.txt", "/other.txt"), errors.CodeNotFound)
	})
}

// TestChildren covers directory cursors.
func TestChildren(t *testing.T, v volume.Volume, config Config) {
	writeFile(t, v, "/a.txt", "aa")
	writeFile(t, v, "/b.txt", "bbbb")

	run(t, config, "Children", "Root", func(t *testing.T) {
		got := children(t, v, "/")
		want := []child{
			{name: childName(v, "/a.txt"), size: 2},
			{name: childName(v, "/b.txt"), size: 4},
		}
		if len(got) != len(want) {
			t.Fatalf("children(/): got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("children(/)[%d]: got %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	run(t, config, "Children", "Nested", func(t *testing.T) {
		if !v.Capabilities().Directories {
			// nested names are plain file names on a flat volume
			writeFile(t, v, "/logs/boot.txt", "boot")
			got := names(children(t, v, "/"))
			want := []string{"/a.txt", "/b.txt", "/logs/boot.txt"}
			if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
				t.Errorf("children(/): got %v, want %v", got, want)
			}
			return
		}

		mkdir(t, v, "/logs")
		writeFile(t, v, "/logs/boot.txt", "boot")
		root := children(t, v, "/")
		var found bool
		for _, c := range root {
			if c.name == childName(v, "/logs") {
				found = true
				if !c.dir {
					t.Errorf("children(/): %s should be a directory", c.name)
				}
			}
		}
		if !found {
			t.Errorf("children(/): got %v, want an entry for /logs", root)
		}

		got := names(children(t, v, "/logs"))
		if len(got) != 1 || got[0] != childName(v, "/logs/boot.txt") {
			t.Errorf("children(/logs): got %v, want [%s]", got, childName(v, "/logs/boot.txt"))
		}
	})

	run(t, config, "Children", "NextOnFile", func(t *testing.T) {
		h, err := v.Open("/a.txt", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/a.txt): got error %v, want nil", err)
		}
		defer func() { _ = h.Close() }()
		_, err = h.Next()
		wantCode(t, "Next(/a.txt)", err, errors.CodeNotADirectory)
	})

	run(t, config, "Children", "ReadChild", func(t *testing.T) {
		h, err := v.Open("/", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/): got error %v, want nil", err)
		}
		defer func() { _ = h.Close() }()

		c, err := h.Next()
		if err != nil {
			t.Fatalf("Next(/): got error %v, want nil", err)
		}
		defer func() { _ = c.Close() }()
		data, err := io.ReadAll(c)
		if err != nil {
			t.Fatalf("Read(%s): got error %v, want nil", c.Name(), err)
		}
		if string(data) != "aa" {
			t.Errorf("Read(%s): got %q, want %q", c.Name(), data, "aa")
		}
	})
}
