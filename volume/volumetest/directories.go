package volumetest

import (
	"testing"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/volume"
)

// TestDirectories covers Mkdir and Rmdir. Flat volumes must report
// UNSUPPORTED and leave the store unchanged.
func TestDirectories(t *testing.T, v volume.Volume, config Config) {
	if !v.Capabilities().Directories {
		testFlatDirectories(t, v, config)
		return
	}

	run(t, config, "Directories", "MkdirRmdir", func(t *testing.T) {
		mkdir(t, v, "/empty")
		h, err := v.Open("/empty", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/empty): got error %v, want nil", err)
		}
		if !h.IsDir() {
			t.Errorf("IsDir(/empty): got false, want true")
		}
		_ = h.Close()

		if err := v.Rmdir("/empty"); err != nil {
			t.Fatalf("Rmdir(/empty): got error %v, want nil", err)
		}
		if v.Exists("/empty") {
			t.Errorf("Exists(/empty) after Rmdir: got true, want false")
		}
	})

	run(t, config, "Directories", "MkdirExisting", func(t *testing.T) {
		mkdir(t, v, "/twice")
		wantCode(t, "Mkdir(/twice) again", v.Mkdir("/twice"), errors.CodeAlreadyExists)
	})

	run(t, config, "Directories", "MkdirMissingParent", func(t *testing.T) {
		if err := v.Mkdir("/no/such/parent"); err == nil {
			t.Errorf("Mkdir(/no/such/parent): got nil error, want failure")
		}
	})

	run(t, config, "Directories", "WriteMissingParent", func(t *testing.T) {
		h, err := v.Open("/absent/f.txt", volume.ModeWrite)
		if err == nil {
			_ = h.Close()
			t.Fatalf("Open(/absent/f.txt, write): got nil error, want failure")
		}
		wantCode(t, "Open(/absent/f.txt, write)", err, errors.CodeNotFound)
		if v.Exists("/absent") {
			t.Errorf("Exists(/absent) after failed write: got true, want false")
		}
	})

	run(t, config, "Directories", "RmdirNotEmpty", func(t *testing.T) {
		mkdir(t, v, "/full")
		writeFile(t, v, "/full/f.txt", "f")
		wantCode(t, "Rmdir(/full)", v.Rmdir("/full"), errors.CodeNotEmpty)
		if !v.Exists("/full/f.txt") {
			t.Errorf("Exists(/full/f.txt) after failed Rmdir: got false, want true")
		}
	})

	run(t, config, "Directories", "RmdirFile", func(t *testing.T) {
		writeFile(t, v, "/plain.txt", "p")
		wantCode(t, "Rmdir(/plain.txt)", v.Rmdir("/plain.txt"), errors.CodeNotADirectory)
	})

	run(t, config, "Directories", "RemoveDirectory", func(t *testing.T) {
		mkdir(t, v, "/keep")
		wantCode(t, "Remove(/keep)", v.Remove("/keep"), errors.CodeIsADirectory)
	})

	run(t, config, "Directories", "RmdirMissing", func(t *testing.T) {
		wantCode(t, "Rmdir(/nothing)", v.Rmdir("/nothing"), errors.CodeNotFound)
	})

	run(t, config, "Directories", "WriteToDirectory", func(t *testing.T) {
		mkdir(t, v, "/target")
		_, err := v.Open("/target", volume.ModeWrite)
		wantCode(t, "Open(/target, write)", err, errors.CodeIsADirectory)
	})
}

func testFlatDirectories(t *testing.T, v volume.Volume, config Config) {
	run(t, config, "Directories", "MkdirUnsupported", func(t *testing.T) {
		wantCode(t, "Mkdir(/dir)", v.Mkdir("/dir"), errors.CodeUnsupported)
		if v.Exists("/dir") {
			t.Errorf("Exists(/dir) after Mkdir: got true, want false")
		}
		if got := children(t, v, "/"); len(got) != 0 {
			t.Errorf("children(/) after Mkdir: got %v, want none", got)
		}
	})

	run(t, config, "Directories", "RmdirUnsupported", func(t *testing.T) {
		writeFile(t, v, "/dir/file.txt", "x")
		wantCode(t, "Rmdir(/dir)", v.Rmdir("/dir"), errors.CodeUnsupported)
		if !v.Exists("/dir/file.txt") {
			t.Errorf("Exists(/dir/file.txt) after Rmdir: got false, want true")
		}
	})

	run(t, config, "Directories", "NoImplicitDirectories", func(t *testing.T) {
		writeFile(t, v, "/nested/deep/file.txt", "x")
		if v.Exists("/nested") {
			t.Errorf("Exists(/nested): got true, want false")
		}
		if err := v.Remove("/nested/deep/file.txt"); err != nil {
			t.Fatalf("Remove(/nested/deep/file.txt): got error %v, want nil", err)
		}
		_, err := v.Open("/nested", volume.ModeRead)
		wantCode(t, "Open(/nested)", err, errors.CodeNotFound)
	})
}

// TestHandles covers handle lifetime rules.
func TestHandles(t *testing.T, v volume.Volume, config Config) {
	writeFile(t, v, "/h.txt", "handle")

	run(t, config, "Handles", "CloseTwice", func(t *testing.T) {
		h, err := v.Open("/h.txt", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/h.txt): got error %v, want nil", err)
		}
		if err := h.Close(); err != nil {
			t.Fatalf("Close(/h.txt): got error %v, want nil", err)
		}
		wantCode(t, "Close(/h.txt) twice", h.Close(), errors.CodeClosed)
		_, err = h.Read(make([]byte, 4))
		wantCode(t, "Read(/h.txt) after Close", err, errors.CodeClosed)
	})

	run(t, config, "Handles", "WrongMode", func(t *testing.T) {
		h, err := v.Open("/h.txt", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/h.txt): got error %v, want nil", err)
		}
		defer func() { _ = h.Close() }()
		_, err = h.Write([]byte("x"))
		wantCode(t, "Write(/h.txt) on read handle", err, errors.CodeInvalidInput)
	})

	run(t, config, "Handles", "ReadDirectory", func(t *testing.T) {
		h, err := v.Open("/", volume.ModeRead)
		if err != nil {
			t.Fatalf("Open(/): got error %v, want nil", err)
		}
		defer func() { _ = h.Close() }()
		if !h.IsDir() {
			t.Errorf("IsDir(/): got false, want true")
		}
		_, err = h.Read(make([]byte, 4))
		wantCode(t, "Read(/)", err, errors.CodeIsADirectory)
	})
}

// TestSpace covers SpaceInfo.
func TestSpace(t *testing.T, v volume.Volume, config Config) {
	if !v.Capabilities().SpaceInfo {
		run(t, config, "Space", "Unsupported", func(t *testing.T) {
			_, err := v.SpaceInfo()
			wantCode(t, "SpaceInfo()", err, errors.CodeUnsupported)
		})
		return
	}

	run(t, config, "Space", "Usage", func(t *testing.T) {
		writeFile(t, v, "/used.bin", "0123456789")
		s, err := v.SpaceInfo()
		if err != nil {
			t.Fatalf("SpaceInfo(): got error %v, want nil", err)
		}
		if s.Total <= 0 {
			t.Errorf("SpaceInfo().Total: got %d, want > 0", s.Total)
		}
		if s.Used < 10 {
			t.Errorf("SpaceInfo().Used: got %d, want >= 10", s.Used)
		}
		if s.Free() != s.Total-s.Used {
			t.Errorf("Free(): got %d, want %d", s.Free(), s.Total-s.Used)
		}
	})
}

// TestFormat covers Format.
func TestFormat(t *testing.T, v volume.Volume, config Config) {
	run(t, config, "Format", "EmptiesVolume", func(t *testing.T) {
		writeFile(t, v, "/one.txt", "1")
		if v.Capabilities().Directories {
			mkdir(t, v, "/dir")
			writeFile(t, v, "/dir/two.txt", "2")
		}
		if err := v.Format(); err != nil {
			t.Fatalf("Format(): got error %v, want nil", err)
		}
		if got := children(t, v, "/"); len(got) != 0 {
			t.Errorf("children(/) after Format: got %v, want none", got)
		}
	})
}
