package shell

import (
	"github.com/jmgilman/busybox/volume"
)

// Tally counts the outcome of a multi-path delete.
type Tally struct {
	Attempted int
	Succeeded int
}

// Rm removes one file.
func (s *Shell) Rm(p string) bool {
	p = volume.Clean(p)
	if err := s.vol.Remove(p); err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("rm failed")
		s.printf("Failed to remove file '%s'\n", p)
		return false
	}
	s.printf("File '%s' removed successfully\n", p)
	return true
}

// RemoveMany removes every path in order. A failure does not stop the
// remaining removals.
func (s *Shell) RemoveMany(paths []string) Tally {
	var t Tally
	for _, p := range paths {
		t.Attempted++
		if s.Rm(p) {
			t.Succeeded++
		}
	}
	if t.Succeeded > 1 {
		s.printf("Files deleted: %d from %d\n", t.Succeeded, t.Attempted)
	}
	return t
}

// Rmdir removes an empty directory, or the whole tree when force is set.
func (s *Shell) Rmdir(p string, force bool) bool {
	if !s.caps.Directories {
		return s.unsupported("directories")
	}
	if force {
		return s.RemoveTree(p)
	}

	p = volume.Clean(p)
	if err := s.vol.Rmdir(p); err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("rmdir failed")
		s.printf("Failed to remove directory '%s' (may be not empty)\n", p)
		return false
	}
	s.printf("Directory '%s' removed successfully\n", p)
	return true
}

// RemoveTree deletes p and everything below it. Siblings are still
// attempted after a failure; the directory itself is only removed when
// every child went away. It reports whether everything was removed.
func (s *Shell) RemoveTree(p string) bool {
	p = volume.Clean(p)
	root, err := s.vol.Open(p, volume.ModeRead)
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("rmrf: open failed")
		s.printf("Cannot open '%s'\n", p)
		return false
	}
	if !root.IsDir() {
		s.release(root)
		return s.Rm(p)
	}

	ok := s.removeChildren(root, p)
	if ok && s.caps.Directories {
		if err := s.vol.Rmdir(p); err != nil {
			s.log.Debug().Err(err).Str("path", p).Msg("rmrf: rmdir failed")
			ok = false
		}
	}

	if ok {
		s.printf("Directory '%s' removed recursively\n", p)
	} else {
		s.printf("Failed to remove directory '%s' recursively\n", p)
	}
	return ok
}

// removeChildren deletes every child of dir and closes dir.
func (s *Shell) removeChildren(dir volume.Handle, p string) bool {
	defer s.release(dir)

	ok := true
	err := s.eachChild(dir, p, func(c child) error {
		if c.dir {
			ok = s.RemoveTree(c.path) && ok
		} else {
			ok = s.Rm(c.path) && ok
		}
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("rmrf: listing failed")
		return false
	}
	return ok
}
