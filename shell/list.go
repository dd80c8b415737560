package shell

import (
	"path"
	"strings"

	"github.com/jmgilman/busybox/volume"
)

// Ls lists the children of a directory, one line each.
func (s *Shell) Ls(p string) bool {
	p = volume.Clean(p)
	dir, err := s.vol.Open(p, volume.ModeRead)
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("ls: open failed")
		s.printf("ls: cannot access '%s'\n", p)
		return false
	}
	defer s.release(dir)

	if !dir.IsDir() {
		s.printf("Not a directory\n")
		return false
	}

	err = s.eachChild(dir, p, func(c child) error {
		if c.dir {
			s.printf("%-32s [Dir]\n", c.path+"/")
		} else {
			s.printf("%-25s %6d bytes\n", c.path, c.size)
		}
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("ls: listing failed")
		s.printf("ls: cannot read '%s'\n", p)
		return false
	}
	return true
}

// Tree prints the directory at p and, while levels is positive, its
// subdirectories. indent is the starting depth. Flat volumes fall back to
// Ls.
func (s *Shell) Tree(p string, levels, indent int) bool {
	if !s.caps.Directories {
		s.unsupported("directory tree")
		return s.Ls(p)
	}
	return s.tree(volume.Clean(p), levels, indent)
}

func (s *Shell) tree(p string, levels, indent int) bool {
	pad := strings.Repeat("  ", indent)
	s.printf("%sListing directory: %s\n", pad, p)

	dir, err := s.vol.Open(p, volume.ModeRead)
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("tree: open failed")
		s.printf("%sFailed to open directory\n", pad)
		return false
	}
	defer s.release(dir)

	if !dir.IsDir() {
		s.printf("%sNot a directory\n", pad)
		return false
	}

	ok, found := true, false
	err = s.eachChild(dir, p, func(c child) error {
		found = true
		name := path.Base(c.path)
		if !c.dir {
			s.printf("%s├── FILE: %-20s  SIZE: %d\n", pad, name, c.size)
			return nil
		}

		s.printf("%s├── DIR : %s/\n", pad, name)
		if levels > 0 && !s.tree(c.path, levels-1, indent+1) {
			ok = false
		}
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("tree: listing failed")
		s.printf("%sFailed to read directory\n", pad)
		ok = false
	}

	if found {
		s.printf("%s└── End\n", pad)
	} else {
		s.printf("%s└── (empty)\n", pad)
	}
	return ok
}
