package shell

import (
	_ "crypto/sha256"
	"io"
	"strings"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/volume"
	"github.com/opencontainers/go-digest"
)

// copyChunk is the buffer size used by Cp.
const copyChunk = 128

// render opens p for reading and hands the handle to fn, closing it
// afterwards. cmd prefixes the failure messages.
func (s *Shell) render(cmd, p string, fn func(h volume.Handle) error) bool {
	p = volume.Clean(p)
	h, err := s.vol.Open(p, volume.ModeRead)
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msgf("%s: open failed", cmd)
		s.printf("%s: cannot open '%s'\n", cmd, p)
		return false
	}
	defer s.release(h)

	if h.IsDir() {
		s.printf("%s: '%s' is a directory\n", cmd, p)
		return false
	}
	if err := fn(h); err != nil {
		s.log.Debug().Err(err).Str("path", p).Msgf("%s: read failed", cmd)
		s.printf("\n%s: error reading '%s'\n", cmd, p)
		return false
	}
	return true
}

// Cat prints a file verbatim.
func (s *Shell) Cat(p string) bool {
	return s.render("cat", p, func(h volume.Handle) error {
		return s.viewer.Cat(s.out, volume.Clean(p), h)
	})
}

// Dump prints a classic hex dump of a file.
func (s *Shell) Dump(p string) bool {
	return s.render("dump", p, func(h volume.Handle) error {
		return s.viewer.Dump(s.out, volume.Clean(p), h.Size(), h)
	})
}

// View prints the hex and text view of a file.
func (s *Shell) View(p string) bool {
	return s.render("view", p, func(h volume.Handle) error {
		return s.viewer.View(s.out, volume.Clean(p), h.Size(), h)
	})
}

// Sum prints the content digest of a file.
func (s *Shell) Sum(p string) bool {
	p = volume.Clean(p)
	return s.render("sum", p, func(h volume.Handle) error {
		d, err := digest.Canonical.FromReader(h)
		if err != nil {
			return err
		}
		s.printf("%s  %s\n", d, p)
		return nil
	})
}

// Mv renames a file or directory.
func (s *Shell) Mv(oldPath, newPath string) bool {
	oldPath, newPath = volume.Clean(oldPath), volume.Clean(newPath)
	if err := s.vol.Rename(oldPath, newPath); err != nil {
		s.log.Debug().Err(err).Str("from", oldPath).Str("to", newPath).Msg("mv failed")
		s.printf("Failed to move file '%s' to '%s'\n", oldPath, newPath)
		return false
	}
	s.printf("'%s' moved to '%s'\n", oldPath, newPath)
	return true
}

// Cp copies a file.
func (s *Shell) Cp(srcPath, dstPath string) bool {
	srcPath, dstPath = volume.Clean(srcPath), volume.Clean(dstPath)
	src, err := s.vol.Open(srcPath, volume.ModeRead)
	if err != nil {
		s.log.Debug().Err(err).Str("path", srcPath).Msg("cp: open source failed")
		s.printf("cp: cannot open source '%s'\n", srcPath)
		return false
	}
	defer s.release(src)
	if src.IsDir() {
		s.printf("cp: '%s' is a directory\n", srcPath)
		return false
	}

	dst, err := s.vol.Open(dstPath, volume.ModeWrite)
	if err != nil {
		s.log.Debug().Err(err).Str("path", dstPath).Msg("cp: create failed")
		s.printf("cp: cannot create '%s'\n", dstPath)
		return false
	}

	n, err := io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, make([]byte, copyChunk))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.log.Debug().Err(err).Str("from", srcPath).Str("to", dstPath).Msg("cp failed")
		s.printf("cp: error copying '%s' to '%s'\n", srcPath, dstPath)
		return false
	}

	s.printf("cp: '%s' -> '%s' (%d bytes)\n", srcPath, dstPath, n)
	return true
}

// Mkdir creates a directory.
func (s *Shell) Mkdir(p string) bool {
	if !s.caps.Directories {
		return s.unsupported("directories")
	}
	p = volume.Clean(p)
	if err := s.vol.Mkdir(p); err != nil {
		s.log.Debug().Err(err).Str("path", p).Msg("mkdir failed")
		s.printf("Failed to create directory '%s'\n", p)
		return false
	}
	s.printf("Directory '%s' created successfully\n", p)
	return true
}

// Write replaces the contents of a file with content.
func (s *Shell) Write(p, content string) bool {
	return s.store("write", "create", p, content, volume.ModeWrite)
}

// Append adds content to the end of a file, creating it if needed.
func (s *Shell) Append(p, content string) bool {
	return s.store("append", "open", p, content, volume.ModeAppend)
}

func (s *Shell) store(cmd, verb, p, content string, mode volume.Mode) bool {
	p = volume.Clean(p)
	h, err := s.vol.Open(p, mode)
	if err != nil {
		s.log.Debug().Err(err).Str("path", p).Msgf("%s: open failed", cmd)
		s.printf("%s: cannot %s '%s'\n", cmd, verb, p)
		return false
	}

	n, err := io.WriteString(h, content)
	if cerr := h.Close(); err == nil {
		err = cerr
	}
	ok := err == nil && n == len(content)
	if !ok {
		s.log.Debug().Err(err).Str("path", p).Int("written", n).Msgf("%s failed", cmd)
	}

	status := "OK"
	if !ok {
		status = "FAILED"
	}
	s.printf("%s: %d bytes to '%s' %s\n", cmd, n, p, status)
	return ok
}

// Stat prints whether p is a file or directory, and a file's size.
func (s *Shell) Stat(p string) bool {
	p = volume.Clean(p)
	h, err := s.vol.Open(p, volume.ModeRead)
	if err != nil {
		s.printf("'%s' not found\n", p)
		return false
	}
	defer s.release(h)

	if h.IsDir() {
		s.printf("Dir: %s\n", p)
		return true
	}
	s.printf("File: %s\n", p)
	s.printf("Size: %d bytes\n", h.Size())
	return true
}

// Df prints total, used and free bytes.
func (s *Shell) Df() bool {
	space, err := s.vol.SpaceInfo()
	switch {
	case errors.HasCode(err, errors.CodeUnsupported):
		s.printf("%s: df not available\n", strings.ToUpper(s.vol.Kind().String()))
		return false
	case err != nil:
		s.log.Debug().Err(err).Msg("df failed")
		s.printf("df: failed to get filesystem info\n")
		return false
	}

	s.printf("Filesystem info:\n")
	s.printf("Total: %d bytes\n", space.Total)
	s.printf("Used:  %d bytes\n", space.Used)
	s.printf("Free:  %d bytes\n", space.Free())
	return true
}

// Format wipes the volume.
func (s *Shell) Format() bool {
	if err := s.vol.Format(); err != nil {
		s.log.Debug().Err(err).Msg("format failed")
		s.printf("Format failed\n")
		return false
	}
	s.printf("Format complete\n")
	return true
}
