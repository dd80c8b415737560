// Package shell implements the busybox commands on top of a volume.
//
// Every command writes a human-readable report to the shell's output and
// returns whether it succeeded. Expected failures (missing paths, missing
// capabilities) are reported, never raised. Every handle a command opens is
// closed before the command returns.
package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmgilman/busybox/hexview"
	"github.com/jmgilman/busybox/internal/logging"
	"github.com/jmgilman/busybox/volume"
	"github.com/rs/zerolog"
)

// Shell runs commands against one volume.
type Shell struct {
	vol    volume.Volume
	caps   volume.Capabilities
	out    io.Writer
	viewer hexview.Viewer
	log    zerolog.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithViewer sets the options used by View, Dump and Cat.
func WithViewer(v hexview.Viewer) Option {
	return func(s *Shell) {
		s.viewer = v
	}
}

// New returns a shell over vol that reports to out.
func New(vol volume.Volume, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		vol:  vol,
		caps: vol.Capabilities(),
		out:  out,
		log:  logging.Get("shell"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Volume returns the volume the shell operates on.
func (s *Shell) Volume() volume.Volume {
	return s.vol
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// unsupported reports a capability the volume kind lacks.
func (s *Shell) unsupported(what string) bool {
	s.printf("%s does not support %s\n", strings.ToUpper(s.vol.Kind().String()), what)
	return false
}

// release closes h. Close failures are logged since the command's result
// has already been decided.
func (s *Shell) release(h volume.Handle) {
	if err := h.Close(); err != nil {
		s.log.Warn().Err(err).Str("name", h.Name()).Msg("closing handle failed")
	}
}
