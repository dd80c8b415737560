// Package logging configures the process-wide zerolog logger and hands out
// component-scoped loggers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a level name to a zerolog level. Unknown names yield
// zerolog.InfoLevel.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Initialize sets the global level and routes log output to w through a
// console writer. A nil w means stderr, so logs never mix with command
// output on stdout. Colors are only used when w is a file.
func Initialize(level zerolog.Level, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	_, tty := w.(*os.File)
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !tty}
	ctx := zerolog.New(output).With().Timestamp()
	if level == zerolog.TraceLevel {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
}

// Get returns a logger for a specific component.
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
