// Package hexview renders file contents for a terminal.
//
// View prints aligned hex and text columns, keeping two-byte characters
// together in the text column even when a read boundary splits them. Dump
// prints a classic hex dump and Cat copies the contents verbatim. All three
// stream the input with a fixed-size buffer.
package hexview

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jmgilman/busybox/errors"
	"github.com/jmgilman/busybox/internal/logging"
)

// OffsetMode selects what the offset column counts.
type OffsetMode int

const (
	// OffsetLine advances the offset by 16 on every line, whatever the
	// line holds.
	OffsetLine OffsetMode = iota

	// OffsetByte shows the file offset of the first byte on the line.
	OffsetByte
)

// ParseOffsetMode returns the mode with the given name ("line" or "byte").
func ParseOffsetMode(name string) (OffsetMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "line":
		return OffsetLine, nil
	case "byte":
		return OffsetByte, nil
	default:
		return OffsetLine, errors.Newf(errors.CodeInvalidInput, "unknown offset mode %q", name)
	}
}

func (m OffsetMode) String() string {
	if m == OffsetByte {
		return "byte"
	}
	return "line"
}

const (
	viewLegend = "Offset    Hex dump                                            ASCII/Cyrillic\n"
	viewRule   = "--------  -------------------------------------------------  ----------------\n"
)

// Viewer holds rendering options. The zero value views 16 bytes per line
// with the Cyrillic decoder and line offsets.
type Viewer struct {
	// Width is the number of bytes read per line, clamped to 1..16.
	Width int

	// Decoder pairs bytes in the text column. Nil means Cyrillic.
	Decoder Decoder

	// Offsets selects the offset column mode.
	Offsets OffsetMode

	// Yield runs between lines. Nil means runtime.Gosched.
	Yield func()
}

func (v Viewer) width() int {
	switch {
	case v.Width <= 0 || v.Width > lineWidth:
		return lineWidth
	default:
		return v.Width
	}
}

func (v Viewer) decoder() Decoder {
	if v.Decoder == nil {
		return Cyrillic
	}
	return v.Decoder
}

func (v Viewer) yield() {
	if v.Yield != nil {
		v.Yield()
		return
	}
	runtime.Gosched()
}

// View writes the hex/text view of r to w. name and size only label the
// header.
func (v Viewer) View(w io.Writer, name string, size int64, r io.Reader) error {
	if _, err := fmt.Fprintf(w, "=== View: %s (%d bytes) ===\n%s%s", name, size, viewLegend, viewRule); err != nil {
		return err
	}

	log := logging.Get("hexview")
	dec := v.decoder()
	buf := make([]byte, v.width())
	line := make([]byte, 0, 128)

	var (
		c        carry
		offset   int64
		consumed int64
	)
	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return errors.Wrapf(err, errors.CodeIOFailure, "view %s", name)
		}
		if n == 0 && !c.ok {
			break
		}

		at := offset
		if v.Offsets == OffsetByte {
			at = consumed
		}
		line, c = appendLine(line[:0], dec, at, buf[:n], c)
		if _, err := w.Write(line); err != nil {
			return err
		}
		if c.ok {
			log.Trace().Str("path", name).Int64("offset", consumed+int64(n)-1).Msg("lead byte carried to next line")
		}

		offset += lineWidth
		consumed += int64(n)
		v.yield()
	}

	_, err := io.WriteString(w, viewRule)
	return err
}
