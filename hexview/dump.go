package hexview

import (
	"fmt"
	"io"

	"github.com/jmgilman/busybox/errors"
)

const catChunk = 64

// Dump writes a classic hex dump of r with byte offsets.
func (v Viewer) Dump(w io.Writer, name string, size int64, r io.Reader) error {
	if _, err := fmt.Fprintf(w, "Hex dump of '%s' (%d bytes):\n", name, size); err != nil {
		return err
	}

	width := v.width()
	buf := make([]byte, width)
	line := make([]byte, 0, 64)
	var offset int64
	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return errors.Wrapf(err, errors.CodeIOFailure, "dump %s", name)
		}
		if n == 0 {
			return nil
		}

		line = fmt.Appendf(line[:0], "%08X: ", offset)
		for i := 0; i < width; i++ {
			if i < n {
				line = fmt.Appendf(line, "%02X ", buf[i])
			} else {
				line = append(line, "   "...)
			}
			if i == 7 {
				line = append(line, ' ')
			}
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}

		offset += int64(n)
		v.yield()
	}
}

// Cat writes r to w between a header and a trailing newline.
func (v Viewer) Cat(w io.Writer, name string, r io.Reader) error {
	if _, err := fmt.Fprintf(w, "--- %s ---\n", name); err != nil {
		return err
	}

	buf := make([]byte, catChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			v.yield()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, errors.CodeIOFailure, "cat %s", name)
		}
	}

	_, err := io.WriteString(w, "\n")
	return err
}
