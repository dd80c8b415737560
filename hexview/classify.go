package hexview

import (
	"strings"

	"github.com/jmgilman/busybox/errors"
)

// Class is the role a byte plays in the text column.
type Class int

const (
	// Printable bytes are shown as themselves (0x20..0x7E).
	Printable Class = iota

	// Control bytes are shown as '.'.
	Control

	// Lead bytes may start a two-byte sequence.
	Lead

	// Continuation bytes may complete a two-byte sequence.
	Continuation
)

func (c Class) String() string {
	switch c {
	case Printable:
		return "printable"
	case Control:
		return "control"
	case Lead:
		return "lead"
	case Continuation:
		return "continuation"
	default:
		return "unknown"
	}
}

// Decoder decides which byte pairs the text column keeps together.
type Decoder interface {
	// Name identifies the decoder in configuration.
	Name() string

	// Classify returns the class of a single byte.
	Classify(b byte) Class

	// ValidPair reports whether lead followed by next is one character.
	ValidPair(lead, next byte) bool
}

var (
	// Cyrillic pairs the UTF-8 encodings of the Russian alphabet: А..я
	// plus Ё and ё.
	Cyrillic Decoder = cyrillic{}

	// UTF8 pairs every two-byte UTF-8 sequence, U+0080..U+07FF.
	UTF8 Decoder = twoByte{}
)

// ParseDecoder returns the decoder with the given name.
func ParseDecoder(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Cyrillic.Name():
		return Cyrillic, nil
	case UTF8.Name(), "utf-8":
		return UTF8, nil
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown decoder %q", name)
	}
}

type cyrillic struct{}

func (cyrillic) Name() string { return "cyrillic" }

func (cyrillic) Classify(b byte) Class {
	switch {
	case b == 0xD0 || b == 0xD1:
		return Lead
	case b >= 0x80 && b <= 0xBF:
		return Continuation
	default:
		return ascii(b)
	}
}

func (cyrillic) ValidPair(lead, next byte) bool {
	switch lead {
	case 0xD0:
		return next == 0x81 || (next >= 0x90 && next <= 0xBF)
	case 0xD1:
		// D1 90 is not part of the alphabet
		return (next >= 0x80 && next <= 0x8F) || (next >= 0x91 && next <= 0xBF)
	default:
		return false
	}
}

type twoByte struct{}

func (twoByte) Name() string { return "utf8" }

func (twoByte) Classify(b byte) Class {
	switch {
	case b >= 0xC2 && b <= 0xDF:
		return Lead
	case b >= 0x80 && b <= 0xBF:
		return Continuation
	default:
		return ascii(b)
	}
}

func (twoByte) ValidPair(lead, next byte) bool {
	return lead >= 0xC2 && lead <= 0xDF && next >= 0x80 && next <= 0xBF
}

func ascii(b byte) Class {
	if b >= 0x20 && b <= 0x7E {
		return Printable
	}
	return Control
}

// cell is how a lone byte appears in the text column.
func cell(b byte) byte {
	if ascii(b) == Printable {
		return b
	}
	return '.'
}
