package hexview

import "fmt"

// lineWidth is the number of hex slots and text cells on every line.
const lineWidth = 16

// carry is a lead byte whose continuation has not been read yet. At most
// one byte crosses a read boundary.
type carry struct {
	b  byte
	ok bool
}

// appendLine renders raw (at most lineWidth bytes) after the carry from
// the previous line and returns the carry for the next one.
//
// The hex column shows only raw. In the text column a carried pair takes
// one cell and is written without a leading space; a pair found inside raw
// takes two cells and is preceded by a space. A line that starts with a
// carry gets one extra text cell, so no byte is ever dropped for lack of
// room.
func appendLine(dst []byte, dec Decoder, offset int64, raw []byte, in carry) ([]byte, carry) {
	dst = fmt.Appendf(dst, "%08X  ", offset)
	for i := 0; i < lineWidth; i++ {
		if i < len(raw) {
			dst = fmt.Appendf(dst, "%02X ", raw[i])
		} else {
			dst = append(dst, "   "...)
		}
		if i == 7 {
			dst = append(dst, ' ')
		}
	}
	dst = append(dst, " |"...)

	var out carry
	pos, i, budget := 0, 0, lineWidth
	if in.ok {
		budget++
		if len(raw) > 0 && dec.ValidPair(in.b, raw[0]) {
			dst = append(dst, in.b, raw[0])
			i = 1
		} else {
			dst = append(dst, cell(in.b))
		}
		pos++
	}

	for i < len(raw) && pos < budget {
		b := raw[i]
		if dec.Classify(b) != Lead {
			dst = append(dst, cell(b))
			pos++
			i++
			continue
		}
		if i+1 == len(raw) {
			out = carry{b: b, ok: true}
			break
		}
		if !dec.ValidPair(b, raw[i+1]) {
			dst = append(dst, cell(b))
			pos++
			i++
			continue
		}
		if pos+2 > budget {
			out = carry{b: b, ok: true}
			break
		}
		dst = append(dst, ' ', b, raw[i+1])
		pos += 2
		i += 2
	}

	for ; pos < lineWidth; pos++ {
		dst = append(dst, ' ')
	}
	return append(dst, "|\n"...), out
}
