package hexview

import (
	"bytes"
	stderrors "errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/jmgilman/busybox/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// view renders data and returns the body lines between the header and the
// closing rule.
func view(t *testing.T, v Viewer, data []byte) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, v.View(&out, "/f", int64(len(data)), bytes.NewReader(data)))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "=== View: /f ("+strconv.Itoa(len(data))+" bytes) ===", lines[0])
	assert.Equal(t, strings.TrimSuffix(viewLegend, "\n"), lines[1])
	assert.Equal(t, strings.TrimSuffix(viewRule, "\n"), lines[2])
	assert.Equal(t, strings.TrimSuffix(viewRule, "\n"), lines[len(lines)-1])
	return lines[3 : len(lines)-1]
}

// text returns the text column of a rendered line.
func text(line string) string {
	start := strings.Index(line, " |")
	return line[start+2 : len(line)-1]
}

func TestClassify(t *testing.T) {
	tests := []struct {
		dec  Decoder
		b    byte
		want Class
	}{
		{Cyrillic, 'A', Printable},
		{Cyrillic, ' ', Printable},
		{Cyrillic, '~', Printable},
		{Cyrillic, 0x7F, Control},
		{Cyrillic, '\n', Control},
		{Cyrillic, 0xD0, Lead},
		{Cyrillic, 0xD1, Lead},
		{Cyrillic, 0xC3, Control},
		{Cyrillic, 0x90, Continuation},
		{UTF8, 0xC3, Lead},
		{UTF8, 0xC1, Control},
		{UTF8, 0xE0, Control},
		{UTF8, 0xA9, Continuation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.dec.Classify(tt.b), "%s.Classify(%#x)", tt.dec.Name(), tt.b)
	}
}

func TestCyrillicValidPair(t *testing.T) {
	tests := []struct {
		lead, next byte
		want       bool
	}{
		{0xD0, 0x90, true},  // А
		{0xD0, 0xBF, true},  // п
		{0xD1, 0x80, true},  // р
		{0xD1, 0x8F, true},  // я
		{0xD0, 0x81, true},  // Ё
		{0xD1, 0x91, true},  // ё
		{0xD1, 0xBF, true},  // upper bound of the second D1 range
		{0xD1, 0x90, false}, // gap between the D1 ranges
		{0xD0, 0x80, false},
		{0xD0, 0x8F, false},
		{0xD0, 'A', false},
		{'A', 0x90, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Cyrillic.ValidPair(tt.lead, tt.next), "ValidPair(%#x, %#x)", tt.lead, tt.next)
	}
}

func TestUTF8ValidPair(t *testing.T) {
	assert.True(t, UTF8.ValidPair(0xC3, 0xA9)) // é
	assert.True(t, UTF8.ValidPair(0xD0, 0x90)) // А
	assert.True(t, UTF8.ValidPair(0xDF, 0xBF))
	assert.False(t, UTF8.ValidPair(0xC3, 'A'))
	assert.False(t, UTF8.ValidPair(0xC0, 0x80), "overlong encodings are rejected")
	assert.False(t, Cyrillic.ValidPair(0xC3, 0xA9))
}

func TestParseDecoder(t *testing.T) {
	for name, want := range map[string]Decoder{"": Cyrillic, "cyrillic": Cyrillic, "UTF8": UTF8, "utf-8": UTF8} {
		got, err := ParseDecoder(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, "ParseDecoder(%q)", name)
	}
	_, err := ParseDecoder("latin1")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestParseOffsetMode(t *testing.T) {
	m, err := ParseOffsetMode("byte")
	require.NoError(t, err)
	assert.Equal(t, OffsetByte, m)
	assert.Equal(t, "byte", m.String())

	m, err = ParseOffsetMode("")
	require.NoError(t, err)
	assert.Equal(t, OffsetLine, m)

	_, err = ParseOffsetMode("page")
	assert.Error(t, err)
}

func TestView_ASCIIIsClassicLayout(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(rng.Intn(0x80))
	}

	lines := view(t, Viewer{}, data)
	require.Len(t, lines, 3)
	for i, line := range lines {
		end := min((i+1)*16, len(data))
		var want []byte
		for _, b := range data[i*16 : end] {
			want = append(want, cell(b))
		}
		want = append(want, bytes.Repeat([]byte(" "), 16-len(want))...)
		assert.Equal(t, string(want), text(line), "line %d", i)
	}
}

func TestView_ExactLine(t *testing.T) {
	lines := view(t, Viewer{}, []byte("Hello\x00"))
	require.Len(t, lines, 1)
	want := "00000000  48 65 6C 6C 6F 00" + strings.Repeat("   ", 2) + "  " +
		strings.Repeat("   ", 8) + " |Hello." + strings.Repeat(" ", 10) + "|"
	assert.Equal(t, want, lines[0])
}

func TestView_PairsAfterASCII(t *testing.T) {
	// "AB", seven times "А", "C": seventeen bytes
	data := append([]byte("AB"), bytes.Repeat([]byte{0xD0, 0x90}, 7)...)
	data = append(data, 'C')

	lines := view(t, Viewer{}, data)
	require.Len(t, lines, 2)

	assert.Equal(t,
		"00000000  41 42 D0 90 D0 90 D0 90  D0 90 D0 90 D0 90 D0 90  |AB"+strings.Repeat(" А", 7)+"|",
		lines[0])
	assert.Equal(t,
		"00000010  43 "+strings.Repeat("   ", 7)+" "+strings.Repeat("   ", 8)+" |C"+strings.Repeat(" ", 15)+"|",
		lines[1])
}

func TestView_PairSplitAcrossReads(t *testing.T) {
	data := append(bytes.Repeat([]byte("x"), 15), 0xD0, 0x90, 'y')

	lines := view(t, Viewer{}, data)
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Repeat("x", 15)+" ", text(lines[0]), "lead byte is held back")
	assert.True(t, strings.HasPrefix(lines[0], "00000000  78"))
	assert.True(t, strings.Contains(lines[0], "78 D0  |"), "hex column still shows the lead byte")
	assert.Equal(t, "Аy"+strings.Repeat(" ", 14), text(lines[1]), "pair joined without a space")
	assert.True(t, strings.HasPrefix(lines[1], "00000010  90 79 "))
}

func TestView_UnpairedLeadAtEOF(t *testing.T) {
	lines := view(t, Viewer{}, []byte{'a', 'b', 'c', 0xD1})
	require.Len(t, lines, 2)
	assert.Equal(t, "abc"+strings.Repeat(" ", 13), text(lines[0]))
	assert.Equal(t, "."+strings.Repeat(" ", 15), text(lines[1]))
	assert.True(t, strings.HasPrefix(lines[1], "00000010  "+strings.Repeat(" ", 49)+" |"))
}

func TestView_UnpairableCarryKeepsFullLine(t *testing.T) {
	data := append(bytes.Repeat([]byte("x"), 15), 0xD0)
	data = append(data, "0123456789ABCDEF"...)

	lines := view(t, Viewer{}, data)
	require.Len(t, lines, 2)
	assert.Equal(t, ".0123456789ABCDEF", text(lines[1]))
}

func TestView_InvalidPairInsideLine(t *testing.T) {
	lines := view(t, Viewer{}, []byte{0xD0, 'A', 0xD1, 0x90})
	require.Len(t, lines, 1)
	assert.Equal(t, ".A.."+strings.Repeat(" ", 12), text(lines[0]))
}

func TestView_NoByteLostOrDuplicated(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := [][]byte{
		[]byte("a"), []byte("Z"), []byte("7"),
		{0xD0, 0x90}, {0xD0, 0xBF}, {0xD1, 0x8F}, {0xD0, 0x81}, {0xD1, 0x91},
	}

	for round := 0; round < 50; round++ {
		var data []byte
		for n := rng.Intn(80); n > 0; n-- {
			data = append(data, alphabet[rng.Intn(len(alphabet))]...)
		}

		var joined strings.Builder
		for _, line := range view(t, Viewer{}, data) {
			joined.WriteString(text(line))
		}
		assert.Equal(t, string(data), strings.ReplaceAll(joined.String(), " ", ""), "round %d", round)
	}
}

func TestView_WidthAndOffsets(t *testing.T) {
	data := []byte("0123456789")

	lines := view(t, Viewer{Width: 4}, data)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "00000010  34 35 36 37 "))
	assert.Equal(t, "89"+strings.Repeat(" ", 14), text(lines[2]))

	lines = view(t, Viewer{Width: 4, Offsets: OffsetByte}, data)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "00000004  "))
	assert.True(t, strings.HasPrefix(lines[2], "00000008  "))

	lines = view(t, Viewer{Width: 99}, data)
	require.Len(t, lines, 1)
}

func TestView_UTF8Decoder(t *testing.T) {
	lines := view(t, Viewer{Decoder: UTF8}, []byte("caf\xC3\xA9"))
	require.Len(t, lines, 1)
	assert.Equal(t, "caf é"+strings.Repeat(" ", 11), text(lines[0]))

	lines = view(t, Viewer{}, []byte("caf\xC3\xA9"))
	assert.Equal(t, "caf.."+strings.Repeat(" ", 11), text(lines[0]))
}

func TestView_YieldsPerLine(t *testing.T) {
	var yields int
	v := Viewer{Yield: func() { yields++ }}
	view(t, v, bytes.Repeat([]byte("z"), 33))
	assert.Equal(t, 3, yields)
}

func TestView_Empty(t *testing.T) {
	assert.Empty(t, view(t, Viewer{}, nil))
}

func TestView_ReadError(t *testing.T) {
	var out bytes.Buffer
	err := Viewer{}.View(&out, "/f", 3, iotest.ErrReader(stderrors.New("flash fault")))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeIOFailure))
}

func TestDump(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Viewer{}.Dump(&out, "/f", 18, bytes.NewReader([]byte("Hello, dump world!"))))

	want := "Hex dump of '/f' (18 bytes):\n" +
		"00000000: 48 65 6C 6C 6F 2C 20 64  75 6D 70 20 77 6F 72 6C \n" +
		"00000010: 64 21 " + strings.Repeat("   ", 6) + " " + strings.Repeat("   ", 8) + "\n"
	assert.Equal(t, want, out.String())
}

func TestDump_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Viewer{}.Dump(&out, "/e", 0, bytes.NewReader(nil)))
	assert.Equal(t, "Hex dump of '/e' (0 bytes):\n", out.String())
}

func TestCat(t *testing.T) {
	var out bytes.Buffer
	body := strings.Repeat("line\n", 30)
	require.NoError(t, Viewer{Yield: func() {}}.Cat(&out, "/notes.txt", strings.NewReader(body)))
	assert.Equal(t, "--- /notes.txt ---\n"+body+"\n", out.String())
}

func TestCat_ReadError(t *testing.T) {
	var out bytes.Buffer
	err := Viewer{}.Cat(&out, "/f", iotest.ErrReader(stderrors.New("gone")))
	assert.True(t, errors.HasCode(err, errors.CodeIOFailure))
}
