package assets

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeOutput converts raw tool output to a Go string. The tool writes
// UTF-16 when redirected on some systems and the ANSI code page otherwise.
func decodeOutput(raw []byte) string {
	var s string
	switch {
	case bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		decoded, err := dec.Bytes(raw)
		if err != nil {
			s = string(raw)
		} else {
			s = string(decoded)
		}
	case utf8.Valid(raw):
		s = string(raw)
	default:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			s = string(raw)
		} else {
			s = string(decoded)
		}
	}
	return strings.ReplaceAll(s, "\r\n", "\n")
}
