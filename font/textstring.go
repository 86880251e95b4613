package font

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// DecodeTextString decodes a PDF text string. Strings starting with the
// FE FF byte order mark are UTF-16BE, a UTF-8 BOM marks UTF-8 (PDF 2.0),
// and everything else is PDFDocEncoding. The result is NFC normalised.
func DecodeTextString(raw []byte) string {
	switch {
	case bytes.HasPrefix(raw, []byte{0xfe, 0xff}):
		return norm.NFC.String(stripLanguageEscapes(decodeUTF16BE(raw[2:])))
	case bytes.HasPrefix(raw, []byte{0xff, 0xfe}):
		// little endian is not allowed, but some producers write it anyway
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw[2:])
		if err == nil {
			return norm.NFC.String(string(out))
		}
	case bytes.HasPrefix(raw, []byte{0xef, 0xbb, 0xbf}):
		return norm.NFC.String(string(raw[3:]))
	}

	var b strings.Builder
	for _, c := range raw {
		if r := pdfDoc[c]; r != 0 {
			b.WriteRune(r)
		}
	}
	return norm.NFC.String(b.String())
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}
	out, err := utf16be.NewDecoder().Bytes(data)
	if err != nil {
		return ""
	}
	return string(out)
}

// stripLanguageEscapes drops the ESC-delimited language tags that may be
// embedded in UTF-16 text strings.
func stripLanguageEscapes(s string) string {
	for {
		start := strings.IndexRune(s, '\x1b')
		if start < 0 {
			return s
		}
		end := strings.IndexRune(s[start+1:], '\x1b')
		if end < 0 {
			return s[:start]
		}
		s = s[:start] + s[start+1+end+1:]
	}
}

// EncodeTextString encodes s as a PDF text string: PDFDocEncoding when
// every rune has a code there, UTF-16BE with a byte order mark otherwise.
func EncodeTextString(s string) []byte {
	if out, ok := encodePDFDoc(s); ok {
		return out
	}
	out, err := utf16be.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return append([]byte{0xfe, 0xff}, out...)
}

func encodePDFDoc(s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 && (r >= 0x20 || r == '\n' || r == '\r' || r == '\t') {
			out = append(out, byte(r))
			continue
		}
		code, ok := pdfDocReverse[r]
		if !ok {
			return nil, false
		}
		out = append(out, code)
	}
	return out, true
}

var pdfDocReverse = func() map[rune]byte {
	m := make(map[rune]byte)
	for i := 0x80; i < 256; i++ {
		if r := pdfDoc[i]; r != 0 {
			m[r] = byte(i)
		}
	}
	return m
}()
