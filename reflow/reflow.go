// Package reflow breaks review comments into one sentence per line so
// they read well in a wrapped spreadsheet cell.
package reflow

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// isSpace also accepts the information separators U+001C..U+001F, so
// sentences separated by them split the same as sentences separated by spaces.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func startsSentence(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Sentences splits text wherever '.', '!' or '?' is followed by whitespace
// and then an ASCII capital letter or digit. The whitespace is dropped,
// the punctuation stays with the sentence it ends. Segments are trimmed
// and empty ones are removed.
//
// Abbreviations are not special: "Fig. 2" splits and "e.g. the" does not.
func Sentences(text string) []string {
	text = strings.TrimFunc(text, isSpace)

	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminal(r) {
			continue
		}

		j := i
		for j < len(text) {
			ws, n := utf8.DecodeRuneInString(text[j:])
			if !isSpace(ws) {
				break
			}
			j += n
		}
		if j > i && j < len(text) && startsSentence(text[j]) {
			out = appendSegment(out, text[start:i])
			start = j
			i = j
		}
	}
	return appendSegment(out, text[start:])
}

func appendSegment(out []string, s string) []string {
	if s = strings.TrimFunc(s, isSpace); s != "" {
		out = append(out, s)
	}
	return out
}

// Reflow joins the sentences of text with newlines.
func Reflow(text string) string {
	return strings.Join(Sentences(text), "\n")
}
