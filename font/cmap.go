package font

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/tsawler/crsheet/core"
)

// codespaceRange is one entry of a begincodespacerange block
type codespaceRange struct {
	low, high []byte
}

func (r codespaceRange) contains(code []byte) bool {
	if len(code) != len(r.low) {
		return false
	}
	for i, b := range code {
		if b < r.low[i] || b > r.high[i] {
			return false
		}
	}
	return true
}

// CMap is a parsed ToUnicode character map
type CMap struct {
	codespaces []codespaceRange
	mappings   map[uint32]string
}

// NewCMap creates an empty CMap
func NewCMap() *CMap {
	return &CMap{mappings: make(map[uint32]string)}
}

// ParseToUnicodeCMap decodes and parses a ToUnicode stream
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode ToUnicode stream: %w", err)
	}
	return ParseCMap(data)
}

// ParseCMap parses CMap program text. Only the operators that matter for
// Unicode mapping are interpreted; everything else is skipped.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	lexer := core.NewLexer(bytes.NewReader(data))

	var operands []*core.Token
	var array [][]byte
	var arrays [][][]byte
	inArray := false

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return cm, fmt.Errorf("failed to tokenize CMap: %w", err)
		}

		switch tok.Type {
		case core.TokenEOF:
			return cm, nil
		case core.TokenComment:
			continue
		case core.TokenArrayStart:
			inArray = true
			array = nil
			continue
		case core.TokenArrayEnd:
			inArray = false
			// the marker stands in for the array among the operands
			operands = append(operands, &core.Token{Type: core.TokenArrayEnd})
			arrays = append(arrays, array)
			continue
		case core.TokenHexString, core.TokenString:
			if inArray {
				array = append(array, tok.Value)
				continue
			}
		case core.TokenKeyword:
			switch string(tok.Value) {
			case "endcodespacerange":
				cm.addCodespaces(operands)
			case "endbfchar":
				cm.addBfChars(operands)
			case "endbfrange":
				cm.addBfRanges(operands, arrays)
			}
			operands = operands[:0]
			arrays = nil
			continue
		}
		operands = append(operands, tok)
	}
}

func (cm *CMap) addCodespaces(ops []*core.Token) {
	for i := 0; i+1 < len(ops); i += 2 {
		lo, hi := ops[i].Value, ops[i+1].Value
		if len(lo) == 0 || len(lo) != len(hi) || len(lo) > 4 {
			continue
		}
		cm.codespaces = append(cm.codespaces, codespaceRange{low: lo, high: hi})
	}
}

func (cm *CMap) addBfChars(ops []*core.Token) {
	for i := 0; i+1 < len(ops); i += 2 {
		src, dst := ops[i], ops[i+1]
		if src.Type != core.TokenHexString && src.Type != core.TokenString {
			continue
		}
		if s, ok := destination(dst); ok {
			cm.mappings[codeValue(src.Value)] = s
		}
	}
}

func (cm *CMap) addBfRanges(ops []*core.Token, arrays [][][]byte) {
	for i := 0; i+2 < len(ops); i += 3 {
		lo, hi, dst := codeValue(ops[i].Value), codeValue(ops[i+1].Value), ops[i+2]
		if hi < lo || hi-lo > 0xffff {
			continue
		}

		if dst.Type == core.TokenArrayEnd {
			if len(arrays) == 0 {
				continue
			}
			items := arrays[0]
			arrays = arrays[1:]
			for j, item := range items {
				if lo+uint32(j) > hi {
					break
				}
				cm.mappings[lo+uint32(j)] = decodeUTF16BE(item)
			}
			continue
		}

		base := []rune(decodeUTF16BE(dst.Value))
		if len(base) == 0 {
			continue
		}
		for code := lo; code <= hi; code++ {
			out := append([]rune(nil), base...)
			out[len(out)-1] += rune(code - lo)
			cm.mappings[code] = string(out)
		}
	}
}

// destination decodes a bfchar target, which is UTF-16BE hex or a glyph name
func destination(tok *core.Token) (string, bool) {
	switch tok.Type {
	case core.TokenHexString, core.TokenString:
		return decodeUTF16BE(tok.Value), true
	case core.TokenName:
		if r, ok := GlyphRune(string(tok.Value)); ok {
			return string(r), true
		}
	}
	return "", false
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// HasCodespace reports whether the CMap declared its code lengths
func (cm *CMap) HasCodespace() bool {
	return len(cm.codespaces) > 0
}

// NextCode splits the first character code off data using the declared
// codespace ranges. It returns the code and the number of bytes consumed.
func (cm *CMap) NextCode(data []byte) (uint32, int) {
	for n := 1; n <= 4 && n <= len(data); n++ {
		for _, r := range cm.codespaces {
			if r.contains(data[:n]) {
				return codeValue(data[:n]), n
			}
		}
	}
	// no range matched: consume the shortest declared length
	n := 1
	if len(cm.codespaces) > 0 {
		n = len(cm.codespaces[0].low)
	}
	if n > len(data) {
		n = len(data)
	}
	return codeValue(data[:n]), n
}

// Lookup returns the Unicode text for a code
func (cm *CMap) Lookup(code uint32) (string, bool) {
	s, ok := cm.mappings[code]
	return s, ok && utf8.ValidString(s)
}

// Len returns the number of mapped codes
func (cm *CMap) Len() int {
	return len(cm.mappings)
}
