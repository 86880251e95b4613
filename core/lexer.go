package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// TokenType identifies a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // obj, endobj, stream, R, content stream operators
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>, Value holds the decoded bytes
	TokenName        // /Type, Value holds the name without the slash
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R
)

// Token is a single lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

// Is reports whether the token is the given keyword
func (t *Token) Is(keyword string) bool {
	return t != nil && t.Type == TokenKeyword && string(t.Value) == keyword
}

// Lexer splits PDF syntax into tokens. It is shared by the object parser,
// the content stream parser and the CMap parser.
type Lexer struct {
	reader *bufio.Reader
	pos    int64
}

// NewLexer creates a lexer reading from r
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{reader: bufio.NewReader(r)}
}

// NewLexerAt creates a lexer whose positions start at base
func NewLexerAt(r io.Reader, base int64) *Lexer {
	return &Lexer{reader: bufio.NewReader(r), pos: base}
}

// Pos returns the offset of the next unread byte
func (l *Lexer) Pos() int64 {
	return l.pos
}

// NextToken returns the next token, skipping whitespace. Comments are
// returned as tokens so callers can decide whether they matter.
func (l *Lexer) NextToken() (*Token, error) {
	if err := l.skipWhitespace(); err != nil && err != io.EOF {
		return nil, err
	}

	b, err := l.peek()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: l.pos}, nil
	}
	if err != nil {
		return nil, err
	}

	start := l.pos
	switch b {
	case '%':
		return l.readComment()
	case '[':
		l.readByte()
		return &Token{Type: TokenArrayStart, Value: []byte{'['}, Pos: start}, nil
	case ']':
		l.readByte()
		return &Token{Type: TokenArrayEnd, Value: []byte{']'}, Pos: start}, nil
	case '{', '}':
		l.readByte()
		return &Token{Type: TokenKeyword, Value: []byte{b}, Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if next, err := l.reader.Peek(2); err == nil && next[1] == '<' {
			l.readByte()
			l.readByte()
			return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if next, err := l.reader.Peek(2); err == nil && next[1] == '>' {
			l.readByte()
			l.readByte()
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: start}, nil
		}
		l.readByte()
		return nil, fmt.Errorf("unexpected '>' at position %d", start)
	case '/':
		return l.readName()
	case ')':
		l.readByte()
		return nil, fmt.Errorf("unbalanced ')' at position %d", start)
	}

	return l.readRegular()
}

func (l *Lexer) readByte() (byte, error) {
	b, err := l.reader.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	return b, nil
}

func (l *Lexer) peek() (byte, error) {
	b, err := l.reader.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (l *Lexer) skipWhitespace() error {
	for {
		b, err := l.peek()
		if err != nil {
			return err
		}
		if !isWhitespace(b) {
			return nil
		}
		l.readByte()
	}
}

func (l *Lexer) readComment() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if b == '\r' || b == '\n' {
			break
		}
		l.readByte()
		buf.WriteByte(b)
	}
	return &Token{Type: TokenComment, Value: buf.Bytes(), Pos: start}, nil
}

// readString reads a literal string, resolving escapes and balanced parentheses
func (l *Lexer) readString() (*Token, error) {
	start := l.pos
	l.readByte() // (

	var buf bytes.Buffer
	depth := 1
	for {
		b, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated string at position %d: %w", start, err)
		}

		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
			buf.WriteByte(b)
		case '\r':
			// an unescaped end-of-line in a literal string reads as LF
			if next, err := l.peek(); err == nil && next == '\n' {
				l.readByte()
			}
			buf.WriteByte('\n')
		case '\\':
			if err := l.readEscape(&buf); err != nil {
				return nil, err
			}
		default:
			buf.WriteByte(b)
		}
	}
}

func (l *Lexer) readEscape(buf *bytes.Buffer) error {
	next, err := l.readByte()
	if err != nil {
		return err
	}
	switch next {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if peek, err := l.peek(); err == nil && peek == '\n' {
			l.readByte()
		}
	case '\n':
		// line continuation
	case '0', '1', '2', '3', '4', '5', '6', '7':
		val := int(next - '0')
		for i := 0; i < 2; i++ {
			peek, err := l.peek()
			if err != nil || peek < '0' || peek > '7' {
				break
			}
			l.readByte()
			val = val*8 + int(peek-'0')
		}
		buf.WriteByte(byte(val))
	default:
		buf.WriteByte(next)
	}
	return nil
}

// readHexString reads <...> and returns the decoded bytes. An odd digit
// count is padded with a trailing zero.
func (l *Lexer) readHexString() (*Token, error) {
	start := l.pos
	l.readByte() // <

	var digits []byte
	for {
		b, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string at position %d: %w", start, err)
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, fmt.Errorf("invalid hex digit '%c' at position %d", b, l.pos-1)
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return &Token{Type: TokenHexString, Value: out, Pos: start}, nil
}

func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	l.readByte() // /

	var buf bytes.Buffer
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.readByte()

		if b == '#' {
			if hex, err := l.reader.Peek(2); err == nil && isHexDigit(hex[0]) && isHexDigit(hex[1]) {
				l.readByte()
				l.readByte()
				buf.WriteByte(hexValue(hex[0])<<4 | hexValue(hex[1]))
				continue
			}
		}
		buf.WriteByte(b)
	}
	return &Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

// readRegular reads a run of regular characters and classifies it as a
// number, the R reference marker or a keyword.
func (l *Lexer) readRegular() (*Token, error) {
	start := l.pos
	var buf bytes.Buffer
	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.readByte()
		buf.WriteByte(b)
	}

	value := buf.Bytes()
	if len(value) == 0 {
		b, _ := l.readByte()
		return nil, fmt.Errorf("unexpected character '%c' at position %d", b, start)
	}

	switch {
	case isInteger(value):
		return &Token{Type: TokenInteger, Value: value, Pos: start}, nil
	case isReal(value):
		return &Token{Type: TokenReal, Value: value, Pos: start}, nil
	case len(value) == 1 && value[0] == 'R':
		return &Token{Type: TokenIndirectRef, Value: value, Pos: start}, nil
	}
	return &Token{Type: TokenKeyword, Value: value, Pos: start}, nil
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword: CRLF, LF, or a lone CR written by some producers.
func (l *Lexer) SkipStreamEOL() error {
	for {
		b, err := l.peek()
		if err != nil {
			return err
		}
		if b != ' ' && b != '\t' {
			break
		}
		l.readByte()
	}

	b, err := l.peek()
	if err != nil {
		return err
	}
	switch b {
	case '\r':
		l.readByte()
		if next, err := l.peek(); err == nil && next == '\n' {
			l.readByte()
		}
	case '\n':
		l.readByte()
	}
	return nil
}

// ReadBytes reads exactly n bytes of binary data
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	read, err := io.ReadFull(l.reader, data)
	l.pos += int64(read)
	if err != nil {
		return data[:read], fmt.Errorf("unexpected EOF: expected %d bytes, got %d", n, read)
	}
	return data, nil
}

// SkipInlineImage consumes inline image data following the ID operator,
// up to and including the EI operator.
func (l *Lexer) SkipInlineImage() error {
	// one whitespace byte separates ID from the data
	if b, err := l.peek(); err == nil && isWhitespace(b) {
		l.readByte()
	}

	// window holds the last three bytes read; EI must be preceded and
	// followed by whitespace (or end of data)
	window := [3]byte{' ', 0, 0}
	for {
		b, err := l.readByte()
		if err != nil {
			return fmt.Errorf("inline image without EI: %w", err)
		}
		window[0], window[1], window[2] = window[1], window[2], b
		if isWhitespace(window[0]) && window[1] == 'E' && window[2] == 'I' {
			next, err := l.peek()
			if err == io.EOF || (err == nil && (isWhitespace(next) || isDelimiter(next))) {
				return nil
			}
		}
	}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

func isInteger(v []byte) bool {
	_, err := strconv.ParseInt(string(v), 10, 64)
	return err == nil
}

func isReal(v []byte) bool {
	if bytes.ContainsAny(v, "eEnNiI") {
		// PDF has no exponent notation, and Inf/NaN are not numbers here
		return false
	}
	_, err := strconv.ParseFloat(string(v), 64)
	return err == nil
}
