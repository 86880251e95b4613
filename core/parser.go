package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references while parsing, which is
// needed when a stream's /Length is itself an indirect object.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds PDF objects from the tokens produced by a Lexer. It keeps
// one token of lookahead, plus a second when deciding whether "n g" starts
// an indirect reference.
type Parser struct {
	lexer    *Lexer
	current  *Token
	peek     *Token
	resolver ReferenceResolver

	// raw holds the whole input when the parser was created from bytes,
	// which lets parseStream recover from a wrong /Length
	raw  []byte
	base int64
}

// NewParser creates a parser reading from r
func NewParser(r io.Reader) *Parser {
	p := &Parser{lexer: NewLexer(r)}
	p.advance()
	p.advance()
	return p
}

// NewParserBytes creates a parser over data whose first byte sits at
// offset base in the enclosing file
func NewParserBytes(data []byte, base int64) *Parser {
	p := &Parser{
		lexer: NewLexerAt(bytes.NewReader(data), base),
		raw:   data,
		base:  base,
	}
	p.advance()
	p.advance()
	return p
}

// SetReferenceResolver sets the resolver used for indirect stream lengths
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// advance shifts the lookahead window by one token. Reading stops after the
// stream keyword because binary data follows it.
func (p *Parser) advance() error {
	p.current = p.peek
	if p.current.Is("stream") {
		p.peek = nil
		return nil
	}

	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			p.peek = nil
			return err
		}
		if tok.Type == TokenComment {
			continue
		}
		p.peek = tok
		return nil
	}
}

// Current returns the token the parser is positioned on
func (p *Parser) Current() *Token {
	return p.current
}

// ParseObject parses the next direct object. References "n g R" are
// returned as IndirectRef values.
func (p *Parser) ParseObject() (Object, error) {
	tok := p.current
	if tok == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		var obj Object
		switch string(tok.Value) {
		case "null":
			obj = Null{}
		case "true":
			obj = Bool(true)
		case "false":
			obj = Bool(false)
		default:
			return nil, fmt.Errorf("unexpected keyword %q at position %d", tok.Value, tok.Pos)
		}
		p.advance()
		return obj, nil

	case TokenInteger:
		return p.parseNumber()

	case TokenReal:
		val, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number: %w", err)
		}
		p.advance()
		return Real(val), nil

	case TokenString, TokenHexString:
		p.advance()
		return String(tok.Value), nil

	case TokenName:
		p.advance()
		return Name(tok.Value), nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()
	}

	return nil, fmt.Errorf("unexpected token %q at position %d", tok.Value, tok.Pos)
}

// parseNumber parses an integer, detecting "num gen R" references by
// looking two tokens ahead.
func (p *Parser) parseNumber() (Object, error) {
	first, err := strconv.ParseInt(string(p.current.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", p.current.Value, err)
	}

	if p.peek == nil || p.peek.Type != TokenInteger {
		p.advance()
		return Int(first), nil
	}

	// Look past the second integer without consuming it from the stream.
	second := p.peek
	p.advance()
	if p.peek != nil && p.peek.Type == TokenIndirectRef {
		gen, err := strconv.ParseInt(string(second.Value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid generation %q: %w", second.Value, err)
		}
		p.advance() // R
		p.advance()
		return IndirectRef{Number: int(first), Generation: int(gen)}, nil
	}

	// current is now the second integer; it is parsed by the next call
	return Int(first), nil
}

func (p *Parser) parseArray() (Object, error) {
	p.advance() // [

	arr := Array{}
	for {
		if p.current == nil || p.current.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected end of input in array")
		}
		if p.current.Type == TokenArrayEnd {
			p.advance()
			return arr, nil
		}

		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	p.advance() // <<

	dict := make(Dict)
	for {
		if p.current == nil || p.current.Type == TokenEOF {
			return nil, fmt.Errorf("unexpected end of input in dictionary")
		}
		if p.current.Type == TokenDictEnd {
			p.advance()
			return dict, nil
		}
		if p.current.Type != TokenName {
			return nil, fmt.Errorf("expected name for dictionary key at position %d, got %q", p.current.Pos, p.current.Value)
		}

		key := string(p.current.Value)
		p.advance()

		// a key directly followed by >> has no value; treat it as null
		if p.current != nil && p.current.Type == TokenDictEnd {
			continue
		}

		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing value for key '%s': %w", key, err)
		}
		if _, isNull := value.(Null); !isNull {
			dict[key] = value
		}
	}
}

// ParseIndirectObject parses "num gen obj ... endobj", including stream
// bodies. A missing endobj is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	if p.current == nil || p.current.Type != TokenInteger {
		return nil, fmt.Errorf("expected object number, got %v", p.tokenDesc())
	}
	num, err := strconv.Atoi(string(p.current.Value))
	if err != nil {
		return nil, fmt.Errorf("invalid object number: %w", err)
	}
	p.advance()

	if p.current == nil || p.current.Type != TokenInteger {
		return nil, fmt.Errorf("expected generation number, got %v", p.tokenDesc())
	}
	gen, err := strconv.Atoi(string(p.current.Value))
	if err != nil {
		return nil, fmt.Errorf("invalid generation number: %w", err)
	}
	p.advance()

	if !p.current.Is("obj") {
		return nil, fmt.Errorf("expected 'obj' keyword, got %v", p.tokenDesc())
	}
	p.advance()

	var obj Object = Null{}
	if !p.current.Is("endobj") {
		obj, err = p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("error parsing indirect object value: %w", err)
		}
	}

	if p.current.Is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("stream must follow a dictionary")
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("error parsing stream: %w", err)
		}
		obj = stream
	}

	if p.current.Is("endobj") {
		p.advance()
	}

	return &IndirectObject{
		Ref:    IndirectRef{Number: num, Generation: gen},
		Object: obj,
	}, nil
}

// parseStream reads the stream body after the stream keyword. When /Length
// is missing or wrong and the parser was created from bytes, the data is
// delimited by searching for endstream instead.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	if err := p.lexer.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("failed to skip EOL after stream keyword: %w", err)
	}
	dataStart := p.lexer.Pos()

	length, lengthErr := p.streamLength(dict)
	if lengthErr == nil {
		data, err := p.lexer.ReadBytes(length)
		if err == nil {
			tok, err := p.lexer.NextToken()
			if err == nil && tok.Is("endstream") {
				p.reload()
				return &Stream{Dict: dict, Data: data}, nil
			}
		}
	}

	if p.raw == nil {
		if lengthErr != nil {
			return nil, lengthErr
		}
		return nil, fmt.Errorf("stream data not followed by endstream")
	}
	return p.scanStream(dict, dataStart)
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	lengthObj := dict.Get("Length")
	if ref, ok := lengthObj.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, fmt.Errorf("indirect stream length requires a reference resolver")
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stream length reference: %w", err)
		}
		lengthObj = resolved
	}

	length, ok := lengthObj.(Int)
	if !ok {
		return 0, fmt.Errorf("invalid stream length: %v", lengthObj)
	}
	if length < 0 {
		return 0, fmt.Errorf("invalid stream length: %d", length)
	}
	return int(length), nil
}

// scanStream finds endstream in the raw input and restarts the lexer after it
func (p *Parser) scanStream(dict Dict, dataStart int64) (*Stream, error) {
	rel := int(dataStart - p.base)
	if rel < 0 || rel > len(p.raw) {
		return nil, fmt.Errorf("stream start %d outside input", dataStart)
	}
	idx := bytes.Index(p.raw[rel:], []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("stream missing endstream keyword")
	}

	data := p.raw[rel : rel+idx]
	data = bytes.TrimSuffix(data, []byte("\n"))
	data = bytes.TrimSuffix(data, []byte("\r"))

	after := rel + idx + len("endstream")
	p.lexer = NewLexerAt(bytes.NewReader(p.raw[after:]), p.base+int64(after))
	p.reload()

	fixed := dict.Clone()
	fixed["Length"] = Int(len(data))
	return &Stream{Dict: fixed, Data: append([]byte(nil), data...)}, nil
}

// reload refills both lookahead slots from the lexer
func (p *Parser) reload() {
	p.current = nil
	p.peek = nil
	p.advance()
	p.advance()
}

func (p *Parser) tokenDesc() string {
	if p.current == nil {
		return "end of input"
	}
	return fmt.Sprintf("%q at position %d", p.current.Value, p.current.Pos)
}
