package contentstream

import (
	"bytes"
	"strconv"

	"github.com/tsawler/crsheet/core"
)

// Operation is one operator together with the operands that preceded it
type Operation struct {
	Operator string
	Operands []core.Object
}

// maxNesting bounds array and dictionary depth in operands
const maxNesting = 64

// Parser splits a content stream into operations
type Parser struct {
	lexer    *core.Lexer
	operands []core.Object
	ops      []Operation
	// Skipped counts malformed tokens that were dropped
	Skipped int
}

// NewParser creates a parser over content stream data
func NewParser(data []byte) *Parser {
	return &Parser{lexer: core.NewLexer(bytes.NewReader(data))}
}

// Parse returns the operations of the stream in order. Bytes the lexer
// cannot make sense of are skipped, so a damaged stream still yields the
// operations around the damage.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			p.Skipped++
			continue
		}
		if tok.Type == core.TokenEOF {
			return p.ops, nil
		}
		if tok.Type == core.TokenComment {
			continue
		}

		if tok.Type == core.TokenKeyword {
			switch string(tok.Value) {
			case "true", "false", "null":
				p.operands = append(p.operands, keywordObject(tok))
				continue
			}
			p.emit(string(tok.Value))
			if tok.Is("ID") {
				if err := p.lexer.SkipInlineImage(); err != nil {
					return p.ops, nil
				}
				p.ops = append(p.ops, Operation{Operator: "EI"})
			}
			continue
		}

		obj, ok := p.object(tok, 0)
		if !ok {
			p.Skipped++
			continue
		}
		p.operands = append(p.operands, obj)
	}
}

func (p *Parser) emit(operator string) {
	p.ops = append(p.ops, Operation{Operator: operator, Operands: p.operands})
	p.operands = nil
}

// object converts tok, and for arrays and dictionaries the tokens that
// follow it, into an operand
func (p *Parser) object(tok *core.Token, depth int) (core.Object, bool) {
	switch tok.Type {
	case core.TokenInteger:
		v, err := strconv.ParseInt(string(tok.Value), 10, 64)
		if err != nil {
			return nil, false
		}
		return core.Int(v), true
	case core.TokenReal:
		v, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, false
		}
		return core.Real(v), true
	case core.TokenString, core.TokenHexString:
		return core.String(tok.Value), true
	case core.TokenName:
		return core.Name(tok.Value), true
	case core.TokenKeyword:
		switch string(tok.Value) {
		case "true", "false", "null":
			return keywordObject(tok), true
		}
	case core.TokenArrayStart:
		if depth < maxNesting {
			return p.array(depth + 1)
		}
	case core.TokenDictStart:
		if depth < maxNesting {
			return p.dict(depth + 1)
		}
	}
	return nil, false
}

func (p *Parser) array(depth int) (core.Object, bool) {
	arr := core.Array{}
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			p.Skipped++
			continue
		}
		switch tok.Type {
		case core.TokenEOF:
			return arr, true
		case core.TokenArrayEnd:
			return arr, true
		case core.TokenComment:
			continue
		}
		if obj, ok := p.object(tok, depth); ok {
			arr = append(arr, obj)
		} else {
			p.Skipped++
		}
	}
}

func (p *Parser) dict(depth int) (core.Object, bool) {
	d := core.Dict{}
	var key string
	haveKey := false
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			p.Skipped++
			continue
		}
		switch tok.Type {
		case core.TokenEOF, core.TokenDictEnd:
			return d, true
		case core.TokenComment:
			continue
		}
		if !haveKey {
			if tok.Type == core.TokenName {
				key, haveKey = string(tok.Value), true
			} else {
				p.Skipped++
			}
			continue
		}
		if obj, ok := p.object(tok, depth); ok {
			d[key] = obj
		} else {
			p.Skipped++
		}
		haveKey = false
	}
}

func keywordObject(tok *core.Token) core.Object {
	switch string(tok.Value) {
	case "true":
		return core.Bool(true)
	case "false":
		return core.Bool(false)
	}
	return core.Null{}
}
