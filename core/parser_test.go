package core

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) Object {
	t.Helper()
	obj, err := NewParser(strings.NewReader(input)).ParseObject()
	require.NoError(t, err)
	return obj
}

func TestParseScalars(t *testing.T) {
	assert.Equal(t, Null{}, parse(t, "null"))
	assert.Equal(t, Bool(true), parse(t, "true"))
	assert.Equal(t, Int(-17), parse(t, "-17"))
	assert.Equal(t, Real(3.25), parse(t, "3.25"))
	assert.Equal(t, String("x"), parse(t, "(x)"))
	assert.Equal(t, Name("Annots"), parse(t, "/Annots"))
}

func TestParseReferenceLookahead(t *testing.T) {
	p := NewParser(strings.NewReader("[1 2 3 0 R 4]"))
	obj, err := p.ParseObject()
	require.NoError(t, err)
	assert.Equal(t, Array{Int(1), Int(2), IndirectRef{Number: 3}, Int(4)}, obj)

	p = NewParser(strings.NewReader("5 6"))
	first, err := p.ParseObject()
	require.NoError(t, err)
	second, err := p.ParseObject()
	require.NoError(t, err)
	assert.Equal(t, Int(5), first)
	assert.Equal(t, Int(6), second)
	_, err = p.ParseObject()
	assert.ErrorIs(t, err, io.EOF)
}

func TestParseDict(t *testing.T) {
	obj := parse(t, "<< /Type /Annot /Subtype/FreeText /Rect [0 0 10 10] /P 3 0 R /Gone null /Empty >>")
	dict, ok := obj.(Dict)
	require.True(t, ok)

	assert.Equal(t, Name("FreeText"), dict["Subtype"])
	assert.Equal(t, IndirectRef{Number: 3}, dict["P"])
	assert.False(t, dict.Has("Gone"), "null values are dropped")
	assert.False(t, dict.Has("Empty"))
	assert.Len(t, dict, 4)
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"[1 2", "<< /A 1", "<< 1 2 >>", "endobj"} {
		_, err := NewParser(strings.NewReader(input)).ParseObject()
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseIndirectObject(t *testing.T) {
	p := NewParser(strings.NewReader("7 0 obj\n<< /Contents (Looks good) >>\nendobj"))
	obj, err := p.ParseIndirectObject()
	require.NoError(t, err)
	assert.Equal(t, IndirectRef{Number: 7}, obj.Ref)
	assert.Equal(t, Dict{"Contents": String("Looks good")}, obj.Object)

	p = NewParser(strings.NewReader("8 0 obj endobj"))
	obj, err = p.ParseIndirectObject()
	require.NoError(t, err)
	assert.Equal(t, Null{}, obj.Object)

	_, err = NewParser(strings.NewReader("8 0 R")).ParseIndirectObject()
	assert.Error(t, err)
}

func TestParseStream(t *testing.T) {
	input := "4 0 obj\n<< /Length 11 >>\nstream\r\nBT (Hi) ET\nendstream\nendobj"
	obj, err := NewParser(strings.NewReader(input)).ParseIndirectObject()
	require.NoError(t, err)

	stream, ok := obj.Object.(*Stream)
	require.True(t, ok)
	assert.Equal(t, "BT (Hi) ET\n", string(stream.Data))
}

func TestParseStreamWrongLength(t *testing.T) {
	input := "4 0 obj\n<< /Length 999 >>\nstream\nBT (Hi) ET\nendstream\nendobj\n5 0 obj 1 endobj"
	p := NewParserBytes([]byte(input), 0)
	obj, err := p.ParseIndirectObject()
	require.NoError(t, err)

	stream := obj.Object.(*Stream)
	assert.Equal(t, "BT (Hi) ET", string(stream.Data))
	assert.Equal(t, Int(10), stream.Dict["Length"])

	next, err := p.ParseIndirectObject()
	require.NoError(t, err)
	assert.Equal(t, 5, next.Ref.Number)

	// a streaming parser cannot recover
	_, err = NewParser(strings.NewReader(input)).ParseIndirectObject()
	assert.Error(t, err)
}

type lengthResolver map[int]Object

func (r lengthResolver) ResolveReference(ref IndirectRef) (Object, error) {
	if obj, ok := r[ref.Number]; ok {
		return obj, nil
	}
	return nil, fmt.Errorf("object %d not found", ref.Number)
}

func TestParseStreamIndirectLength(t *testing.T) {
	input := "4 0 obj << /Length 9 0 R >> stream\nabc\nendstream endobj"
	p := NewParser(strings.NewReader(input))
	p.SetReferenceResolver(lengthResolver{9: Int(3)})
	obj, err := p.ParseIndirectObject()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(obj.Object.(*Stream).Data))

	p = NewParser(strings.NewReader(input))
	_, err = p.ParseIndirectObject()
	assert.Error(t, err, "no resolver")
}
