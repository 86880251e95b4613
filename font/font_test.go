package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/crsheet/core"
)

// objects resolves references against an in-memory object table
type objects map[int]core.Object

func (o objects) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return o[ref.Number], nil
	}
	return obj, nil
}

func TestStandardFontDefaults(t *testing.T) {
	f, err := Load("F1", core.Dict{
		"Type":     core.Name("Font"),
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name("Helvetica"),
		"Encoding": core.Name("WinAnsiEncoding"),
	}, objects{})
	require.NoError(t, err)

	assert.True(t, f.IsStandardFont())
	assert.False(t, f.IsComposite())
	assert.Equal(t, "Café – ok", f.DecodeString([]byte("Caf\xe9 \x96 ok")))

	glyphs := f.Decode([]byte("Hi "))
	require.Len(t, glyphs, 3)
	assert.Equal(t, 722.0, glyphs[0].Width)
	assert.Equal(t, 222.0, glyphs[1].Width)
	assert.True(t, glyphs[2].WordSpace)
	assert.Equal(t, 278.0, glyphs[2].Width)
}

func TestStandardMetricsFamilies(t *testing.T) {
	courier := NewFont("F", "Courier-Bold", "Type1")
	assert.Equal(t, 600.0, courier.Width('i'))

	times := NewFont("F", "Times-Roman", "Type1")
	assert.Equal(t, 250.0, times.Width(' '))

	bold := NewFont("F", "ABCDEF+Arial-BoldMT", "TrueType")
	assert.Equal(t, "Arial-BoldMT", bold.BaseFont)
	assert.Equal(t, 611.0, bold.Width('b'))

	unknown := NewFont("F", "FancyScript", "TrueType")
	assert.False(t, unknown.IsStandardFont())
	assert.Equal(t, 556.0, unknown.Width(0xe9))
}

func TestWidthsArrayAndDifferences(t *testing.T) {
	f, err := Load("F2", core.Dict{
		"Subtype":   core.Name("Type1"),
		"BaseFont":  core.Name("Custom"),
		"FirstChar": core.Int(65),
		"Widths":    core.IndirectRef{Number: 9},
		"Encoding": core.Dict{
			"BaseEncoding": core.Name("MacRomanEncoding"),
			"Differences":  core.Array{core.Int(65), core.Name("quoteright"), core.Name("uni263A"), core.Int(100), core.Name("fi")},
		},
	}, objects{9: core.Array{core.Int(400), core.Real(512.5)}})
	require.NoError(t, err)

	assert.Equal(t, "MacRomanEncoding", f.Encoding)
	assert.Equal(t, "’☺ﬁ", f.DecodeString([]byte{65, 66, 100}))
	assert.Equal(t, 400.0, f.Width(65))
	assert.Equal(t, 512.5, f.Width(66))
	// MacRoman 0x8E is e acute
	assert.Equal(t, "é", f.DecodeString([]byte{0x8e}))
}

func TestCompositeFont(t *testing.T) {
	cmap := []byte(`/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<0011> <00410042>
endbfchar
1 beginbfrange
<0020> <0022> <0061>
endbfrange
endcmap`)
	toUnicode, err := core.NewFlateStream(nil, cmap)
	require.NoError(t, err)

	f, err := Load("F3", core.Dict{
		"Subtype":         core.Name("Type0"),
		"BaseFont":        core.Name("XYZABC+NotoSans"),
		"Encoding":        core.Name("Identity-H"),
		"ToUnicode":       core.IndirectRef{Number: 5},
		"DescendantFonts": core.Array{core.IndirectRef{Number: 6}},
	}, objects{
		5: toUnicode,
		6: core.Dict{
			"DW": core.Int(900),
			"W":  core.Array{core.Int(3), core.Array{core.Int(250)}, core.Int(32), core.Int(34), core.Int(480)},
		},
	})
	require.NoError(t, err)
	require.True(t, f.IsComposite())

	glyphs := f.Decode([]byte{0x00, 0x11, 0x00, 0x03, 0x00, 0x21, 0x00, 0x50})
	require.Len(t, glyphs, 4)
	assert.Equal(t, "AB", glyphs[0].Text)
	assert.Equal(t, " ", glyphs[1].Text)
	assert.False(t, glyphs[1].WordSpace, "two-byte codes never take word spacing")
	assert.Equal(t, 250.0, glyphs[1].Width)
	assert.Equal(t, "b", glyphs[2].Text)
	assert.Equal(t, 480.0, glyphs[2].Width)
	assert.Equal(t, "", glyphs[3].Text)
	assert.Equal(t, 900.0, glyphs[3].Width)
}

func TestLoadNilDict(t *testing.T) {
	_, err := Load("F", nil, objects{})
	assert.Error(t, err)
}

func TestGlyphRune(t *testing.T) {
	tests := []struct {
		name string
		want rune
		ok   bool
	}{
		{"a", 'a', true},
		{"Q", 'Q', true},
		{"seven", '7', true},
		{"emdash", '—', true},
		{"uni00E9", 'é', true},
		{"u1F600", '😀', true},
		{"a.sc", 'a', true},
		{"g123", 0, false},
	}
	for _, tt := range tests {
		r, ok := GlyphRune(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, r, tt.name)
	}
}
