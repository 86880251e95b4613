package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCMapRanges(t *testing.T) {
	cm, err := ParseCMap([]byte(`
begincmap
2 begincodespacerange
<00> <7F>
<8000> <FFFF>
endcodespacerange
1 beginbfrange
<8001> <8003> [<0058> <0059> <D83DDE00>]
endbfrange
1 beginbfchar
<41> /Euro
endbfchar
endcmap`))
	require.NoError(t, err)
	assert.True(t, cm.HasCodespace())
	assert.Equal(t, 4, cm.Len())

	s, ok := cm.Lookup(0x8003)
	require.True(t, ok)
	assert.Equal(t, "😀", s)

	s, ok = cm.Lookup(0x41)
	require.True(t, ok)
	assert.Equal(t, "€", s)

	_, ok = cm.Lookup(0x42)
	assert.False(t, ok)
}

func TestCMapNextCode(t *testing.T) {
	cm, err := ParseCMap([]byte("1 begincodespacerange <00> <7F> endcodespacerange 1 begincodespacerange <8000> <FFFF> endcodespacerange"))
	require.NoError(t, err)

	code, n := cm.NextCode([]byte{0x41, 0x80, 0x01})
	assert.Equal(t, uint32(0x41), code)
	assert.Equal(t, 1, n)

	code, n = cm.NextCode([]byte{0x80, 0x01})
	assert.Equal(t, uint32(0x8001), code)
	assert.Equal(t, 2, n)

	// a lone high byte matches no range and is consumed on its own
	code, n = cm.NextCode([]byte{0x90})
	assert.Equal(t, uint32(0x90), code)
	assert.Equal(t, 1, n)
}

func TestParseCMapIgnoresNoise(t *testing.T) {
	cm, err := ParseCMap([]byte(`%!PS-Adobe-3.0 Resource-CMap
/CMapName /Adobe-Identity-UCS def
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
1 beginbfchar <0001> <0048> endbfchar`))
	require.NoError(t, err)
	assert.False(t, cm.HasCodespace())

	s, ok := cm.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "H", s)
}
