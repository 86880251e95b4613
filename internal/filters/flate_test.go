package filters

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFlateDecodePlain(t *testing.T) {
	original := []byte("BT /F1 12 Tf 72 720 Td (CLIENT NAME: Acme) Tj ET")
	got, err := FlateDecode(deflate(t, original), nil)
	require.NoError(t, err)
	assert.Equal(t, original, got)

	got, err = FlateDecode(deflate(t, original), Params{"Predictor": 1})
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestFlateDecodeTruncated(t *testing.T) {
	original := bytes.Repeat([]byte("annotation text "), 400)
	compressed := deflate(t, original)

	// checksum cut short after a complete deflate body
	got, err := FlateDecode(compressed[:len(compressed)-2], nil)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestFlateDecodeGarbage(t *testing.T) {
	_, err := FlateDecode([]byte("not zlib at all"), nil)
	assert.Error(t, err)
}

func TestPNGPredictors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"none", []byte{0, 1, 2, 3, 0, 4, 5, 6}, []byte{1, 2, 3, 4, 5, 6}},
		{"sub", []byte{1, 1, 1, 1, 1, 4, 1, 1}, []byte{1, 2, 3, 4, 5, 6}},
		{"up", []byte{0, 1, 2, 3, 2, 3, 3, 3}, []byte{1, 2, 3, 4, 5, 6}},
		{"average", []byte{0, 2, 4, 6, 3, 1, 1, 1}, []byte{2, 4, 6, 2, 4, 6}},
		{"paeth", []byte{0, 1, 2, 3, 4, 0, 0, 0}, []byte{1, 2, 3, 1, 2, 3}},
		{"short last row", []byte{0, 1, 2, 3, 2, 1}, []byte{1, 2, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlateDecode(deflate(t, tt.in), Params{"Predictor": 12, "Columns": 3})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Row layout used by xref streams: W [1 2 1], five columns.
func TestPNGUpPredictorXRefRows(t *testing.T) {
	rows := [][]byte{
		{1, 0, 15, 0},
		{1, 0, 90, 0},
		{2, 0, 5, 1},
	}
	var encoded []byte
	prev := make([]byte, 4)
	for _, row := range rows {
		encoded = append(encoded, 2)
		for i, b := range row {
			encoded = append(encoded, b-prev[i])
		}
		prev = row
	}

	got, err := FlateDecode(deflate(t, encoded), Params{"Predictor": 12, "Columns": 4})
	require.NoError(t, err)
	assert.Equal(t, bytes.Join(rows, nil), got)
}

func TestPNGUnknownFilterType(t *testing.T) {
	_, err := FlateDecode(deflate(t, []byte{9, 1, 2, 3}), Params{"Predictor": 10, "Columns": 3})
	assert.Error(t, err)
}

func TestTIFFPredictor(t *testing.T) {
	got, err := FlateDecode(deflate(t, []byte{10, 1, 1, 5, 2, 2}), Params{"Predictor": 2, "Columns": 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 11, 12, 5, 7, 9}, got)

	_, err = FlateDecode(deflate(t, []byte{1}), Params{"Predictor": 2, "BitsPerComponent": 4})
	assert.Error(t, err)
}

func TestUnsupportedPredictor(t *testing.T) {
	_, err := FlateDecode(deflate(t, []byte{1, 2}), Params{"Predictor": 7})
	assert.Error(t, err)
}

func TestParamsInt(t *testing.T) {
	p := Params{"a": 3, "b": int64(4), "c": 5.0, "d": "x"}
	assert.Equal(t, 3, p.Int("a", 0))
	assert.Equal(t, 4, p.Int("b", 0))
	assert.Equal(t, 5, p.Int("c", 0))
	assert.Equal(t, 9, p.Int("d", 9))
	assert.Equal(t, 1, Params(nil).Int("x", 1))
}
