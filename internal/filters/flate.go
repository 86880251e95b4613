package filters

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// Params holds decode parameters taken from a stream's /DecodeParms
type Params map[string]interface{}

// Int returns the integer parameter key, or def when absent
func (p Params) Int(key string, def int) int {
	if p == nil {
		return def
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// FlateDecode inflates zlib data and undoes any /Predictor. A stream that
// ends early still yields the bytes recovered before the break, since
// truncated content streams are common in the wild.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	out, err := inflate(data)
	if err != nil {
		return nil, err
	}

	predictor := params.Int("Predictor", 1)
	if predictor <= 1 {
		return out, nil
	}
	return unpredict(out, predictor, params)
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		if (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, zlib.ErrChecksum)) && buf.Len() > 0 {
			return buf.Bytes(), nil
		}
		return nil, fmt.Errorf("failed to inflate: %w", err)
	}
	return buf.Bytes(), nil
}

// rowGeometry returns bytes per pixel and bytes per row for the parameters
func rowGeometry(params Params) (bpp, rowLen int) {
	colors := params.Int("Colors", 1)
	bpc := params.Int("BitsPerComponent", 8)
	columns := params.Int("Columns", 1)

	bpp = (colors*bpc + 7) / 8
	if bpp < 1 {
		bpp = 1
	}
	rowLen = (columns*colors*bpc + 7) / 8
	return bpp, rowLen
}

func unpredict(data []byte, predictor int, params Params) ([]byte, error) {
	bpp, rowLen := rowGeometry(params)
	if rowLen <= 0 {
		return nil, fmt.Errorf("invalid predictor row length %d", rowLen)
	}

	switch {
	case predictor == 2:
		return tiffUnpredict(data, bpp, rowLen, params.Int("BitsPerComponent", 8))
	case predictor >= 10 && predictor <= 15:
		return pngUnpredict(data, bpp, rowLen)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", predictor)
}

// tiffUnpredict reverses TIFF predictor 2 for 8-bit components
func tiffUnpredict(data []byte, bpp, rowLen, bpc int) ([]byte, error) {
	if bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor needs 8 bits per component, got %d", bpc)
	}
	out := append([]byte(nil), data...)
	for start := 0; start < len(out); start += rowLen {
		end := start + rowLen
		if end > len(out) {
			end = len(out)
		}
		for i := start + bpp; i < end; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out, nil
}

// pngUnpredict reverses PNG row filters. Every row carries its own filter
// type byte; a short final row is decoded as far as it goes.
func pngUnpredict(data []byte, bpp, rowLen int) ([]byte, error) {
	stride := rowLen + 1
	out := make([]byte, 0, len(data)/stride*rowLen)
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)

	for start := 0; start < len(data); start += stride {
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		filter := data[start]
		row := data[start+1 : end]

		for i := range cur {
			cur[i] = 0
		}
		for i, raw := range row {
			var left, up, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up = prev[i]

			switch filter {
			case 0:
				cur[i] = raw
			case 1:
				cur[i] = raw + left
			case 2:
				cur[i] = raw + up
			case 3:
				cur[i] = raw + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = raw + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d in row %d", filter, start/stride)
			}
		}

		out = append(out, cur[:len(row)]...)
		prev, cur = cur, prev
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
