package font

import (
	"fmt"
	"strings"

	"github.com/tsawler/crsheet/core"
)

// Resolver resolves indirect references inside font dictionaries
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Glyph is one decoded character code
type Glyph struct {
	Code  uint32
	Text  string
	Width float64 // advance in 1/1000 text space units
	// WordSpace is true for the single-byte code 32, the only code word
	// spacing (Tw) applies to
	WordSpace bool
}

// Font decodes character codes for one font resource
type Font struct {
	Name     string
	BaseFont string
	Subtype  string
	Encoding string

	ToUnicodeCMap *CMap

	composite bool
	codes     Encoding
	widths    map[uint32]float64
	dw        float64
	metrics   metrics
	standard  bool
	scale     float64
}

// NewFont creates a simple font using WinAnsiEncoding and, for the standard
// 14 fonts, built-in metrics
func NewFont(name, baseFont, subtype string) *Font {
	f := &Font{
		Name:     name,
		BaseFont: stripSubset(baseFont),
		Subtype:  subtype,
		Encoding: "WinAnsiEncoding",
		codes:    winAnsi,
		widths:   make(map[uint32]float64),
		scale:    1,
	}
	f.metrics, f.standard = standardMetrics(f.BaseFont)
	if !f.standard {
		f.metrics = metrics{ascii: &helveticaWidths, fallback: 556}
	}
	return f
}

// Load builds a Font from a font dictionary. Damaged optional entries
// (widths, encoding, ToUnicode) are ignored rather than failing the load.
func Load(name string, dict core.Dict, r Resolver) (*Font, error) {
	if dict == nil {
		return nil, fmt.Errorf("font %s: dictionary is nil", name)
	}
	subtype, _ := dict.GetName("Subtype")
	baseFont, _ := dict.GetName("BaseFont")
	f := NewFont(name, string(baseFont), string(subtype))

	if obj, err := r.Resolve(dict.Get("ToUnicode")); err == nil {
		if stream, ok := obj.(*core.Stream); ok {
			if cm, err := ParseToUnicodeCMap(stream); err == nil && cm.Len() > 0 {
				f.ToUnicodeCMap = cm
			}
		}
	}

	if subtype == "Type0" {
		f.loadComposite(dict, r)
		return f, nil
	}

	f.loadEncoding(dict, r)
	f.loadSimpleWidths(dict, r)
	if subtype == "Type3" {
		if m, err := r.Resolve(dict.Get("FontMatrix")); err == nil {
			if arr, ok := m.(core.Array); ok {
				if a, ok := arr.GetNumber(0); ok {
					f.scale = a * 1000
				}
			}
		}
	}
	return f, nil
}

func stripSubset(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}

func (f *Font) loadEncoding(dict core.Dict, r Resolver) {
	obj, err := r.Resolve(dict.Get("Encoding"))
	if err != nil || obj == nil {
		return
	}

	switch enc := obj.(type) {
	case core.Name:
		f.Encoding = string(enc)
		f.codes = NamedEncoding(f.Encoding)
	case core.Dict:
		if base, ok := enc.GetName("BaseEncoding"); ok {
			f.Encoding = string(base)
			f.codes = NamedEncoding(f.Encoding)
		}
		diffs, err := r.Resolve(enc.Get("Differences"))
		if err != nil {
			return
		}
		arr, _ := diffs.(core.Array)
		code := 0
		for _, item := range arr {
			switch v := item.(type) {
			case core.Int:
				code = int(v)
			case core.Name:
				if code >= 0 && code < 256 {
					if g, ok := GlyphRune(string(v)); ok {
						f.codes[code] = g
					}
				}
				code++
			}
		}
	}
}

func (f *Font) loadSimpleWidths(dict core.Dict, r Resolver) {
	obj, err := r.Resolve(dict.Get("Widths"))
	if err != nil {
		return
	}
	arr, ok := obj.(core.Array)
	if !ok {
		return
	}
	first, _ := dict.GetInt("FirstChar")
	for i, item := range arr {
		if item, err = r.Resolve(item); err != nil {
			continue
		}
		if w, ok := core.Number(item); ok {
			f.widths[uint32(int(first)+i)] = w
		}
	}
}

func (f *Font) loadComposite(dict core.Dict, r Resolver) {
	f.composite = true
	f.dw = 1000
	if enc, ok := dict.GetName("Encoding"); ok {
		f.Encoding = string(enc)
	}

	obj, err := r.Resolve(dict.Get("DescendantFonts"))
	if err != nil {
		return
	}
	arr, _ := obj.(core.Array)
	if len(arr) == 0 {
		return
	}
	descObj, err := r.Resolve(arr[0])
	if err != nil {
		return
	}
	desc, ok := descObj.(core.Dict)
	if !ok {
		return
	}
	if dw, ok := desc.GetNumber("DW"); ok {
		f.dw = dw
	}

	wObj, err := r.Resolve(desc.Get("W"))
	if err != nil {
		return
	}
	w, _ := wObj.(core.Array)
	for i := 0; i < len(w); {
		first, ok := core.Number(w.Get(i))
		if !ok {
			return
		}
		// c [w1 w2 ...]
		if list, ok := w.Get(i + 1).(core.Array); ok {
			for j := range list {
				if width, ok := list.GetNumber(j); ok {
					f.widths[uint32(first)+uint32(j)] = width
				}
			}
			i += 2
			continue
		}
		// cfirst clast w
		last, ok1 := core.Number(w.Get(i + 1))
		width, ok2 := core.Number(w.Get(i + 2))
		if !ok1 || !ok2 || last < first || last-first > 0xffff {
			return
		}
		for c := uint32(first); c <= uint32(last); c++ {
			f.widths[c] = width
		}
		i += 3
	}
}

// IsComposite reports whether the font is a Type0 font with multi-byte codes
func (f *Font) IsComposite() bool {
	return f.composite
}

// IsStandardFont reports whether the font uses built-in standard 14 metrics
func (f *Font) IsStandardFont() bool {
	return f.standard
}

// Decode splits data into character codes and maps each one to text and
// an advance width
func (f *Font) Decode(data []byte) []Glyph {
	glyphs := make([]Glyph, 0, len(data))
	for len(data) > 0 {
		code, n := f.nextCode(data)
		if n <= 0 {
			break
		}
		data = data[n:]
		glyphs = append(glyphs, Glyph{
			Code:      code,
			Text:      f.text(code),
			Width:     f.Width(code),
			WordSpace: n == 1 && code == 32,
		})
	}
	return glyphs
}

// DecodeString decodes data to text
func (f *Font) DecodeString(data []byte) string {
	var b strings.Builder
	for _, g := range f.Decode(data) {
		b.WriteString(g.Text)
	}
	return b.String()
}

func (f *Font) nextCode(data []byte) (uint32, int) {
	if f.ToUnicodeCMap != nil && f.ToUnicodeCMap.HasCodespace() {
		return f.ToUnicodeCMap.NextCode(data)
	}
	if f.composite {
		if len(data) < 2 {
			return uint32(data[0]), 1
		}
		return uint32(data[0])<<8 | uint32(data[1]), 2
	}
	return uint32(data[0]), 1
}

func (f *Font) text(code uint32) string {
	if f.ToUnicodeCMap != nil {
		if s, ok := f.ToUnicodeCMap.Lookup(code); ok {
			return s
		}
	}
	if f.composite {
		return ""
	}
	if code < 256 {
		if r := f.codes[code]; r != 0 {
			return string(r)
		}
		if r := winAnsi[code]; r != 0 {
			return string(r)
		}
	}
	return ""
}

// Width returns the advance of code in 1/1000 text space units
func (f *Font) Width(code uint32) float64 {
	if w, ok := f.widths[code]; ok {
		return w * f.scale
	}
	if f.composite {
		return f.dw
	}
	var r rune
	if code < 256 {
		r = f.codes[code]
	}
	return f.metrics.width(r)
}
