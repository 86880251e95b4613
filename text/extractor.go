package text

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/crsheet/contentstream"
	"github.com/tsawler/crsheet/core"
	"github.com/tsawler/crsheet/font"
	"github.com/tsawler/crsheet/graphicsstate"
	"github.com/tsawler/crsheet/pages"
)

const (
	// maxFormDepth bounds nested form XObjects
	maxFormDepth = 8
	// lineTolerance is the baseline distance, as a fraction of the font
	// size, within which fragments share a line
	lineTolerance = 0.5
	// spaceThreshold is the horizontal gap, as a fraction of the font
	// size, above which a space is inserted between fragments
	spaceThreshold = 0.15
)

// Fragment is a run of text shown by one string operand
type Fragment struct {
	Text     string
	X, Y     float64
	Width    float64
	FontSize float64
}

// Extractor interprets content streams and collects positioned text
type Extractor struct {
	resolver  font.Resolver
	gs        *graphicsstate.GraphicsState
	resources core.Dict
	fonts     map[string]*font.Font
	forms     map[*core.Stream]bool
	depth     int

	fragments []Fragment
}

// NewExtractor creates an extractor that resolves fonts and form XObjects
// through resolver
func NewExtractor(resolver font.Resolver) *Extractor {
	return &Extractor{
		resolver: resolver,
		gs:       graphicsstate.NewGraphicsState(),
		fonts:    make(map[string]*font.Font),
		forms:    make(map[*core.Stream]bool),
	}
}

// PageText extracts the text of a page in reading order
func PageText(page *pages.Page, resolver font.Resolver) (string, error) {
	fragments, err := NewExtractor(resolver).ExtractPage(page)
	if err != nil {
		return "", err
	}
	return Assemble(fragments), nil
}

// ExtractPage runs the content streams of page. A content stream that
// cannot be decoded is skipped; the error is returned only when nothing
// could be read.
func (e *Extractor) ExtractPage(page *pages.Page) ([]Fragment, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, fmt.Errorf("failed to read resources: %w", err)
	}
	streams, err := page.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read contents: %w", err)
	}

	var data bytes.Buffer
	var decodeErr error
	for _, s := range streams {
		decoded, err := s.Decode()
		if err != nil {
			decodeErr = err
			continue
		}
		data.Write(decoded)
		data.WriteByte('\n')
	}
	if data.Len() == 0 && decodeErr != nil {
		return nil, fmt.Errorf("failed to decode contents: %w", decodeErr)
	}

	return e.ExtractFromBytes(data.Bytes(), resources)
}

// ExtractFromBytes interprets one content stream with the given resources
func (e *Extractor) ExtractFromBytes(data []byte, resources core.Dict) ([]Fragment, error) {
	e.fragments = nil
	e.resources = resources
	if err := e.run(data); err != nil {
		return nil, err
	}
	return e.fragments, nil
}

func (e *Extractor) run(data []byte) error {
	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return fmt.Errorf("failed to parse content stream: %w", err)
	}
	for _, op := range ops {
		e.apply(op)
	}
	return nil
}

func (e *Extractor) apply(op contentstream.Operation) {
	gs := e.gs
	args := op.Operands

	switch op.Operator {
	case "q":
		gs.Save()
	case "Q":
		// unbalanced Q is common and harmless
		_ = gs.Restore()
	case "cm":
		if m, ok := matrixOperand(args); ok {
			gs.Transform(m)
		}

	case "BT":
		gs.BeginText()
	case "Tf":
		if len(args) == 2 {
			name, _ := args[0].(core.Name)
			size, _ := core.Number(args[1])
			gs.SetFont(string(name), e.font(string(name)), size)
		}
	case "Tc":
		setNumber(args, &gs.Text.CharSpacing)
	case "Tw":
		setNumber(args, &gs.Text.WordSpacing)
	case "Tz":
		setNumber(args, &gs.Text.HorizontalScaling)
	case "TL":
		setNumber(args, &gs.Text.Leading)
	case "Ts":
		setNumber(args, &gs.Text.Rise)
	case "Tr":
		var mode float64
		if setNumber(args, &mode) {
			gs.Text.RenderingMode = int(mode)
		}

	case "Tm":
		if m, ok := matrixOperand(args); ok {
			gs.SetTextMatrix(m)
		}
	case "Td", "TD":
		if len(args) == 2 {
			tx, _ := core.Number(args[0])
			ty, _ := core.Number(args[1])
			if op.Operator == "TD" {
				gs.TranslateTextSetLeading(tx, ty)
			} else {
				gs.TranslateText(tx, ty)
			}
		}
	case "T*":
		gs.NextLine()

	case "Tj":
		if len(args) == 1 {
			e.show(args[0])
		}
	case "'":
		gs.NextLine()
		if len(args) == 1 {
			e.show(args[0])
		}
	case "\"":
		if len(args) == 3 {
			setNumber(args[:1], &gs.Text.WordSpacing)
			setNumber(args[1:2], &gs.Text.CharSpacing)
			gs.NextLine()
			e.show(args[2])
		}
	case "TJ":
		if len(args) == 1 {
			arr, _ := args[0].(core.Array)
			for _, item := range arr {
				if adjust, ok := core.Number(item); ok {
					gs.Advance(gs.Kern(adjust))
					continue
				}
				e.show(item)
			}
		}

	case "Do":
		if len(args) == 1 {
			if name, ok := args[0].(core.Name); ok {
				e.form(string(name))
			}
		}
	}
}

func (e *Extractor) show(operand core.Object) {
	s, ok := operand.(core.String)
	if !ok {
		return
	}
	gs := e.gs
	f := gs.Text.Font
	if f == nil {
		f = e.font(gs.Text.FontName)
		gs.Text.Font = f
	}

	x0, y0 := gs.Position()
	size := gs.EffectiveFontSize()
	var b strings.Builder
	for _, g := range f.Decode([]byte(s)) {
		b.WriteString(g.Text)
		gs.Advance(gs.GlyphAdvance(g))
	}
	x1, _ := gs.Position()

	if b.Len() == 0 {
		return
	}
	e.fragments = append(e.fragments, Fragment{
		Text:     b.String(),
		X:        math.Min(x0, x1),
		Y:        y0,
		Width:    math.Abs(x1 - x0),
		FontSize: size,
	})
}

// font loads a font from the current resources, falling back to Helvetica
// metrics when the resource is missing or broken
func (e *Extractor) font(name string) *font.Font {
	if f, ok := e.fonts[name]; ok {
		return f
	}
	f := e.loadFont(name)
	if f == nil {
		f = font.NewFont(name, "Helvetica", "Type1")
	}
	e.fonts[name] = f
	return f
}

func (e *Extractor) loadFont(name string) *font.Font {
	dict, ok := e.lookup("Font", name).(core.Dict)
	if !ok {
		return nil
	}
	f, err := font.Load(name, dict, e.resolver)
	if err != nil {
		return nil
	}
	return f
}

// lookup resolves resources/category/name
func (e *Extractor) lookup(category, name string) core.Object {
	if e.resources == nil {
		return nil
	}
	catObj, err := e.resolver.Resolve(e.resources.Get(category))
	if err != nil {
		return nil
	}
	cat, ok := catObj.(core.Dict)
	if !ok {
		return nil
	}
	obj, err := e.resolver.Resolve(cat.Get(name))
	if err != nil {
		return nil
	}
	return obj
}

// form runs a form XObject with its own resources and matrix
func (e *Extractor) form(name string) {
	stream, ok := e.lookup("XObject", name).(*core.Stream)
	if !ok || e.depth >= maxFormDepth || e.forms[stream] {
		return
	}
	if subtype, _ := stream.Dict.GetName("Subtype"); subtype != "Form" {
		return
	}
	data, err := stream.Decode()
	if err != nil {
		return
	}

	savedResources, savedFonts := e.resources, e.fonts
	if res, err := e.resolver.Resolve(stream.Dict.Get("Resources")); err == nil {
		if d, ok := res.(core.Dict); ok {
			e.resources = d
			e.fonts = make(map[string]*font.Font)
		}
	}
	e.forms[stream] = true
	e.depth++
	e.gs.Save()
	if m, ok := matrixOperand(arrayOperands(stream.Dict.Get("Matrix"))); ok {
		e.gs.Transform(m)
	}

	_ = e.run(data)

	_ = e.gs.Restore()
	e.depth--
	delete(e.forms, stream)
	e.resources, e.fonts = savedResources, savedFonts
}

func arrayOperands(obj core.Object) []core.Object {
	arr, _ := obj.(core.Array)
	return arr
}

func matrixOperand(args []core.Object) (graphicsstate.Matrix, bool) {
	if len(args) != 6 {
		return graphicsstate.Matrix{}, false
	}
	values := make([]float64, 6)
	for i, a := range args {
		v, ok := core.Number(a)
		if !ok {
			return graphicsstate.Matrix{}, false
		}
		values[i] = v
	}
	return graphicsstate.MatrixFromArray(values)
}

func setNumber(args []core.Object, dst *float64) bool {
	if len(args) != 1 {
		return false
	}
	v, ok := core.Number(args[0])
	if ok {
		*dst = v
	}
	return ok
}

// line is a set of fragments sharing a baseline
type line struct {
	y         float64
	size      float64
	fragments []Fragment
}

// Assemble joins fragments into text: top to bottom, one line per
// baseline, with spaces where the gap between fragments is wide. Every
// line ends with a newline and the result is NFC normalised.
func Assemble(fragments []Fragment) string {
	var b strings.Builder
	for _, l := range groupLines(fragments) {
		b.WriteString(l.text())
		b.WriteByte('\n')
	}
	return norm.NFC.String(b.String())
}

func groupLines(fragments []Fragment) []*line {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []*line
	for _, f := range sorted {
		if n := len(lines); n > 0 {
			cur := lines[n-1]
			tol := lineTolerance * math.Max(1, math.Max(cur.size, f.FontSize))
			if math.Abs(cur.y-f.Y) <= tol {
				cur.fragments = append(cur.fragments, f)
				cur.size = math.Max(cur.size, f.FontSize)
				continue
			}
		}
		lines = append(lines, &line{y: f.Y, size: f.FontSize, fragments: []Fragment{f}})
	}
	return lines
}

func (l *line) text() string {
	frags := l.fragments
	var all strings.Builder
	for _, f := range frags {
		all.WriteString(f.Text)
	}
	rtl := DetectDirection(all.String()) == RTL

	sort.SliceStable(frags, func(i, j int) bool {
		if rtl {
			return frags[i].X > frags[j].X
		}
		return frags[i].X < frags[j].X
	})

	var b strings.Builder
	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			gap := f.X - (prev.X + prev.Width)
			if rtl {
				gap = prev.X - (f.X + f.Width)
			}
			size := math.Max(prev.FontSize, f.FontSize)
			if gap > spaceThreshold*size && !endsWithSpace(prev.Text) && !startsWithSpace(f.Text) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}
