package graphicsstate

import (
	"fmt"

	"github.com/tsawler/crsheet/font"
)

// GraphicsState is the subset of the PDF graphics state that positions text
type GraphicsState struct {
	CTM  Matrix
	Text TextState

	stack []savedState
}

type savedState struct {
	ctm  Matrix
	text TextState
}

// TextState holds the text parameters set by the T* operators
type TextState struct {
	Font     *font.Font
	FontName string
	FontSize float64

	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent
	Leading           float64
	Rise              float64
	RenderingMode     int

	TextMatrix     Matrix
	TextLineMatrix Matrix
}

// NewGraphicsState returns the initial state of a page
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: Identity(),
		Text: TextState{
			FontSize:          12,
			HorizontalScaling: 100,
			TextMatrix:        Identity(),
			TextLineMatrix:    Identity(),
		},
	}
}

// Save pushes the current state (q)
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, savedState{ctm: gs.CTM, text: gs.Text})
}

// Restore pops the last saved state (Q)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]
	gs.CTM = saved.ctm
	gs.Text = saved.text
	return nil
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Transform concatenates m onto the CTM (cm)
func (gs *GraphicsState) Transform(m Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFont sets the current font and size (Tf)
func (gs *GraphicsState) SetFont(name string, f *font.Font, size float64) {
	gs.Text.FontName = name
	gs.Text.Font = f
	gs.Text.FontSize = size
}

// BeginText resets both text matrices (BT)
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = Identity()
	gs.Text.TextLineMatrix = Identity()
}

// SetTextMatrix sets both text matrices (Tm)
func (gs *GraphicsState) SetTextMatrix(m Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText moves to the start of the next line offset by (tx, ty) (Td)
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading is Td that also sets the leading to -ty (TD)
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine moves down by the leading (T*)
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// Advance moves the text matrix along the baseline by tx text space units
func (gs *GraphicsState) Advance(tx float64) {
	gs.Text.TextMatrix = Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// GlyphAdvance returns the horizontal displacement of one glyph
func (gs *GraphicsState) GlyphAdvance(g font.Glyph) float64 {
	t := gs.Text
	tx := g.Width/1000*t.FontSize + t.CharSpacing
	if g.WordSpace {
		tx += t.WordSpacing
	}
	return tx * t.HorizontalScaling / 100
}

// Kern returns the displacement of a TJ number, given in thousandths of
// text space
func (gs *GraphicsState) Kern(adjust float64) float64 {
	return -adjust / 1000 * gs.Text.FontSize * gs.Text.HorizontalScaling / 100
}

// RenderingMatrix returns the text rendering matrix, which maps glyph
// space at the current position to device space
func (gs *GraphicsState) RenderingMatrix() Matrix {
	t := gs.Text
	params := Matrix{t.FontSize * t.HorizontalScaling / 100, 0, 0, t.FontSize, 0, t.Rise}
	return params.Multiply(t.TextMatrix).Multiply(gs.CTM)
}

// Position returns the current text origin in device space
func (gs *GraphicsState) Position() (float64, float64) {
	m := gs.Text.TextMatrix.Multiply(gs.CTM)
	return m.Apply(0, gs.Text.Rise)
}

// EffectiveFontSize returns the font size after the text matrix and CTM
// are applied
func (gs *GraphicsState) EffectiveFontSize() float64 {
	return gs.Text.FontSize * gs.Text.TextMatrix.Multiply(gs.CTM).VerticalScale()
}
