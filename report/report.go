package report

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/crsheet/fields"
	"github.com/tsawler/crsheet/reflow"
	"github.com/tsawler/crsheet/scan"
)

// Layout holds the fixed coordinates of a CRS sheet.
type Layout struct {
	// FieldColumn holds the header values, one per row from FirstFieldRow.
	FieldColumn   string
	FirstFieldRow int
	// FirstCommentRow is the first row written for comments.
	FirstCommentRow int
	// CommentColumns is the number of columns, from A, cleared and
	// bordered on each comment row.
	CommentColumns int
	PageWidth      float64
	TextWidth      float64
}

// DefaultLayout is the CRS template layout: fields in B6..B9, the source
// name in B10, comments from row 12 across A..J.
var DefaultLayout = Layout{
	FieldColumn:     "B",
	FirstFieldRow:   6,
	FirstCommentRow: 12,
	CommentColumns:  10,
	PageWidth:       12,
	TextWidth:       100,
}

// BaseNameRow is the row holding the source document's name.
func (l Layout) BaseNameRow() int {
	return l.FirstFieldRow + len(fields.Labels)
}

// Option configures a Populator.
type Option func(*Populator)

// WithLogger sets the populator's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Populator) {
		p.log = logger
	}
}

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) Option {
	return func(p *Populator) {
		p.layout = l
	}
}

// Populator writes extraction results into a copy of the CRS template.
type Populator struct {
	layout Layout
	log    zerolog.Logger
}

// New creates a Populator.
func New(opts ...Option) *Populator {
	p := &Populator{layout: DefaultLayout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Populate fills the active sheet of the workbook at path and saves it in
// place. Header fields and baseName are written even when there are no
// comments.
func (p *Populator) Populate(path string, hf fields.HeaderFields, baseName string, comments []scan.Comment) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return fmt.Errorf("workbook %s has no active sheet", path)
	}

	if err := p.writeHeader(f, sheet, hf, baseName); err != nil {
		return err
	}
	if err := p.writeComments(f, sheet, comments); err != nil {
		return err
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	p.log.Debug().
		Str("destination", path).
		Str("sheet", sheet).
		Int("comments", len(comments)).
		Msg("report written")
	return nil
}

func (p *Populator) writeHeader(f *excelize.File, sheet string, hf fields.HeaderFields, baseName string) error {
	l := p.layout
	for i, value := range hf.Values() {
		cell := fmt.Sprintf("%s%d", l.FieldColumn, l.FirstFieldRow+i)
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}

	cell := fmt.Sprintf("%s%d", l.FieldColumn, l.BaseNameRow())
	if err := f.SetCellValue(sheet, cell, baseName); err != nil {
		return fmt.Errorf("failed to write %s: %w", cell, err)
	}
	if err := embolden(f, sheet, cell); err != nil {
		return fmt.Errorf("failed to style %s: %w", cell, err)
	}

	if err := f.SetColWidth(sheet, "A", "A", l.PageWidth); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", l.TextWidth); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

// embolden makes cell bold while keeping the rest of its template style.
func embolden(f *excelize.File, sheet, cell string) error {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	style, err := f.GetStyle(id)
	if err != nil {
		return err
	}
	if style.Font == nil {
		style.Font = &excelize.Font{}
	}
	style.Font.Bold = true
	bold, err := f.NewStyle(style)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, bold)
}

var thin = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

func (p *Populator) writeComments(f *excelize.File, sheet string, comments []scan.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	l := p.layout
	styles := newRowStyler(f, sheet)

	for i, c := range comments {
		row := l.FirstCommentRow + i
		values := make([]interface{}, l.CommentColumns)
		values[0] = c.Page
		values[1] = reflow.Reflow(c.Text)
		for col := 2; col < len(values); col++ {
			values[col] = ""
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}

		for col := 1; col <= l.CommentColumns; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return fmt.Errorf("invalid comment column %d: %w", col, err)
			}
			if err := styles.apply(cell, col <= 2); err != nil {
				return fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}
	return nil
}

type styleKey struct {
	base int
	wrap bool
}

// rowStyler adds the comment row border, and word wrap where asked, on top
// of whatever style a template cell already has. Derived styles are shared
// between cells that started with the same style.
type rowStyler struct {
	f       *excelize.File
	sheet   string
	derived map[styleKey]int
}

func newRowStyler(f *excelize.File, sheet string) *rowStyler {
	return &rowStyler{f: f, sheet: sheet, derived: make(map[styleKey]int)}
}

func (s *rowStyler) apply(cell string, wrap bool) error {
	base, err := s.f.GetCellStyle(s.sheet, cell)
	if err != nil {
		return err
	}
	key := styleKey{base: base, wrap: wrap}
	id, ok := s.derived[key]
	if !ok {
		style, err := s.f.GetStyle(base)
		if err != nil {
			return err
		}
		style.Border = thin
		if wrap {
			if style.Alignment == nil {
				style.Alignment = &excelize.Alignment{}
			}
			style.Alignment.WrapText = true
		}
		if id, err = s.f.NewStyle(style); err != nil {
			return err
		}
		s.derived[key] = id
	}
	return s.f.SetCellStyle(s.sheet, cell, cell, id)
}
