package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/crsheet/fields"
)

// SheetName is the name of the sheet NewTemplate creates.
const SheetName = "CRS"

// headerRow names the comment columns A..J.
var headerRow = []interface{}{
	"PAGE", "COMMENT", "SECTION", "DISCIPLINE", "PRIORITY",
	"RESPONSE", "RESPONDED BY", "STATUS", "CLOSED BY", "REMARKS",
}

// NewTemplate writes a blank CRS workbook to path, laid out to match
// DefaultLayout.
func NewTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellValue(SheetName, "A1", "COMMENT RESOLUTION SHEET"); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "A1", title); err != nil {
		return fmt.Errorf("failed to style title: %w", err)
	}

	l := DefaultLayout
	labels := append(append([]string{}, fields.Labels...), "DOCUMENT")
	for i, label := range labels {
		cell := fmt.Sprintf("A%d", l.FirstFieldRow+i)
		if err := f.SetCellValue(SheetName, cell, label); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}

	header := fmt.Sprintf("A%d", l.FirstCommentRow-1)
	row := headerRow[:l.CommentColumns]
	if err := f.SetSheetRow(SheetName, header, &row); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	last, err := excelize.ColumnNumberToName(l.CommentColumns)
	if err != nil {
		return err
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: thin,
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, header, fmt.Sprintf("%s%d", last, l.FirstCommentRow-1), headStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}
