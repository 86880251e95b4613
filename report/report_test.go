package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/crsheet/fields"
	"github.com/tsawler/crsheet/scan"
)

func newTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CRS.xlsx")
	require.NoError(t, NewTemplate(path))
	return path
}

func open(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellStyle(t *testing.T, f *excelize.File, cell string) *excelize.Style {
	t.Helper()
	id, err := f.GetCellStyle(SheetName, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	return style
}

var header = fields.HeaderFields{
	ClientName:             "Northwind Utilities",
	ProjectDescription:     "Substation upgrade",
	ProjectNumber:          "NW-2291",
	PurchaseOrderReference: "PO-55120",
}

func TestNewTemplate(t *testing.T) {
	f := open(t, newTemplate(t))

	assert.Equal(t, SheetName, f.GetSheetName(f.GetActiveSheetIndex()))
	for i, want := range []string{fields.ClientName, fields.ProjectDescription, fields.ProjectNumber, fields.PurchaseOrderReference, "DOCUMENT"} {
		got, err := f.GetCellValue(SheetName, fmt.Sprintf("A%d", 6+i))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	got, err := f.GetCellValue(SheetName, "B11")
	require.NoError(t, err)
	assert.Equal(t, "COMMENT", got)
}

func TestPopulate(t *testing.T) {
	path := newTemplate(t)

	// stale template content that comment rows must clear
	f := open(t, path)
	require.NoError(t, f.SetCellValue(SheetName, "E12", "stale"))
	require.NoError(t, f.Save())

	comments := []scan.Comment{
		{Page: 1, Text: "Confirm the scope. Include the spare bay."},
		{Page: 3, Text: "e.g. the relay"},
	}
	require.NoError(t, New().Populate(path, header, "memo", comments))

	f = open(t, path)
	for cell, want := range map[string]string{
		"B6":  "Northwind Utilities",
		"B7":  "Substation upgrade",
		"B8":  "NW-2291",
		"B9":  "PO-55120",
		"B10": "memo",
		"A12": "1",
		"B12": "Confirm the scope.\nInclude the spare bay.",
		"A13": "3",
		"B13": "e.g. the relay",
		"E12": "",
		"J13": "",
	} {
		got, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)
	}

	typ, err := f.GetCellType(SheetName, "A12")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "page numbers are numeric")

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.Equal(t, 12.0, width)
	width, err = f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, 100.0, width)

	assert.True(t, cellStyle(t, f, "B10").Font.Bold)

	for _, cell := range []string{"A12", "B12", "C12", "J12", "A13", "J13"} {
		assert.Len(t, cellStyle(t, f, cell).Border, 4, cell)
	}
	for _, cell := range []string{"A12", "B12", "B13"} {
		s := cellStyle(t, f, cell)
		require.NotNil(t, s.Alignment, cell)
		assert.True(t, s.Alignment.WrapText, cell)
	}
	c := cellStyle(t, f, "C12")
	assert.True(t, c.Alignment == nil || !c.Alignment.WrapText)
	id, err := f.GetCellStyle(SheetName, "A14")
	require.NoError(t, err)
	assert.Zero(t, id, "rows past the last comment are untouched")
}

func TestPopulateKeepsBaseNameStyle(t *testing.T) {
	path := newTemplate(t)
	f := open(t, path)
	italic, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "1F4E79"}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(SheetName, "B10", "B10", italic))
	require.NoError(t, f.Save())

	require.NoError(t, New().Populate(path, header, "memo", nil))

	style := cellStyle(t, open(t, path), "B10")
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.True(t, style.Font.Italic)
}

func TestPopulateKeepsCommentRowStyle(t *testing.T) {
	path := newTemplate(t)
	f := open(t, path)
	styled, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 9, Color: "1F4E79"},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
		NumFmt: 2,
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(SheetName, "A12", "J12", styled))
	require.NoError(t, f.Save())

	comments := []scan.Comment{{Page: 2, Text: "Check the relay settings."}}
	require.NoError(t, New().Populate(path, header, "memo", comments))

	f = open(t, path)
	for _, cell := range []string{"A12", "B12", "F12", "J12"} {
		style := cellStyle(t, f, cell)
		require.NotNil(t, style.Font, cell)
		assert.Equal(t, "Arial", style.Font.Family, cell)
		assert.Equal(t, 9.0, style.Font.Size, cell)
		assert.Contains(t, strings.ToUpper(style.Font.Color), "1F4E79", cell)
		assert.Equal(t, 1, style.Fill.Pattern, cell)
		require.NotEmpty(t, style.Fill.Color, cell)
		assert.Contains(t, strings.ToUpper(style.Fill.Color[0]), "FFF2CC", cell)
		assert.Equal(t, 2, style.NumFmt, cell)
		assert.Len(t, style.Border, 4, cell)
	}
	for cell, wrap := range map[string]bool{"A12": true, "B12": true, "F12": false} {
		style := cellStyle(t, f, cell)
		assert.Equal(t, wrap, style.Alignment != nil && style.Alignment.WrapText, cell)
	}

	a, err := f.GetCellStyle(SheetName, "C12")
	require.NoError(t, err)
	j, err := f.GetCellStyle(SheetName, "J12")
	require.NoError(t, err)
	assert.Equal(t, a, j, "cells with the same template style share one derived style")
}

func TestPopulateNoComments(t *testing.T) {
	path := newTemplate(t)
	require.NoError(t, New().Populate(path, fields.HeaderFields{}, "empty", nil))

	f := open(t, path)
	got, err := f.GetCellValue(SheetName, "B10")
	require.NoError(t, err)
	assert.Equal(t, "empty", got)

	got, err = f.GetCellValue(SheetName, "A12")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPopulateCustomLayout(t *testing.T) {
	path := newTemplate(t)
	layout := DefaultLayout
	layout.FirstCommentRow = 20
	layout.CommentColumns = 3

	require.NoError(t, New(WithLayout(layout)).Populate(path, header, "memo", []scan.Comment{{Page: 2, Text: "x"}}))

	f := open(t, path)
	got, err := f.GetCellValue(SheetName, "B20")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
	assert.Len(t, cellStyle(t, f, "C20").Border, 4)
	id, err := f.GetCellStyle(SheetName, "D20")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestPopulateErrors(t *testing.T) {
	err := New().Populate(filepath.Join(t.TempDir(), "missing.xlsx"), header, "memo", nil)
	assert.ErrorContains(t, err, "failed to open workbook")

	// a valid workbook under a name excelize refuses to save
	src := newTemplate(t)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(dst, data, 0o644))

	err = New().Populate(dst, header, "memo", nil)
	assert.Error(t, err)
}

func TestBaseNameRow(t *testing.T) {
	assert.Equal(t, 10, DefaultLayout.BaseNameRow())
}
