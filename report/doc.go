// Package report writes extraction results into a CRS workbook.
//
// The workbook is a copy of a template with a fixed layout (see
// [DefaultLayout]). [Populator.Populate] fills the header block, sizes the
// page and comment columns, and writes one bordered row per comment with
// the comment text broken into one sentence per line.
package report
