// Package crsheet reads reviewer comments and header fields out of PDF
// documents.
//
// Basic usage:
//
//	comments, warnings, err := crsheet.Open("memo.pdf").Comments()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", crsheet.FormatWarnings(warnings))
//	}
//
// Restricting to some pages:
//
//	text, _, err := crsheet.Open("memo.pdf").Pages(1, 2).Text()
//
// Filling a CRS workbook is the job of the extraction package; the reader,
// scan and report packages are available for finer control.
package crsheet

import (
	"github.com/tsawler/crsheet/reader"
)

// Open returns an Extractor for the PDF at filename. The file is opened
// lazily by the first terminal operation, which also closes it.
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader creates an Extractor from an already-opened reader.Reader.
// The caller is responsible for closing the reader.
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must panics if err is non-nil. It is intended for scripts and tests.
//
//	count := crsheet.Must(crsheet.Open("memo.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is Must for the terminal operations that also return warnings,
// which it discards.
//
//	text := crsheet.MustText(crsheet.Open("memo.pdf").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
