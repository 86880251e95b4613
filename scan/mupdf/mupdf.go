// Package mupdf extracts page text with MuPDF through go-fitz. It needs
// cgo; the rest of crsheet does not.
package mupdf

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// TextSource reads body text with MuPDF's plain-text device.
type TextSource struct{}

// New returns a MuPDF text source.
func New() *TextSource {
	return &TextSource{}
}

// Name identifies the engine in logs and errors.
func (*TextSource) Name() string {
	return "mupdf"
}

// PageTexts returns the text of every page of the document at path.
func (*TextSource) PageTexts(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	out := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		s, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", n+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}
