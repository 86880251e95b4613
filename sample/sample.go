package sample

import (
	"bytes"
	"fmt"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/crsheet/annotate"
	"github.com/tsawler/crsheet/fields"
)

const (
	margin     = 72.0
	lineHeight = 18.0
	fontSize   = 11.0
)

// Review describes a document under review: a header block on the first
// page, body lines per page, and the reviewer's notes.
type Review struct {
	Title  string
	Fields fields.HeaderFields
	// Body holds the lines of each page; its length is the page count.
	Body  [][]string
	Notes []annotate.Note
}

// Default returns a two page review with three comments.
func Default() Review {
	return Review{
		Title: "Design Basis Memorandum",
		Fields: fields.HeaderFields{
			ClientName:             "Northwind Utilities",
			ProjectDescription:     "Substation 14 protection upgrade",
			ProjectNumber:          "NW-2291",
			PurchaseOrderReference: "PO-55120",
		},
		Body: [][]string{
			{
				"1. Scope",
				"This memorandum sets out the design basis for the relay replacement.",
			},
			{
				"2. Load flow",
				"Fault levels are taken from the 2023 network study.",
			},
		},
		Notes: []annotate.Note{
			{Page: 1, Text: "Confirm the scope with the client. Include the spare feeder bay.", Author: "Reviewer"},
			{Page: 1, Text: "Add the revision table.", Author: "Reviewer"},
			{Page: 2, Text: "Which study? Cite the report number.", Author: "Reviewer"},
		},
	}
}

var latin = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

// Build renders the review as a PDF and adds its notes as FreeText
// annotations.
func Build(r Review) ([]byte, error) {
	if len(r.Body) == 0 {
		r.Body = [][]string{nil}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", fontSize)
	if r.Title != "" {
		pdf.SetTitle(r.Title, true)
	}

	for i, lines := range r.Body {
		pdf.AddPage()
		y := margin
		if i == 0 {
			if r.Title != "" {
				pdf.SetFont("Helvetica", "B", 14)
				if err := text(pdf, y, r.Title); err != nil {
					return nil, err
				}
				pdf.SetFont("Helvetica", "", fontSize)
				y += 2 * lineHeight
			}
			for j, label := range fields.Labels {
				value := r.Fields.Values()[j]
				if value == "" {
					continue
				}
				if err := text(pdf, y, label+": "+value); err != nil {
					return nil, err
				}
				y += lineHeight
			}
			y += lineHeight
		}
		for _, line := range lines {
			if err := text(pdf, y, line); err != nil {
				return nil, err
			}
			y += lineHeight
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	if len(r.Notes) == 0 {
		return buf.Bytes(), nil
	}

	out, err := annotate.Append(buf.Bytes(), r.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to add notes: %w", err)
	}
	return out, nil
}

func text(pdf *fpdf.Fpdf, y float64, s string) error {
	encoded, err := latin.String(s)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", s, err)
	}
	pdf.Text(margin, y, encoded)
	return nil
}

// Write builds the review and saves it to path.
func Write(path string, r Review) error {
	data, err := Build(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
