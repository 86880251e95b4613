package crsheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tsawler/crsheet/fields"
	"github.com/tsawler/crsheet/format"
	"github.com/tsawler/crsheet/reader"
	"github.com/tsawler/crsheet/scan"
	"github.com/tsawler/crsheet/text"
)

// Extractor provides a fluent interface for reading comments and text from
// a PDF. Each configuration method returns a new Extractor, so chains can
// branch from a shared prefix.
type Extractor struct {
	filename string
	reader   *reader.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool

	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:     e.filename,
		reader:       e.reader,
		ownsReader:   e.ownsReader,
		readerOpened: e.readerOpened,
		options:      e.options.clone(),
		err:          e.err,
	}
}

// ensureReader opens the reader if not already open.
func (e *Extractor) ensureReader() error {
	if e.readerOpened {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	f, err := format.DetectFile(e.filename)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", e.filename, err)
	}
	if f != format.PDF {
		return fmt.Errorf("unsupported file format: %s", f)
	}

	r, err := reader.Open(e.filename, reader.WithLogger(e.options.logger))
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	e.reader = r
	e.ownsReader = true
	e.readerOpened = true
	return nil
}

// Close releases the reader if the Extractor opened it. It is safe to call
// Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsReader && e.reader != nil {
		err := e.reader.Close()
		e.reader = nil
		e.ownsReader = false
		e.readerOpened = false
		return err
	}
	return nil
}

// Pages restricts the terminal operations to the given pages (1-indexed).
// Multiple calls are cumulative.
//
//	comments, _, err := crsheet.Open("memo.pdf").Pages(1, 3).Comments()
func (e *Extractor) Pages(pages ...int) *Extractor {
	out := e.clone()
	out.options.pages = append(out.options.pages, pages...)
	return out
}

// PageRange selects pages start through end, inclusive and 1-indexed.
func (e *Extractor) PageRange(start, end int) *Extractor {
	out := e.clone()
	if start > end {
		out.err = fmt.Errorf("invalid page range %d-%d", start, end)
		return out
	}
	for i := start; i <= end; i++ {
		out.options.pages = append(out.options.pages, i)
	}
	return out
}

// WithLogger sets the logger handed to the PDF reader.
func (e *Extractor) WithLogger(logger zerolog.Logger) *Extractor {
	out := e.clone()
	out.options.logger = logger
	return out
}

// PageCount returns the number of pages in the document.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureReader(); err != nil {
		return 0, err
	}
	defer e.Close()
	return e.reader.PageCount()
}

// Text returns the body text of the selected pages, each line ending in a
// newline.
func (e *Extractor) Text() (string, []Warning, error) {
	var out strings.Builder
	warnings, err := e.each(func(index int) ([]Warning, error) {
		s, err := e.reader.ExtractText(index)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", index+1, err)
		}
		out.WriteString(s)
		if strings.TrimSpace(s) == "" {
			return []Warning{{Code: WarningNoText, Page: index + 1, Message: "no extractable text"}}, nil
		}
		return nil, nil
	})
	if err != nil {
		return "", nil, err
	}
	return out.String(), warnings, nil
}

// Comments returns the FreeText annotations of the selected pages, in page
// order and then /Annots order.
func (e *Extractor) Comments() ([]scan.Comment, []Warning, error) {
	var out []scan.Comment
	warnings, err := e.each(func(index int) ([]Warning, error) {
		page, err := e.reader.GetPage(index)
		if err != nil {
			return nil, err
		}
		comments, err := scan.Comments(page)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotations on page %d: %w", index+1, err)
		}
		out = append(out, comments...)
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}

// Fields parses the header labels out of the selected pages' text.
func (e *Extractor) Fields() (fields.HeaderFields, []Warning, error) {
	s, warnings, err := e.Text()
	if err != nil {
		return fields.HeaderFields{}, nil, err
	}
	return fields.Parse(s), warnings, nil
}

// each opens the document, runs fn for every selected page index
// (0-based) and closes the document again.
func (e *Extractor) each(fn func(index int) ([]Warning, error)) ([]Warning, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.ensureReader(); err != nil {
		return nil, err
	}
	defer e.Close()

	indices, err := e.resolvePages()
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	if e.reader.Repaired() {
		warnings = append(warnings, Warning{Code: WarningRepaired, Message: "cross-reference table was damaged and has been rebuilt"})
	}
	for _, i := range indices {
		w, err := fn(i)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w...)
	}
	return warnings, nil
}

// resolvePages converts the selection to sorted, unique 0-based indices.
func (e *Extractor) resolvePages() ([]int, error) {
	pageCount, err := e.reader.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	if len(e.options.pages) == 0 {
		indices := make([]int, pageCount)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	seen := make(map[int]bool)
	var indices []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		if !seen[p-1] {
			seen[p-1] = true
			indices = append(indices, p-1)
		}
	}
	sort.Ints(indices)
	return indices, nil
}

// Direction reports the dominant writing direction of the selected pages'
// text.
func (e *Extractor) Direction() (text.Direction, error) {
	s, _, err := e.Text()
	if err != nil {
		return text.Neutral, err
	}
	return text.DetectDirection(s), nil
}
