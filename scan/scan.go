package scan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tsawler/crsheet/pages"
	"github.com/tsawler/crsheet/reader"
	"github.com/tsawler/crsheet/text"
)

// MissingContent stands in for a FreeText annotation without /Contents.
const MissingContent = "N/A"

// ErrPageCount is returned when a TextSource yields a different number of
// pages than the document's page tree.
var ErrPageCount = errors.New("text source page count does not match the document")

// Comment is one FreeText annotation. Page is 1-based.
type Comment struct {
	Page int    `json:"page" yaml:"page"`
	Text string `json:"text" yaml:"text"`
}

// Result is everything a scan collects from one document.
type Result struct {
	// FullText is the body text of every page, concatenated without separators.
	FullText string
	// Comments are in page order, then /Annots order within a page.
	Comments  []Comment
	PageCount int
	// Repaired is set when the cross-reference data had to be rebuilt.
	Repaired bool
}

// TextSource supplies the body text of each page of a document.
type TextSource interface {
	Name() string
	PageTexts(path string) ([]string, error)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the scanner's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scanner) {
		s.log = logger
	}
}

// WithTextSource replaces the built-in body text extraction.
func WithTextSource(src TextSource) Option {
	return func(s *Scanner) {
		s.text = src
	}
}

// Scanner reads FreeText annotations and body text from PDF files.
type Scanner struct {
	log  zerolog.Logger
	text TextSource
}

// New creates a Scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan opens the document at path and collects its comments and text.
// Any failure aborts the scan; no partial result is returned.
func (s *Scanner) Scan(path string) (*Result, error) {
	r, err := reader.Open(path, reader.WithLogger(s.log))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	if r.Repaired() {
		s.log.Warn().Str("source", path).Msg("document has a damaged cross-reference table; it was rebuilt")
	}

	all, err := r.Pages()
	if err != nil {
		return nil, fmt.Errorf("failed to read page tree: %w", err)
	}

	var external []string
	if s.text != nil {
		if external, err = s.text.PageTexts(path); err != nil {
			return nil, fmt.Errorf("failed to extract text with %s: %w", s.text.Name(), err)
		}
		if len(external) != len(all) {
			return nil, fmt.Errorf("%s returned %d pages for %d: %w", s.text.Name(), len(external), len(all), ErrPageCount)
		}
	}

	res := &Result{PageCount: len(all), Repaired: r.Repaired()}
	var full strings.Builder
	for i, page := range all {
		body, err := s.pageText(r, page, i, external)
		if err != nil {
			return nil, err
		}
		full.WriteString(body)

		comments, err := Comments(page)
		if err != nil {
			return nil, fmt.Errorf("failed to read annotations on page %d: %w", i+1, err)
		}
		res.Comments = append(res.Comments, comments...)
	}
	res.FullText = full.String()

	s.log.Debug().
		Str("source", path).
		Int("pages", res.PageCount).
		Int("comments", len(res.Comments)).
		Msg("document scanned")
	return res, nil
}

func (s *Scanner) pageText(r *reader.Reader, page *pages.Page, index int, external []string) (string, error) {
	if s.text == nil {
		body, err := text.PageText(page, r)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", index+1, err)
		}
		return body, nil
	}
	return external[index], nil
}

// Comments returns the FreeText annotations of one page in /Annots order.
func Comments(page *pages.Page) ([]Comment, error) {
	annots, err := page.Annotations()
	if err != nil {
		return nil, err
	}
	var out []Comment
	for _, a := range annots {
		if a.Subtype != pages.SubtypeFreeText {
			continue
		}
		content, ok := a.Content()
		if !ok {
			content = MissingContent
		}
		out = append(out, Comment{Page: page.Number, Text: content})
	}
	return out, nil
}
