package crsheet

import (
	"github.com/rs/zerolog"
)

// ExtractOptions holds configuration for an Extractor.
type ExtractOptions struct {
	// Page selection, 1-indexed; nil means all pages.
	pages []int

	logger zerolog.Logger
}

func defaultOptions() ExtractOptions {
	return ExtractOptions{logger: zerolog.Nop()}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	out := o
	if o.pages != nil {
		out.pages = make([]int, len(o.pages))
		copy(out.pages, o.pages)
	}
	return out
}
