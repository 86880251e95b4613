package crsheet

import (
	"fmt"
	"strings"
)

// WarningCode identifies a kind of non-fatal problem.
type WarningCode int

const (
	// WarningRepaired means the cross-reference data was damaged and the
	// document was read by scanning for objects.
	WarningRepaired WarningCode = iota + 1
	// WarningNoText means a selected page produced no body text, which
	// usually means it is a scanned image.
	WarningNoText
)

// Warning is a non-fatal problem met while reading a document. Page is
// 1-based, or 0 when the warning concerns the whole document.
type Warning struct {
	Code    WarningCode
	Page    int
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings into one line.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
