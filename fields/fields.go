package fields

import (
	"regexp"
	"strings"
)

// Labels of the header block, in the order they appear on the CRS sheet.
const (
	ClientName             = "CLIENT NAME"
	ProjectDescription     = "PROJECT DESCRIPTION"
	ProjectNumber          = "PROJECT NUMBER"
	PurchaseOrderReference = "PURCHASE ORDER REFERENCE"
)

// Labels lists the header labels in sheet order.
var Labels = []string{ClientName, ProjectDescription, ProjectNumber, PurchaseOrderReference}

// HeaderFields are the labelled values found in a document's body text.
// A field is empty when its label does not occur.
type HeaderFields struct {
	ClientName             string `json:"clientName" yaml:"clientName"`
	ProjectDescription     string `json:"projectDescription" yaml:"projectDescription"`
	ProjectNumber          string `json:"projectNumber" yaml:"projectNumber"`
	PurchaseOrderReference string `json:"purchaseOrderReference" yaml:"purchaseOrderReference"`
}

// Values returns the fields in sheet order.
func (h HeaderFields) Values() []string {
	return []string{h.ClientName, h.ProjectDescription, h.ProjectNumber, h.PurchaseOrderReference}
}

// space matches Unicode whitespace, including the separators Go's \s leaves out.
const space = `[\s\p{Z}\x{85}\x{1c}-\x{1f}]`

// FindField returns the value following the first case-insensitive
// occurrence of label: optional whitespace, an optional ASCII or
// full-width colon, optional whitespace, then the rest of that line,
// trimmed. It returns "" when the label does not occur.
func FindField(label, text string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + space + `*[:：]?` + space + `*(.+)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Parse looks up the four header labels in text.
func Parse(text string) HeaderFields {
	return HeaderFields{
		ClientName:             FindField(ClientName, text),
		ProjectDescription:     FindField(ProjectDescription, text),
		ProjectNumber:          FindField(ProjectNumber, text),
		PurchaseOrderReference: FindField(PurchaseOrderReference, text),
	}
}
