package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindField(t *testing.T) {
	tests := []struct {
		name  string
		label string
		text  string
		want  string
	}{
		{"colon", "CLIENT NAME", "CLIENT NAME: Acme Corp\nNEXT: x", "Acme Corp"},
		{"no colon", "CLIENT NAME", "Client Name   Acme Corp  \n", "Acme Corp"},
		{"full width colon", "PROJECT NUMBER", "PROJECT NUMBER：P-42", "P-42"},
		{"case insensitive label, verbatim value", "client name", "CLIENT NAME: MiXeD CaSe", "MiXeD CaSe"},
		{"first occurrence wins", "PROJECT NUMBER", "PROJECT NUMBER: 1\nPROJECT NUMBER: 2", "1"},
		{"value on next line", "CLIENT NAME", "CLIENT NAME:\n  Acme\nother", "Acme"},
		{"absent", "PURCHASE ORDER REFERENCE", "nothing here", ""},
		{"label only keeps the bare colon", "CLIENT NAME", "CLIENT NAME:", ":"},
		{"literal label", "P.O. (REF)", "P.O. (REF): 7781\nPxOx (REF): no", "7781"},
		{"special characters not a pattern", "A+B", "AAB: wrong\nA+B: right", "right"},
		{"non-breaking space", "CLIENT NAME", "CLIENT NAME:\u00a0Acme", "Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindField(tt.label, tt.text))
		})
	}
}

func TestParse(t *testing.T) {
	text := "Comment Resolution\n" +
		"CLIENT NAME: Northwind Utilities\n" +
		"PROJECT DESCRIPTION: Substation upgrade, phase 2\n" +
		"PROJECT NUMBER: NW-2231\n" +
		"PURCHASE ORDER REFERENCE: PO 99120\n"

	got := Parse(text)
	assert.Equal(t, HeaderFields{
		ClientName:             "Northwind Utilities",
		ProjectDescription:     "Substation upgrade, phase 2",
		ProjectNumber:          "NW-2231",
		PurchaseOrderReference: "PO 99120",
	}, got)
	assert.Equal(t, []string{"Northwind Utilities", "Substation upgrade, phase 2", "NW-2231", "PO 99120"}, got.Values())
}

func TestParseMissingFields(t *testing.T) {
	got := Parse("PROJECT NUMBER: 12")
	assert.Equal(t, HeaderFields{ProjectNumber: "12"}, got)
}

func TestLabelsOrder(t *testing.T) {
	assert.Equal(t, []string{"CLIENT NAME", "PROJECT DESCRIPTION", "PROJECT NUMBER", "PURCHASE ORDER REFERENCE"}, Labels)
}
