// Package annotate adds FreeText annotations to an existing PDF.
//
// Notes are written as an incremental update: the original bytes are left
// untouched and the new annotation objects, the rewritten page
// dictionaries and a fresh cross-reference section are appended.
//
//	err := annotate.AddFreeText("in.pdf", "out.pdf", []annotate.Note{
//		{Page: 1, Text: "Clarify the scope."},
//	})
package annotate
