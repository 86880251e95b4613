// Package text extracts the visible text of a page.
//
// An [Extractor] runs a page's content streams, including nested form
// XObjects, and records a [Fragment] for every string shown, positioned
// in device space. [Assemble] turns fragments into reading-order text:
// fragments whose baselines are within half a font size form one line,
// lines run top to bottom, and a space is inserted where two fragments on
// a line are separated by more than 0.15 of the font size.
//
//	s, err := text.PageText(page, resolver)
//
// Lines written mostly in right-to-left scripts are ordered right to left.
package text
