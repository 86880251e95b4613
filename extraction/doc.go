// Package extraction runs the whole CRS pipeline for one document: copy
// the template to the destination, scan the PDF, parse the header fields
// out of its text, and fill the copied workbook.
//
// Every failure comes back as an *Error whose Kind names the phase that
// failed; use errors.Is with the Err* sentinels to tell them apart.
package extraction
