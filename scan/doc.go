// Package scan collects the FreeText annotations and the body text of a
// PDF.
//
//	res, err := scan.New(scan.WithLogger(logger)).Scan("review.pdf")
//	for _, c := range res.Comments {
//	    fmt.Println(c.Page, c.Text)
//	}
//
// Pages are visited in document order and each page's /Annots array from
// first to last entry. Only annotations whose /Subtype is exactly FreeText
// become comments; one without /Contents gets [MissingContent].
//
// Body text comes from the text package unless a [TextSource] is supplied;
// scan/mupdf provides one backed by MuPDF.
package scan
