// Package reader loads a PDF into memory and resolves its objects.
//
//	r, err := reader.Open("review.pdf", reader.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
// Cross-reference tables, cross-reference streams and object streams are
// all supported, including incremental updates chained through /Prev.
// When the cross-reference data is missing or points at the wrong bytes,
// the reader rebuilds it by scanning for object headers and reports this
// through [Reader.Repaired].
//
// Encrypted documents are rejected with [ErrEncrypted].
//
// Pages are reached with [Reader.PageCount], [Reader.GetPage] and
// [Reader.Pages]; [Reader.ExtractText] returns the visible text of one page
// in reading order.
package reader
