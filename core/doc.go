// Package core holds the PDF object model and the low-level syntax layer:
// the [Lexer], the object [Parser], cross-reference tables and streams,
// object streams, stream filters and a small [Writer] used for incremental
// updates and test fixtures.
//
// The eight basic object types ([Null], [Bool], [Int], [Real], [String],
// [Name], [Array], [Dict]) plus [Stream] and [IndirectRef] all satisfy
// [Object]. Parsing is tolerant of the damage commonly found in real files:
// a wrong stream /Length is recovered by scanning for endstream, and a
// broken cross-reference section can be rebuilt with
// [XRefParser.Reconstruct].
//
//	table, err := core.NewXRefParser(data).ParseAll()
//	if err != nil {
//	    table = core.NewXRefParser(data).Reconstruct()
//	}
package core
