// Package contentstream splits page content streams into operations.
//
//	ops, err := contentstream.NewParser(data).Parse()
//	for _, op := range ops {
//	    fmt.Println(op.Operator, op.Operands)
//	}
//
// Inline images (BI ... ID ... EI) are skipped; the parser emits the BI
// and ID operations followed by an operand-free EI.
package contentstream
