// Package font turns the character codes shown by text operators into
// Unicode text and glyph advances.
//
// A [Font] is loaded from a font resource dictionary with [Load]. Codes are
// decoded through the font's ToUnicode [CMap] when present, then through
// the simple-font encoding (/Encoding plus /Differences), and finally
// through WinAnsiEncoding. Widths come from /Widths (or /W for composite
// fonts) and fall back to built-in metrics for the standard 14 fonts.
//
// The package also decodes PDF text strings, the encoding used by
// annotation /Contents and document metadata:
//
//	s := font.DecodeTextString(raw) // UTF-16BE with BOM, or PDFDocEncoding
package font
