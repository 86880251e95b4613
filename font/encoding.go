package font

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Encoding maps single-byte codes to runes. A zero rune means unmapped.
type Encoding [256]rune

// Rune returns the rune for code
func (e *Encoding) Rune(code byte) rune {
	return e[code]
}

func fromCharmap(cm *charmap.Charmap) Encoding {
	var enc Encoding
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r != 0xFFFD {
			enc[i] = r
		}
	}
	return enc
}

var (
	winAnsi  = fromCharmap(charmap.Windows1252)
	macRoman = fromCharmap(charmap.Macintosh)
	standard = standardEncoding()
	pdfDoc   = pdfDocEncoding()
)

// NamedEncoding returns the predefined encoding with the given PDF name.
// Unknown names yield WinAnsiEncoding.
func NamedEncoding(name string) Encoding {
	switch name {
	case "MacRomanEncoding":
		return macRoman
	case "StandardEncoding":
		return standard
	case "PDFDocEncoding":
		return pdfDoc
	}
	return winAnsi
}

// standardEncoding is Adobe StandardEncoding. It agrees with Latin-1 over
// printable ASCII apart from the two typographic quotes.
func standardEncoding() Encoding {
	var enc Encoding
	for i := 0x20; i < 0x7f; i++ {
		enc[i] = rune(i)
	}
	enc['\''] = '’'
	enc['`'] = '‘'
	for code, r := range map[byte]rune{
		0xa1: '¡', 0xa2: '¢', 0xa3: '£', 0xa4: '⁄', 0xa5: '¥', 0xa6: 'ƒ',
		0xa7: '§', 0xa8: '¤', 0xa9: '\'', 0xaa: '“', 0xab: '«', 0xac: '‹',
		0xad: '›', 0xae: 'ﬁ', 0xaf: 'ﬂ', 0xb1: '–', 0xb2: '†',
		0xb3: '‡', 0xb4: '·', 0xb6: '¶', 0xb7: '•', 0xb8: '‚',
		0xb9: '„', 0xba: '”', 0xbb: '»', 0xbc: '…', 0xbd: '‰',
		0xbf: '¿', 0xd0: '—', 0xe1: 'Æ', 0xe8: 'Ł', 0xe9: 'Ø', 0xea: 'Œ',
		0xf1: 'æ', 0xf5: 'ı', 0xf8: 'ł', 0xf9: 'ø', 0xfa: 'œ', 0xfb: 'ß',
	} {
		enc[code] = r
	}
	return enc
}

// pdfDocEncoding is Latin-1 with the PDF-specific replacements in the
// 0x18-0x1F and 0x80-0xA0 ranges.
func pdfDocEncoding() Encoding {
	enc := fromCharmap(charmap.ISO8859_1)
	overrides := map[byte]rune{
		0x18: '˘', 0x19: 'ˇ', 0x1a: 'ˆ', 0x1b: '˙',
		0x1c: '˝', 0x1d: '˛', 0x1e: '˚', 0x1f: '˜',
		0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…',
		0x84: '—', 0x85: '–', 0x86: 'ƒ', 0x87: '⁄',
		0x88: '‹', 0x89: '›', 0x8a: '−', 0x8b: '‰',
		0x8c: '„', 0x8d: '“', 0x8e: '”', 0x8f: '‘',
		0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
		0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
		0x98: 'Ÿ', 0x99: 'Ž', 0x9a: 'ı', 0x9b: 'ł',
		0x9c: 'œ', 0x9d: 'š', 0x9e: 'ž', 0xa0: '€',
	}
	for code, r := range overrides {
		enc[code] = r
	}
	enc[0x9f] = 0
	enc[0xad] = 0
	return enc
}

// glyphNames covers the names that show up in /Differences arrays of
// ordinary text fonts. Single letters and digits are handled separately.
var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=',
	"greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^', "underscore": '_',
	"grave": '`', "braceleft": '{', "bar": '|', "braceright": '}',
	"asciitilde": '~', "zero": '0', "one": '1', "two": '2', "three": '3',
	"four": '4', "five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"quoteleft": '‘', "quoteright": '’', "quotedblleft": '“',
	"quotedblright": '”', "quotesinglbase": '‚', "quotedblbase": '„',
	"endash": '–', "emdash": '—', "bullet": '•', "ellipsis": '…',
	"dagger": '†', "daggerdbl": '‡', "trademark": '™', "Euro": '€',
	"fi": 'ﬁ', "fl": 'ﬂ', "minus": '−', "degree": '°',
	"copyright": '©', "registered": '®', "section": '§', "paragraph": '¶',
	"nbspace": ' ', "sfthyphen": '­', "periodcentered": '·',
	"guillemotleft": '«', "guillemotright": '»', "multiply": '×', "divide": '÷',
	"plusminus": '±', "mu": 'µ', "germandbls": 'ß', "dotlessi": 'ı',
	"eacute": 'é', "egrave": 'è', "ecircumflex": 'ê', "edieresis": 'ë',
	"aacute": 'á', "agrave": 'à', "acircumflex": 'â', "adieresis": 'ä',
	"aring": 'å', "atilde": 'ã', "ccedilla": 'ç', "iacute": 'í', "igrave": 'ì',
	"icircumflex": 'î', "idieresis": 'ï', "ntilde": 'ñ', "oacute": 'ó',
	"ograve": 'ò', "ocircumflex": 'ô', "odieresis": 'ö', "otilde": 'õ',
	"oslash": 'ø', "uacute": 'ú', "ugrave": 'ù', "ucircumflex": 'û',
	"udieresis": 'ü', "yacute": 'ý', "ydieresis": 'ÿ', "Eacute": 'É',
	"Egrave": 'È', "Aacute": 'Á', "Agrave": 'À', "Adieresis": 'Ä',
	"Ccedilla": 'Ç', "Odieresis": 'Ö', "Udieresis": 'Ü', "Oslash": 'Ø',
	"ae": 'æ', "AE": 'Æ', "oe": 'œ', "OE": 'Œ',
}

// GlyphRune maps a glyph name to a rune. It understands the uniXXXX and
// uXXXX[XX] conventions and names carrying a ".suffix" variant.
func GlyphRune(name string) (rune, bool) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if len(name) == 1 {
		c := name[0]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return rune(c), true
		}
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	return 0, false
}
