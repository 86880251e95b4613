package text

import "unicode"

// Direction is the writing direction of a run of text
type Direction int

const (
	LTR Direction = iota
	RTL
	Neutral
)

func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	}
	return "Neutral"
}

var rtlScripts = []*unicode.RangeTable{
	unicode.Arabic, unicode.Hebrew, unicode.Syriac, unicode.Thaana, unicode.Nko,
}

// CharDirection classifies a single rune. Digits, punctuation, symbols
// and spaces take the direction of their surroundings.
func CharDirection(r rune) Direction {
	switch {
	case unicode.IsDigit(r), unicode.IsPunct(r), unicode.IsSpace(r), unicode.IsSymbol(r):
		return Neutral
	case unicode.In(r, rtlScripts...):
		return RTL
	}
	return LTR
}

// DetectDirection returns the majority direction of s
func DetectDirection(s string) Direction {
	var ltr, rtl int
	for _, r := range s {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	}
	return LTR
}
