package font

import "strings"

// Advance widths (1/1000 em) of printable ASCII, space through tilde, for
// the standard 14 families. Other runes use the family default.
var (
	helveticaWidths = [95]float64{
		278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
		556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
		1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
		667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
		333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
		556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
	}
	helveticaBoldWidths = [95]float64{
		278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
		556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
		975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
		667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
		333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
		611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
	}
	timesWidths = [95]float64{
		250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
		500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
		921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
		556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
		333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
		500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
	}
)

// metrics describes one standard family
type metrics struct {
	ascii    *[95]float64
	fallback float64
	fixed    float64 // non-zero for monospaced families
}

func (m metrics) width(r rune) float64 {
	if m.fixed > 0 {
		return m.fixed
	}
	if r >= ' ' && r <= '~' {
		return m.ascii[r-' ']
	}
	return m.fallback
}

// standardMetrics picks metrics for a base font name. Arial and the other
// metric-compatible aliases map onto the Helvetica tables.
func standardMetrics(baseFont string) (metrics, bool) {
	name := strings.ToLower(baseFont)
	bold := strings.Contains(name, "bold")
	switch {
	case strings.Contains(name, "courier"):
		return metrics{fixed: 600}, true
	case strings.Contains(name, "times"):
		return metrics{ascii: &timesWidths, fallback: 500}, true
	case strings.Contains(name, "helvetica"), strings.Contains(name, "arial"):
		if bold {
			return metrics{ascii: &helveticaBoldWidths, fallback: 556}, true
		}
		return metrics{ascii: &helveticaWidths, fallback: 556}, true
	case strings.Contains(name, "symbol"), strings.Contains(name, "zapfdingbats"):
		return metrics{fixed: 600}, true
	}
	return metrics{}, false
}

// IsStandardFont reports whether baseFont is one of the standard 14 fonts
// (or a common alias of one)
func IsStandardFont(baseFont string) bool {
	_, ok := standardMetrics(baseFont)
	return ok
}
