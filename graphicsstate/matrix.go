package graphicsstate

import "math"

// Matrix is an affine transform [a b c d e f]. Points are row vectors, so
// m.Multiply(n) applies m first and n second.
type Matrix [6]float64

// Identity returns the identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation by (tx, ty)
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Multiply returns m followed by other
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Apply transforms the point (x, y)
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// VerticalScale is the length of the transformed unit y vector
func (m Matrix) VerticalScale() float64 {
	return math.Hypot(m[2], m[3])
}

// IsIdentity reports whether m is the identity
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// MatrixFromArray reads six numbers, as found in cm operands or a form's
// /Matrix entry
func MatrixFromArray(values []float64) (Matrix, bool) {
	if len(values) != 6 {
		return Matrix{}, false
	}
	var m Matrix
	copy(m[:], values)
	return m, true
}
