package anchor

import "math"

// Affine is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity matrix.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// NewAffine composes Translate(pos) * Rotate(degrees) * Scale(scale).
func NewAffine(pos Vec2, degrees float64, scale Vec2) Affine {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return Affine{
		cos * scale.X,
		sin * scale.X,
		-sin * scale.Y,
		cos * scale.Y,
		pos.X,
		pos.Y,
	}
}

// Multiply returns m * c.
func (m Affine) Multiply(c Affine) Affine {
	return Affine{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert returns the inverse matrix, or Identity when m is singular.
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	inv := 1.0 / det
	a := m[3] * inv
	b := -m[1] * inv
	c := -m[2] * inv
	d := m[0] * inv
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms a point.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// Translation returns the translation part.
func (m Affine) Translation() Vec2 { return Vec2{m[4], m[5]} }

// IsTranslation reports whether the linear part is the identity.
func (m Affine) IsTranslation() bool {
	return approx(m[0], 1) && approx(m[1], 0) && approx(m[2], 0) && approx(m[3], 1)
}

// Decompose splits the linear part into a rotation in degrees and a scale.
// Reflections are reported as a negative y scale.
func (m Affine) Decompose() (degrees float64, scale Vec2) {
	sx := math.Hypot(m[0], m[1])
	if sx == 0 {
		return 0, Vec2{}
	}
	det := m[0]*m[3] - m[2]*m[1]
	return math.Atan2(m[1], m[0]) * 180 / math.Pi, Vec2{sx, det / sx}
}
