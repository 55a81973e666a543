package geom

// Affine is an integer 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
//
// Only quarter-turn rotations and translations are representable, which keeps
// orientation exact: no rounding, no drift.
type Affine [6]int

// Identity returns the identity matrix.
func Identity() Affine {
	return Affine{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty int) Affine {
	return Affine{1, 0, 0, 1, tx, ty}
}

// RotateQuarter returns a rotation by quarters×90 degrees. Positive quarters
// turn clockwise on a y-down canvas, matching screen-space rotate(90).
func RotateQuarter(quarters int) Affine {
	switch ((quarters % 4) + 4) % 4 {
	case 1:
		return Affine{0, 1, -1, 0, 0, 0}
	case 2:
		return Affine{-1, 0, 0, -1, 0, 0}
	case 3:
		return Affine{0, -1, 1, 0, 0, 0}
	default:
		return Identity()
	}
}

// Multiply multiplies this matrix by another: result = m * other.
// This applies 'other' first, then 'm'.
func (m Affine) Multiply(other Affine) Affine {
	return Affine{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms a point.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Orient returns the transform taking right-facing gate coordinates of a w×h
// element to their positions when the element faces d:
//
//	left:  rotate(180) · translate(-w, -h)
//	up:    rotate(90)  · translate(0, -h)
//	down:  rotate(-90) · translate(-w, 0)
//	right: identity
func Orient(d Direction, w, h int) Affine {
	switch d {
	case Left:
		return RotateQuarter(2).Multiply(Translate(-w, -h))
	case Up:
		return RotateQuarter(1).Multiply(Translate(0, -h))
	case Down:
		return RotateQuarter(-1).Multiply(Translate(-w, 0))
	default:
		return Identity()
	}
}
