// Package geom provides the integer geometry used by the scene: points,
// axis-aligned boxes, hit-test predicates and the quarter-turn transforms that
// orient an element's gates.
//
// All coordinates are world units on a y-down canvas. The predicates here fix
// the boundary conventions every query in the scene relies on:
//
//   - [Rect.Contains] is half-open: inclusive on the lower edge, exclusive on the upper.
//   - [Rect.ContainsOrigin] tests only the other box's top-left corner against
//     a normalized rectangle, not overlap.
//   - [Rect.ContainsCentered] treats the box as centred on its (X, Y).
package geom

// Point is a position in world or element-local units.
type Point struct {
	X, Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned box with its origin at the top-left corner.
// W and H may be negative for rectangles dragged up or left; call
// [Rect.Normalize] before comparing.
type Rect struct {
	X, Y, W, H int
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Normalize returns an equivalent rectangle with non-negative size and the
// origin at its minimum corner.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// IsEmpty reports whether the normalized rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.W == 0 || r.H == 0
}

// Contains reports whether (x, y) lies in [X, X+W) × [Y, Y+H).
func (r Rect) Contains(x, y int) bool {
	return r.X <= x && x < r.X+r.W &&
		r.Y <= y && y < r.Y+r.H
}

// ContainsOrigin normalizes r and reports whether the top-left corner of
// other lies inside it, using the same half-open bounds as [Rect.Contains].
func (r Rect) ContainsOrigin(other Rect) bool {
	p := other.Origin()
	return r.Normalize().Contains(p.X, p.Y)
}

// ContainsCentered reports whether (x, y) lies in the box of size W×H centred
// on (X, Y): [X-W/2, X+W/2) × [Y-H/2, Y+H/2), with integer halving.
func (r Rect) ContainsCentered(x, y int) bool {
	return r.X-r.W/2 <= x && x < r.X+r.W/2 &&
		r.Y-r.H/2 <= y && y < r.Y+r.H/2
}

// Union returns the smallest rectangle containing both rectangles.
// Empty rectangles are ignored.
func (r Rect) Union(other Rect) Rect {
	r, other = r.Normalize(), other.Normalize()
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}

	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.W, other.X+other.W)
	maxY := max(r.Y+r.H, other.Y+other.H)

	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
