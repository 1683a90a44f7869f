// Package anchor implements parent-relative placement of output nodes using
// the RectTransform model: a normalized anchor box inside the parent rect, a
// pivot inside the node's own rect, an anchored position and a size delta.
//
// # Coordinate System
//
// All rects in this package are in the local space of their owner with the
// y axis pointing up, matching the output format. Document frames use the
// y-down pixel space of the design tool; [FromFrame] and
// [RectTransform.PixelFrame] convert between the two.
//
// # Basis Changes
//
// [RectTransform.SetPivot] and [RectTransform.SetAnchors] change the
// internal representation of a node without moving it. Every derivation in
// this package is built from those two operations, so the pixel frame
// reported by [RectTransform.PixelFrame] stays stable across them:
//
//	t := anchor.FromFrame(frame)
//	t.SetPivot(anchor.Center)
//	min, max := anchor.SketchAnchor(t, &parent, constraint, anchor.PolicyCenter)
//	t.SetAnchors(&parent, min, max)
//	t.PixelFrame(&parent) // == frame
package anchor

import "math"

const epsilon = 1e-6

// Vec2 is a 2D vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var (
	Zero    = Vec2{}
	One     = Vec2{1, 1}
	Center  = Vec2{0.5, 0.5}
	TopLeft = Vec2{0, 1}
)

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Scale multiplies both components by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Approx reports whether both components match within a small tolerance.
func (v Vec2) Approx(o Vec2) bool { return approx(v.X, o.X) && approx(v.Y, o.Y) }

func approx(a, b float64) bool { return math.Abs(a-b) < epsilon }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerpVec(a, b, t Vec2) Vec2 { return Vec2{lerp(a.X, b.X, t.X), lerp(a.Y, b.Y, t.Y)} }

// Rect is an axis aligned rectangle given by its minimum corner and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromMinMax builds a rect from two corners.
func RectFromMinMax(min, max Vec2) Rect {
	return Rect{X: min.X, Y: min.Y, Width: max.X - min.X, Height: max.Y - min.Y}
}

func (r Rect) Min() Vec2  { return Vec2{r.X, r.Y} }
func (r Rect) Max() Vec2  { return Vec2{r.X + r.Width, r.Y + r.Height} }
func (r Rect) Size() Vec2 { return Vec2{r.Width, r.Height} }

// Approx reports whether two rects match within a small tolerance.
func (r Rect) Approx(o Rect) bool {
	return approx(r.X, o.X) && approx(r.Y, o.Y) && approx(r.Width, o.Width) && approx(r.Height, o.Height)
}

// Round rounds half to even at the given number of decimal digits.
func Round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.RoundToEven(v*p) / p
}
