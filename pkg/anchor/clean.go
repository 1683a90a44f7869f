package anchor

import "math"

const cleanTolerance = 0.001

// standardAxes are the anchor spans kept by Clean: center, near edge, far
// edge and full stretch.
var standardAxes = [][2]float64{{0.5, 0.5}, {0, 0}, {1, 1}, {0, 1}}

func standardAxis(min, max float64) bool {
	for _, a := range standardAxes {
		if math.Abs(min-a[0]) < cleanTolerance && math.Abs(max-a[1]) < cleanTolerance {
			return true
		}
	}
	return false
}

// Clean makes a transform friendlier to edit by hand: axes with an unusual
// anchor span collapse to the center (keeping the geometry), then positions
// and sizes are rounded to whole pixels and anchors to two digits. Stretched
// axes with an odd size are shifted half a pixel towards zero so the
// rounded edges stay on pixel boundaries.
func (t *RectTransform) Clean(parent *Rect) {
	min, max := t.AnchorMin, t.AnchorMax
	if !standardAxis(min.X, max.X) {
		min.X, max.X = 0.5, 0.5
	}
	if !standardAxis(min.Y, max.Y) {
		min.Y, max.Y = 0.5, 0.5
	}
	t.SetAnchors(parent, min, max)

	t.AnchoredPosition = roundVec(t.AnchoredPosition, 0)
	t.AnchorMin = roundVec(t.AnchorMin, 2)
	t.AnchorMax = roundVec(t.AnchorMax, 2)
	t.SizeDelta = roundVec(t.SizeDelta, 0)

	t.AnchoredPosition.X = halfPixel(t.SizeDelta.X, t.AnchoredPosition.X, t.AnchorMin.X, t.AnchorMax.X)
	t.AnchoredPosition.Y = halfPixel(t.SizeDelta.Y, t.AnchoredPosition.Y, t.AnchorMin.Y, t.AnchorMax.Y)
}

func halfPixel(size, pos, min, max float64) float64 {
	odd := math.Abs(math.Mod(size, 2)) >= cleanTolerance
	if odd && math.Abs(min) < cleanTolerance && math.Abs(max-1) < cleanTolerance {
		if pos < 0 {
			return pos + 0.5
		}
		return pos - 0.5
	}
	return pos
}

func roundVec(v Vec2, digits int) Vec2 {
	return Vec2{Round(v.X, digits), Round(v.Y, digits)}
}
