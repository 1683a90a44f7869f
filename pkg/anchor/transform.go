package anchor

import "github.com/matzehuels/sketchtower/pkg/document"

// RectTransform places a node inside its parent rect.
//
// The anchor box is given in normalized parent coordinates. The size of the
// node is the size of the anchor box in parent pixels plus SizeDelta, and
// the pivot point sits at the pivot-interpolated point of the anchor box
// offset by AnchoredPosition.
type RectTransform struct {
	AnchorMin        Vec2 `json:"anchorMin"`
	AnchorMax        Vec2 `json:"anchorMax"`
	Pivot            Vec2 `json:"pivot"`
	AnchoredPosition Vec2 `json:"anchoredPosition"`
	SizeDelta        Vec2 `json:"sizeDelta"`
}

// Default returns a centered transform of zero size.
func Default() RectTransform {
	return RectTransform{AnchorMin: Center, AnchorMax: Center, Pivot: Center}
}

// FromFrame returns a transform anchored and pivoted at the parent's top-left
// corner that reproduces the y-down pixel frame.
func FromFrame(f document.Frame) RectTransform {
	return RectTransform{
		AnchorMin:        TopLeft,
		AnchorMax:        TopLeft,
		Pivot:            TopLeft,
		AnchoredPosition: Vec2{f.X, -f.Y},
		SizeDelta:        Vec2{f.Width, f.Height},
	}
}

// Size returns the node size. A nil parent contributes no anchor span.
func (t RectTransform) Size(parent *Rect) Vec2 {
	if parent == nil {
		return t.SizeDelta
	}
	return t.AnchorMax.Sub(t.AnchorMin).Mul(parent.Size()).Add(t.SizeDelta)
}

// Rect returns the node rect in its own local space.
func (t RectTransform) Rect(parent *Rect) Rect {
	size := t.Size(parent)
	min := t.Pivot.Mul(size).Scale(-1)
	return Rect{X: min.X, Y: min.Y, Width: size.X, Height: size.Y}
}

// LocalPosition returns the pivot point in the parent's local space.
func (t RectTransform) LocalPosition(parent *Rect) Vec2 {
	if parent == nil {
		return t.AnchoredPosition
	}
	ref := lerpVec(t.AnchorMin, t.AnchorMax, t.Pivot)
	return parent.Min().Add(ref.Mul(parent.Size())).Add(t.AnchoredPosition)
}

// SetLocalPosition moves the pivot point to p in the parent's local space.
func (t *RectTransform) SetLocalPosition(parent *Rect, p Vec2) {
	t.AnchoredPosition = t.AnchoredPosition.Add(p.Sub(t.LocalPosition(parent)))
}

// RectInParent returns the node rect in the parent's local space, ignoring
// rotation and scale.
func (t RectTransform) RectInParent(parent *Rect) Rect {
	r := t.Rect(parent)
	pos := t.LocalPosition(parent)
	r.X += pos.X
	r.Y += pos.Y
	return r
}

// PixelFrame converts the placement back to a y-down frame relative to the
// parent's top-left corner. Without a parent the frame is relative to the
// local origin.
func (t RectTransform) PixelFrame(parent *Rect) document.Frame {
	r := t.RectInParent(parent)
	top := 0.0
	left := 0.0
	if parent != nil {
		top = parent.Y + parent.Height
		left = parent.X
	}
	return document.Frame{
		X:      r.X - left,
		Y:      top - (r.Y + r.Height),
		Width:  r.Width,
		Height: r.Height,
	}
}

// SetPivot moves the pivot without moving the node.
func (t *RectTransform) SetPivot(p Vec2) {
	delta := t.Pivot.Sub(p).Mul(t.SizeDelta)
	t.Pivot = p
	t.AnchoredPosition = t.AnchoredPosition.Sub(delta)
}

// SetAnchors changes the anchor box without moving or resizing the node.
// With a nil parent the anchors are assigned as is.
func (t *RectTransform) SetAnchors(parent *Rect, min, max Vec2) {
	if parent == nil {
		t.AnchorMin, t.AnchorMax = min, max
		return
	}
	dMin := min.Sub(t.AnchorMin)
	dMax := max.Sub(t.AnchorMax)
	l := parent.Width * dMin.X
	r := parent.Width * dMax.X
	top := parent.Height * dMax.Y
	b := parent.Height * dMin.Y

	t.AnchorMin, t.AnchorMax = min, max
	t.SizeDelta = t.SizeDelta.Add(Vec2{l - r, b - top})
	t.AnchoredPosition = t.AnchoredPosition.Sub(Vec2{
		l*(1-t.Pivot.X) + r*t.Pivot.X,
		b*(1-t.Pivot.Y) + top*t.Pivot.Y,
	})
}
