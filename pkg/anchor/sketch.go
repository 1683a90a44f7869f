package anchor

import (
	"fmt"

	"github.com/matzehuels/sketchtower/pkg/document"
)

// Policy decides the anchors of an axis that has no pinned edge.
type Policy int

const (
	// PolicyCenter collapses unpinned axes to the parent center.
	PolicyCenter Policy = iota
	// PolicyProportional keeps unpinned edges at their fractional position in
	// the parent, so the node scales with the parent.
	PolicyProportional
)

// ParsePolicy converts a configuration name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "center":
		return PolicyCenter, nil
	case "proportional":
		return PolicyProportional, nil
	}
	return PolicyCenter, fmt.Errorf("unknown anchor policy %q", s)
}

func (p Policy) String() string {
	if p == PolicyProportional {
		return "proportional"
	}
	return "center"
}

// SketchAnchor derives the anchor box that reproduces the resizing behavior
// of the design tool for a node currently placed by t inside parent.
//
// Per axis: a fixed size collapses the anchors to the pinned edge (0 near,
// 1 far, 0.5 when neither is pinned). Otherwise pinned edges map to 0 or 1
// and free edges take their fractional position inside the parent. Axes
// without any pin follow the policy. A missing or degenerate parent yields
// the center.
func SketchAnchor(t RectTransform, parent *Rect, c document.Constraint, policy Policy) (min, max Vec2) {
	if parent == nil || approx(parent.Width, 0) || approx(parent.Height, 0) {
		return Center, Center
	}
	r := t.RectInParent(parent)
	min = Vec2{
		(r.X - parent.X) / parent.Width,
		(r.Y - parent.Y) / parent.Height,
	}
	max = Vec2{
		(r.X + r.Width - parent.X) / parent.Width,
		(r.Y + r.Height - parent.Y) / parent.Height,
	}

	min.X, max.X = axisAnchor(min.X, max.X,
		c.Has(document.ConstraintLeft), c.Has(document.ConstraintRight), c.Has(document.ConstraintWidth), policy)
	min.Y, max.Y = axisAnchor(min.Y, max.Y,
		c.Has(document.ConstraintBottom), c.Has(document.ConstraintTop), c.Has(document.ConstraintHeight), policy)
	return min, max
}

func axisAnchor(min, max float64, near, far, fixed bool, policy Policy) (float64, float64) {
	switch {
	case fixed:
		v := 0.5
		if near {
			v = 0
		} else if far {
			v = 1
		}
		return v, v
	case !near && !far && policy == PolicyCenter:
		return 0.5, 0.5
	}
	if near {
		min = 0
	}
	if far {
		max = 1
	}
	return min, max
}

// ApplyScale compensates for an instance scale factor applied through the
// node's local scale: the anchor box shrinks around its center and the size
// delta is divided by s, keeping the pivot in place. Scales of 0 or 1 are
// ignored.
func (t *RectTransform) ApplyScale(parent *Rect, s float64) {
	if s == 0 || approx(s, 1) {
		return
	}
	pos := t.LocalPosition(parent)
	center := t.AnchorMin.Add(t.AnchorMax).Scale(0.5)
	half := t.AnchorMax.Sub(t.AnchorMin).Scale(0.5 / s)
	t.AnchorMin = center.Sub(half)
	t.AnchorMax = center.Add(half)
	t.SizeDelta = t.SizeDelta.Scale(1 / s)
	t.SetLocalPosition(parent, pos)
}
