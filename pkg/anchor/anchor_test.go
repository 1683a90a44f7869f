package anchor

import (
	"math"
	"testing"

	"github.com/matzehuels/sketchtower/pkg/document"
)

func frameApprox(a, b document.Frame) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Width, b.Width) && approx(a.Height, b.Height)
}

// rootRect is the local rect of a centered artboard of the given size.
func rootRect(w, h float64) Rect {
	return Rect{X: -w / 2, Y: -h / 2, Width: w, Height: h}
}

func place(frame document.Frame, parent *Rect, c document.Constraint, policy Policy) RectTransform {
	t := FromFrame(frame)
	t.SetPivot(Center)
	min, max := SketchAnchor(t, parent, c, policy)
	t.SetAnchors(parent, min, max)
	return t
}

func TestFromFrameRoundTrip(t *testing.T) {
	parent := rootRect(200, 200)
	frame := document.Frame{X: 10, Y: 20, Width: 100, Height: 50}
	tr := FromFrame(frame)
	if got := tr.PixelFrame(&parent); !frameApprox(got, frame) {
		t.Errorf("PixelFrame() = %v, want %v", got, frame)
	}
}

func TestCenteredScenario(t *testing.T) {
	parent := rootRect(200, 200)
	frame := document.Frame{X: 10, Y: 20, Width: 100, Height: 50}

	tr := FromFrame(frame)
	tr.SetPivot(Center)
	if want := (Vec2{60, -45}); !tr.AnchoredPosition.Approx(want) {
		t.Fatalf("after SetPivot AnchoredPosition = %v, want %v", tr.AnchoredPosition, want)
	}

	min, max := SketchAnchor(tr, &parent, document.ConstraintNone, PolicyCenter)
	if !min.Approx(Center) || !max.Approx(Center) {
		t.Fatalf("SketchAnchor = %v %v, want center", min, max)
	}
	tr.SetAnchors(&parent, min, max)
	if want := (Vec2{-40, 55}); !tr.AnchoredPosition.Approx(want) {
		t.Errorf("AnchoredPosition = %v, want %v", tr.AnchoredPosition, want)
	}
	if want := (Vec2{100, 50}); !tr.SizeDelta.Approx(want) {
		t.Errorf("SizeDelta = %v, want %v", tr.SizeDelta, want)
	}
	if got := tr.PixelFrame(&parent); !frameApprox(got, frame) {
		t.Errorf("PixelFrame() = %v, want %v", got, frame)
	}
}

func TestBasisChangesKeepGeometry(t *testing.T) {
	parent := Rect{X: -30, Y: -70, Width: 120, Height: 90}
	frame := document.Frame{X: 7, Y: 11, Width: 33, Height: 21}
	pivots := []Vec2{Center, {0, 0}, {1, 1}, {0.25, 0.8}}
	anchors := [][2]Vec2{
		{Center, Center},
		{{0, 0}, {1, 1}},
		{{0.1, 0.2}, {0.7, 0.9}},
		{{1, 0}, {1, 0}},
	}
	for _, p := range pivots {
		for _, a := range anchors {
			tr := FromFrame(frame)
			tr.SetPivot(p)
			tr.SetAnchors(&parent, a[0], a[1])
			tr.SetPivot(Center)
			if got := tr.PixelFrame(&parent); !frameApprox(got, frame) {
				t.Errorf("pivot %v anchors %v: PixelFrame() = %v, want %v", p, a, got, frame)
			}
		}
	}
}

func TestSketchAnchorConstraints(t *testing.T) {
	parent := rootRect(200, 100)
	frame := document.Frame{X: 20, Y: 10, Width: 100, Height: 30}
	const (
		L = document.ConstraintLeft
		R = document.ConstraintRight
		T = document.ConstraintTop
		B = document.ConstraintBottom
		W = document.ConstraintWidth
		H = document.ConstraintHeight
	)
	tests := []struct {
		name     string
		c        document.Constraint
		policy   Policy
		min, max Vec2
	}{
		{"none center", 0, PolicyCenter, Center, Center},
		{"none proportional", 0, PolicyProportional, Vec2{0.1, 0.6}, Vec2{0.6, 0.9}},
		{"stretch", L | R | T | B, PolicyCenter, Vec2{0, 0}, Vec2{1, 1}},
		{"left top fixed", L | T | W | H, PolicyCenter, Vec2{0, 1}, Vec2{0, 1}},
		{"right bottom fixed", R | B | W | H, PolicyCenter, Vec2{1, 0}, Vec2{1, 0}},
		{"fixed size only", W | H, PolicyCenter, Center, Center},
		{"left only", L, PolicyCenter, Vec2{0, 0.5}, Vec2{0.6, 0.5}},
		{"top only", T, PolicyCenter, Vec2{0.5, 0.6}, Vec2{0.5, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := FromFrame(frame)
			tr.SetPivot(Center)
			min, max := SketchAnchor(tr, &parent, tt.c, tt.policy)
			if !min.Approx(tt.min) || !max.Approx(tt.max) {
				t.Errorf("SketchAnchor = %v %v, want %v %v", min, max, tt.min, tt.max)
			}
			tr.SetAnchors(&parent, min, max)
			if got := tr.PixelFrame(&parent); !frameApprox(got, frame) {
				t.Errorf("PixelFrame() = %v, want %v", got, frame)
			}
		})
	}
}

func TestSketchAnchorDegenerateParent(t *testing.T) {
	tr := FromFrame(document.Frame{Width: 10, Height: 10})
	flat := Rect{Width: 100}
	for _, p := range []*Rect{nil, &flat} {
		min, max := SketchAnchor(tr, p, document.ConstraintLeft, PolicyProportional)
		if !min.Approx(Center) || !max.Approx(Center) {
			t.Errorf("SketchAnchor(%v) = %v %v, want center", p, min, max)
		}
	}
}

func TestStretchKeepsEdgeDistances(t *testing.T) {
	parent := rootRect(200, 100)
	frame := document.Frame{X: 20, Y: 10, Width: 150, Height: 60}
	all := document.ConstraintLeft | document.ConstraintRight | document.ConstraintTop | document.ConstraintBottom
	tr := place(frame, &parent, all, PolicyCenter)

	grown := rootRect(300, 160)
	got := tr.PixelFrame(&grown)
	want := document.Frame{X: 20, Y: 10, Width: 250, Height: 120}
	if !frameApprox(got, want) {
		t.Errorf("after resize PixelFrame() = %v, want %v", got, want)
	}
}

func TestUnpinnedStaysCentered(t *testing.T) {
	parent := rootRect(200, 100)
	frame := document.Frame{X: 20, Y: 10, Width: 40, Height: 20}
	tr := place(frame, &parent, document.ConstraintNone, PolicyCenter)
	offset := tr.AnchoredPosition

	grown := rootRect(300, 160)
	got := tr.PixelFrame(&grown)
	// The node keeps its offset from the parent center.
	want := document.Frame{X: 70, Y: 40, Width: 40, Height: 20}
	if !frameApprox(got, want) {
		t.Errorf("after resize PixelFrame() = %v, want %v", got, want)
	}
	if !tr.AnchorMin.Approx(Center) || !tr.AnchoredPosition.Approx(offset) {
		t.Error("resizing the parent must not change the transform")
	}
}

func TestApplyScale(t *testing.T) {
	parent := rootRect(200, 200)
	frame := document.Frame{X: 50, Y: 50, Width: 100, Height: 100}
	all := document.ConstraintLeft | document.ConstraintRight | document.ConstraintTop | document.ConstraintBottom

	tests := []struct {
		name string
		c    document.Constraint
	}{
		{"point anchors", document.ConstraintNone},
		{"stretch anchors", all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := place(frame, &parent, tt.c, PolicyCenter)
			before := tr.LocalPosition(&parent)
			size := tr.Size(&parent)
			tr.ApplyScale(&parent, 2)
			if got := tr.Size(&parent).Scale(2); !got.Approx(size) {
				t.Errorf("scaled size = %v, want %v", got, size)
			}
			if got := tr.LocalPosition(&parent); !got.Approx(before) {
				t.Errorf("pivot moved from %v to %v", before, got)
			}
		})
	}

	tr := place(frame, &parent, all, PolicyCenter)
	orig := tr
	tr.ApplyScale(&parent, 1)
	tr.ApplyScale(&parent, 0)
	if tr != orig {
		t.Error("scale 1 and 0 must be ignored")
	}
}

func TestClean(t *testing.T) {
	parent := rootRect(200, 100)
	tr := FromFrame(document.Frame{X: 20.4, Y: 10, Width: 100.2, Height: 30})
	tr.SetPivot(Center)
	tr.SetAnchors(&parent, Vec2{0.1, 0.5}, Vec2{0.6, 0.5})
	before := tr.PixelFrame(&parent)
	tr.Clean(&parent)

	if !tr.AnchorMin.Approx(Center) || !tr.AnchorMax.Approx(Center) {
		t.Errorf("odd anchors should collapse to center, got %v %v", tr.AnchorMin, tr.AnchorMax)
	}
	after := tr.PixelFrame(&parent)
	if math.Abs(after.X-before.X) > 1 || math.Abs(after.Width-before.Width) > 1 {
		t.Errorf("Clean moved the node from %v to %v", before, after)
	}
	if tr.SizeDelta.X != math.Round(tr.SizeDelta.X) || tr.AnchoredPosition.X != math.Round(tr.AnchoredPosition.X) {
		t.Errorf("values not rounded: %+v", tr)
	}
}

func TestCleanStretchOddSize(t *testing.T) {
	parent := rootRect(200, 100)
	tr := RectTransform{
		AnchorMin:        Vec2{0, 0.5},
		AnchorMax:        Vec2{1, 0.5},
		Pivot:            Center,
		AnchoredPosition: Vec2{3, -2},
		SizeDelta:        Vec2{-21, 40},
	}
	tr.Clean(&parent)
	if want := (Vec2{2.5, -2}); !tr.AnchoredPosition.Approx(want) {
		t.Errorf("AnchoredPosition = %v, want %v", tr.AnchoredPosition, want)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		digits int
		want   float64
	}{
		{2.5, 0, 2},
		{3.5, 0, 4},
		{0.125, 2, 0.12},
		{-1.5, 0, -2},
	}
	for _, tt := range tests {
		if got := Round(tt.v, tt.digits); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.digits, got, tt.want)
		}
	}
}

func TestAffine(t *testing.T) {
	m := NewAffine(Vec2{10, 5}, 90, Vec2{2, 2})
	p := m.Apply(Vec2{1, 0})
	if !p.Approx(Vec2{10, 7}) {
		t.Errorf("Apply = %v", p)
	}
	back := m.Invert().Apply(p)
	if !back.Approx(Vec2{1, 0}) {
		t.Errorf("Invert().Apply = %v", back)
	}
	if !m.Multiply(m.Invert()).IsTranslation() {
		t.Error("m * m^-1 should be the identity")
	}
	deg, s := m.Decompose()
	if !approx(deg, 90) || !s.Approx(Vec2{2, 2}) {
		t.Errorf("Decompose = %v %v", deg, s)
	}
	if Identity != (Affine{}).Invert() {
		t.Error("singular matrix should invert to identity")
	}
}

func TestParsePolicy(t *testing.T) {
	for _, name := range []string{"", "center", "proportional"} {
		if _, err := ParsePolicy(name); err != nil {
			t.Errorf("ParsePolicy(%q): %v", name, err)
		}
	}
	if _, err := ParsePolicy("diagonal"); err == nil {
		t.Error("expected error")
	}
	if PolicyProportional.String() != "proportional" {
		t.Error("String()")
	}
}
