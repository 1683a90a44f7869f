package document

import (
	"fmt"
	"strings"
)

// Kind is the Sketch class name of a layer (the "_class" JSON field).
type Kind string

// Layer kinds handled by the converter. Unknown kinds decode fine and are
// treated as plain containers.
const (
	KindPage           Kind = "page"
	KindArtboard       Kind = "artboard"
	KindSymbolMaster   Kind = "symbolMaster"
	KindSymbolInstance Kind = "symbolInstance"
	KindGroup          Kind = "group"
	KindShapeGroup     Kind = "shapeGroup"
	KindShapePath      Kind = "shapePath"
	KindRectangle      Kind = "rectangle"
	KindOval           Kind = "oval"
	KindTriangle       Kind = "triangle"
	KindPolygon        Kind = "polygon"
	KindStar           Kind = "star"
	KindText           Kind = "text"
	KindBitmap         Kind = "bitmap"
	KindSlice          Kind = "slice"
	KindHotspot        Kind = "MSImmutableHotspotLayer"
)

// Frame is a pixel rectangle relative to the parent layer, y axis pointing down.
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// String formats the frame as "x,y,w,h".
func (f Frame) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", f.X, f.Y, f.Width, f.Height)
}

// AttributedString holds the plain text of a text layer.
type AttributedString struct {
	String string `json:"string"`
}

// Layer is one node of a page tree.
//
// Children are ordered first child first, matching the file format. The
// zero value of Visible is false, so hand-built layers must set it explicitly.
type Layer struct {
	Class          Kind    `json:"_class"`
	ID             string  `json:"do_objectID"`
	Name           string  `json:"name"`
	Frame          Frame   `json:"frame"`
	Visible        bool    `json:"isVisible"`
	Rotation       float64 `json:"rotation"` // degrees, counter-clockwise
	FlipHorizontal bool    `json:"isFlippedHorizontal"`
	FlipVertical   bool    `json:"isFlippedVertical"`

	// ResizingConstraint is the raw, inverted Sketch value. Use Constraint.
	ResizingConstraint int64 `json:"resizingConstraint"`

	SharedStyleID string   `json:"sharedStyleID,omitempty"`
	Style         *Style   `json:"style,omitempty"`
	SymbolID      string   `json:"symbolID,omitempty"`
	Layers        []*Layer `json:"layers,omitempty"`

	// Scale is the instance scale factor; zero means unset.
	Scale float64 `json:"scale,omitempty"`

	AttributedString *AttributedString `json:"attributedString,omitempty"`

	HasClippingMask bool `json:"hasClippingMask,omitempty"`
	BreakMaskChain  bool `json:"shouldBreakMaskChain,omitempty"`

	// AllowsOverrides is only meaningful on masters; nil means true.
	AllowsOverrides    *bool              `json:"allowsOverrides,omitempty"`
	OverrideProperties []OverrideProperty `json:"overrideProperties,omitempty"`
	OverrideValues     []OverrideValue    `json:"overrideValues,omitempty"`
}

// Is reports whether the layer has the given kind.
func (l *Layer) Is(k Kind) bool {
	return l != nil && l.Class == k
}

// Constraint returns the decoded resizing constraint flags.
func (l *Layer) Constraint() Constraint {
	return DecodeResizingConstraint(l.ResizingConstraint)
}

// EffectiveScale returns the scale factor, treating an unset scale as 1.
func (l *Layer) EffectiveScale() float64 {
	if l.Scale == 0 {
		return 1
	}
	return l.Scale
}

// Text returns the authored attributed string, or "" when there is none.
func (l *Layer) Text() string {
	if l.AttributedString == nil {
		return ""
	}
	return l.AttributedString.String
}

// OverridesAllowed reports whether a master lets instances override its content.
func (l *Layer) OverridesAllowed() bool {
	return l.AllowsOverrides == nil || *l.AllowsOverrides
}

// Walk visits the layer and all descendants in pre-order. Returning false
// from fn skips the children of that layer.
func (l *Layer) Walk(fn func(*Layer) bool) {
	if l == nil {
		return
	}
	stack := []*Layer{l}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.Layers) - 1; i >= 0; i-- {
			if cur.Layers[i] != nil {
				stack = append(stack, cur.Layers[i])
			}
		}
	}
}

// Find returns the first layer in the subtree for which match returns true.
func (l *Layer) Find(match func(*Layer) bool) *Layer {
	var found *Layer
	l.Walk(func(cur *Layer) bool {
		if found != nil {
			return false
		}
		if match(cur) {
			found = cur
			return false
		}
		return true
	})
	return found
}

// HasArtboard reports whether a page has an artboard or master at its top level.
func (l *Layer) HasArtboard() bool {
	for _, c := range l.Layers {
		if c.Is(KindArtboard) || c.Is(KindSymbolMaster) {
			return true
		}
	}
	return false
}

// Artboards returns the top-level artboards and masters of a page.
func (l *Layer) Artboards() []*Layer {
	var out []*Layer
	for _, c := range l.Layers {
		if c.Is(KindArtboard) || c.Is(KindSymbolMaster) {
			out = append(out, c)
		}
	}
	return out
}

// HierarchyString renders the subtree as an indented listing:
//
//	Button (0,0,120,40)[symbolMaster]
//	  Label (10,10,100,20)[text]
func (l *Layer) HierarchyString() string {
	var sb strings.Builder
	writeHierarchy(&sb, l, 0)
	return sb.String()
}

func writeHierarchy(sb *strings.Builder, l *Layer, depth int) {
	if l == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "%s (%s)[%s]\n", l.Name, l.Frame, l.Class)
	for _, c := range l.Layers {
		writeHierarchy(sb, c, depth+1)
	}
}
