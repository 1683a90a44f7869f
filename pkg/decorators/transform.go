package decorators

import (
	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/generator"
)

// RectTransform places every object from its layer frame and resizing
// constraints.
//
// Bound instances are first placed with the master's frame so that the
// master's children lay out against the size they were designed for. In
// DecorateReverse, after all children are placed, the instance is resized
// to its own frame and the children follow through their anchors.
func RectTransform(opts Options) *generator.Decorator {
	return newRectTransform(KindRectTransform, opts.withDefaults())
}

// CleanAnchor is RectTransform followed by anchor snapping and rounding in
// DecorateReverseAfter, producing values that read well in an editor.
func CleanAnchor(opts Options) *generator.Decorator {
	d := newRectTransform(KindCleanAnchor, opts.withDefaults())
	d.DecorateReverseAfter = func(e *generator.Entry) error {
		obj := e.Object()
		obj.Transform.Clean(e.ParentRect())
		obj.Scale = anchor.Vec2{X: anchor.Round(obj.Scale.X, 2), Y: anchor.Round(obj.Scale.Y, 2)}
		return nil
	}
	return d
}

func newRectTransform(kind string, opts Options) *generator.Decorator {
	return &generator.Decorator{
		Kind: kind,
		Decorate: func(e *generator.Entry) error {
			layer := e.Layer()
			frame := layer.Frame
			if m := e.View().Master(); m != nil {
				frame = m.Layer.Frame
			}
			place(e, frame, layer, opts.Policy, false)
			return nil
		},
		DecorateReverse: func(e *generator.Entry) error {
			if e.View().Master() == nil {
				return nil
			}
			place(e, e.Layer().Frame, e.Layer(), opts.Policy, true)
			return nil
		},
	}
}

func place(e *generator.Entry, frame document.Frame, layer *document.Layer, policy anchor.Policy, compensate bool) {
	parent := e.ParentRect()
	t := anchor.FromFrame(frame)
	t.SetPivot(anchor.Center)
	min, max := anchor.SketchAnchor(t, parent, layer.Constraint(), policy)
	t.SetAnchors(parent, min, max)

	obj := e.Object()
	obj.Rotation = layer.Rotation
	if layer.FlipHorizontal != layer.FlipVertical {
		obj.Rotation = -layer.Rotation
	}
	s := layer.EffectiveScale()
	obj.Scale = anchor.Vec2{X: s, Y: s}
	if layer.FlipHorizontal {
		obj.Scale.X = -s
	}
	if layer.FlipVertical {
		obj.Scale.Y = -s
	}
	if compensate {
		t.ApplyScale(parent, s)
	}
	obj.Transform = t
}
