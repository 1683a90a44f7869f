package decorators

import (
	"slices"

	"github.com/matzehuels/sketchtower/pkg/generator"
)

// Inactive deactivates hidden layers and layers that end up drawing
// nothing. A hidden clipping mask stays active so it keeps clipping, but its
// own graphic is disabled.
func Inactive() *generator.Decorator {
	return &generator.Decorator{
		Kind: KindInactive,
		DecorateAfter: func(e *generator.Entry) error {
			layer := e.Layer()
			obj := e.Object()
			switch {
			case !layer.Visible && !layer.HasClippingMask:
				obj.Active = false
			case !layer.Visible:
				if obj.Graphic != nil {
					obj.Graphic.Enabled = false
				}
			case !e.Tree.HasActiveGraphicInSubtree(e.Index):
				obj.Active = false
			}
			return nil
		},
	}
}

// Destroy removes hidden layers up front and prunes subtrees that draw
// nothing once all other decorators ran. Hidden clipping masks survive the
// first pass and are removed later if nothing ended up under them.
func Destroy() *generator.Decorator {
	return &generator.Decorator{
		Kind: KindDestroy,
		Decorate: func(e *generator.Entry) error {
			if l := e.Layer(); !l.Visible && !l.HasClippingMask {
				e.Delete()
			}
			return nil
		},
		DecorateReverseAfter: func(e *generator.Entry) error {
			l := e.Layer()
			hiddenMask := !l.Visible && l.HasClippingMask
			if !e.Tree.HasActiveGraphicInSubtree(e.Index) || (hiddenMask && len(e.Children()) == 0) {
				e.Delete()
			}
			return nil
		},
	}
}

// Mask turns clipping-mask layers into masks and moves the siblings above
// them under the mask, up to the first sibling that breaks the chain.
func Mask() *generator.Decorator {
	return &generator.Decorator{
		Kind: KindMask,
		ShouldDecorate: func(e *generator.Entry) bool {
			return e.Layer().HasClippingMask
		},
		DecorateReverseAfter: func(e *generator.Entry) error {
			obj := e.Object()
			obj.Mask = true
			if p := e.Parent(); p >= 0 {
				siblings := e.Tree.Children(p)
				k := slices.Index(siblings, e.Index)
				for _, s := range siblings[k+1:] {
					if e.Tree.View(s).Layer().BreakMaskChain {
						break
					}
					if err := e.Tree.SetParent(s, e.Index); err != nil {
						return err
					}
				}
			}
			if obj.Graphic != nil {
				obj.Graphic.Enabled = e.Layer().Visible
			}
			return nil
		},
	}
}
