package decorators

import (
	"github.com/matzehuels/sketchtower/pkg/generator"
)

// FillColor tints the graphics below a filled group with the group's top
// fill. Descendant RGB is replaced and alpha is multiplied, inactive
// descendants included. The group's own graphic is left alone.
func FillColor() *generator.Decorator {
	return &generator.Decorator{
		Kind: KindFillColor,
		ShouldDecorate: func(e *generator.Entry) bool {
			return len(e.View().FillColors()) > 0
		},
		DecorateReverse: func(e *generator.Entry) error {
			fills := e.View().FillColors()
			fill := fills[len(fills)-1]
			for _, d := range e.Tree.Descendants(e.Index) {
				g := e.Tree.Object(d).Graphic
				if g == nil {
					continue
				}
				g.Color.Red = fill.Red
				g.Color.Green = fill.Green
				g.Color.Blue = fill.Blue
				g.Color.Alpha *= fill.Alpha
			}
			return nil
		},
	}
}

// Opacity multiplies the alpha of descendant graphics by the layer opacity.
func Opacity() *generator.Decorator {
	return &generator.Decorator{
		Kind: KindOpacity,
		ShouldDecorate: func(e *generator.Entry) bool {
			return e.View().Style().Opacity() < 1
		},
		DecorateReverse: func(e *generator.Entry) error {
			opacity := e.View().Style().Opacity()
			for _, d := range e.Tree.Descendants(e.Index) {
				if g := e.Tree.Object(d).Graphic; g != nil {
					g.Color.Alpha *= opacity
				}
			}
			return nil
		},
	}
}
