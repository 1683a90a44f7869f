package decorators

import (
	"math"

	"github.com/matzehuels/sketchtower/pkg/assets"
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/generator"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// SpriteImage attaches an image graphic to layers that have a matching
// sprite. The master name is looked up first, then the layer name. The
// subtree below a sprite is not materialized.
func SpriteImage(opts Options) *generator.Decorator {
	opts = opts.withDefaults()
	find := func(e *generator.Entry) (string, bool) {
		v := e.View()
		if name := v.MasterName(); name != "" {
			if _, ok := opts.Sprites.FindSprite(name); ok {
				return name, true
			}
		}
		if _, ok := opts.Sprites.FindSprite(v.Name()); ok {
			return v.Name(), true
		}
		return "", false
	}
	applies := func(e *generator.Entry) bool {
		if e.View().Kind() == document.KindText || e.Object().Graphic != nil {
			return false
		}
		_, ok := find(e)
		return ok
	}
	return &generator.Decorator{
		Kind:                   KindSpriteImage,
		ShouldDecorate:         applies,
		ShouldBreakDescendants: applies,
		Decorate: func(e *generator.Entry) error {
			name, _ := find(e)
			sprite, _ := opts.Sprites.FindSprite(name)

			c := document.White
			if fills := e.View().FillColors(); len(fills) > 0 {
				c = fills[len(fills)-1]
			}
			c.Alpha *= e.View().Style().Opacity()

			g := scene.NewImage(sprite.Path, c)
			g.Sliced = sprite.Sliced()
			e.Object().Graphic = g
			return nil
		},
	}
}

// RectangleImage draws plain rectangles as untextured images tinted with
// the blend of their fills.
func RectangleImage(opts Options) *generator.Decorator {
	applies := func(e *generator.Entry) bool {
		v := e.View()
		return v.Kind() == document.KindRectangle && e.Object().Graphic == nil && len(v.FillColors()) > 0
	}
	return &generator.Decorator{
		Kind:                   KindRectangleImage,
		ShouldDecorate:         applies,
		ShouldBreakDescendants: applies,
		Decorate: func(e *generator.Entry) error {
			fills := e.View().FillColors()
			c := fills[0]
			for _, f := range fills[1:] {
				c = Blend(c, f)
			}
			c.Alpha *= e.View().Style().Opacity()
			e.Object().Graphic = scene.NewImage("", c)
			return nil
		},
	}
}

// Blend composites top over bottom.
func Blend(bottom, top document.Color) document.Color {
	a := top.Alpha
	return document.Color{
		Red:   bottom.Red*(1-a) + top.Red*a,
		Green: bottom.Green*(1-a) + top.Green*a,
		Blue:  bottom.Blue*(1-a) + top.Blue*a,
		Alpha: 1 - (1-bottom.Alpha)*(1-a),
	}
}

// Text attaches a text graphic to text layers.
func Text(opts Options) *generator.Decorator {
	opts = opts.withDefaults()
	applies := func(e *generator.Entry) bool {
		return e.View().Kind() == document.KindText && e.Object().Graphic == nil
	}
	return &generator.Decorator{
		Kind:                   KindText,
		ShouldDecorate:         applies,
		ShouldBreakDescendants: applies,
		Decorate: func(e *generator.Entry) error {
			v := e.View()
			style := v.TextStyle()
			text := &scene.Text{
				Value:            v.Text(),
				Alignment:        scene.MiddleCenter,
				LineSpacing:      1,
				HorizontalWrap:   true,
				VerticalOverflow: true,
			}
			color := document.Color{Alpha: 1}
			font := assets.DefaultFont
			if style != nil {
				font = opts.Fonts.FindFont(style.FontName())
				text.FontSize = int(math.RoundToEven(style.FontSize()))
				text.Alignment = textAnchor(style)
				text.LineSpacing = lineSpacing(style, font.Size, font.LineHeight, font.LineRate)
				color = style.TextColor()
				if style.EncodedAttributes.ParagraphStyle.ParagraphSpacing != nil {
					opts.Logger.Warn("paragraph spacing is not supported", "layer", v.Name(), "id", v.ID())
				}
			}
			text.Font = font.Name

			e.Object().Graphic = &scene.Graphic{
				Kind:    scene.GraphicText,
				Enabled: true,
				Color:   color,
				Text:    text,
			}
			return nil
		},
	}
}

var anchors = [3][3]scene.TextAnchor{
	{scene.UpperLeft, scene.UpperCenter, scene.UpperRight},
	{scene.MiddleLeft, scene.MiddleCenter, scene.MiddleRight},
	{scene.LowerLeft, scene.LowerCenter, scene.LowerRight},
}

func textAnchor(s *document.TextStyle) scene.TextAnchor {
	col := 0
	switch s.Alignment() {
	case document.AlignRight:
		col = 2
	case document.AlignCentered:
		col = 1
	case document.AlignLeft, document.AlignJustified, document.AlignNatural:
	default:
		return scene.MiddleCenter
	}
	var row int
	switch s.VerticalAlignment {
	case document.AlignTop:
		row = 0
	case document.AlignMiddle:
		row = 1
	case document.AlignBottom:
		row = 2
	default:
		return scene.MiddleCenter
	}
	return anchors[row][col]
}

// lineSpacing converts the design line height into a multiple of the
// target font's natural line height.
func lineSpacing(s *document.TextStyle, fontSize int, fontLineHeight, lineRate float64) float64 {
	size := s.FontSize()
	if size <= 0 || fontLineHeight <= 0 {
		return 1
	}
	height := size * lineRate
	if m := s.EncodedAttributes.ParagraphStyle.MaximumLineHeight; m != nil {
		height = *m
	}
	return height / size * (float64(fontSize) / fontLineHeight)
}
