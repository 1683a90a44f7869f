package document

import "math"

const colorEqualPrecision = 1e-7

// Color is an RGBA color with components in [0,1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// White is opaque white.
var White = Color{Red: 1, Green: 1, Blue: 1, Alpha: 1}

// Equal reports whether two colors match within 1e-7 per component.
func (c Color) Equal(o Color) bool {
	return math.Abs(c.Red-o.Red) < colorEqualPrecision &&
		math.Abs(c.Green-o.Green) < colorEqualPrecision &&
		math.Abs(c.Blue-o.Blue) < colorEqualPrecision &&
		math.Abs(c.Alpha-o.Alpha) < colorEqualPrecision
}

// FillType is the Sketch fill type.
type FillType int

const (
	FillTypeColor    FillType = 0
	FillTypeGradient FillType = 1
	FillTypePattern  FillType = 4
)

// Fill is one entry of a style's fill stack. Class is "fill" for regular fills.
type Fill struct {
	Class    string   `json:"_class"`
	Enabled  bool     `json:"isEnabled"`
	FillType FillType `json:"fillType"`
	Color    Color    `json:"color"`
}

// ContextSettings carries the layer opacity.
type ContextSettings struct {
	BlendMode int     `json:"blendMode"`
	Opacity   float64 `json:"opacity"`
}

// Style is the visual style block of a layer.
type Style struct {
	Fills           []Fill           `json:"fills,omitempty"`
	ContextSettings *ContextSettings `json:"contextSettings,omitempty"`
	TextStyle       *TextStyle       `json:"textStyle,omitempty"`
}

// Opacity returns the style opacity, 1 when no context settings are present.
func (s *Style) Opacity() float64 {
	if s == nil || s.ContextSettings == nil {
		return 1
	}
	return s.ContextSettings.Opacity
}

// EnabledFills returns the enabled fills of class "fill" in stacking order.
func (s *Style) EnabledFills() []Fill {
	if s == nil {
		return nil
	}
	var out []Fill
	for _, f := range s.Fills {
		if f.Class == "fill" && f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

// HorizontalAlignment is the paragraph alignment of a text style.
type HorizontalAlignment int

const (
	AlignLeft HorizontalAlignment = iota
	AlignRight
	AlignCentered
	AlignJustified
	AlignNatural
)

// VerticalAlignment is the vertical text alignment.
type VerticalAlignment int

const (
	AlignTop VerticalAlignment = iota
	AlignMiddle
	AlignBottom
)

// FontDescriptor names a font and its point size.
type FontDescriptor struct {
	Attributes struct {
		Name string  `json:"name"`
		Size float64 `json:"size"`
	} `json:"attributes"`
}

// ParagraphStyle holds paragraph level text settings.
type ParagraphStyle struct {
	Alignment         *HorizontalAlignment `json:"alignment,omitempty"`
	MaximumLineHeight *float64             `json:"maximumLineHeight,omitempty"`
	ParagraphSpacing  *float64             `json:"paragraphSpacing,omitempty"`
}

// EncodedAttributes is the attribute dictionary of a text style.
type EncodedAttributes struct {
	Font           FontDescriptor `json:"MSAttributedStringFontAttribute"`
	Color          *Color         `json:"MSAttributedStringColorAttribute,omitempty"`
	ParagraphStyle ParagraphStyle `json:"paragraphStyle"`
}

// TextStyle is the text portion of a style block.
type TextStyle struct {
	EncodedAttributes EncodedAttributes `json:"encodedAttributes"`
	VerticalAlignment VerticalAlignment `json:"verticalAlignment"`
}

// FontName returns the font family name.
func (t *TextStyle) FontName() string { return t.EncodedAttributes.Font.Attributes.Name }

// FontSize returns the font size in points.
func (t *TextStyle) FontSize() float64 { return t.EncodedAttributes.Font.Attributes.Size }

// TextColor returns the text color, opaque black when unset.
func (t *TextStyle) TextColor() Color {
	if t.EncodedAttributes.Color == nil {
		return Color{Alpha: 1}
	}
	return *t.EncodedAttributes.Color
}

// Alignment returns the horizontal alignment, left when unset.
func (t *TextStyle) Alignment() HorizontalAlignment {
	if a := t.EncodedAttributes.ParagraphStyle.Alignment; a != nil {
		return *a
	}
	return AlignLeft
}

// SharedStyle is a named style shared between layers.
type SharedStyle struct {
	ID    string `json:"do_objectID"`
	Name  string `json:"name"`
	Value *Style `json:"value"`
}
