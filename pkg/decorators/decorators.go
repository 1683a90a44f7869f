// Package decorators provides the standard conversion decorators: placement,
// naming, image and text graphics, color and opacity propagation, and the
// visibility rules.
//
// [Default] returns the collection used by the converter. Callers customize
// it through the generator.Collection methods:
//
//	c := decorators.Default(decorators.Options{Sprites: sprites, Fonts: fonts})
//	_ = c.Replace(decorators.KindRectTransform, decorators.CleanAnchor(opts))
//	c.Add(decorators.Mask())
package decorators

import (
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/assets"
	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/generator"
)

// Decorator kinds.
const (
	KindRectTransform  = "rect-transform"
	KindCleanAnchor    = "clean-anchor"
	KindName           = "name"
	KindSpriteImage    = "sprite-image"
	KindRectangleImage = "rectangle-image"
	KindText           = "text"
	KindFillColor      = "fill-color"
	KindOpacity        = "opacity"
	KindInactive       = "inactive"
	KindDestroy        = "destroy"
	KindMask           = "mask"
)

// Presets accepted by Preset.
const (
	PresetDefault = "default"
	PresetClean   = "clean"
)

// Options carries the dependencies of the standard decorators.
type Options struct {
	Sprites assets.SpriteLookup
	Fonts   assets.FontLookup
	Logger  *log.Logger
	Policy  anchor.Policy
}

func (o Options) withDefaults() Options {
	if o.Sprites == nil {
		o.Sprites = assets.NoSprites{}
	}
	if o.Fonts == nil {
		o.Fonts = assets.MapFonts(nil, assets.DefaultFont)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Default returns the standard collection: RectTransform, Name, SpriteImage,
// RectangleImage, Text, FillColor, Opacity and Inactive, in that order.
func Default(opts Options) *generator.Collection {
	return generator.NewCollection(
		RectTransform(opts),
		Name(),
		SpriteImage(opts),
		RectangleImage(opts),
		Text(opts),
		FillColor(),
		Opacity(),
		Inactive(),
	)
}

// Preset returns a named collection. "clean" is the default collection with
// CleanAnchor in place of RectTransform.
func Preset(name string, opts Options) (*generator.Collection, error) {
	c := Default(opts)
	switch name {
	case "", PresetDefault:
		return c, nil
	case PresetClean:
		if err := c.Replace(KindRectTransform, CleanAnchor(opts)); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown decorator preset %q", name)
}

var constructors = map[string]func(Options) *generator.Decorator{
	KindRectTransform:  RectTransform,
	KindCleanAnchor:    CleanAnchor,
	KindName:           func(Options) *generator.Decorator { return Name() },
	KindSpriteImage:    SpriteImage,
	KindRectangleImage: RectangleImage,
	KindText:           Text,
	KindFillColor:      func(Options) *generator.Decorator { return FillColor() },
	KindOpacity:        func(Options) *generator.Decorator { return Opacity() },
	KindInactive:       func(Options) *generator.Decorator { return Inactive() },
	KindDestroy:        func(Options) *generator.Decorator { return Destroy() },
	KindMask:           func(Options) *generator.Decorator { return Mask() },
}

// ByKind constructs a standard decorator from its kind.
func ByKind(kind string, opts Options) (*generator.Decorator, error) {
	fn, ok := constructors[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown decorator kind %q", kind)
	}
	return fn(opts), nil
}

// Kinds lists every standard decorator kind.
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Name sets the object name to the layer name.
func Name() *generator.Decorator {
	return &generator.Decorator{
		Kind: KindName,
		Decorate: func(e *generator.Entry) error {
			e.Object().Name = e.Layer().Name
			return nil
		},
	}
}
