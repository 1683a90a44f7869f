// Package scene defines the output object model: a tree of UI objects with
// RectTransform placement and at most one graphic each.
//
// Objects are produced by the generator package and exported as a [Node]
// tree for serialization, rendering and comparison.
package scene

import (
	"github.com/google/uuid"

	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/document"
)

// LayerUI is the render layer assigned to every generated object by default.
const LayerUI = 5

// Object is one generated UI object.
type Object struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Active    bool                 `json:"active"`
	Layer     int                  `json:"layer"`
	Transform anchor.RectTransform `json:"transform"`
	Rotation  float64              `json:"rotation"` // degrees around z
	Scale     anchor.Vec2          `json:"scale"`
	Graphic   *Graphic             `json:"graphic,omitempty"`
	Mask      bool                 `json:"mask,omitempty"`
	Tags      map[string]string    `json:"tags,omitempty"`
}

// NewObject returns an active object with identity transform values.
func NewObject(id uuid.UUID) *Object {
	return &Object{
		ID:        id,
		Active:    true,
		Transform: anchor.Default(),
		Scale:     anchor.One,
	}
}

// SetTag attaches a free-form marker, used by custom decorators.
func (o *Object) SetTag(key, value string) {
	if o.Tags == nil {
		o.Tags = make(map[string]string)
	}
	o.Tags[key] = value
}

// GraphicKind tells images and texts apart.
type GraphicKind string

const (
	GraphicImage GraphicKind = "image"
	GraphicText  GraphicKind = "text"
)

// Graphic is the visible component of an object.
type Graphic struct {
	Kind    GraphicKind    `json:"kind"`
	Enabled bool           `json:"enabled"`
	Color   document.Color `json:"color"`

	Sprite string `json:"sprite,omitempty"`
	Sliced bool   `json:"sliced,omitempty"`

	Text *Text `json:"text,omitempty"`
}

// NewImage returns an enabled image graphic.
func NewImage(sprite string, c document.Color) *Graphic {
	return &Graphic{Kind: GraphicImage, Enabled: true, Color: c, Sprite: sprite}
}

// TextAnchor is the nine-way alignment of a text box.
type TextAnchor string

const (
	UpperLeft    TextAnchor = "UpperLeft"
	UpperCenter  TextAnchor = "UpperCenter"
	UpperRight   TextAnchor = "UpperRight"
	MiddleLeft   TextAnchor = "MiddleLeft"
	MiddleCenter TextAnchor = "MiddleCenter"
	MiddleRight  TextAnchor = "MiddleRight"
	LowerLeft    TextAnchor = "LowerLeft"
	LowerCenter  TextAnchor = "LowerCenter"
	LowerRight   TextAnchor = "LowerRight"
)

// Text holds text rendering settings.
type Text struct {
	Value            string     `json:"value"`
	Font             string     `json:"font"`
	FontSize         int        `json:"fontSize"`
	Alignment        TextAnchor `json:"alignment"`
	LineSpacing      float64    `json:"lineSpacing"`
	HorizontalWrap   bool       `json:"horizontalWrap"`
	VerticalOverflow bool       `json:"verticalOverflow"`
}
