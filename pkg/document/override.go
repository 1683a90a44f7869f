package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidValue is returned when an override value is neither a string nor
// an object.
var ErrInvalidValue = errors.New("override value must be a string or an object")

// Value is the payload of an override: either a string (text, symbol id,
// shared style id) or a color.
type Value struct {
	String string
	Color  *Color
}

// StringValue returns a string override value.
func StringValue(s string) Value { return Value{String: s} }

// ColorValue returns a color override value.
func ColorValue(c Color) Value { return Value{Color: &c} }

// UnmarshalJSON accepts a JSON string or an object. Objects with "_class"
// equal to "color" decode to a color; other objects (image references) are
// accepted and carry no value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrInvalidValue
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &v.String)
	case '{':
		var probe struct {
			Class string `json:"_class"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return err
		}
		if probe.Class == "color" {
			var c Color
			if err := json.Unmarshal(data, &c); err != nil {
				return err
			}
			v.Color = &c
		}
		return nil
	case 'n':
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidValue, data)
}

// MarshalJSON writes the color object when present, the string otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Color != nil {
		return json.Marshal(struct {
			Class string `json:"_class"`
			Color
		}{"color", *v.Color})
	}
	return json.Marshal(v.String)
}

// OverrideValue is an authored override record on an instance. Name has the
// form "id/id/target_property".
type OverrideValue struct {
	Name  string `json:"overrideName"`
	Value Value  `json:"value"`
}

// OverrideProperty declares on a master whether the named override may be
// applied. Name has the form "path/target_property".
type OverrideProperty struct {
	Name        string `json:"overrideName"`
	CanOverride bool   `json:"canOverride"`
}
