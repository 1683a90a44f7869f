package document

import "strings"

// Constraint is a set of decoded resizing flags. A set edge bit means the
// layer keeps its distance to that parent edge; a set Width or Height bit
// means the size on that axis is fixed.
type Constraint uint8

const (
	ConstraintRight  Constraint = 1 << 0
	ConstraintWidth  Constraint = 1 << 1
	ConstraintLeft   Constraint = 1 << 2
	ConstraintBottom Constraint = 1 << 3
	ConstraintHeight Constraint = 1 << 4
	ConstraintTop    Constraint = 1 << 5

	ConstraintNone Constraint = 0
	constraintMask Constraint = 0x3f
)

// DecodeResizingConstraint converts the value stored in a Sketch file, where
// cleared bits mean pinned, into a Constraint.
func DecodeResizingConstraint(raw int64) Constraint {
	return Constraint(^raw) & constraintMask
}

// Encode returns the inverted representation used by the file format.
func (c Constraint) Encode() int64 {
	return int64(^c & constraintMask)
}

// Has reports whether every flag in f is set.
func (c Constraint) Has(f Constraint) bool {
	return c&f == f
}

func (c Constraint) String() string {
	if c == ConstraintNone {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		flag Constraint
		name string
	}{
		{ConstraintLeft, "left"},
		{ConstraintRight, "right"},
		{ConstraintTop, "top"},
		{ConstraintBottom, "bottom"},
		{ConstraintWidth, "width"},
		{ConstraintHeight, "height"},
	} {
		if c.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}
