package generator

import (
	"slices"

	"github.com/matzehuels/sketchtower/pkg/errors"
)

// Collection is an ordered list of decorators. Edits by kind always target
// the first decorator of that kind.
type Collection struct {
	items   []*Decorator
	compare func(a, b *Decorator) int
}

// NewCollection returns a collection holding ds in order.
func NewCollection(ds ...*Decorator) *Collection {
	return &Collection{items: slices.Clone(ds)}
}

// Add appends d.
func (c *Collection) Add(d *Decorator) {
	c.items = append(c.items, d)
}

// Remove deletes the first occurrence of d. Unknown decorators are ignored.
func (c *Collection) Remove(d *Decorator) {
	if i := slices.Index(c.items, d); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

// Replace swaps the first decorator of the given kind for d.
func (c *Collection) Replace(kind string, d *Decorator) error {
	i, err := c.find(kind)
	if err != nil {
		return err
	}
	c.items[i] = d
	return nil
}

// InsertBefore places d directly before the first decorator of the given kind.
func (c *Collection) InsertBefore(kind string, d *Decorator) error {
	i, err := c.find(kind)
	if err != nil {
		return err
	}
	c.items = slices.Insert(c.items, i, d)
	return nil
}

// InsertAfter places d directly after the first decorator of the given kind.
func (c *Collection) InsertAfter(kind string, d *Decorator) error {
	i, err := c.find(kind)
	if err != nil {
		return err
	}
	c.items = slices.Insert(c.items, i+1, d)
	return nil
}

func (c *Collection) find(kind string) (int, error) {
	i := slices.IndexFunc(c.items, func(d *Decorator) bool { return d.Kind == kind })
	if i < 0 {
		return -1, errors.New(errors.ErrCodeInvalidConfig, "no decorator of kind %q", kind)
	}
	return i, nil
}

// Index returns the position of the first decorator of the given kind, or -1.
func (c *Collection) Index(kind string) int {
	return slices.IndexFunc(c.items, func(d *Decorator) bool { return d.Kind == kind })
}

// SetCompare installs the ordering used by Sort. A nil function keeps the
// registration order.
func (c *Collection) SetCompare(fn func(a, b *Decorator) int) {
	c.compare = fn
}

// Sort orders the decorators stably with the installed compare function.
func (c *Collection) Sort() {
	if c.compare != nil {
		slices.SortStableFunc(c.items, c.compare)
	}
}

// All returns a copy of the decorators in order.
func (c *Collection) All() []*Decorator { return slices.Clone(c.items) }

// Len returns the number of decorators.
func (c *Collection) Len() int { return len(c.items) }

// Kinds returns the decorator kinds in order.
func (c *Collection) Kinds() []string {
	kinds := make([]string, len(c.items))
	for i, d := range c.items {
		kinds[i] = d.Kind
	}
	return kinds
}

// Clone returns an independent copy. Decorators themselves are shared.
func (c *Collection) Clone() *Collection {
	return &Collection{items: slices.Clone(c.items), compare: c.compare}
}
