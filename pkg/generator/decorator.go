// Package generator turns a layer view into a tree of scene objects.
//
// A [Generator] materializes one object per view node, then runs its
// decorators over the pre-order sequence of objects in four phases:
//
//	Decorate              parents before children
//	DecorateAfter         parents before children
//	DecorateReverse       children before parents
//	DecorateReverseAfter  children before parents
//
// Within one phase every node sees the decorators in registration order.
// Decorators may delete nodes or move them to another parent at any time;
// deleted nodes are skipped by everything that runs afterwards.
//
// Decorators are plain values with optional callback slots, so a custom
// decorator only fills in what it needs:
//
//	d := &generator.Decorator{
//	    Kind: "tag-buttons",
//	    ShouldDecorate: func(e *generator.Entry) bool {
//	        return strings.HasPrefix(e.View().MasterName(), "button/")
//	    },
//	    DecorateAfter: func(e *generator.Entry) error {
//	        e.Object().SetTag("component", "button")
//	        return nil
//	    },
//	}
package generator

import (
	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/layerview"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// Phase identifies a step of generation.
type Phase int

const (
	PhaseMaterialize Phase = iota
	PhaseDecorate
	PhaseDecorateAfter
	PhaseDecorateReverse
	PhaseDecorateReverseAfter
)

var phaseNames = [...]string{
	PhaseMaterialize:          "materialize",
	PhaseDecorate:             "decorate",
	PhaseDecorateAfter:        "decorate-after",
	PhaseDecorateReverse:      "decorate-reverse",
	PhaseDecorateReverseAfter: "decorate-reverse-after",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Decorator is one unit of conversion logic. Nil predicates default to
// "decorate every node" and "never break"; nil callbacks are skipped.
type Decorator struct {
	// Kind names the decorator inside a Collection.
	Kind string

	ShouldDecorate         func(*Entry) bool
	ShouldBreakDescendants func(*Entry) bool

	Decorate             func(*Entry) error
	DecorateAfter        func(*Entry) error
	DecorateReverse      func(*Entry) error
	DecorateReverseAfter func(*Entry) error
}

func (d *Decorator) callback(p Phase) func(*Entry) error {
	switch p {
	case PhaseDecorate:
		return d.Decorate
	case PhaseDecorateAfter:
		return d.DecorateAfter
	case PhaseDecorateReverse:
		return d.DecorateReverse
	case PhaseDecorateReverseAfter:
		return d.DecorateReverseAfter
	}
	return nil
}

func (d *Decorator) wants(e *Entry) bool {
	return d.ShouldDecorate == nil || d.ShouldDecorate(e)
}

func (d *Decorator) breaks(e *Entry) bool {
	return d.ShouldBreakDescendants != nil && d.ShouldBreakDescendants(e)
}

// Entry is the handle a decorator receives for one node.
type Entry struct {
	Index int
	Tree  *Tree
}

func (e *Entry) View() *layerview.Node    { return e.Tree.View(e.Index) }
func (e *Entry) Layer() *document.Layer   { return e.Tree.View(e.Index).Layer() }
func (e *Entry) Object() *scene.Object    { return e.Tree.Object(e.Index) }
func (e *Entry) Parent() int              { return e.Tree.Parent(e.Index) }
func (e *Entry) Children() []int          { return e.Tree.Children(e.Index) }
func (e *Entry) Alive() bool              { return e.Tree.Alive(e.Index) }
func (e *Entry) Delete()                  { e.Tree.Delete(e.Index) }
func (e *Entry) ParentRect() *anchor.Rect { return e.Tree.ParentRect(e.Index) }

// SetParent moves the node under p, keeping its visual placement.
func (e *Entry) SetParent(p int) error { return e.Tree.SetParent(e.Index, p) }

// HasGraphicInSubtree reports whether the node or a live descendant carries
// a graphic.
func (e *Entry) HasGraphicInSubtree() bool { return e.Tree.HasGraphicInSubtree(e.Index) }
