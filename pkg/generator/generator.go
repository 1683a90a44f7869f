package generator

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/layerview"
	"github.com/matzehuels/sketchtower/pkg/observability"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// DefaultNamespace seeds object ids when no namespace is configured.
var DefaultNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/sketchtower"))

var phases = []Phase{PhaseDecorate, PhaseDecorateAfter, PhaseDecorateReverse, PhaseDecorateReverseAfter}

// Generator converts layer views into object trees. It is immutable after
// New and safe for concurrent use as long as its decorators are.
type Generator struct {
	decorators []*Decorator
	logger     *log.Logger
	hooks      observability.GeneratorHooks
	layer      int
	namespace  uuid.UUID
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithHooks sets the receiver of per-phase events.
func WithHooks(h observability.GeneratorHooks) Option {
	return func(g *Generator) {
		if h != nil {
			g.hooks = h
		}
	}
}

// WithLayer sets the render layer assigned to every generated object.
func WithLayer(layer int) Option {
	return func(g *Generator) { g.layer = layer }
}

// WithNamespace sets the UUID namespace object ids are derived from.
func WithNamespace(ns uuid.UUID) Option {
	return func(g *Generator) { g.namespace = ns }
}

// New returns a generator running a sorted copy of c. Later changes to c do
// not affect the generator.
func New(c *Collection, opts ...Option) *Generator {
	c = c.Clone()
	c.Sort()
	g := &Generator{
		decorators: c.items,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		hooks:      observability.NoopGeneratorHooks{},
		layer:      scene.LayerUI,
		namespace:  DefaultNamespace,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decorators returns the decorators in execution order.
func (g *Generator) Decorators() []*Decorator { return slices.Clone(g.decorators) }

// Generate builds the object tree for a view. A nil view yields an empty
// tree. On error no tree is returned.
func (g *Generator) Generate(root *layerview.Node) (*Tree, error) {
	t := newTree()
	if root == nil {
		return t, nil
	}

	start := time.Now()
	if err := g.materialize(t, root); err != nil {
		return nil, err
	}
	g.hooks.OnPhaseComplete(PhaseMaterialize.String(), t.Len(), time.Since(start))

	for _, phase := range phases {
		start = time.Now()
		if err := g.run(t, phase); err != nil {
			return nil, err
		}
		g.hooks.OnPhaseComplete(phase.String(), t.Count(), time.Since(start))
	}

	g.postprocess(t)
	g.logger.Debug("generated tree", "root", root.Name(), "objects", t.Count(), "materialized", t.Len())
	return t, nil
}

type pending struct {
	view    *layerview.Node
	parent  int
	ordinal int
}

func (g *Generator) materialize(t *Tree, root *layerview.Node) error {
	stack := []pending{{view: root, parent: -1}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i := t.add(p.view, scene.NewObject(g.objectID(t, p)), p.parent)
		t.sequence = append(t.sequence, i)

		stop, err := g.shouldBreak(&Entry{Index: i, Tree: t})
		if err != nil {
			return err
		}
		if stop {
			continue
		}
		kids := p.view.Children()
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, pending{view: kids[k], parent: i, ordinal: k})
		}
	}
	return nil
}

// objectID derives a stable id from the parent's id, the layer id and the
// sibling position, so repeated symbol instances never collide.
func (g *Generator) objectID(t *Tree, p pending) uuid.UUID {
	ns := g.namespace
	if p.parent >= 0 {
		ns = t.objects[p.parent].ID
	}
	return uuid.NewSHA1(ns, fmt.Appendf(nil, "%s/%d", p.view.ID(), p.ordinal))
}

func (g *Generator) shouldBreak(e *Entry) (bool, error) {
	for _, d := range g.decorators {
		if d.ShouldBreakDescendants == nil || !e.Alive() {
			continue
		}
		var stop bool
		if err := g.guard(PhaseMaterialize, d, e, func() error {
			stop = d.breaks(e)
			return nil
		}); err != nil {
			return false, err
		}
		if stop {
			return true, nil
		}
	}
	return false, nil
}

func (g *Generator) run(t *Tree, phase Phase) error {
	order := t.sequence
	if phase == PhaseDecorateReverse || phase == PhaseDecorateReverseAfter {
		order = slices.Clone(order)
		slices.Reverse(order)
	}
	for _, i := range order {
		e := &Entry{Index: i, Tree: t}
		for _, d := range g.decorators {
			if !e.Alive() {
				break
			}
			// Every predicate runs in every phase, even for decorators with
			// no callback here, so a failing predicate always aborts.
			var ok bool
			if err := g.guard(phase, d, e, func() error {
				ok = d.wants(e)
				return nil
			}); err != nil {
				return err
			}
			fn := d.callback(phase)
			if fn == nil || !ok || !e.Alive() {
				continue
			}
			if err := g.guard(phase, d, e, func() error { return fn(e) }); err != nil {
				return err
			}
		}
	}
	return nil
}

// guard runs fn and converts a returned error or a panic into a
// DecoratorError.
func (g *Generator) guard(phase Phase, d *Decorator, e *Entry, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
		if err == nil {
			return
		}
		view := e.View()
		g.hooks.OnDecoratorError(phase.String(), d.Kind)
		g.logger.Debug("decorator failed", "phase", phase, "decorator", d.Kind, "layer", view.Name(), "err", err)
		err = &DecoratorError{
			Phase:     phase,
			Decorator: d.Kind,
			Index:     e.Index,
			LayerID:   view.ID(),
			LayerName: view.Name(),
			Cause:     err,
		}
	}()
	return fn()
}

// postprocess resets the root placement and assigns the render layer.
func (g *Generator) postprocess(t *Tree) {
	root := t.Root()
	if root < 0 {
		return
	}
	obj := t.objects[root]
	obj.Transform.AnchoredPosition = anchor.Zero
	obj.Scale = anchor.One
	t.Walk(func(i int) { t.objects[i].Layer = g.layer })
}
