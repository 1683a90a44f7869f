package generator

import (
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/layerview"
	"github.com/matzehuels/sketchtower/pkg/scene"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

func layer(name string, frame document.Frame, children ...*document.Layer) *document.Layer {
	return &document.Layer{
		Class:   document.KindGroup,
		ID:      "id-" + name,
		Name:    name,
		Visible: true,
		Frame:   frame,
		Layers:  children,
	}
}

// board builds board{A, B{C}}.
func board(t *testing.T) *layerview.Node {
	t.Helper()
	root := layer("board", document.Frame{Width: 200, Height: 200},
		layer("A", document.Frame{X: 10, Y: 10, Width: 100, Height: 100}),
		layer("B", document.Frame{X: 0, Y: 120, Width: 50, Height: 50},
			layer("C", document.Frame{X: 5, Y: 5, Width: 10, Height: 10}),
		),
	)
	root.Class = document.KindArtboard
	doc := &document.Document{}
	view, ok := layerview.NewBuilder(symbol.NewIndex(doc), symbol.NewStyleIndex(doc)).Build(root)
	if !ok {
		t.Fatal("board pruned")
	}
	return view
}

func index(t *testing.T, tree *Tree, name string) int {
	t.Helper()
	for _, i := range tree.Sequence() {
		if tree.View(i).Name() == name {
			return i
		}
	}
	t.Fatalf("no node %q", name)
	return -1
}

func generate(t *testing.T, ds ...*Decorator) *Tree {
	t.Helper()
	tree, err := New(NewCollection(ds...)).Generate(board(t))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return tree
}

// place positions every object from its layer frame.
var place = &Decorator{
	Kind: "place",
	Decorate: func(e *Entry) error {
		e.Object().Transform = anchor.FromFrame(e.Layer().Frame)
		e.Object().Transform.SetPivot(anchor.Center)
		return nil
	},
}

func TestPhaseOrder(t *testing.T) {
	var events []string
	record := func(phase string) func(*Entry) error {
		return func(e *Entry) error {
			events = append(events, phase+":"+e.View().Name())
			return nil
		}
	}
	generate(t, &Decorator{
		Kind:                 "record",
		Decorate:             record("d"),
		DecorateAfter:        record("da"),
		DecorateReverse:      record("r"),
		DecorateReverseAfter: record("ra"),
	})

	want := strings.Join([]string{
		"d:board", "d:A", "d:B", "d:C",
		"da:board", "da:A", "da:B", "da:C",
		"r:C", "r:B", "r:A", "r:board",
		"ra:C", "ra:B", "ra:A", "ra:board",
	}, ",")
	if got := strings.Join(events, ","); got != want {
		t.Errorf("events =\n%s\nwant\n%s", got, want)
	}
}

func TestDecorateVisibleToReverse(t *testing.T) {
	mark := &Decorator{
		Kind: "mark",
		Decorate: func(e *Entry) error {
			e.Object().SetTag("seen", "yes")
			return nil
		},
	}
	check := &Decorator{
		Kind: "check",
		DecorateReverse: func(e *Entry) error {
			for _, d := range e.Tree.Descendants(e.Index) {
				if e.Tree.Object(d).Tags["seen"] != "yes" {
					t.Errorf("%s: descendant %s not decorated", e.View().Name(), e.Tree.View(d).Name())
				}
			}
			return nil
		},
	}
	generate(t, check, mark)
}

func TestDeleteSkipsLaterDecorators(t *testing.T) {
	var visited []string
	del := &Decorator{
		Kind:           "delete",
		ShouldDecorate: func(e *Entry) bool { return e.View().Name() == "B" },
		DecorateReverseAfter: func(e *Entry) error {
			e.Delete()
			return nil
		},
	}
	visit := &Decorator{
		Kind: "visit",
		DecorateReverseAfter: func(e *Entry) error {
			visited = append(visited, e.View().Name())
			return nil
		},
	}
	tree := generate(t, del, visit)

	if got := strings.Join(visited, ","); got != "C,A,board" {
		t.Errorf("visited = %s, want C,A,board", got)
	}
	if tree.Count() != 2 || tree.Len() != 4 {
		t.Errorf("Count = %d Len = %d, want 2 and 4", tree.Count(), tree.Len())
	}
	if tree.Alive(index(t, tree, "C")) {
		t.Error("deleting B must delete its subtree")
	}
	if got := tree.Export().Count(); got != 2 {
		t.Errorf("exported %d nodes, want 2", got)
	}
}

func TestBreakDescendants(t *testing.T) {
	var asked []string
	tree := generate(t, &Decorator{
		Kind: "leaf",
		ShouldBreakDescendants: func(e *Entry) bool {
			asked = append(asked, e.View().Name())
			return e.View().Name() == "B"
		},
	})
	if tree.Len() != 3 {
		t.Errorf("Len = %d, want 3", tree.Len())
	}
	if got := strings.Join(asked, ","); got != "board,A,B" {
		t.Errorf("asked = %s", got)
	}
}

func TestGenerateNilRoot(t *testing.T) {
	tree, err := New(NewCollection(place)).Generate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 0 || tree.Root() != -1 || tree.Count() != 0 || tree.Export() != nil {
		t.Errorf("empty tree expected, got Len %d Root %d", tree.Len(), tree.Root())
	}
}

func TestPanicBecomesDecoratorError(t *testing.T) {
	boom := &Decorator{
		Kind: "boom",
		DecorateAfter: func(e *Entry) error {
			if e.View().Name() == "C" {
				var m map[string]int
				m["x"]++
			}
			return nil
		},
	}
	tree, err := New(NewCollection(boom)).Generate(board(t))
	if tree != nil {
		t.Error("no tree expected on failure")
	}
	var de *DecoratorError
	if !stderrors.As(err, &de) {
		t.Fatalf("err = %v, want *DecoratorError", err)
	}
	if de.Phase != PhaseDecorateAfter || de.Decorator != "boom" || de.LayerName != "C" || de.LayerID != "id-C" {
		t.Errorf("DecoratorError = %+v", de)
	}
	var pe *PanicError
	if !stderrors.As(err, &pe) {
		t.Errorf("cause = %v, want *PanicError", de.Cause)
	}
	if !errors.Is(err, errors.ErrCodeDecorator) {
		t.Error("error should carry ErrCodeDecorator")
	}
}

func TestPredicatePanicAndCallbackError(t *testing.T) {
	sentinel := stderrors.New("bad layer")
	tests := []struct {
		name  string
		d     *Decorator
		phase Phase
		layer string
	}{
		{"break predicate", &Decorator{
			Kind:                   "p",
			ShouldBreakDescendants: func(*Entry) bool { panic("oops") },
		}, PhaseMaterialize, "board"},
		{"decorate predicate", &Decorator{
			Kind:            "p",
			ShouldDecorate:  func(*Entry) bool { panic("oops") },
			DecorateReverse: func(*Entry) error { return nil },
		}, PhaseDecorate, "board"},
		{"predicate without callbacks", &Decorator{
			Kind:           "p",
			ShouldDecorate: func(*Entry) bool { panic("oops") },
		}, PhaseDecorate, "board"},
		{"returned error", &Decorator{
			Kind:     "p",
			Decorate: func(*Entry) error { return sentinel },
		}, PhaseDecorate, "board"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(NewCollection(tt.d)).Generate(board(t))
			var de *DecoratorError
			if !stderrors.As(err, &de) || de.Phase != tt.phase {
				t.Fatalf("err = %v, want DecoratorError in %s", err, tt.phase)
			}
			if de.LayerName != tt.layer {
				t.Errorf("failed on %s, want %s", de.LayerName, tt.layer)
			}
		})
	}

	_, err := New(NewCollection(tests[3].d)).Generate(board(t))
	if !stderrors.Is(err, sentinel) {
		t.Errorf("errors.Is(err, sentinel) = false for %v", err)
	}
}

func TestPostprocess(t *testing.T) {
	tree, err := New(NewCollection(place), WithLayer(7)).Generate(board(t))
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Object(tree.Root())
	if root.Transform.AnchoredPosition != anchor.Zero || root.Scale != anchor.One {
		t.Errorf("root not reset: %+v", root.Transform)
	}
	tree.Walk(func(i int) {
		if tree.Object(i).Layer != 7 {
			t.Errorf("%s: layer %d, want 7", tree.View(i).Name(), tree.Object(i).Layer)
		}
	})
}

func TestDeterministicIDs(t *testing.T) {
	a := generate(t)
	b := generate(t)
	seen := map[string]bool{}
	for _, i := range a.Sequence() {
		id := a.Object(i).ID
		if id != b.Object(i).ID {
			t.Errorf("%s: ids differ between runs", a.View(i).Name())
		}
		if seen[id.String()] {
			t.Errorf("%s: duplicate id", a.View(i).Name())
		}
		seen[id.String()] = true
	}
}

func affineApprox(a, b anchor.Affine) bool {
	for k := range a {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestSetParentKeepsPlacement(t *testing.T) {
	tree := generate(t, place)
	a, c := index(t, tree, "A"), index(t, tree, "C")
	tree.Object(a).Rotation = 90
	tree.Object(a).Scale = anchor.Vec2{X: 2, Y: 2}

	before := tree.World(c)
	if err := tree.SetParent(c, a); err != nil {
		t.Fatal(err)
	}
	if tree.Parent(c) != a {
		t.Fatalf("Parent = %d, want %d", tree.Parent(c), a)
	}
	if after := tree.World(c); !affineApprox(before, after) {
		t.Errorf("world transform moved from %v to %v", before, after)
	}
	if obj := tree.Object(c); math.Abs(obj.Rotation+90) > 1e-9 || !obj.Scale.Approx(anchor.Vec2{X: 0.5, Y: 0.5}) {
		t.Errorf("rotation %v scale %v", obj.Rotation, obj.Scale)
	}
	if kids := tree.Children(index(t, tree, "B")); len(kids) != 0 {
		t.Errorf("B still has children %v", kids)
	}

	if err := tree.SetParent(a, c); !stderrors.Is(err, ErrInvalidParent) {
		t.Errorf("cycle: err = %v", err)
	}
	if err := tree.SetParent(tree.Root(), a); !stderrors.Is(err, ErrInvalidParent) {
		t.Errorf("moving the root: err = %v", err)
	}
}

func TestSetParentTranslationOnly(t *testing.T) {
	tree := generate(t, place)
	c := index(t, tree, "C")
	rect := tree.Rect(c)
	before := tree.World(c).Translation()
	if err := tree.SetParent(c, tree.Root()); err != nil {
		t.Fatal(err)
	}
	if got := tree.World(c).Translation(); !got.Approx(before) {
		t.Errorf("position moved from %v to %v", before, got)
	}
	if obj := tree.Object(c); obj.Rotation != 0 || obj.Scale != anchor.One {
		t.Errorf("rotation/scale changed: %v %v", obj.Rotation, obj.Scale)
	}
	if !tree.Rect(c).Approx(rect) {
		t.Errorf("size changed")
	}
	if got := tree.Children(tree.Root()); got[len(got)-1] != c {
		t.Errorf("moved node should be the last child, got %v", got)
	}
}

func TestEntryHelpers(t *testing.T) {
	tree := generate(t, place)
	c := index(t, tree, "C")
	e := &Entry{Index: index(t, tree, "B"), Tree: tree}
	if e.HasGraphicInSubtree() {
		t.Error("no graphics yet")
	}
	tree.Object(c).Graphic = scene.NewImage("", document.White)
	if !e.HasGraphicInSubtree() {
		t.Error("C has a graphic")
	}
	if got := e.Children(); len(got) != 1 || got[0] != c {
		t.Errorf("Children = %v", got)
	}
	if e.ParentRect() == nil || e.Parent() != tree.Root() {
		t.Error("B is a child of the root")
	}
	if (&Entry{Index: tree.Root(), Tree: tree}).ParentRect() != nil {
		t.Error("root has no parent rect")
	}
}

func TestCollection(t *testing.T) {
	d := func(kind string) *Decorator { return &Decorator{Kind: kind} }
	c := NewCollection(d("a"), d("b"), d("c"))

	if err := c.InsertBefore("b", d("x")); err != nil {
		t.Fatal(err)
	}
	if err := c.InsertAfter("c", d("y")); err != nil {
		t.Fatal(err)
	}
	if err := c.Replace("a", d("z")); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(c.Kinds(), ","); got != "z,x,b,c,y" {
		t.Errorf("Kinds = %s", got)
	}

	for _, err := range []error{
		c.Replace("missing", d("q")),
		c.InsertBefore("missing", d("q")),
		c.InsertAfter("missing", d("q")),
	} {
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidConfig)
		}
	}

	b := c.All()[2]
	c.Remove(b)
	c.Remove(b)
	c.Remove(d("b"))
	if c.Len() != 4 || c.Index("b") != -1 {
		t.Errorf("after Remove: %v", c.Kinds())
	}
}

func TestCollectionSortIsStable(t *testing.T) {
	prio := map[string]int{"late": 1}
	c := NewCollection(
		&Decorator{Kind: "late"},
		&Decorator{Kind: "first"},
		&Decorator{Kind: "second"},
	)
	c.SetCompare(func(a, b *Decorator) int { return prio[a.Kind] - prio[b.Kind] })
	c.Sort()
	if got := strings.Join(c.Kinds(), ","); got != "first,second,late" {
		t.Errorf("Kinds = %s", got)
	}
}

func TestGeneratorClonesCollection(t *testing.T) {
	var calls int
	c := NewCollection(&Decorator{Kind: "count", Decorate: func(*Entry) error { calls++; return nil }})
	g := New(c)
	c.Add(&Decorator{Kind: "later", Decorate: func(*Entry) error { t.Error("added after New"); return nil }})
	clone := c.Clone()
	clone.Remove(clone.All()[0])

	if _, err := g.Generate(board(t)); err != nil {
		t.Fatal(err)
	}
	if calls != 4 || len(g.Decorators()) != 1 || c.Len() != 2 {
		t.Errorf("calls = %d decorators = %d collection = %d", calls, len(g.Decorators()), c.Len())
	}
}
