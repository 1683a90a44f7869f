package generator

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/layerview"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// Tree is the arena holding generated objects. Nodes are addressed by their
// materialization index; index 0 is the root. Deleted nodes keep their slot
// but are no longer reachable.
type Tree struct {
	objects  []*scene.Object
	views    []*layerview.Node
	parent   []int
	children [][]int
	deleted  *roaring.Bitmap
	sequence []int
}

// newTree returns an empty tree with an empty deleted set.
func newTree() *Tree {
	return &Tree{deleted: roaring.New()}
}

// add appends a node under parent (-1 for the root) as its last child and
// returns the new index. Indices are never reused.
func (t *Tree) add(view *layerview.Node, obj *scene.Object, parent int) int {
	i := len(t.objects)
	t.objects = append(t.objects, obj)
	t.views = append(t.views, view)
	t.parent = append(t.parent, parent)
	t.children = append(t.children, nil)
	if parent >= 0 {
		t.children[parent] = append(t.children[parent], i)
	}
	return i
}

// Len returns the number of materialized nodes, deleted ones included.
func (t *Tree) Len() int { return len(t.objects) }

// Root returns the root index, or -1 for an empty tree.
func (t *Tree) Root() int {
	if !t.Alive(0) {
		return -1
	}
	return 0
}

// Alive reports whether i is a live node.
func (t *Tree) Alive(i int) bool {
	return i >= 0 && i < len(t.objects) && !t.deleted.Contains(uint32(i))
}

// Object returns the object of i. Deleted nodes still return their last
// state; check Alive first when it matters.
func (t *Tree) Object(i int) *scene.Object { return t.objects[i] }

// View returns the layer view i was materialized from.
func (t *Tree) View(i int) *layerview.Node { return t.views[i] }

// Parent returns the parent index, or -1 for the root.
func (t *Tree) Parent(i int) int { return t.parent[i] }

// Children returns the child indices in sibling order.
func (t *Tree) Children(i int) []int { return slices.Clone(t.children[i]) }

// Sequence returns the pre-order materialization sequence.
func (t *Tree) Sequence() []int { return slices.Clone(t.sequence) }

// Delete removes i and its subtree.
func (t *Tree) Delete(i int) {
	if !t.Alive(i) {
		return
	}
	t.detach(i)
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.deleted.Add(uint32(n))
		stack = append(stack, t.children[n]...)
	}
}

// detach unlinks i from its parent's child list and leaves it parentless.
// The subtree below i is untouched.
func (t *Tree) detach(i int) {
	if p := t.parent[i]; p >= 0 {
		if k := slices.Index(t.children[p], i); k >= 0 {
			t.children[p] = slices.Delete(t.children[p], k, k+1)
		}
	}
	t.parent[i] = -1
}

// ErrInvalidParent is returned by SetParent for moves that would break the
// tree: dead nodes, moving the root, or a cycle.
var ErrInvalidParent = errors.New("invalid parent")

// SetParent moves i to the end of p's children. Position, rotation and scale
// are converted through the new parent so the node does not move on screen.
// Anchors and size delta are kept.
func (t *Tree) SetParent(i, p int) error {
	if !t.Alive(i) || !t.Alive(p) || t.parent[i] < 0 || t.isAncestor(i, p) {
		return fmt.Errorf("%w: %d under %d", ErrInvalidParent, i, p)
	}
	if t.parent[i] == p {
		return nil
	}
	world := t.World(i)
	t.detach(i)
	t.parent[i] = p
	t.children[p] = append(t.children[p], i)

	local := t.World(p).Invert().Multiply(world)
	obj := t.objects[i]
	own := anchor.NewAffine(anchor.Zero, obj.Rotation, obj.Scale)
	if !sameLinear(local, own) {
		obj.Rotation, obj.Scale = local.Decompose()
	}
	obj.Transform.SetLocalPosition(t.ParentRect(i), local.Translation())
	return nil
}

// sameLinear reports whether a and b share rotation and scale, so a move
// between them only changes the translation.
func sameLinear(a, b anchor.Affine) bool {
	for k := 0; k < 4; k++ {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			return false
		}
	}
	return true
}

// isAncestor reports whether a is n or one of its ancestors.
func (t *Tree) isAncestor(a, n int) bool {
	for ; n >= 0; n = t.parent[n] {
		if n == a {
			return true
		}
	}
	return false
}

// Rect returns the local rect of i, resolved through the anchor chain.
func (t *Tree) Rect(i int) anchor.Rect {
	return t.objects[i].Transform.Rect(t.ParentRect(i))
}

// ParentRect returns the local rect of i's parent, or nil for the root.
func (t *Tree) ParentRect(i int) *anchor.Rect {
	p := t.parent[i]
	if p < 0 {
		return nil
	}
	r := t.Rect(p)
	return &r
}

// local is the transform from i's space to its parent's, built from the
// anchored position, rotation and scale.
func (t *Tree) local(i int) anchor.Affine {
	obj := t.objects[i]
	return anchor.NewAffine(obj.Transform.LocalPosition(t.ParentRect(i)), obj.Rotation, obj.Scale)
}

// World returns the transform from i's local space to root space.
func (t *Tree) World(i int) anchor.Affine {
	m := anchor.Identity
	for n := i; n >= 0; n = t.parent[n] {
		m = t.local(n).Multiply(m)
	}
	return m
}

// Descendants returns the live descendants of i in pre-order.
func (t *Tree) Descendants(i int) []int {
	var out []int
	t.walk(i, func(n int) {
		if n != i {
			out = append(out, n)
		}
	})
	return out
}

// HasGraphicInSubtree reports whether i or a live descendant has a graphic.
func (t *Tree) HasGraphicInSubtree(i int) bool {
	if !t.Alive(i) {
		return false
	}
	found := false
	t.walk(i, func(n int) {
		if t.objects[n].Graphic != nil {
			found = true
		}
	})
	return found
}

// ActiveInHierarchy reports whether i and all its ancestors are active.
func (t *Tree) ActiveInHierarchy(i int) bool {
	if !t.Alive(i) {
		return false
	}
	for n := i; n >= 0; n = t.parent[n] {
		if !t.objects[n].Active {
			return false
		}
	}
	return true
}

// HasActiveGraphicInSubtree is HasGraphicInSubtree restricted to nodes that
// are active in the hierarchy.
func (t *Tree) HasActiveGraphicInSubtree(i int) bool {
	if !t.ActiveInHierarchy(i) {
		return false
	}
	found := false
	t.walkActive(i, func(n int) {
		if t.objects[n].Graphic != nil {
			found = true
		}
	})
	return found
}

// walkActive is walk restricted to active nodes. An inactive node hides its
// whole subtree:
//
//	board (active) > group (inactive) > icon (active)   visits only board
func (t *Tree) walkActive(i int, fn func(int)) {
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !t.objects[n].Active {
			continue
		}
		fn(n)
		kids := t.children[n]
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, kids[k])
		}
	}
}

// walk calls fn for i and its live descendants in pre-order, using an
// explicit stack so deep hierarchies do not grow the goroutine stack.
func (t *Tree) walk(i int, fn func(int)) {
	if !t.Alive(i) {
		return
	}
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		kids := t.children[n]
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, kids[k])
		}
	}
}

// Walk visits live nodes in pre-order.
func (t *Tree) Walk(fn func(i int)) {
	t.walk(t.Root(), fn)
}

// Count returns the number of live nodes.
func (t *Tree) Count() int {
	n := 0
	t.Walk(func(int) { n++ })
	return n
}

// Export copies the live nodes into a scene.Node tree. An empty tree
// exports as nil.
func (t *Tree) Export() *scene.Node {
	root := t.Root()
	if root < 0 {
		return nil
	}
	return t.export(root)
}

// export copies i and its children. Child lists only hold live nodes, so
// no liveness check is needed here.
func (t *Tree) export(i int) *scene.Node {
	n := &scene.Node{Object: *t.objects[i]}
	for _, c := range t.children[i] {
		n.Children = append(n.Children, t.export(c))
	}
	return n
}
