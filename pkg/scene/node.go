package scene

import (
	"fmt"
	"math"
	"reflect"
)

// Node is an exported object with its children, the serializable form of a
// generated tree.
type Node struct {
	Object
	Children []*Node `json:"children,omitempty"`
}

// Walk visits the subtree in pre-order, passing the path of names from the
// root joined by "->".
func (n *Node) Walk(fn func(path string, n *Node)) {
	walk(n, "", fn)
}

func walk(n *Node, parent string, fn func(string, *Node)) {
	if n == nil {
		return
	}
	path := n.Name
	if parent != "" {
		path = parent + "->" + n.Name
	}
	fn(path, n)
	for _, c := range n.Children {
		walk(c, path, fn)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(string, *Node) { count++ })
	return count
}

type entry struct {
	path string
	node *Node
}

func flatten(n *Node) []entry {
	var out []entry
	n.Walk(func(path string, node *Node) {
		out = append(out, entry{path, node})
	})
	return out
}

// Compare reports every difference between two trees in pre-order, one line
// per mismatch prefixed with the path of the node in want. Object ids are not
// compared. Floating point values match within tolerance. An empty result
// means the trees are equivalent.
func Compare(got, want *Node, tolerance float64) []string {
	a, b := flatten(got), flatten(want)
	var diffs []string
	for i := 0; i < min(len(a), len(b)); i++ {
		diffs = append(diffs, compareObjects(b[i].path, &a[i].node.Object, &b[i].node.Object, tolerance)...)
		if len(a[i].node.Children) != len(b[i].node.Children) {
			diffs = append(diffs, fmt.Sprintf("[%s] child count: got %d, want %d",
				b[i].path, len(a[i].node.Children), len(b[i].node.Children)))
		}
	}
	if len(a) != len(b) {
		diffs = append(diffs, fmt.Sprintf("object count: got %d, want %d", len(a), len(b)))
	}
	return diffs
}

func compareObjects(path string, got, want *Object, tol float64) []string {
	var diffs []string
	compareValues(path, "", reflect.ValueOf(*got), reflect.ValueOf(*want), tol, &diffs)
	return diffs
}

func compareValues(path, field string, a, b reflect.Value, tol float64, diffs *[]string) {
	report := func() {
		*diffs = append(*diffs, fmt.Sprintf("[%s] %s: got %v, want %v", path, field, describe(a), describe(b)))
	}
	switch a.Kind() {
	case reflect.Struct:
		t := a.Type()
		for i := 0; i < a.NumField(); i++ {
			name := t.Field(i).Name
			if name == "ID" {
				continue
			}
			if field != "" {
				name = field + "." + name
			}
			compareValues(path, name, a.Field(i), b.Field(i), tol, diffs)
		}
	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			if a.IsNil() != b.IsNil() {
				report()
			}
			return
		}
		compareValues(path, field, a.Elem(), b.Elem(), tol, diffs)
	case reflect.Float64:
		if math.Abs(a.Float()-b.Float()) > tol {
			report()
		}
	default:
		if !reflect.DeepEqual(a.Interface(), b.Interface()) {
			report()
		}
	}
}

func describe(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "nil"
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}
