package layerview

import (
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/override"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

// Node is one surviving layer of the effective tree.
type Node struct {
	layer     *document.Layer
	master    *symbol.Master
	parent    *Node
	children  []*Node
	overrides override.Set
	styles    *symbol.StyleIndex
}

// Layer returns the authored layer.
func (n *Node) Layer() *document.Layer { return n.layer }

// Master returns the master an instance is bound to, or nil.
func (n *Node) Master() *symbol.Master { return n.master }

// Parent returns the parent view node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child view nodes in document order.
func (n *Node) Children() []*Node { return n.children }

// ID returns the layer id.
func (n *Node) ID() string { return n.layer.ID }

// Name returns the layer name.
func (n *Node) Name() string { return n.layer.Name }

// Kind returns the layer kind.
func (n *Node) Kind() document.Kind { return n.layer.Class }

// MasterName returns the name of the bound master, or "".
func (n *Node) MasterName() string {
	if n.master == nil {
		return ""
	}
	return n.master.Layer.Name
}

// Frame returns the frame the node occupies in its parent. Instances keep
// their own frame; the master frame is available through Master.
func (n *Node) Frame() document.Frame { return n.layer.Frame }

func (n *Node) value(kw override.Keyword) (document.Value, bool) {
	return n.overrides.Value(n.layer.ID, kw)
}

// Overrides returns the records that apply to this node, least specific first.
func (n *Node) Overrides() []override.Record {
	var out []override.Record
	for _, r := range n.overrides.Records() {
		if r.Target == n.layer.ID {
			out = append(out, r)
		}
	}
	return out
}

// Text returns the text content: an override, else the authored string.
func (n *Node) Text() string {
	if v, ok := n.value(override.KeywordText); ok {
		return v.String
	}
	return n.layer.Text()
}

// SymbolID returns the effective symbol reference. An override to ""
// disables the instance.
func (n *Node) SymbolID() string {
	if v, ok := n.value(override.KeywordSymbol); ok {
		return v.String
	}
	return n.layer.SymbolID
}

// Style returns the effective style block. Shared-style overrides only apply
// to layers that use a shared style. An override naming a style the
// document does not define yields nil, so the layer renders unstyled:
//
//	opacity is 1, there are no fills, and text uses the default font
func (n *Node) Style() *document.Style {
	if n.layer.SharedStyleID == "" {
		return n.layer.Style
	}
	if v, ok := n.value(override.KeywordLayerStyle); ok {
		st, _ := n.styles.LayerStyle(v.String)
		return st
	}
	return n.layer.Style
}

// TextStyle returns the effective text style, or nil for non-text layers
// and for text-style overrides naming an unknown style.
func (n *Node) TextStyle() *document.TextStyle {
	if n.layer.SharedStyleID != "" {
		if v, ok := n.value(override.KeywordTextStyle); ok {
			if st, found := n.styles.TextStyle(v.String); found && st != nil {
				return st.TextStyle
			}
			return nil
		}
	}
	if st := n.Style(); st != nil {
		return st.TextStyle
	}
	return nil
}

// SharedStyleID returns the effective shared style id.
func (n *Node) SharedStyleID() string {
	if n.layer.SharedStyleID != "" {
		if v, ok := n.value(override.KeywordLayerStyle); ok {
			return v.String
		}
		if v, ok := n.value(override.KeywordTextStyle); ok {
			return v.String
		}
	}
	return n.layer.SharedStyleID
}

// FillColors returns the colors of the enabled fills in stacking order. A
// fill-color override replaces them with a single color, but never adds a
// fill to a layer that has none.
func (n *Node) FillColors() []document.Color {
	fills := n.Style().EnabledFills()
	if len(fills) == 0 {
		return nil
	}
	if v, ok := n.value(override.KeywordFillColor); ok && v.Color != nil {
		return []document.Color{*v.Color}
	}
	colors := make([]document.Color, len(fills))
	for i, f := range fills {
		colors[i] = f.Color
	}
	return colors
}

// Walk visits the subtree in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}
