package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/sketchtower/pkg/scene"
)

// Options controls diagram generation.
type Options struct {
	// Detailed adds anchors, size delta and graphic settings to node labels.
	// When false, labels carry the name and the graphic kind.
	Detailed bool
}

// ToDOT converts an exported tree to Graphviz DOT source. A nil tree
// produces an empty graph.
func ToDOT(root *scene.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")

	var edges []string
	root.Walk(func(_ string, n *scene.Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.String(), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", n.ID.String(), c.ID.String()))
		}
	})
	if len(edges) > 0 {
		buf.WriteString("\n")
		for _, e := range edges {
			buf.WriteString(e)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *scene.Node, detailed bool) string {
	parts := []string{n.Name}
	if g := n.Graphic; g != nil {
		switch {
		case g.Text != nil:
			parts = append(parts, fmt.Sprintf("text %q", g.Text.Value))
		case g.Sprite != "":
			parts = append(parts, "sprite "+g.Sprite)
		default:
			parts = append(parts, string(g.Kind))
		}
	}
	if !detailed {
		return strings.Join(parts, "\n")
	}

	t := n.Transform
	parts = append(parts,
		fmt.Sprintf("anchors %g,%g..%g,%g", t.AnchorMin.X, t.AnchorMin.Y, t.AnchorMax.X, t.AnchorMax.Y),
		fmt.Sprintf("pos %g,%g size %g,%g", t.AnchoredPosition.X, t.AnchoredPosition.Y, t.SizeDelta.X, t.SizeDelta.Y),
	)
	if n.Rotation != 0 {
		parts = append(parts, fmt.Sprintf("rotation %g", n.Rotation))
	}
	if g := n.Graphic; g != nil {
		c := g.Color
		parts = append(parts, fmt.Sprintf("color %.2f,%.2f,%.2f,%.2f", c.Red, c.Green, c.Blue, c.Alpha))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *scene.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if !n.Active {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=gray30")
	}
	if n.Mask {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}
