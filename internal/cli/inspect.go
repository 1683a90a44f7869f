package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
	"github.com/matzehuels/sketchtower/pkg/scene"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

var (
	styleKind   = lipgloss.NewStyle().Foreground(colorGray)
	styleHidden = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
)

type inspectOptions struct {
	page      string
	artboard  string
	generated bool
	depth     int
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var o inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect <file.sketch|dir>",
		Short: "Print the layer hierarchy of a document",
		Long: `Print pages, artboards and layers as a tree. With --generated, print the
object tree produced for one artboard instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.page, "page", "p", "", "only this page")
	f.StringVarP(&o.artboard, "artboard", "a", "", "only this artboard")
	f.BoolVarP(&o.generated, "generated", "g", false, "show the generated object tree")
	f.IntVarP(&o.depth, "depth", "d", 0, "maximum depth below each artboard (0 for all)")
	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, src string, o inspectOptions) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	fs, abs, err := hostPath(src)
	if err != nil {
		return err
	}
	doc, err := runner.Load(ctx, fs, abs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if o.generated {
		res, err := runner.Convert(ctx, doc, pipeline.Options{
			Page: o.page, Artboard: o.artboard, Config: cfg, Logger: c.Logger,
		})
		if err != nil {
			return err
		}
		a := res.Artboards[0]
		if a.Tree == nil {
			printer{out}.warning("%s produced no objects", a.Artboard)
			return nil
		}
		fmt.Fprintln(out, objectTree(a.Tree, o.depth))
		return nil
	}

	targets, err := pipeline.Select(doc.Document, pipeline.Options{Page: o.page, Artboard: o.artboard, All: o.artboard == ""})
	if err != nil {
		return err
	}
	printSummary(out, doc, targets)
	for _, t := range targets {
		fmt.Fprintln(out, layerTree(t, o.depth))
	}
	return nil
}

func printSummary(w io.Writer, doc *pipeline.Document, targets []pipeline.Target) {
	p := printer{w}
	p.keyValue("Document", doc.Source)
	p.keyValue("Pages", fmt.Sprint(len(doc.Pages)))
	p.keyValue("Artboards", fmt.Sprint(len(targets)))
	p.keyValue("Symbols", fmt.Sprint(symbol.NewIndex(doc.Document).Len()))
	fmt.Fprintln(w)
}

// layerTree renders one artboard as "<page> / <artboard>" with its layers.
func layerTree(t pipeline.Target, depth int) *tree.Tree {
	root := tree.Root(StyleTitle.Render(t.Page.Name+" / "+t.Artboard.Name) + " " + styleKind.Render(frameLabel(t.Artboard.Frame)))
	addLayers(root, t.Artboard.Layers, depth, 1)
	return root.Enumerator(tree.RoundedEnumerator).EnumeratorStyle(StyleDim)
}

func addLayers(parent *tree.Tree, layers []*document.Layer, depth, level int) {
	for _, l := range layers {
		label := l.Name
		if !l.Visible {
			label = styleHidden.Render(label)
		}
		label += " " + styleKind.Render(string(l.Class))
		if l.SymbolID != "" && l.Class == document.KindSymbolInstance {
			label += " " + StyleDim.Render("→ "+l.SymbolID)
		}
		if len(l.Layers) == 0 || (depth > 0 && level >= depth) {
			parent.Child(label)
			continue
		}
		sub := tree.Root(label)
		addLayers(sub, l.Layers, depth, level+1)
		parent.Child(sub)
	}
}

// objectTree renders a generated tree with object sizes and graphics.
func objectTree(n *scene.Node, depth int) *tree.Tree {
	root := tree.Root(objectLabel(n))
	addObjects(root, n.Children, depth, 1)
	return root.Enumerator(tree.RoundedEnumerator).EnumeratorStyle(StyleDim)
}

func addObjects(parent *tree.Tree, nodes []*scene.Node, depth, level int) {
	for _, n := range nodes {
		if len(n.Children) == 0 || (depth > 0 && level >= depth) {
			parent.Child(objectLabel(n))
			continue
		}
		sub := tree.Root(objectLabel(n))
		addObjects(sub, n.Children, depth, level+1)
		parent.Child(sub)
	}
}

func objectLabel(n *scene.Node) string {
	label := n.Name
	if !n.Active {
		label = styleHidden.Render(label)
	}
	d := n.Transform.SizeDelta
	label += " " + styleKind.Render(fmt.Sprintf("%g×%g", d.X, d.Y))
	if g := n.Graphic; g != nil {
		switch {
		case g.Text != nil:
			label += " " + StyleHighlight.Render(fmt.Sprintf("text %q", g.Text.Value))
		case g.Sprite != "":
			label += " " + StyleHighlight.Render("image "+g.Sprite)
		default:
			label += " " + StyleHighlight.Render(string(g.Kind))
		}
	}
	if n.Mask {
		label += " " + StyleWarning.Render("mask")
	}
	return label
}

func frameLabel(f document.Frame) string {
	return fmt.Sprintf("%g×%g", f.Width, f.Height)
}
