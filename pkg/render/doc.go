// Package render draws generated trees as Graphviz diagrams.
//
// # Usage
//
// Convert an exported tree to DOT, then render it in-process:
//
//	dot := render.ToDOT(tree.Export(), render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.RenderPNG(ctx, dot)
//
// Every object becomes a box labeled with its name and graphic; edges point
// from parents to children in sibling order. Inactive objects are drawn
// dashed and masks with a double border.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as a
// WebAssembly module, so no system installation is needed.
package render
