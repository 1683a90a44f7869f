// Package layerview materializes the effective layer tree of a page: symbol
// instances are replaced by the content of their masters and every node
// answers override-aware questions about its text, style and colors.
//
// # Building
//
//	b := layerview.NewBuilder(symbols, styles, layerview.WithLogger(logger))
//	root, ok := b.Build(artboard)
//	if !ok {
//	    // the whole root was pruned
//	}
//
// An instance whose symbol resolves to nothing (an override to the empty
// id, or an id missing from the index) is pruned with its subtree. Instances
// that would instantiate a master already being instantiated further up are
// pruned as well and reported with a warning.
//
// Nodes are read-only after Build and may be shared between goroutines.
package layerview

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/override"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

// Builder constructs view trees for one document.
type Builder struct {
	symbols *symbol.Index
	styles  *symbol.StyleIndex
	logger  *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for pruning and malformed-override reports.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a builder resolving symbols and shared styles through
// the given indexes. Nil indexes behave as empty ones.
func NewBuilder(symbols *symbol.Index, styles *symbol.StyleIndex, opts ...Option) *Builder {
	if symbols == nil {
		symbols = symbol.NewIndex(nil)
	}
	if styles == nil {
		styles = symbol.NewStyleIndex(nil)
	}
	b := &Builder{
		symbols: symbols,
		styles:  styles,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the view of root, or false when root itself is pruned.
func (b *Builder) Build(root *document.Layer) (*Node, bool) {
	if root == nil {
		return nil, false
	}
	n := b.build(root, nil, override.Set{}, nil)
	return n, n != nil
}

func (b *Builder) build(l *document.Layer, parent *Node, inherited override.Set, stack []string) *Node {
	traced := inherited.Trace(l)
	n := &Node{
		layer:     l,
		parent:    parent,
		overrides: traced,
		styles:    b.styles,
	}

	next := traced
	layers := l.Layers
	if l.Is(document.KindSymbolMaster) && l.SymbolID != "" {
		stack = append(stack[:len(stack):len(stack)], l.SymbolID)
	}
	if l.Is(document.KindSymbolInstance) {
		m, ok := b.resolve(n, stack)
		if !ok {
			return nil
		}
		if m != nil {
			n.master = m
			own, err := override.ParseAll(l.OverrideValues)
			if err != nil {
				b.logger.Debug("discarded malformed overrides", "layer", l.Name, "id", l.ID, "err", err)
			}
			next = traced.Enter(m, own)
			layers = m.Layer.Layers
			stack = append(stack[:len(stack):len(stack)], m.Layer.SymbolID)
		}
	}

	for _, child := range layers {
		if child == nil {
			continue
		}
		if c := b.build(child, n, next, stack); c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

// resolve finds the master bound to an instance node. It returns false when
// the node has to be pruned and a nil master when the instance carries no
// symbol reference at all.
func (b *Builder) resolve(n *Node, stack []string) (*symbol.Master, bool) {
	l := n.layer
	id := n.SymbolID()
	if l.SymbolID == "" && id == "" {
		return nil, true
	}
	if id == "" {
		b.logger.Debug("pruned instance overridden to no symbol", "layer", l.Name, "id", l.ID)
		return nil, false
	}
	m, ok := b.symbols.Lookup(id)
	if !ok {
		b.logger.Debug("pruned instance of unknown symbol", "layer", l.Name, "id", l.ID, "symbol", id)
		return nil, false
	}
	for _, active := range stack {
		if active == id {
			b.logger.Warn("pruned recursive symbol instance", "layer", l.Name, "id", l.ID, "symbol", id)
			return nil, false
		}
	}
	return m, true
}
