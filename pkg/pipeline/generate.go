package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/generator"
	"github.com/matzehuels/sketchtower/pkg/layerview"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

// Converter holds the symbol and style indexes of one document. It is safe
// for concurrent Generate calls.
type Converter struct {
	symbols *symbol.Index
	styles  *symbol.StyleIndex
	gen     *generator.Generator
	logger  *log.Logger
}

// ConvertOption configures a Converter.
type ConvertOption func(*convertConfig)

type convertConfig struct {
	logger *log.Logger
	gen    []generator.Option
}

// WithLogger sets the logger of the view builder and the generator.
func WithLogger(l *log.Logger) ConvertOption {
	return func(c *convertConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGeneratorOptions passes options through to generator.New.
func WithGeneratorOptions(opts ...generator.Option) ConvertOption {
	return func(c *convertConfig) { c.gen = append(c.gen, opts...) }
}

// NewConverter indexes doc and prepares a generator running c.
func NewConverter(doc *document.Document, c *generator.Collection, opts ...ConvertOption) *Converter {
	cfg := convertConfig{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&cfg)
	}
	genOpts := append([]generator.Option{generator.WithLogger(cfg.logger)}, cfg.gen...)
	return &Converter{
		symbols: symbol.NewIndex(doc),
		styles:  symbol.NewStyleIndex(doc),
		gen:     generator.New(c, genOpts...),
		logger:  cfg.logger,
	}
}

// Symbols returns the document's symbol index.
func (cv *Converter) Symbols() *symbol.Index { return cv.symbols }

// Generate builds the view of root and runs the decorators over it. A root
// whose view is pruned entirely yields an empty tree.
func (cv *Converter) Generate(root *document.Layer) (*generator.Tree, error) {
	b := layerview.NewBuilder(cv.symbols, cv.styles, layerview.WithLogger(cv.logger))
	view, ok := b.Build(root)
	if !ok {
		if root != nil {
			cv.logger.Debug("view pruned", "root", root.Name)
		}
		view = nil
	}
	return cv.gen.Generate(view)
}

// GenerateOutputTree converts one layer of doc with the decorators in c.
func GenerateOutputTree(doc *document.Document, root *document.Layer, c *generator.Collection, opts ...ConvertOption) (*generator.Tree, error) {
	return NewConverter(doc, c, opts...).Generate(root)
}
