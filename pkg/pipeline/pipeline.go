// Package pipeline runs a conversion end to end.
//
// The stages are the same for the CLI and the server:
//
//  1. Load: read a document directory or .sketch archive.
//  2. Select: pick the artboards to convert.
//  3. Generate: build the layer view and run the decorators, once per
//     artboard, concurrently.
//  4. Export: write the tree as JSON, DOT, SVG or PNG.
//
// A [Runner] caches generated trees and rendered artifacts by document
// content hash and options, so unchanged inputs are never regenerated.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, err := runner.Load(ctx, osfs.New("."), "design.sketch")
//	res, err := runner.Convert(ctx, doc, pipeline.Options{Artboard: "Home", Format: "svg"})
//	os.Stdout.Write(res.Artboards[0].Output)
//
// Library callers that already hold a document can skip the runner:
//
//	tree, err := pipeline.GenerateOutputTree(doc, artboard, decorators.Default(opts))
package pipeline

import (
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/matzehuels/sketchtower/pkg/cache"
	"github.com/matzehuels/sketchtower/pkg/config"
	"github.com/matzehuels/sketchtower/pkg/errors"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG}

// DefaultFormat is the output format when none is given.
const DefaultFormat = FormatJSON

// Options selects what to convert and how to export it.
type Options struct {
	// Page restricts selection to one page, by name or id.
	Page string `json:"page,omitempty"`
	// Artboard selects one artboard or master by name or id. Without it and
	// without All, the first artboard of the selection is converted.
	Artboard string `json:"artboard,omitempty"`
	// All converts every artboard of the selection.
	All bool `json:"all,omitempty"`

	Format   string `json:"format,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
	// Refresh regenerates even when the cache has an entry, and rewrites it.
	Refresh bool `json:"refresh,omitempty"`

	// Concurrency bounds the artboards generated at once.
	Concurrency int `json:"-"`
	// Config carries decorators, assets and ids. Nil means config.Default().
	Config *config.Config `json:"-"`
	// AssetsFS resolves the configured texture directories. Nil means the
	// working directory.
	AssetsFS billy.Filesystem `json:"-"`
	Logger   *log.Logger      `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the selectors and format and fills in
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Page != "" {
		if err := errors.ValidateSelector("page", o.Page); err != nil {
			return err
		}
	}
	if o.Artboard != "" {
		if err := errors.ValidateSelector("artboard", o.Artboard); err != nil {
			return err
		}
		if o.All {
			return errors.New(errors.ErrCodeInvalidInput, "artboard and all are mutually exclusive")
		}
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := errors.ValidateFormat(o.Format, Formats...); err != nil {
		return err
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}
	if o.Config == nil {
		o.Config = config.Default()
	} else if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.AssetsFS == nil {
		o.AssetsFS = osfs.New(".")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns the cache key options for the export format.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: o.Format, Detailed: o.Detailed}
}
