package pipeline

import (
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/errors"
)

// Target is one artboard chosen for conversion.
type Target struct {
	Page     *document.Layer
	Artboard *document.Layer
}

// Select returns the artboards matching the page and artboard selectors.
func Select(doc *document.Document, opts Options) ([]Target, error) {
	pages := doc.Pages
	if opts.Page != "" {
		p, ok := doc.Page(opts.Page)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "page %q not found", opts.Page)
		}
		pages = []*document.Layer{p}
	}

	var targets []Target
	for _, p := range pages {
		for _, a := range p.Artboards() {
			if opts.Artboard != "" && a.Name != opts.Artboard && a.ID != opts.Artboard {
				continue
			}
			targets = append(targets, Target{Page: p, Artboard: a})
			if opts.Artboard != "" || !opts.All {
				return targets, nil
			}
		}
	}
	if len(targets) == 0 {
		if opts.Artboard != "" {
			return nil, errors.New(errors.ErrCodeNotFound, "artboard %q not found", opts.Artboard)
		}
		return nil, errors.New(errors.ErrCodeNotFound, "no artboards in selection")
	}
	return targets, nil
}
