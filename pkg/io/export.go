package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// TreeOption configures tree encoding.
type TreeOption func(*treeConfig)

type treeConfig struct {
	indent string
}

// WithIndent sets the indentation of the encoded tree. The default is two
// spaces; the empty string produces compact output.
func WithIndent(indent string) TreeOption {
	return func(c *treeConfig) { c.indent = indent }
}

// WriteTreeJSON encodes an exported tree. A nil tree encodes as null.
func WriteTreeJSON(w io.Writer, root *scene.Node, opts ...TreeOption) error {
	cfg := treeConfig{indent: "  "}
	for _, opt := range opts {
		opt(&cfg)
	}
	enc := json.NewEncoder(w)
	if cfg.indent != "" {
		enc.SetIndent("", cfg.indent)
	}
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadTreeJSON decodes a tree written by WriteTreeJSON. It does not close r.
func ReadTreeJSON(r io.Reader) (*scene.Node, error) {
	var root *scene.Node
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}
	return root, nil
}
