package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
)

type queryOptions struct {
	page      string
	artboard  string
	generated bool
	count     bool
	compact   bool
}

// queryCommand creates the query command.
func (c *CLI) queryCommand() *cobra.Command {
	var o queryOptions
	cmd := &cobra.Command{
		Use:   "query <file.sketch|dir> <jsonpath>",
		Short: "Run a JSONPath query against a document or a generated tree",
		Long: `Run a JSONPath query and print each match as JSON.

The document is queried as {"document": ..., "pages": [...]}; with --generated
the query runs against the object tree of the selected artboard.`,
		Example: `  sketchtower query design.sketch '$.pages[*].layers[*].name'
  sketchtower query design.sketch '$..[?(@._class == "symbolInstance")].symbolID'
  sketchtower query design.sketch -g -a Home '$..graphic.text.value'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, args[0], args[1], o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.page, "page", "p", "", "page of the generated artboard")
	f.StringVarP(&o.artboard, "artboard", "a", "", "generated artboard")
	f.BoolVarP(&o.generated, "generated", "g", false, "query the generated object tree")
	f.BoolVar(&o.count, "count", false, "print the number of matches only")
	f.BoolVar(&o.compact, "compact", false, "print each match on one line")
	return cmd
}

func (c *CLI) runQuery(cmd *cobra.Command, src, expr string, o queryOptions) error {
	x, err := jp.ParseString(expr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid jsonpath %q", expr)
	}

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

	var raw []byte
	if o.generated {
		res, err := runner.Convert(ctx, doc, pipeline.Options{
			Page: o.page, Artboard: o.artboard, Config: cfg, Logger: c.Logger,
		})
		if err != nil {
			return err
		}
		raw = res.Artboards[0].Output
	} else {
		raw, err = json.Marshal(map[string]any{"document": doc.Document, "pages": doc.Pages})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
		}
	}

	data, err := oj.Parse(raw)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse query input")
	}
	matches := x.Get(data)
	c.Logger.Debug("query", "expr", expr, "matches", len(matches))

	out := cmd.OutOrStdout()
	if o.count {
		fmt.Fprintln(out, len(matches))
		return nil
	}
	indent := 2
	if o.compact {
		indent = 0
	}
	for _, m := range matches {
		fmt.Fprintln(out, oj.JSON(m, indent))
	}
	return nil
}
