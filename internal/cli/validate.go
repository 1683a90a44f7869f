package cli

import (
	"bytes"
	stderrors "errors"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/pkg/errors"
	pkgio "github.com/matzehuels/sketchtower/pkg/io"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// errMismatch is returned when the generated tree differs from the expected one.
var errMismatch = stderrors.New("generated tree differs from expected")

type validateOptions struct {
	page      string
	artboard  string
	tolerance float64
	maxDiffs  int
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var o validateOptions
	cmd := &cobra.Command{
		Use:   "validate <file.sketch|dir> <expected.json>",
		Short: "Compare a generated tree against an expected tree",
		Long: `Generate one artboard and compare it object by object with a tree written
earlier by "convert --format json". Object ids are ignored and numbers match
within --tolerance.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, args[0], args[1], o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.page, "page", "p", "", "page name or id")
	f.StringVarP(&o.artboard, "artboard", "a", "", "artboard name or id")
	f.Float64Var(&o.tolerance, "tolerance", 1e-3, "allowed difference between numbers")
	f.IntVar(&o.maxDiffs, "max-diffs", 20, "differences to print (0 for all)")
	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, src, expected string, o validateOptions) error {
	if o.tolerance < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "tolerance must not be negative")
	}
	ctx := cmd.Context()

	efs, eabs, err := hostPath(expected)
	if err != nil {
		return err
	}
	raw, err := util.ReadFile(efs, eabs)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", expected)
	}
	want, err := pkgio.ReadTreeJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

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
	res, err := runner.Convert(ctx, doc, pipeline.Options{
		Page: o.page, Artboard: o.artboard, Config: cfg, Logger: c.Logger,
	})
	if err != nil {
		return err
	}
	a := res.Artboards[0]

	p := printer{cmd.ErrOrStderr()}
	diffs := scene.Compare(a.Tree, want, o.tolerance)
	if len(diffs) == 0 {
		p.success("%s matches %s", a.Artboard, expected)
		p.stats(a.Artboard, a.Objects, a.TreeHit)
		return nil
	}

	p.error("%s differs from %s in %d places", a.Artboard, expected, len(diffs))
	shown := diffs
	if o.maxDiffs > 0 && len(shown) > o.maxDiffs {
		shown = shown[:o.maxDiffs]
	}
	for _, d := range shown {
		p.detail("%s", d)
	}
	if len(shown) < len(diffs) {
		p.detail("... %d more", len(diffs)-len(shown))
	}
	return errMismatch
}
