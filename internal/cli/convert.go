package cli

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
)

type convertOptions struct {
	page        string
	artboard    string
	format      string
	output      string
	all         bool
	interactive bool
	detailed    bool
	refresh     bool
	concurrency int
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var o convertOptions
	cmd := &cobra.Command{
		Use:   "convert <file.sketch|dir>",
		Short: "Convert artboards into UI object trees",
		Long: `Convert one artboard, or every artboard with --all, into a UI object tree.

The source is a .sketch archive or an unzipped document directory. Formats:
json (the tree), dot (Graphviz source), svg and png (the rendered hierarchy).`,
		Example: `  sketchtower convert design.sketch --artboard Home
  sketchtower convert design.sketch --all --format svg -o out/
  sketchtower convert design.sketch --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.page, "page", "p", "", "page name or id")
	f.StringVarP(&o.artboard, "artboard", "a", "", "artboard or symbol master name or id")
	f.BoolVar(&o.all, "all", false, "convert every artboard on the selected pages")
	f.BoolVarP(&o.interactive, "interactive", "i", false, "pick the artboard from a list")
	f.StringVarP(&o.format, "format", "f", pipeline.DefaultFormat, "output format: "+strings.Join(pipeline.Formats, ", "))
	f.StringVarP(&o.output, "output", "o", "", "output file, or directory with --all (default stdout)")
	f.BoolVar(&o.detailed, "detailed", false, "include transforms and graphics in graph labels")
	f.BoolVar(&o.refresh, "refresh", false, "ignore cached results")
	f.IntVar(&o.concurrency, "concurrency", 0, "artboards converted in parallel (default GOMAXPROCS)")
	cmd.MarkFlagsMutuallyExclusive("artboard", "all", "interactive")

	return cmd
}

// runConvert loads src, converts the selected artboards and writes them.
// With --interactive the artboard is picked from a list first. The spinner
// runs on stderr so stdout stays clean for piped output.
func (c *CLI) runConvert(cmd *cobra.Command, src string, o convertOptions) error {
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

	opts := pipeline.Options{
		Page:        o.page,
		Artboard:    o.artboard,
		All:         o.all,
		Format:      o.format,
		Detailed:    o.detailed,
		Refresh:     o.refresh,
		Concurrency: o.concurrency,
		Config:      cfg,
		Logger:      c.Logger,
	}
	if o.interactive {
		found, err := pipeline.Select(doc.Document, pipeline.Options{Page: o.page, All: true})
		if err != nil {
			return err
		}
		t, err := pickArtboard(found, cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		opts.Page, opts.Artboard = t.Page.ID, t.Artboard.ID
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Converting "+filepath.Base(src))
	spin.Start()
	res, err := runner.Convert(ctx, doc, opts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Converted %d artboards", len(res.Artboards)))

	return writeResults(cmd, res, o.output)
}

// writeResults writes a single artboard to the output file or stdout, and
// several artboards into the output directory as <page>/<artboard>.<format>.
func writeResults(cmd *cobra.Command, res *pipeline.Result, output string) error {
	p := printer{cmd.ErrOrStderr()}

	if len(res.Artboards) == 1 && !isDir(output) {
		a := res.Artboards[0]
		if output == "" || output == "-" {
			_, err := cmd.OutOrStdout().Write(a.Output)
			return err
		}
		if err := writeFile(output, a.Output); err != nil {
			return err
		}
		p.success("Converted %s", a.Artboard)
		p.stats(a.Artboard, a.Objects, a.TreeHit)
		p.file(output)
		return nil
	}

	if output == "" || output == "-" {
		return errors.New(errors.ErrCodeInvalidInput, "%d artboards selected, use --output <dir>", len(res.Artboards))
	}
	root, err := filepath.Abs(output)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", output)
	}
	names := artboardPaths(res.Artboards, res.Format)
	p.success("Converted %d artboards", len(res.Artboards))
	for i, a := range res.Artboards {
		dst := filepath.Join(root, filepath.FromSlash(names[i]))
		if rel, err := filepath.Rel(root, dst); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.New(errors.ErrCodeInvalidPath, "artboard %q resolves outside %s", a.Artboard, output)
		}
		if err := writeFile(dst, a.Output); err != nil {
			return err
		}
		p.stats(a.Artboard, a.Objects, a.TreeHit)
		p.file(dst)
	}
	return nil
}

// artboardPaths returns the relative output path of every artboard, in
// order. Artboards sharing a page and name are told apart by their id:
//
//	Screens/Home.json
//	Screens/Home-5A1C.json
func artboardPaths(artboards []pipeline.ArtboardResult, format string) []string {
	paths := make([]string, len(artboards))
	seen := make(map[string]bool, len(artboards))
	for i, a := range artboards {
		dir, base := slug(a.Page), slug(a.Artboard)
		name := path.Join(dir, base+"."+format)
		if seen[name] {
			name = path.Join(dir, base+"-"+slug(a.ArtboardID)+"."+format)
		}
		for n := 2; seen[name]; n++ {
			name = path.Join(dir, fmt.Sprintf("%s-%s-%d.%s", base, slug(a.ArtboardID), n, format))
		}
		seen[name] = true
		paths[i] = name
	}
	return paths
}

// writeFile writes data to p on the host filesystem, creating missing
// parent directories. Existing files are replaced.
func writeFile(p string, data []byte) error {
	fs, abs, err := hostPath(p)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(p))
	}
	if err := util.WriteFile(fs, abs, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", p)
	}
	return nil
}

// isDir reports whether p names a directory: an existing one, or any path
// ending in a separator ("out/"). Empty and "-" mean stdout.
func isDir(p string) bool {
	if p == "" || p == "-" {
		return false
	}
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) {
		return true
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	info, err := osfs.New("/").Stat(abs)
	return err == nil && info.IsDir()
}

// slug makes a layer name usable as one path element. Layer names use "/"
// for grouping, which becomes "_". Names that would be empty or refer to a
// directory ("." and "..") become "unnamed".
func slug(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	if strings.Trim(name, ".") == "" {
		return "unnamed"
	}
	return name
}
