package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sketchtower/pkg/cache"
	"github.com/matzehuels/sketchtower/pkg/decorators"
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/generator"
	pkgio "github.com/matzehuels/sketchtower/pkg/io"
	"github.com/matzehuels/sketchtower/pkg/observability"
	"github.com/matzehuels/sketchtower/pkg/render"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// Document is a loaded document with the content hash used for cache keys.
type Document struct {
	*document.Document
	Source string
	Hash   string
}

// Result is the outcome of one Convert call.
type Result struct {
	Format    string
	Artboards []ArtboardResult
	Duration  time.Duration
}

// ArtboardResult is one converted artboard.
type ArtboardResult struct {
	Page     string
	Artboard string
	// ArtboardID is the artboard's object id, unique where names may repeat.
	ArtboardID string
	// Tree is nil when the whole artboard was pruned.
	Tree    *scene.Node
	Objects int
	// Output is the tree exported in the requested format.
	Output []byte
	// TreeHit and ArtifactHit report which stages came from the cache.
	TreeHit     bool
	ArtifactHit bool
}

// Runner executes conversions with caching. It keeps no per-conversion
// state and may be shared by goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the lifetime of cache entries; zero never expires.
	TTL time.Duration

	// Hook receivers. Nil fields use the globally registered hooks.
	PipelineHooks  observability.PipelineHooks
	CacheHooks     observability.CacheHooks
	GeneratorHooks observability.GeneratorHooks
}

// NewRunner returns a runner. A nil cache disables caching and a nil keyer
// uses cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) pipelineHooks() observability.PipelineHooks {
	if r.PipelineHooks != nil {
		return r.PipelineHooks
	}
	return observability.Pipeline()
}

func (r *Runner) cacheHooks() observability.CacheHooks {
	if r.CacheHooks != nil {
		return r.CacheHooks
	}
	return observability.Cache()
}

func (r *Runner) generatorHooks() observability.GeneratorHooks {
	if r.GeneratorHooks != nil {
		return r.GeneratorHooks
	}
	return observability.NoopGeneratorHooks{}
}

// Load reads the document directory or .sketch archive at p.
func (r *Runner) Load(ctx context.Context, fs billy.Filesystem, p string) (*Document, error) {
	hooks := r.pipelineHooks()
	hooks.OnLoadStart(ctx, p)
	start := time.Now()

	doc, err := r.load(fs, p)
	pages := 0
	if doc != nil {
		pages = len(doc.Pages)
	}
	hooks.OnLoadComplete(ctx, p, pages, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded document", "source", p, "pages", pages, "hash", doc.Hash[:12])
	return doc, nil
}

func (r *Runner) load(fs billy.Filesystem, p string) (*Document, error) {
	if info, err := fs.Stat(p); err == nil && !info.IsDir() {
		data, err := util.ReadFile(fs, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		doc, err := pkgio.ReadDocumentZip(data)
		if err != nil {
			return nil, err
		}
		return &Document{Document: doc, Source: p, Hash: cache.Hash(data)}, nil
	}

	doc, err := pkgio.LoadDocument(fs, p)
	if err != nil {
		return nil, err
	}
	hash, err := hashDir(fs, p)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", p, err)
	}
	return &Document{Document: doc, Source: p, Hash: hash}, nil
}

// LoadZip reads a .sketch archive held in memory. name labels it in logs
// and hooks.
func (r *Runner) LoadZip(ctx context.Context, name string, data []byte) (*Document, error) {
	hooks := r.pipelineHooks()
	hooks.OnLoadStart(ctx, name)
	start := time.Now()

	doc, err := pkgio.ReadDocumentZip(data)
	pages := 0
	if doc != nil {
		pages = len(doc.Pages)
	}
	hooks.OnLoadComplete(ctx, name, pages, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &Document{Document: doc, Source: name, Hash: cache.Hash(data)}, nil
}

// hashDir hashes the relative path and content of every file below dir in
// lexical order.
func hashDir(fs billy.Filesystem, dir string) (string, error) {
	var files []string
	err := util.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	slices.Sort(files)

	h := sha256.New()
	root := path.Clean("/" + dir)
	for _, f := range files {
		data, err := util.ReadFile(fs, f)
		if err != nil {
			return "", err
		}
		rel := path.Clean("/" + f)[len(root):]
		fmt.Fprintf(h, "%s\x00%d\x00", rel, len(data))
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Convert generates and exports the artboards selected by opts.
// Artboards are generated concurrently; the first failure cancels the rest
// and no partial result is returned.
func (r *Runner) Convert(ctx context.Context, doc *Document, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	cfg := opts.Config

	targets, err := Select(doc.Document, opts)
	if err != nil {
		return nil, err
	}

	sprites, err := cfg.SpriteLookup(opts.AssetsFS)
	if err != nil {
		return nil, err
	}
	fonts := cfg.FontLookup()
	col, err := cfg.Decorators(decorators.Options{Sprites: sprites, Fonts: fonts, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}

	assetsHash, _ := json.Marshal(struct {
		Sprites  any `json:"sprites"`
		Fonts    any `json:"fonts"`
		Fallback any `json:"fallback"`
	}{sprites, cfg.Fonts, cfg.Fallback})
	keyOpts := cache.TreeKeyOpts{
		Decorators: col.Kinds(),
		Policy:     cfg.AnchorPolicy().String(),
		Layer:      cfg.RenderLayer(),
		Namespace:  cfg.IDNamespace().String(),
		AssetsHash: cache.Hash(assetsHash),
	}

	conv := NewConverter(doc.Document, col,
		WithLogger(opts.Logger),
		WithGeneratorOptions(
			generator.WithLayer(cfg.RenderLayer()),
			generator.WithNamespace(cfg.IDNamespace()),
			generator.WithHooks(r.generatorHooks()),
		),
	)

	results := make([]ArtboardResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ko := keyOpts
			ko.Page, ko.Artboard = t.Page.ID, t.Artboard.ID
			res, err := r.convertOne(gctx, doc, conv, t, ko, &opts)
			if err != nil {
				return fmt.Errorf("artboard %q: %w", t.Artboard.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if missing := fonts.Missing(); len(missing) > 0 {
		opts.Logger.Warn("fonts without mapping, using fallback", "fonts", missing)
	}
	return &Result{Format: opts.Format, Artboards: results, Duration: time.Since(start)}, nil
}

func (r *Runner) convertOne(ctx context.Context, doc *Document, conv *Converter, t Target, ko cache.TreeKeyOpts, opts *Options) (ArtboardResult, error) {
	res := ArtboardResult{Page: t.Page.Name, Artboard: t.Artboard.Name, ArtboardID: t.Artboard.ID}
	hooks := r.pipelineHooks()
	hooks.OnGenerateStart(ctx, t.Artboard.Name)
	start := time.Now()

	key := r.Keyer.TreeKey(doc.Hash, ko)
	treeJSON, hit := r.cached(ctx, key, "tree", opts)
	if hit {
		node, err := pkgio.ReadTreeJSON(bytes.NewReader(treeJSON))
		if err != nil {
			opts.Logger.Warn("discarding unreadable cache entry", "artboard", t.Artboard.Name, "err", err)
			hit = false
		} else {
			res.Tree = node
		}
	}
	if !hit {
		tree, err := conv.Generate(t.Artboard)
		if err != nil {
			hooks.OnGenerateComplete(ctx, t.Artboard.Name, 0, time.Since(start), err)
			return res, err
		}
		res.Tree = tree.Export()
		var buf bytes.Buffer
		if err := pkgio.WriteTreeJSON(&buf, res.Tree); err != nil {
			return res, err
		}
		treeJSON = buf.Bytes()
		r.store(ctx, key, "tree", treeJSON)
	}
	res.TreeHit = hit
	res.Objects = res.Tree.Count()
	hooks.OnGenerateComplete(ctx, t.Artboard.Name, res.Objects, time.Since(start), nil)
	opts.Logger.Debug("converted artboard", "artboard", t.Artboard.Name, "objects", res.Objects, "cached", hit)

	out, artHit, err := r.export(ctx, res.Tree, treeJSON, opts)
	if err != nil {
		return res, err
	}
	res.Output, res.ArtifactHit = out, artHit
	return res, nil
}

// export renders the tree in the requested format. Graphviz output is
// cached by tree content.
func (r *Runner) export(ctx context.Context, node *scene.Node, treeJSON []byte, opts *Options) ([]byte, bool, error) {
	hooks := r.pipelineHooks()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	var (
		out []byte
		hit bool
		err error
	)
	switch opts.Format {
	case FormatJSON:
		out = treeJSON
	case FormatDOT:
		out = []byte(render.ToDOT(node, render.Options{Detailed: opts.Detailed}))
	case FormatSVG, FormatPNG:
		key := r.Keyer.ArtifactKey(cache.Hash(treeJSON), opts.ArtifactKeyOpts())
		if out, hit = r.cached(ctx, key, "artifact", opts); hit {
			break
		}
		dot := render.ToDOT(node, render.Options{Detailed: opts.Detailed})
		if opts.Format == FormatSVG {
			out, err = render.RenderSVG(ctx, dot)
		} else {
			out, err = render.RenderPNG(ctx, dot)
		}
		if err == nil {
			r.store(ctx, key, "artifact", out)
		}
	}
	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	return out, hit, err
}

func (r *Runner) cached(ctx context.Context, key, keyType string, opts *Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if hit {
		r.cacheHooks().OnCacheHit(ctx, keyType)
	} else {
		r.cacheHooks().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	r.cacheHooks().OnCacheSet(ctx, keyType, len(data))
}
