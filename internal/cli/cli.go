// Package cli implements the sketchtower command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/pkg/buildinfo"
	"github.com/matzehuels/sketchtower/pkg/cache"
	"github.com/matzehuels/sketchtower/pkg/config"
	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
)

const appName = "sketchtower"

// configNames are looked up in the working directory when --config is not
// given.
var configNames = []string{"sketchtower.toml", "sketchtower.yaml", "sketchtower.yml", "sketchtower.json"}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Sketchtower converts Sketch documents into UI object trees",
		Long: `Sketchtower reads .sketch documents, resolves symbols and overrides, and
generates a tree of UI objects with anchored rect transforms for each artboard.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml or .json)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner
// =============================================================================

// loadConfig reads --config, or the first sketchtower.* file in the working
// directory, or falls back to the defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	p := c.configPath
	if p == "" {
		for _, name := range configNames {
			if _, err := os.Stat(name); err == nil {
				p = name
				break
			}
		}
	}
	if p == "" {
		return config.Default(), nil
	}
	fs, abs, err := hostPath(p)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(fs, abs)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", p)
	return cfg, nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Entries written by another release are never read back.
	r := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
	if r.TTL, err = cfg.CacheTTL(); err != nil {
		return nil, err
	}
	return r, nil
}

// newCache opens the backend named in the config. --no-cache and backend
// "none" yield a NullCache; redis is pinged before use so a bad address
// fails here rather than on the first lookup.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the user cache
// directory (~/.cache/sketchtower on Linux).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// hostPath returns the host filesystem and p made absolute.
func hostPath(p string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", p)
	}
	return osfs.New("/"), abs, nil
}
