// Package config reads the converter configuration file.
//
// The file is TOML, YAML or JSON, chosen by extension:
//
//	preset = "clean"
//	extras = ["destroy", "mask"]
//	policy = "proportional"
//	layer = 5
//	texture_dirs = ["Assets/UI"]
//
//	[sprites.close]
//	path = "icons/close.png"
//	border = [4, 4, 4, 4]
//
//	[fonts.Helvetica]
//	name = "Roboto"
//	size = 16
//	lineHeight = 19
//	lineRate = 1.2
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
// Every field is optional; [Default] describes the values used for fields
// that are left out.
package config

import (
	"encoding/json"
	"path"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sketchtower/pkg/anchor"
	"github.com/matzehuels/sketchtower/pkg/assets"
	"github.com/matzehuels/sketchtower/pkg/decorators"
	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/generator"
	"github.com/matzehuels/sketchtower/pkg/scene"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Preset      string                   `toml:"preset" yaml:"preset" json:"preset"`
	Extras      []string                 `toml:"extras" yaml:"extras" json:"extras"`
	Policy      string                   `toml:"policy" yaml:"policy" json:"policy"`
	Layer       *int                     `toml:"layer" yaml:"layer" json:"layer"`
	Namespace   string                   `toml:"namespace" yaml:"namespace" json:"namespace"`
	TextureDirs []string                 `toml:"texture_dirs" yaml:"texture_dirs" json:"texture_dirs"`
	Sprites     map[string]assets.Sprite `toml:"sprites" yaml:"sprites" json:"sprites"`
	Fonts       map[string]assets.Font   `toml:"fonts" yaml:"fonts" json:"fonts"`
	Fallback    *assets.Font             `toml:"fallback_font" yaml:"fallback_font" json:"fallback_font"`
	Cache       Cache                    `toml:"cache" yaml:"cache" json:"cache"`
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend   string `toml:"backend" yaml:"backend" json:"backend"`
	Dir       string `toml:"dir" yaml:"dir" json:"dir"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	TTL       string `toml:"ttl" yaml:"ttl" json:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Preset: decorators.PresetDefault,
		Policy: anchor.PolicyCenter.String(),
		Cache:  Cache{Backend: CacheFile},
	}
}

// Load reads and validates the configuration file at p.
func Load(fs billy.Filesystem, p string) (*Config, error) {
	data, err := util.ReadFile(fs, p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", p)
	}
	return Parse(data, path.Ext(p))
}

// Parse decodes configuration data. ext selects the format: ".toml",
// ".yaml", ".yml" or ".json".
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks names and values that can be checked without touching
// the filesystem.
func (c *Config) Validate() error {
	switch c.Preset {
	case "", decorators.PresetDefault, decorators.PresetClean:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown preset %q", c.Preset)
	}
	for _, kind := range c.Extras {
		if _, err := decorators.ByKind(kind, decorators.Options{}); err != nil {
			return err
		}
	}
	if _, err := anchor.ParsePolicy(c.Policy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "policy")
	}
	if c.Namespace != "" {
		if _, err := uuid.Parse(c.Namespace); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "namespace")
		}
	}
	for name, f := range c.Fonts {
		if !f.Valid() {
			return errors.New(errors.ErrCodeInvalidConfig, "font mapping %q needs name, size, lineHeight and lineRate", name)
		}
	}
	switch c.Cache.Backend {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// AnchorPolicy returns the configured policy.
func (c *Config) AnchorPolicy() anchor.Policy {
	p, _ := anchor.ParsePolicy(c.Policy)
	return p
}

// RenderLayer returns the configured render layer.
func (c *Config) RenderLayer() int {
	if c.Layer == nil {
		return scene.LayerUI
	}
	return *c.Layer
}

// IDNamespace returns the configured id namespace, or the generator default.
func (c *Config) IDNamespace() uuid.UUID {
	if ns, err := uuid.Parse(c.Namespace); err == nil {
		return ns
	}
	return generator.DefaultNamespace
}

// CacheTTL returns the cache entry lifetime, zero for no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache ttl")
	}
	return d, nil
}

// SpriteLookup scans the texture directories on fs and overlays the
// explicit sprite map. Explicit entries win.
func (c *Config) SpriteLookup(fs billy.Filesystem) (assets.MapSprites, error) {
	sprites := assets.MapSprites{}
	if len(c.TextureDirs) > 0 {
		scanned, err := assets.ScanTextures(fs, c.TextureDirs...)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "scan textures")
		}
		sprites = scanned
	}
	for name, s := range c.Sprites {
		if s.Name == "" {
			s.Name = name
		}
		sprites[name] = s
	}
	return sprites, nil
}

// FontLookup returns the font map with the configured fallback.
func (c *Config) FontLookup() *assets.FontMap {
	fallback := assets.DefaultFont
	if c.Fallback != nil {
		fallback = *c.Fallback
	}
	return assets.MapFonts(c.Fonts, fallback)
}

// Decorators builds the configured collection: the preset followed by the
// extras in order.
func (c *Config) Decorators(opts decorators.Options) (*generator.Collection, error) {
	opts.Policy = c.AnchorPolicy()
	col, err := decorators.Preset(c.Preset, opts)
	if err != nil {
		return nil, err
	}
	for _, kind := range c.Extras {
		d, err := decorators.ByKind(kind, opts)
		if err != nil {
			return nil, err
		}
		col.Add(d)
	}
	return col, nil
}
