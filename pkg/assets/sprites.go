// Package assets resolves the external resources a conversion refers to by
// name: sprites for image layers and fonts for text layers.
//
// Lookups are small interfaces so callers can plug in their own asset
// database. [ScanTextures] builds a sprite map from texture directories on
// any billy filesystem.
package assets

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"gopkg.in/yaml.v3"
)

// Sprite is a texture usable as an image graphic.
type Sprite struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Path string `json:"path" yaml:"path" toml:"path"`
	// Border is the nine-slice border (left, bottom, right, top) in pixels.
	Border [4]float64 `json:"border,omitempty" yaml:"border,omitempty" toml:"border,omitempty"`
}

// Sliced reports whether the sprite has a nine-slice border.
func (s Sprite) Sliced() bool { return s.Border != [4]float64{} }

// SpriteLookup finds the sprite for a layer or master name.
type SpriteLookup interface {
	FindSprite(name string) (Sprite, bool)
}

// MapSprites is a SpriteLookup backed by a map.
type MapSprites map[string]Sprite

func (m MapSprites) FindSprite(name string) (Sprite, bool) {
	s, ok := m[name]
	return s, ok
}

// NoSprites never finds a sprite.
type NoSprites struct{}

func (NoSprites) FindSprite(string) (Sprite, bool) { return Sprite{}, false }

var textureExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".psd": true, ".tga": true,
	".gif": true, ".bmp": true, ".tif": true, ".tiff": true, ".exr": true, ".hdr": true,
}

// ScanTextures indexes the textures below each root. Every texture is
// registered twice: by its path relative to the root without extension
// ("icons/close") and by its bare file name ("close"). The first
// registration of a key wins, in root order. With no roots the filesystem
// root is scanned.
//
// A Unity-style "<texture>.meta" file next to a texture supplies the
// nine-slice border.
func ScanTextures(fs billy.Filesystem, roots ...string) (MapSprites, error) {
	if len(roots) == 0 {
		roots = []string{"/"}
	}
	sprites := MapSprites{}
	add := func(key string, s Sprite) {
		if _, ok := sprites[key]; !ok {
			s.Name = key
			sprites[key] = s
		}
	}
	for _, root := range roots {
		root = path.Clean("/" + root)
		err := util.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			ext := strings.ToLower(path.Ext(p))
			if info.IsDir() || !textureExt[ext] {
				return nil
			}
			p = path.Clean("/" + p)
			s := Sprite{Path: strings.TrimPrefix(p, "/")}
			if border, ok := readBorder(fs, p+".meta"); ok {
				s.Border = border
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
			add(strings.TrimSuffix(rel, path.Ext(rel)), s)
			base := path.Base(p)
			add(strings.TrimSuffix(base, path.Ext(base)), s)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sprites, nil
}

type textureMeta struct {
	TextureImporter struct {
		SpriteBorder struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
			W float64 `yaml:"w"`
		} `yaml:"spriteBorder"`
	} `yaml:"TextureImporter"`
}

func readBorder(fs billy.Filesystem, name string) ([4]float64, bool) {
	f, err := fs.Open(name)
	if err != nil {
		return [4]float64{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return [4]float64{}, false
	}
	var meta textureMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return [4]float64{}, false
	}
	b := meta.TextureImporter.SpriteBorder
	return [4]float64{b.X, b.Y, b.Z, b.W}, true
}
