package assets

import (
	"slices"
	"sync"
)

// Font describes a target font and its metrics.
type Font struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// Size and LineHeight are the font's native metrics; their ratio scales
	// line spacing.
	Size       int     `json:"size" yaml:"size" toml:"size"`
	LineHeight float64 `json:"lineHeight" yaml:"lineHeight" toml:"lineHeight"`
	// LineRate is the authoring tool's default line height per point.
	LineRate float64 `json:"lineRate" yaml:"lineRate" toml:"lineRate"`
}

// Valid reports whether the font can be used for line spacing.
func (f Font) Valid() bool {
	return f.Name != "" && f.Size > 0 && f.LineHeight > 0 && f.LineRate != 0
}

// DefaultFont is used when no mapping applies.
var DefaultFont = Font{Name: "Arial", Size: 16, LineHeight: 18, LineRate: 1.117}

// FontLookup maps a source font name onto a target font. It always returns
// a usable font.
type FontLookup interface {
	FindFont(name string) Font
}

// FontMap is a FontLookup backed by a map. It remembers the names it had no
// mapping for, most recent first.
type FontMap struct {
	fonts    map[string]Font
	fallback Font

	mu      sync.Mutex
	missing []string
}

// MapFonts returns a FontMap. An invalid fallback is replaced by DefaultFont.
func MapFonts(fonts map[string]Font, fallback Font) *FontMap {
	if !fallback.Valid() {
		fallback = DefaultFont
	}
	return &FontMap{fonts: fonts, fallback: fallback}
}

// FindFont returns the mapped font, or the fallback when the name is
// unmapped or its mapping is invalid.
func (m *FontMap) FindFont(name string) Font {
	f, ok := m.fonts[name]
	if ok && f.Valid() {
		return f
	}
	if !ok {
		m.mu.Lock()
		m.missing = slices.DeleteFunc(m.missing, func(s string) bool { return s == name })
		m.missing = slices.Insert(m.missing, 0, name)
		m.mu.Unlock()
	}
	return m.fallback
}

// Missing returns the unmapped font names seen so far, most recent first.
func (m *FontMap) Missing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.missing)
}
