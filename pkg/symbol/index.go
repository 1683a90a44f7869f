// Package symbol indexes the symbol masters and shared styles of a document.
//
// [NewIndex] walks every page and every foreign (library) master once and
// maps symbol ids to [Master] entries. Local masters win over foreign ones
// when ids collide, and the first occurrence wins within each group. The
// index is read-only after construction and safe for concurrent readers.
package symbol

import (
	"slices"

	"github.com/matzehuels/sketchtower/pkg/document"
)

// Master is an indexed template.
type Master struct {
	Layer *document.Layer

	// AllowsOverrides is false when the master refuses every instance override.
	AllowsOverrides bool

	// Disallowed holds override names ("path/target_property") declared with
	// canOverride=false.
	Disallowed map[string]struct{}
}

// Allows reports whether an override with the composed name may be applied
// inside this master.
func (m *Master) Allows(name string) bool {
	if m == nil {
		return true
	}
	_, blocked := m.Disallowed[name]
	return !blocked
}

// Index maps symbol ids to masters.
type Index struct {
	masters map[string]*Master
}

// NewIndex builds the index for a document. A nil document yields an empty index.
func NewIndex(doc *document.Document) *Index {
	idx := &Index{masters: make(map[string]*Master)}
	if doc == nil {
		return idx
	}
	for _, page := range doc.Pages {
		idx.addTree(page)
	}
	for _, fs := range doc.ForeignSymbols {
		if fs.Master != nil {
			idx.add(fs.Master)
		}
	}
	for _, fs := range doc.ForeignSymbols {
		if fs.Master == nil {
			continue
		}
		for _, child := range fs.Master.Layers {
			idx.addTree(child)
		}
	}
	return idx
}

func (x *Index) addTree(root *document.Layer) {
	root.Walk(func(l *document.Layer) bool {
		if l.Is(document.KindSymbolMaster) {
			x.add(l)
		}
		return true
	})
}

func (x *Index) add(l *document.Layer) {
	if l.SymbolID == "" {
		return
	}
	if _, ok := x.masters[l.SymbolID]; ok {
		return
	}
	m := &Master{
		Layer:           l,
		AllowsOverrides: l.OverridesAllowed(),
		Disallowed:      make(map[string]struct{}),
	}
	for _, p := range l.OverrideProperties {
		if !p.CanOverride {
			m.Disallowed[p.Name] = struct{}{}
		}
	}
	x.masters[l.SymbolID] = m
}

// Lookup returns the master for a symbol id. The empty id is never found.
func (x *Index) Lookup(id string) (*Master, bool) {
	if id == "" {
		return nil, false
	}
	m, ok := x.masters[id]
	return m, ok
}

// Len returns the number of indexed masters.
func (x *Index) Len() int { return len(x.masters) }

// IDs returns the indexed symbol ids in sorted order.
func (x *Index) IDs() []string {
	ids := make([]string, 0, len(x.masters))
	for id := range x.masters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
