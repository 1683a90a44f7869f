package document

// ForeignSymbol is a master imported from a library document.
type ForeignSymbol struct {
	Master *Layer `json:"symbolMaster"`
}

// ForeignStyle is a shared style imported from a library document.
type ForeignStyle struct {
	LocalSharedStyle SharedStyle `json:"localSharedStyle"`
}

// StyleContainer wraps the shared styles defined in a document.
type StyleContainer struct {
	Objects []SharedStyle `json:"objects"`
}

// PageRef is a page entry of document.json pointing at pages/<id>.json.
type PageRef struct {
	Ref string `json:"_ref"`
}

// Document is a loaded design document.
type Document struct {
	ID                 string          `json:"do_objectID"`
	ForeignSymbols     []ForeignSymbol `json:"foreignSymbols"`
	ForeignLayerStyles []ForeignStyle  `json:"foreignLayerStyles"`
	ForeignTextStyles  []ForeignStyle  `json:"foreignTextStyles"`
	LayerStyles        StyleContainer  `json:"layerStyles"`
	TextStyles         StyleContainer  `json:"layerTextStyles"`
	PageRefs           []PageRef       `json:"pages"`

	// Pages is filled by the loader from the referenced page files.
	Pages []*Layer `json:"-"`
}

// Page returns the page with the given name or id.
func (d *Document) Page(nameOrID string) (*Layer, bool) {
	for _, p := range d.Pages {
		if p.Name == nameOrID || p.ID == nameOrID {
			return p, true
		}
	}
	return nil, false
}

// Artboard returns the first top-level artboard or master named nameOrID
// (or with that id) across all pages.
func (d *Document) Artboard(nameOrID string) (*Layer, bool) {
	for _, p := range d.Pages {
		for _, a := range p.Artboards() {
			if a.Name == nameOrID || a.ID == nameOrID {
				return a, true
			}
		}
	}
	return nil, false
}

// HierarchyString renders every page as an indented listing.
func (d *Document) HierarchyString() string {
	var out string
	for _, p := range d.Pages {
		out += p.HierarchyString()
	}
	return out
}
