package symbol

import "github.com/matzehuels/sketchtower/pkg/document"

// StyleIndex resolves shared layer and text style ids. Library styles are
// consulted before local ones.
type StyleIndex struct {
	layer map[string]*document.Style
	text  map[string]*document.Style
}

// NewStyleIndex builds a style index for a document.
func NewStyleIndex(doc *document.Document) *StyleIndex {
	s := &StyleIndex{
		layer: make(map[string]*document.Style),
		text:  make(map[string]*document.Style),
	}
	if doc == nil {
		return s
	}
	for _, f := range doc.ForeignLayerStyles {
		putStyle(s.layer, f.LocalSharedStyle)
	}
	for _, st := range doc.LayerStyles.Objects {
		putStyle(s.layer, st)
	}
	for _, f := range doc.ForeignTextStyles {
		putStyle(s.text, f.LocalSharedStyle)
	}
	for _, st := range doc.TextStyles.Objects {
		putStyle(s.text, st)
	}
	return s
}

func putStyle(m map[string]*document.Style, st document.SharedStyle) {
	if st.ID == "" {
		return
	}
	if _, ok := m[st.ID]; !ok {
		m[st.ID] = st.Value
	}
}

// LayerStyle returns the shared layer style with the given id.
func (s *StyleIndex) LayerStyle(id string) (*document.Style, bool) {
	st, ok := s.layer[id]
	return st, ok
}

// TextStyle returns the shared text style with the given id.
func (s *StyleIndex) TextStyle(id string) (*document.Style, bool) {
	st, ok := s.text[id]
	return st, ok
}
