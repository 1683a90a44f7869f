package layerview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

func text(id, s string) *document.Layer {
	return &document.Layer{
		Class:            document.KindText,
		ID:               id,
		Name:             id,
		Visible:          true,
		AttributedString: &document.AttributedString{String: s},
	}
}

func master(id, symbolID string, children ...*document.Layer) *document.Layer {
	return &document.Layer{Class: document.KindSymbolMaster, ID: id, Name: id, SymbolID: symbolID, Visible: true, Layers: children}
}

func instance(id, symbolID string, overrides ...document.OverrideValue) *document.Layer {
	return &document.Layer{Class: document.KindSymbolInstance, ID: id, Name: id, SymbolID: symbolID, Visible: true, OverrideValues: overrides}
}

func str(name, value string) document.OverrideValue {
	return document.OverrideValue{Name: name, Value: document.StringValue(value)}
}

func fixture(extra ...*document.Layer) *document.Document {
	label := master("label", "S-label", text("T", "default"))
	card := master("card", "S-card", instance("N", "S-label"), text("caption", "cap"))
	page := &document.Layer{Class: document.KindPage, ID: "page", Layers: append([]*document.Layer{label, card}, extra...)}
	return &document.Document{Pages: []*document.Layer{page}}
}

func newBuilder(doc *document.Document, opts ...Option) *Builder {
	return NewBuilder(symbol.NewIndex(doc), symbol.NewStyleIndex(doc), opts...)
}

func find(root *Node, id string) *Node {
	var found *Node
	root.Walk(func(n *Node) {
		if found == nil && n.ID() == id {
			found = n
		}
	})
	return found
}

func TestBuildSubstitutesMaster(t *testing.T) {
	doc := fixture()
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("I", "S-label", str("T_stringValue", "hello")),
	}}
	root, ok := newBuilder(doc).Build(board)
	if !ok {
		t.Fatal("root pruned")
	}
	inst := find(root, "I")
	if inst.Master() == nil || inst.MasterName() != "label" {
		t.Fatalf("instance not bound: %+v", inst.Master())
	}
	if len(inst.Children()) != 1 || inst.Children()[0].ID() != "T" {
		t.Fatalf("instance children = %v", inst.Children())
	}
	if got := inst.Children()[0].Text(); got != "hello" {
		t.Errorf("Text() = %q, want hello", got)
	}
	if got := find(root, "T").Parent(); got != inst {
		t.Error("parent link broken")
	}
	if root.Count() != 3 {
		t.Errorf("Count() = %d, want 3", root.Count())
	}
}

func TestBuildNestedOverride(t *testing.T) {
	doc := fixture()
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("O", "S-card", str("N/T_stringValue", "nested")),
		instance("P", "S-card"),
	}}
	root, _ := newBuilder(doc).Build(board)

	o := root.Children()[0]
	if got := find(o, "T").Text(); got != "nested" {
		t.Errorf("overridden nested text = %q", got)
	}
	p := root.Children()[1]
	if got := find(p, "T").Text(); got != "default" {
		t.Errorf("sibling instance text = %q, want default", got)
	}
}

func TestBuildPrunesEmptySymbolOverride(t *testing.T) {
	doc := fixture()
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("O", "S-card", str("N_symbolID", "")),
	}}
	root, _ := newBuilder(doc).Build(board)
	if find(root, "N") != nil || find(root, "T") != nil {
		t.Error("instance overridden to no symbol must be pruned with its subtree")
	}
	if find(root, "caption") == nil {
		t.Error("siblings of the pruned instance must survive")
	}
}

func TestBuildSymbolSwap(t *testing.T) {
	// The swap targets O, so it is authored by the enclosing instance X.
	wrap := master("wrap", "S-wrap", instance("O", "S-label"))
	doc := fixture(wrap)
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("X", "S-wrap", str("O_symbolID", "S-card")),
	}}
	root, _ := newBuilder(doc).Build(board)

	o := find(root, "O")
	if o == nil || o.MasterName() != "card" {
		t.Fatalf("symbol override not applied: %v", o)
	}
	if o.SymbolID() != "S-card" {
		t.Errorf("SymbolID() = %q", o.SymbolID())
	}
	if find(o, "caption") == nil {
		t.Error("swapped master content missing")
	}
}

func TestBuildPrunesUnknownSymbol(t *testing.T) {
	doc := fixture()
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("gone", "S-missing"),
		text("kept", "x"),
	}}
	root, _ := newBuilder(doc).Build(board)
	if find(root, "gone") != nil {
		t.Error("instance of unknown symbol must be pruned")
	}
	if find(root, "kept") == nil {
		t.Error("sibling must survive")
	}
}

func TestBuildRootPruned(t *testing.T) {
	doc := fixture()
	if _, ok := newBuilder(doc).Build(instance("I", "S-missing")); ok {
		t.Error("root instance of unknown symbol should be pruned")
	}
	if _, ok := newBuilder(doc).Build(nil); ok {
		t.Error("nil root should be pruned")
	}
}

func TestBuildCycleGuard(t *testing.T) {
	loop := master("loop", "S-loop", text("inner", "x"), instance("self", "S-loop"))
	doc := fixture(loop)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("I", "S-loop"),
	}}
	root, ok := newBuilder(doc, WithLogger(logger)).Build(board)
	if !ok {
		t.Fatal("root pruned")
	}
	if find(root, "self") != nil {
		t.Error("recursive instance must be pruned")
	}
	if find(root, "inner") == nil {
		t.Error("master content must be kept")
	}
	if !strings.Contains(buf.String(), "recursive") {
		t.Errorf("expected warning, got %q", buf.String())
	}
}

func TestFillColors(t *testing.T) {
	red := document.Color{Red: 1, Alpha: 1}
	blue := document.Color{Blue: 1, Alpha: 1}
	filled := &document.Layer{Class: document.KindRectangle, ID: "filled", Style: &document.Style{
		Fills: []document.Fill{{Class: "fill", Enabled: true, Color: red}, {Class: "fill", Enabled: false, Color: red}},
	}}
	bare := &document.Layer{Class: document.KindRectangle, ID: "bare", Style: &document.Style{}}
	m := master("shapes", "S-shapes", filled, bare)
	doc := fixture(m)

	fill := func(id string) document.OverrideValue {
		return document.OverrideValue{Name: id + "_fillColor", Value: document.ColorValue(blue)}
	}
	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("plain", "S-shapes"),
		instance("over", "S-shapes", fill("filled"), fill("bare")),
	}}
	root, _ := newBuilder(doc).Build(board)

	plain, over := root.Children()[0], root.Children()[1]
	if got := find(plain, "filled").FillColors(); len(got) != 1 || !got[0].Equal(red) {
		t.Errorf("authored fills = %v", got)
	}
	if got := find(over, "filled").FillColors(); len(got) != 1 || !got[0].Equal(blue) {
		t.Errorf("overridden fills = %v", got)
	}
	if got := find(over, "bare").FillColors(); len(got) != 0 {
		t.Errorf("override must not add fills, got %v", got)
	}
}

func TestSharedStyleOverrides(t *testing.T) {
	authored := &document.Style{ContextSettings: &document.ContextSettings{Opacity: 1}}
	shared := &document.Style{ContextSettings: &document.ContextSettings{Opacity: 0.5}}
	sharedText := &document.TextStyle{VerticalAlignment: document.AlignBottom}

	styled := &document.Layer{Class: document.KindRectangle, ID: "styled", SharedStyleID: "A", Style: authored}
	unstyled := &document.Layer{Class: document.KindRectangle, ID: "unstyled", Style: authored}
	label := &document.Layer{Class: document.KindText, ID: "label", SharedStyleID: "TA", Style: &document.Style{TextStyle: &document.TextStyle{}}}
	stale := &document.Layer{Class: document.KindRectangle, ID: "stale", SharedStyleID: "A", Style: authored}
	staleLabel := &document.Layer{Class: document.KindText, ID: "staleLabel", SharedStyleID: "TA", Style: &document.Style{TextStyle: &document.TextStyle{}}}
	m := master("styles", "S-styles", styled, unstyled, label, stale, staleLabel)
	doc := fixture(m)
	doc.LayerStyles.Objects = []document.SharedStyle{{ID: "B", Value: shared}}
	doc.TextStyles.Objects = []document.SharedStyle{{ID: "TB", Value: &document.Style{TextStyle: sharedText}}}

	board := &document.Layer{Class: document.KindArtboard, ID: "board", Layers: []*document.Layer{
		instance("I", "S-styles",
			str("styled_layerStyle", "B"),
			str("unstyled_layerStyle", "B"),
			str("label_textStyle", "TB"),
			str("stale_layerStyle", "gone"),
			str("staleLabel_textStyle", "gone"),
		),
	}}
	root, _ := newBuilder(doc).Build(board)

	if got := find(root, "styled"); got.Style() != shared || got.SharedStyleID() != "B" {
		t.Errorf("layer style override not applied: %v %q", got.Style(), got.SharedStyleID())
	}
	if got := find(root, "unstyled"); got.Style() != authored || got.SharedStyleID() != "" {
		t.Error("layer without shared style must ignore style overrides")
	}
	if got := find(root, "label"); got.TextStyle() != sharedText || got.SharedStyleID() != "TB" {
		t.Errorf("text style override not applied: %v", got.TextStyle())
	}
	if got := find(root, "stale"); got.Style() != nil || got.Style().Opacity() != 1 {
		t.Errorf("unknown layer style override = %v, want nil", got.Style())
	}
	if got := find(root, "staleLabel").TextStyle(); got != nil {
		t.Errorf("unknown text style override = %v, want nil", got)
	}
	if got := find(root, "label").Overrides(); len(got) != 1 {
		t.Errorf("Overrides() = %v", got)
	}
}
