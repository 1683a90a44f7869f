// Package document defines the parsed, immutable model of a Sketch design
// document.
//
// # Overview
//
// A [Document] holds pages; every page is a [Layer] tree. Some layers are
// reusable templates ([KindSymbolMaster]) and others are instances of those
// templates ([KindSymbolInstance]) that may carry per-instance
// [OverrideValue] records. Masters imported from libraries are kept in
// [Document.ForeignSymbols] next to shared layer and text styles.
//
// The types mirror the Sketch JSON file format closely enough to be decoded
// with encoding/json directly:
//
//	var page document.Layer
//	if err := json.Unmarshal(data, &page); err != nil {
//	    return err
//	}
//
// Loading whole documents from disk or from a .sketch archive is handled by
// the io package.
//
// # Resizing Constraints
//
// Sketch stores resizing constraints with an inverted encoding where a
// cleared bit means "pinned". [DecodeResizingConstraint] converts the stored
// value into a [Constraint] whose set bits mean pinned (or fixed, for the
// width and height bits). [Layer.Constraint] returns the decoded flags.
//
// # Immutability
//
// Nothing in this package mutates a document after decoding. Resolution of
// templates and overrides produces separate view structures, so a single
// [Document] can be shared by concurrent conversions.
package document
