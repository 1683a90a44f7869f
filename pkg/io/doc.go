// Package io loads design documents and serializes generated trees.
//
// # Loading
//
// A document is either an extracted directory or a .sketch archive:
//
//	doc/
//	  document.json       shared styles, foreign symbols, page refs
//	  pages/<id>.json     one page tree per ref
//
// [LoadDocument] reads both forms through a billy.Filesystem, so callers can
// pass osfs for the local disk and memfs in tests. Archives are extracted into
// memory with every entry name validated against path traversal. Page refs are
// selected from document.json with the JSONPath "$.pages[*]._ref".
//
// The top-level layers of every page are reversed after decoding, so their
// order matches the order of nested layers.
//
// # Trees
//
// [WriteTreeJSON] and [ReadTreeJSON] encode exported scene trees. The format
// is the JSON form of scene.Node and round-trips exactly.
package io
