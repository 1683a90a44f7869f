package io

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/errors"
)

// DocumentFile is the name of the document index inside a document.
const DocumentFile = "document.json"

// MaxArchiveSize bounds the uncompressed size of an archive.
const MaxArchiveSize = 512 << 20

var pageRefs = jp.MustParseString("$.pages[*]._ref")

// LoadDocument reads the document at p, a directory or a .sketch archive.
func LoadDocument(fs billy.Filesystem, p string) (*document.Document, error) {
	info, err := fs.Stat(p)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s not found", p)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "stat %s", p)
	}
	if info.IsDir() {
		return loadDir(fs, p)
	}
	data, err := util.ReadFile(fs, p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", p)
	}
	return ReadDocumentZip(data)
}

// ReadDocumentZip decodes a .sketch archive held in memory.
func ReadDocumentZip(data []byte) (*document.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "open archive")
	}
	mem := memfs.New()
	var total uint64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := errors.ValidatePath(f.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "archive entry %q", f.Name)
		}
		total += f.UncompressedSize64
		if total > MaxArchiveSize {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "archive exceeds %d bytes", MaxArchiveSize)
		}
		if err := extract(mem, f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "extract %s", f.Name)
		}
	}
	return loadDir(mem, "")
}

func extract(fs billy.Filesystem, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxArchiveSize))
	if err != nil {
		return err
	}
	return util.WriteFile(fs, f.Name, data, 0o644)
}

func loadDir(fs billy.Filesystem, dir string) (*document.Document, error) {
	raw, err := util.ReadFile(fs, fs.Join(dir, DocumentFile))
	if err != nil {
		return nil, missing(err, DocumentFile)
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s", DocumentFile)
	}

	refs, err := PageRefs(raw)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		page, err := loadPage(fs, dir, ref)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
	}
	return &doc, nil
}

// PageRefs extracts the page file refs from a document.json payload.
func PageRefs(raw []byte) ([]string, error) {
	tree, err := oj.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse %s", DocumentFile)
	}
	var refs []string
	for _, v := range pageRefs.Get(tree) {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "page ref %v is not a string", v)
		}
		refs = append(refs, s)
	}
	return refs, nil
}

func loadPage(fs billy.Filesystem, dir, ref string) (*document.Layer, error) {
	name := ref
	if path.Ext(name) != ".json" {
		name += ".json"
	}
	if err := errors.ValidatePath(name); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "page ref %q", ref)
	}
	raw, err := util.ReadFile(fs, fs.Join(dir, name))
	if err != nil {
		return nil, missing(err, name)
	}
	var page document.Layer
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s", name)
	}
	slices.Reverse(page.Layers)
	return &page, nil
}

func missing(err error, name string) error {
	if stderrors.Is(err, os.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", name)
	}
	return errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", name)
}
