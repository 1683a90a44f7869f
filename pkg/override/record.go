// Package override resolves instance overrides against the real nesting of
// symbol instances.
//
// # Records
//
// An authored override name has the form
//
//	<instance id>/<instance id>/<target id>_<property>
//
// where the leading ids are the chain of nested instances, starting below
// the instance that authored the record, and the last id is the target
// layer. [Parse] splits a name into a [Record].
//
// # Tracing
//
// A [Set] is the collection of records that may still apply at some point of
// a top-down walk. Each record carries a pointer into its instance path.
// Entering an instance either advances the pointer (the instance id is the
// next expected one) or invalidates the record for good. Only records whose
// path is fully traced can apply, and only to the layer with the target id.
//
// For the same property, records merged later win: an instance's own records
// are merged after everything inherited from outer instances.
//
// A Set is a value: every operation returns a new Set and never changes the
// receiver, so sibling subtrees can share the same inherited set.
package override

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/sketchtower/pkg/document"
)

// ErrMalformed is returned by Parse when a name cannot be split into a path,
// a target and a property.
var ErrMalformed = errors.New("malformed override name")

// Keyword names the overridden property.
type Keyword string

const (
	KeywordText       Keyword = "stringValue"
	KeywordSymbol     Keyword = "symbolID"
	KeywordImage      Keyword = "image"
	KeywordLayerStyle Keyword = "layerStyle"
	KeywordTextStyle  Keyword = "textStyle"
	KeywordFillColor  Keyword = "fillColor"
)

// Record is a parsed override.
type Record struct {
	Name     string   // raw authored name
	Path     []string // instance ids leading to the target, outermost first
	Target   string
	Property Keyword
	Value    document.Value
}

// Parse decomposes an authored override value.
func Parse(v document.OverrideValue) (Record, error) {
	first := strings.IndexByte(v.Name, '_')
	last := strings.LastIndexByte(v.Name, '_')
	if first <= 0 || last == len(v.Name)-1 {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformed, v.Name)
	}
	ids := strings.Split(v.Name[:first], "/")
	for _, id := range ids {
		if id == "" {
			return Record{}, fmt.Errorf("%w: %q has an empty id", ErrMalformed, v.Name)
		}
	}
	return Record{
		Name:     v.Name,
		Path:     ids[:len(ids)-1],
		Target:   ids[len(ids)-1],
		Property: Keyword(v.Name[last+1:]),
		Value:    v.Value,
	}, nil
}

// ParseAll parses every value and drops malformed ones. The returned error
// joins the reasons of the dropped values and is informational only.
func ParseAll(values []document.OverrideValue) ([]Record, error) {
	recs := make([]Record, 0, len(values))
	var errs []error
	for _, v := range values {
		r, err := Parse(v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recs = append(recs, r)
	}
	return recs, errors.Join(errs...)
}

// composedName renders the part of the record not yet traced, in the form
// masters use to declare override properties.
func (r *Record) composedName(trace int) string {
	var sb strings.Builder
	for _, id := range r.Path[trace:] {
		sb.WriteString(id)
		sb.WriteByte('/')
	}
	sb.WriteString(r.Target)
	sb.WriteByte('_')
	sb.WriteString(string(r.Property))
	return sb.String()
}
