package override

import (
	"github.com/matzehuels/sketchtower/pkg/document"
	"github.com/matzehuels/sketchtower/pkg/symbol"
)

type entry struct {
	rec     *Record
	trace   int
	invalid bool
	fresh   bool // path completed by the latest Trace
}

func (e entry) complete() bool { return e.trace >= len(e.rec.Path) }

// Set is the ordered collection of records that may still apply at the
// current point of a walk. The zero value is an empty set.
type Set struct {
	entries []entry
}

// NewSet returns a set holding the given records in order.
func NewSet(recs []Record) Set {
	var s Set
	return s.merge(recs)
}

// Len returns the number of tracked records, including invalidated ones that
// have not been dropped yet.
func (s Set) Len() int { return len(s.entries) }

// Records returns the valid, path-complete records in merge order.
func (s Set) Records() []Record {
	var out []Record
	for _, e := range s.entries {
		if !e.invalid && e.complete() {
			out = append(out, *e.rec)
		}
	}
	return out
}

// Trace drops invalidated records and, when layer is a symbol instance,
// advances every record whose next expected instance id is the layer id.
// Records expecting a different instance are invalidated.
func (s Set) Trace(layer *document.Layer) Set {
	out := Set{entries: make([]entry, 0, len(s.entries))}
	instance := layer.Is(document.KindSymbolInstance)
	for _, e := range s.entries {
		if e.invalid {
			continue
		}
		e.fresh = false
		if instance && !e.complete() {
			if e.rec.Path[e.trace] == layer.ID {
				e.trace++
				e.fresh = e.complete()
			} else {
				e.invalid = true
			}
		}
		out.entries = append(out.entries, e)
	}
	return out
}

// Enter applies the effect of entering a symbol master. When the master
// allows overrides, own is merged after the inherited records; otherwise
// only records that were path-complete before the preceding Trace are kept
// and own is ignored. In both cases records matching a property the master
// disallows are invalidated.
// A nil master returns the set unchanged.
func (s Set) Enter(m *symbol.Master, own []Record) Set {
	if m == nil {
		return s
	}
	var out Set
	if m.AllowsOverrides {
		out = s.merge(own)
	} else {
		out.entries = make([]entry, 0, len(s.entries))
		for _, e := range s.entries {
			if e.complete() && !e.fresh {
				out.entries = append(out.entries, e)
			}
		}
	}
	if len(m.Disallowed) == 0 {
		return out
	}
	for i, e := range out.entries {
		if e.invalid {
			continue
		}
		if !m.Allows(e.rec.composedName(e.trace)) {
			out.entries[i].invalid = true
		}
	}
	return out
}

// Advance performs Trace followed by Enter. Callers that need to resolve
// the master from the traced set itself call the two steps separately.
func (s Set) Advance(layer *document.Layer, m *symbol.Master, own []Record) Set {
	return s.Trace(layer).Enter(m, own)
}

func (s Set) merge(recs []Record) Set {
	out := Set{entries: make([]entry, len(s.entries), len(s.entries)+len(recs))}
	copy(out.entries, s.entries)
	for i := range recs {
		r := recs[i]
		out.entries = append(out.entries, entry{rec: &r})
	}
	return out
}

// Value returns the winning value of a property for the layer with id
// target: the most recently merged valid, path-complete record.
func (s Set) Value(target string, kw Keyword) (document.Value, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.invalid || !e.complete() {
			continue
		}
		if e.rec.Target == target && e.rec.Property == kw {
			return e.rec.Value, true
		}
	}
	return document.Value{}, false
}
