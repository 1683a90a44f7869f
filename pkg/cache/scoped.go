package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several tenants or
// tool versions can share one backend without seeing each other's entries:
//
//	keyer := cache.NewScopedKeyer(nil, "v"+buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) TreeKey(docHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(docHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, opts)
}
