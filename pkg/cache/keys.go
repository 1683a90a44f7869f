package cache

// Keyer builds cache keys. Implementations must produce different keys for
// any option difference that changes the cached bytes.
type Keyer interface {
	// TreeKey addresses one converted artboard.
	TreeKey(docHash string, opts TreeKeyOpts) string
	// ArtifactKey addresses a rendered diagram of a converted tree.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// TreeKeyOpts are the conversion options that affect a generated tree.
type TreeKeyOpts struct {
	Page       string   `json:"page,omitempty"`
	Artboard   string   `json:"artboard"`
	Decorators []string `json:"decorators"`
	Policy     string   `json:"policy,omitempty"`
	Layer      int      `json:"layer"`
	Namespace  string   `json:"namespace,omitempty"`
	// AssetsHash fingerprints the sprite and font maps.
	AssetsHash string `json:"assets,omitempty"`
}

// ArtifactKeyOpts are the rendering options that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TreeKey(docHash string, opts TreeKeyOpts) string {
	return hashKey("tree", docHash, opts)
}

func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}
