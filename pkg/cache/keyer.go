package cache

// LayoutKeyOpts are the layout options that change a layout result.
type LayoutKeyOpts struct {
	Algorithm   string  `json:"algorithm"`
	BaseSpacing float64 `json:"base_spacing"`
	Iterations  int     `json:"iterations"`
	Damping     float64 `json:"damping"`
}

// ArtifactKeyOpts identify one rendering of a layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of a network, by content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a layout, by content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
