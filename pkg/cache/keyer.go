package cache

// Keyer derives cache keys.
type Keyer interface {
	// AnalysisKey keys the result of analysing a source tree.
	AnalysisKey(sourceHash string, opts AnalysisKeyOpts) string
	// LayoutKey keys a layout of a serialized graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// AnalysisKeyOpts are the options that change an analysis result.
type AnalysisKeyOpts struct {
	Patterns []string `json:"patterns"`
	Function string   `json:"function,omitempty"`
	Tests    bool     `json:"tests,omitempty"`
}

// LayoutKeyOpts are the options that change a layout.
type LayoutKeyOpts struct {
	Kind       string  `json:"kind"`
	Algorithm  string  `json:"algorithm"`
	Collapse   bool    `json:"collapse,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
	Radius     float64 `json:"radius,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Engine     string `json:"engine,omitempty"` // empty for the built-in SVG renderer
	Statements bool   `json:"statements,omitempty"`
}

// DefaultKeyer hashes the content hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey implements Keyer.
func (DefaultKeyer) AnalysisKey(sourceHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", sourceHash, opts)
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
