package cache

// Keyer builds cache keys for rendered artifacts. Implementations may
// namespace keys for multi-tenant deployments (see ScopedKeyer).
type Keyer interface {
	// ArtifactKey generates a key for a rendered artifact. specHash is the
	// content hash of the spec bytes; opts carries every render option
	// that affects the output.
	ArtifactKey(specHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts captures the render options that influence artifact bytes.
// Two renders with equal spec hashes and equal options produce identical
// output, so their cache entries are interchangeable.
type ArtifactKeyOpts struct {
	// Format is the output format (svg, png, pdf, json).
	Format string `json:"format"`

	// Width and Height are the requested canvas size in pixels.
	// Zero means auto-sized.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Theme is the preset theme name, if any.
	Theme string `json:"theme,omitempty"`

	// ThemeHash is the content hash of an external theme file, if one was
	// supplied. Hashing the content (not the path) invalidates entries
	// when the file is edited.
	ThemeHash string `json:"theme_hash,omitempty"`

	// Background overrides the canvas background color.
	Background string `json:"background,omitempty"`

	// Scale is the raster scale factor (PNG only).
	Scale float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard key generation strategy.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ArtifactKey generates a key for a rendered artifact.
// Format: artifact:hash(specHash, opts)
func (k *DefaultKeyer) ArtifactKey(specHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", specHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
