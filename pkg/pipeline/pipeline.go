// Package pipeline provides the core rendering pipeline for forest plots.
//
// This package implements the complete parse → layout → render pipeline that
// can be used by CLI, server, and library components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read and validate a plot spec from a file or raw bytes
//  2. Layout: Resolve the theme, the display sequence, and all geometry
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
// Rendered artifacts are cached by spec content hash plus render options,
// so re-rendering an unchanged spec is a cache lookup.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    SpecPath: "trial.json",
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Parse only
//	spec, err := runner.Parse(ctx, opts)
//
//	// Render with an existing spec
//	artifacts, err := runner.Render(ctx, spec, opts)
package pipeline

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forestplot/pkg/cache"
	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default document width in pixels. The layout
	// engine distributes width beyond the natural column widths into the
	// plot region.
	DefaultWidth = 800.0

	// DefaultHeight is the default document height. Zero keeps the
	// natural height: a forest plot's height follows its row count, so a
	// fixed default would stretch or squash the drawing.
	DefaultHeight = 0.0

	// DefaultScale is the default raster scale factor for PNG output.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options. Exactly one of SpecPath or SpecBytes must be set;
	// SpecBytes wins when both are.
	SpecPath  string `json:"spec_path,omitempty"`
	SpecBytes []byte `json:"spec_bytes,omitempty"`

	// Render options
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Theme      string   `json:"theme,omitempty"`      // preset name
	ThemeFile  string   `json:"theme_file,omitempty"` // TOML overlay path
	Background string   `json:"background,omitempty"`
	Scale      float64  `json:"scale,omitempty"` // raster scale (png)

	// NoCache skips artifact cache lookups and writes for this run.
	NoCache bool `json:"no_cache,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger      `json:"-"`
	Measurer measure.Measurer `json:"-"`

	// themeOverlay and themeHash are populated from ThemeFile during
	// validation so the file is read once per run.
	themeOverlay *theme.Spec
	themeHash    string

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Spec is the parsed plot spec.
	Spec *forest.Spec

	// SpecHash is the content hash of the raw spec bytes.
	SpecHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RowCount    int
	ColumnCount int
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	// RenderHit records, per format, whether the artifact came from cache.
	RenderHit map[string]bool
}

// Hit returns true when every requested artifact came from cache.
func (c CacheInfo) Hit() bool {
	if len(c.RenderHit) == 0 {
		return false
	}
	for _, hit := range c.RenderHit {
		if !hit {
			return false
		}
	}
	return true
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a preset theme name exists.
func ValidateTheme(name string) error {
	if name == "" {
		return nil
	}
	_, err := theme.Named(name)
	return err
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. The theme file, when given, is read and parsed here so later
// stages and cache keys share one copy. This method is idempotent - calling
// it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}
	if err := o.loadThemeFile(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.SpecPath == "" && len(o.SpecBytes) == 0 {
		return errors.New(errors.ErrCodeMissingField, "missing required field: spec_path or spec_bytes")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}
	return o.loadThemeFile()
}

// loadThemeFile reads and parses ThemeFile once, keeping the parsed overlay
// and the content hash for cache keys. Hashing the content rather than the
// path invalidates cached artifacts when the file is edited.
func (o *Options) loadThemeFile() error {
	if o.ThemeFile == "" || o.themeOverlay != nil {
		return nil
	}
	data, err := os.ReadFile(o.ThemeFile)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read theme file %s", o.ThemeFile)
	}
	overlay, err := theme.ParseSpec(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTheme, err, "theme file %s", o.ThemeFile)
	}
	if err := overlay.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTheme, err, "theme file %s", o.ThemeFile)
	}
	o.themeOverlay = overlay
	o.themeHash = cache.Hash(data)
	return nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:     format,
		Width:      o.Width,
		Height:     o.Height,
		Theme:      o.Theme,
		ThemeHash:  o.themeHash,
		Background: o.Background,
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
