package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/forestplot/pkg/cache"
	"github.com/matzehuels/forestplot/pkg/errors"
)

var minimalSpec = []byte(`{
  "data": {
    "rows": [
      {"id": "a", "label": "Trial A", "point": 1.2, "lower": 0.9, "upper": 1.6},
      {"id": "b", "label": "Trial B", "point": 0.8, "lower": 0.6, "upper": 1.1}
    ]
  }
}`)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}

	// Typed error carries the format code
	err := ValidateFormat("bogus")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat should return INVALID_FORMAT, got %v", err)
	}
}

func TestValidateTheme(t *testing.T) {
	if err := ValidateTheme(""); err != nil {
		t.Errorf("Empty theme should pass: %v", err)
	}
	if err := ValidateTheme("default"); err != nil {
		t.Errorf("Known preset should pass: %v", err)
	}
	if err := ValidateTheme("nonexistent"); err == nil {
		t.Error("Unknown preset should fail")
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	// Missing input fails with a typed error
	var empty Options
	err := empty.ValidateAndSetDefaults()
	if err == nil {
		t.Fatal("Options without spec input should fail")
	}
	if !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("Expected MISSING_FIELD, got %v", err)
	}

	// Defaults are applied
	opts := Options{SpecBytes: minimalSpec}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats default = %v, want [svg]", opts.Formats)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width default = %v, want %v", opts.Width, DefaultWidth)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale default = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent: a second call does not re-validate mutated fields
	opts.Formats = []string{"invalid"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("Second call should be a no-op: %v", err)
	}
}

func TestOptionsInvalidFormatRejected(t *testing.T) {
	opts := Options{SpecBytes: minimalSpec, Formats: []string{"gif"}}
	err := opts.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Expected INVALID_FORMAT, got %v", err)
	}
}

func TestOptionsThemeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.toml")
	if err := os.WriteFile(path, []byte("[colors]\nbackground = \"#ffffff\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := Options{SpecBytes: minimalSpec, ThemeFile: path}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if opts.themeOverlay == nil {
		t.Error("theme overlay should be loaded")
	}
	if opts.themeHash == "" {
		t.Error("theme hash should be set")
	}

	// The hash feeds the artifact key
	with := opts.ArtifactKeyOpts(FormatSVG)
	without := Options{SpecBytes: minimalSpec}
	_ = without.ValidateAndSetDefaults()
	if with.ThemeHash == without.ArtifactKeyOpts(FormatSVG).ThemeHash {
		t.Error("theme file should change the artifact key options")
	}

	// Missing file fails with a typed error
	missing := Options{SpecBytes: minimalSpec, ThemeFile: filepath.Join(dir, "absent.toml")}
	if err := missing.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		SpecBytes: minimalSpec,
		Formats:   []string{FormatSVG, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if result.Spec == nil {
		t.Fatal("Result.Spec should be set")
	}
	if len(result.SpecHash) != 64 {
		t.Errorf("SpecHash length = %d, want 64", len(result.SpecHash))
	}
	if result.Stats.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", result.Stats.RowCount)
	}
	if result.Stats.ColumnCount == 0 {
		t.Error("ColumnCount should count the default columns")
	}

	svg := result.Artifacts[FormatSVG]
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("SVG artifact should start with <svg, got %.20s", svg)
	}

	var layout map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &layout); err != nil {
		t.Errorf("JSON artifact should parse: %v", err)
	}
	if layout["version"] == nil {
		t.Error("layout record should carry a version")
	}

	// NullCache never hits
	if result.CacheInfo.RenderHit[FormatSVG] {
		t.Error("NullCache run should not report cache hits")
	}
	if result.CacheInfo.Hit() {
		t.Error("CacheInfo.Hit should be false for a cold run")
	}
}

func TestRunnerExecuteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{SpecBytes: minimalSpec, Formats: []string{FormatSVG}}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute error: %v", err)
	}
	if first.CacheInfo.RenderHit[FormatSVG] {
		t.Error("first run should miss the cache")
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute error: %v", err)
	}
	if !second.CacheInfo.RenderHit[FormatSVG] {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached artifact should match the rendered one")
	}

	// NoCache bypasses both lookup and store
	third, err := runner.Execute(ctx, Options{SpecBytes: minimalSpec, Formats: []string{FormatSVG}, NoCache: true})
	if err != nil {
		t.Fatalf("NoCache Execute error: %v", err)
	}
	if third.CacheInfo.RenderHit[FormatSVG] {
		t.Error("NoCache run should not report cache hits")
	}
}

func TestRunnerExecuteParseError(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	// Invalid JSON
	_, err := runner.Execute(context.Background(), Options{SpecBytes: []byte("{not json")})
	if err == nil {
		t.Fatal("Execute should fail on invalid JSON")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Expected INVALID_FORMAT through the wrap chain, got %v", err)
	}

	// Structurally invalid spec
	_, err = runner.Execute(context.Background(), Options{SpecBytes: []byte(`{"data": {}}`)})
	if !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("Expected MISSING_FIELD for absent rows, got %v", err)
	}

	// Missing file
	_, err = runner.Execute(context.Background(), Options{SpecPath: filepath.Join(t.TempDir(), "absent.json")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestRunnerRenderStage(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	spec, err := runner.Parse(context.Background(), Options{SpecBytes: minimalSpec})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	artifacts, err := runner.Render(context.Background(), spec, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.HasPrefix(artifacts[FormatSVG], []byte("<svg")) {
		t.Error("Render stage should produce SVG")
	}
}

func TestCacheInfoHit(t *testing.T) {
	if (CacheInfo{}).Hit() {
		t.Error("empty CacheInfo should not report a hit")
	}
	if !(CacheInfo{RenderHit: map[string]bool{"svg": true}}).Hit() {
		t.Error("all-hit CacheInfo should report a hit")
	}
	if (CacheInfo{RenderHit: map[string]bool{"svg": true, "png": false}}).Hit() {
		t.Error("partial CacheInfo should not report a hit")
	}
}
