package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/forestplot/pkg/errors"
)

func TestDefaultComplete(t *testing.T) {
	th := Default()

	if th.Colors.Background == "" {
		t.Error("default theme has no background color")
	}
	if th.Typography.BaseSize <= 0 {
		t.Error("default theme has no base font size")
	}
	if th.Spacing.RowHeight <= 0 {
		t.Error("default theme has no row height")
	}
	if th.Shapes.PointSize <= 0 {
		t.Error("default theme has no point size")
	}
	if th.Axis.Ticks <= 0 {
		t.Error("default theme has no tick target")
	}
	if !th.Axis.ShowGridlines() {
		t.Error("default theme should show gridlines")
	}
	if !th.GroupHeader.ShowCounts() {
		t.Error("default theme should show group counts")
	}
	if th.Spacing.SpacerFraction != 0.5 {
		t.Errorf("SpacerFraction = %v, want 0.5", th.Spacing.SpacerFraction)
	}
}

func TestNamed(t *testing.T) {
	tests := []struct {
		name    string
		preset  string
		wantErr bool
	}{
		{name: "default", preset: PresetDefault},
		{name: "journal", preset: PresetJournal},
		{name: "dark", preset: PresetDark},
		{name: "unknown", preset: "neon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := Named(tt.preset)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Named(%q) error = %v, wantErr %v", tt.preset, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidTheme) {
					t.Errorf("error code = %v, want INVALID_THEME", errors.GetCode(err))
				}
				return
			}
			if th.Name != tt.preset {
				t.Errorf("Name = %q, want %q", th.Name, tt.preset)
			}
			if th.Colors.Text == "" {
				t.Error("preset has no text color")
			}
		})
	}
}

func TestList(t *testing.T) {
	names := List()
	if len(names) != 3 {
		t.Fatalf("List() returned %d presets, want 3", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i] <= names[i-1] {
			t.Errorf("List() not sorted: %v", names)
		}
	}
}

func TestResolveNil(t *testing.T) {
	th, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve(nil) error = %v", err)
	}
	if th.Name != PresetDefault {
		t.Errorf("Resolve(nil).Name = %q, want %q", th.Name, PresetDefault)
	}
}

func TestResolveOverlay(t *testing.T) {
	spec := &Spec{
		Colors:     &Colors{Background: "#000000"},
		Typography: &Typography{BaseSize: 14},
		Spacing:    &Spacing{RowHeight: 30},
	}

	th, err := Resolve(spec)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if th.Colors.Background != "#000000" {
		t.Errorf("Background = %q, want overlay value", th.Colors.Background)
	}
	// Unset overlay fields keep the base values.
	if th.Colors.Text != Default().Colors.Text {
		t.Errorf("Text = %q, want default", th.Colors.Text)
	}
	if th.Typography.BaseSize != 14 {
		t.Errorf("BaseSize = %v, want 14", th.Typography.BaseSize)
	}
	if th.Typography.TitleSize != Default().Typography.TitleSize {
		t.Errorf("TitleSize = %v, want default", th.Typography.TitleSize)
	}
	if th.Spacing.RowHeight != 30 {
		t.Errorf("RowHeight = %v, want 30", th.Spacing.RowHeight)
	}
	if th.Spacing.CellPadding != Default().Spacing.CellPadding {
		t.Errorf("CellPadding = %v, want default", th.Spacing.CellPadding)
	}
}

func TestResolvePresetBase(t *testing.T) {
	spec := &Spec{
		Preset: PresetDark,
		Colors: &Colors{CI: "#ff0000"},
	}

	th, err := Resolve(spec)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if th.Colors.CI != "#ff0000" {
		t.Errorf("CI = %q, want overlay value", th.Colors.CI)
	}
	want, _ := Named(PresetDark)
	if th.Colors.Background != want.Colors.Background {
		t.Errorf("Background = %q, want dark preset value %q", th.Colors.Background, want.Colors.Background)
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := Resolve(&Spec{Preset: "missing"})
	if !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("error code = %v, want INVALID_THEME", errors.GetCode(err))
	}
}

func TestResolveGridlinesOff(t *testing.T) {
	off := false
	th, err := Resolve(&Spec{Axis: &Axis{Gridlines: &off}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if th.Axis.ShowGridlines() {
		t.Error("ShowGridlines() = true, want false after explicit override")
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    *Spec
		wantErr bool
	}{
		{name: "nil spec", spec: nil},
		{name: "empty spec", spec: &Spec{}},
		{name: "preset only", spec: &Spec{Preset: PresetDark}},
		{name: "partial colors", spec: &Spec{Colors: &Colors{Background: "#fff"}}},
		{name: "unknown preset", spec: &Spec{Preset: "neon"}, wantErr: true},
		{name: "bad banding", spec: &Spec{Banding: "stripes"}, wantErr: true},
		{name: "bad color", spec: &Spec{Colors: &Colors{Text: "not-a-color!"}}, wantErr: true},
		{name: "bad tint", spec: &Spec{Colors: &Colors{GroupTints: []string{"#eee", "##"}}}, wantErr: true},
		{name: "negative size", spec: &Spec{Typography: &Typography{BaseSize: -1}}, wantErr: true},
		{name: "negative spacing", spec: &Spec{Spacing: &Spacing{RowHeight: -5}}, wantErr: true},
		{
			name:    "min over max width",
			spec:    &Spec{Spacing: &Spacing{MinColumnWidth: 200, MaxColumnWidth: 100}},
			wantErr: true,
		},
		{
			name:    "unknown marker shape",
			spec:    &Spec{Shapes: &Shapes{MarkerStyles: []MarkerStyle{{Shape: "hexagon"}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidTheme) {
				t.Errorf("error code = %v, want INVALID_THEME", errors.GetCode(err))
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
preset = "journal"
banding = "none"

[colors]
background = "#fafafa"

[typography]
base_size = 11.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	spec, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if spec.Preset != PresetJournal {
		t.Errorf("Preset = %q, want %q", spec.Preset, PresetJournal)
	}
	if spec.Colors == nil || spec.Colors.Background != "#fafafa" {
		t.Errorf("Colors.Background not loaded: %+v", spec.Colors)
	}
	if spec.Typography == nil || spec.Typography.BaseSize != 11 {
		t.Errorf("Typography.BaseSize not loaded: %+v", spec.Typography)
	}

	th, err := Resolve(spec)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if th.Colors.Background != "#fafafa" {
		t.Errorf("resolved Background = %q, want overlay", th.Colors.Background)
	}
	if th.Banding != BandingNone {
		t.Errorf("resolved Banding = %q, want %q", th.Banding, BandingNone)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("colors = [not valid"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("error code = %v, want INVALID_THEME", errors.GetCode(err))
	}
}
