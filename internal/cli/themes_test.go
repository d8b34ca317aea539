package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/forestplot/pkg/forest/theme"
)

func TestResolveNamedPreset(t *testing.T) {
	got, err := resolveNamed(theme.PresetJournal, "")
	if err != nil {
		t.Fatalf("resolveNamed error: %v", err)
	}

	want, err := theme.Named(theme.PresetJournal)
	if err != nil {
		t.Fatalf("Named error: %v", err)
	}
	if got.Name != want.Name {
		t.Errorf("resolved name = %q, want %q", got.Name, want.Name)
	}
	if got.Colors.Background != want.Colors.Background {
		t.Errorf("background = %q, want %q", got.Colors.Background, want.Colors.Background)
	}
}

func TestResolveNamedUnknownPreset(t *testing.T) {
	if _, err := resolveNamed("neon", ""); err == nil {
		t.Error("resolveNamed should reject unknown presets")
	}
}

func TestResolveNamedWithOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.toml")
	overlay := "[colors]\nbackground = \"#101214\"\n"
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveNamed(theme.PresetJournal, path)
	if err != nil {
		t.Fatalf("resolveNamed error: %v", err)
	}

	if got.Colors.Background != "#101214" {
		t.Errorf("overlay background = %q, want %q", got.Colors.Background, "#101214")
	}

	// Fields the overlay leaves alone keep the preset values.
	base, _ := theme.Named(theme.PresetJournal)
	if got.Colors.Text != base.Colors.Text {
		t.Errorf("text color = %q, want preset value %q", got.Colors.Text, base.Colors.Text)
	}
	if got.Typography.BaseSize != base.Typography.BaseSize {
		t.Errorf("base size = %v, want preset value %v", got.Typography.BaseSize, base.Typography.BaseSize)
	}
}

func TestResolveNamedOverlayInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.toml")
	if err := os.WriteFile(path, []byte("banding = \"diagonal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := resolveNamed(theme.PresetDefault, path); err == nil {
		t.Error("resolveNamed should reject invalid overlay values")
	}
}

func TestResolveNamedOverlayMissingFile(t *testing.T) {
	if _, err := resolveNamed(theme.PresetDefault, "/nonexistent/overlay.toml"); err == nil {
		t.Error("resolveNamed should report a missing overlay file")
	}
}
