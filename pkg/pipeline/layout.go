package pipeline

import (
	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
	"github.com/matzehuels/forestplot/pkg/plot/layout"
	"github.com/matzehuels/forestplot/pkg/plot/measure"
	"github.com/matzehuels/forestplot/pkg/render/sink"
)

// =============================================================================
// Layout Composition
// =============================================================================

// Compose resolves the theme and builds the full display layout for a spec.
// The returned theme and measurer feed the render stage so the drawn output
// matches the measured geometry exactly.
func Compose(spec *forest.Spec, opts Options) (*layout.Layout, theme.Theme, measure.Measurer, error) {
	th, err := ResolveTheme(spec, opts)
	if err != nil {
		return nil, theme.Theme{}, nil, err
	}
	m := resolveMeasurer(&th, opts)

	l, _, err := sink.Compose(spec,
		sink.WithTheme(&th),
		sink.WithMeasurer(m),
		sink.WithSize(opts.Width, opts.Height),
	)
	if err != nil {
		return nil, theme.Theme{}, nil, err
	}
	return l, th, m, nil
}

// ResolveTheme resolves the effective theme for a run. A theme file overlay
// replaces the spec's inline overlay; a preset name overrides the overlay's
// preset. With neither option set this is exactly the spec's own resolution.
func ResolveTheme(spec *forest.Spec, opts Options) (theme.Theme, error) {
	overlay := spec.Theme
	if opts.themeOverlay != nil {
		overlay = opts.themeOverlay
	}
	if opts.Theme != "" {
		o := theme.Spec{Preset: opts.Theme}
		if overlay != nil {
			o = *overlay
			o.Preset = opts.Theme
		}
		overlay = &o
	}
	return theme.Resolve(overlay)
}

// resolveMeasurer picks the text measurer for a run: an explicit one from
// options, the theme's font face when it loads, otherwise the character-class
// estimator. The same measurer must feed both layout and draw, so this is
// resolved once here rather than letting each sink call fall back on its own.
func resolveMeasurer(th *theme.Theme, opts Options) measure.Measurer {
	if opts.Measurer != nil {
		return opts.Measurer
	}
	if th.Typography.FontFile != "" {
		if face, err := measure.LoadFace(th.Typography.FontFile); err == nil {
			return face
		}
	}
	return measure.Estimator{}
}
