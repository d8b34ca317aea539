// Package pkg provides the core libraries for Forestplot rendering.
//
// # Overview
//
// Forestplot turns a declarative JSON spec into a forest plot: point
// estimates with confidence intervals drawn alongside tabular data
// columns, the standard figure of meta-analyses and clinical trial
// reports. The pkg directory is organized into four main areas:
//
//  1. [forest] - The spec document model (rows, groups, columns, themes)
//  2. [plot] - Geometry (sequence, axis, scale, measurement, layout)
//  3. [render] - Output sinks (SVG, PNG, PDF, layout JSON, Graphviz)
//  4. [pipeline] - Orchestration (parse → layout → render → cache)
//
// # Architecture
//
// The typical data flow through Forestplot:
//
//	JSON spec
//	     ↓
//	[forest] package (parse + validate)
//	     ↓
//	[plot/sequence] package (resolve groups into the display sequence)
//	     ↓
//	[plot/layout] package (axis, columns, row geometry)
//	     ↓
//	[render/sink] package (SVG/PNG/PDF/JSON output)
//
// # Quick Start
//
// Parse a spec and render it to SVG:
//
//	import (
//	    "github.com/matzehuels/forestplot/pkg/forest"
//	    "github.com/matzehuels/forestplot/pkg/render/sink"
//	)
//
//	// 1. Parse and validate
//	spec, _ := forest.ReadFile("trial.json")
//
//	// 2. Render to SVG (layout composed internally)
//	svg, _ := sink.RenderSVG(spec, sink.WithSize(800, 0))
//
// Or let the pipeline handle caching and format fan-out:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    SpecPath: "trial.json",
//	    Formats:  []string{"svg", "png"},
//	})
//
// # Main Packages
//
// ## Spec Document Model
//
// [forest] - The root spec document: data rows with point/interval
// estimates, a collapsible group hierarchy, column definitions with
// fourteen cell types, annotations, axis configuration, and labels.
// Validation normalizes and cross-checks the whole document.
//
// [forest/theme] - Visual themes. Preset themes (default, journal,
// dark) plus TOML overlays resolved field-by-field over a base.
//
// ## Geometry
//
// [plot/sequence] - Resolves the row list and group hierarchy into the
// flat display sequence both renderers honor, under collapse, sort, and
// filter state.
//
// [plot/axis] - Effect axis computation: domain from the data, nice
// tick placement, linear and log10 modes, null line handling.
//
// [plot/scale] - Value-to-pixel coordinate transforms shared by every
// output path.
//
// [plot/measure] - Text width measurement, from exact font metrics
// when a font file is available to a character-class estimator when
// not.
//
// [plot/layout] - Assembles sequence, axis, and column widths into
// positioned geometry: header band, column slots, row boxes, banding.
//
// [plot/format] - Cell text formatting (numbers, intervals, p-values,
// counts) shared by measurement and drawing.
//
// ## Rendering
//
// [render/sink] - Output sinks. The SVG sink is the reference renderer;
// PNG and PDF convert from it via librsvg; the JSON sink emits the
// versioned layout record for external drawing surfaces.
//
// [render/grouptree] - Graphviz diagrams of the group hierarchy, a
// debugging aid for nested specs.
//
// [render] - Format conversion utilities (SVG to PDF/PNG).
//
// ## Orchestration
//
// [pipeline] - The parse → layout → render pipeline used by the CLI and
// the HTTP server, with content-addressed artifact caching.
//
// [interactive] - A live plot handle holding view state (collapse,
// sort, filter, column widths) with incremental recomputation, the
// engine behind the HTTP server's interactive routes and the terminal
// viewer.
//
// ## Infrastructure
//
// [cache] - Artifact cache backends: file-based for the CLI, Redis for
// server deployments, and a null cache for tests and --no-cache runs.
//
// [store] - Plot spec persistence for the HTTP server: in-memory,
// file-per-plot, and MongoDB backends behind one interface.
//
// [errors] - Coded errors carried across package boundaries, mapped to
// HTTP statuses by the server.
//
// [observability] - Optional hooks for pipeline, cache, and HTTP
// events, registered at startup by consumers that want metrics.
//
// [buildinfo] - Version metadata injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                # All tests
//	go test ./pkg/plot/...           # Specific package
//	go test -run Example             # Examples only
//
// [forest]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/forest
// [forest/theme]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/forest/theme
// [plot]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot
// [plot/sequence]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot/sequence
// [plot/axis]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot/axis
// [plot/scale]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot/scale
// [plot/measure]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot/measure
// [plot/layout]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot/layout
// [plot/format]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/plot/format
// [render]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/render/sink
// [render/grouptree]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/render/grouptree
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/pipeline
// [interactive]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/interactive
// [cache]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/forestplot/pkg/buildinfo
package pkg
