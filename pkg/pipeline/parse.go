package pipeline

import (
	"os"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest"
)

// =============================================================================
// Spec Loading
// =============================================================================

// Parse reads, parses, and validates the plot spec named by the options.
func Parse(opts Options) (*forest.Spec, error) {
	raw, err := loadSpec(opts)
	if err != nil {
		return nil, err
	}
	return forest.Parse(raw)
}

// loadSpec returns the raw spec bytes. SpecBytes wins over SpecPath so an
// API caller can forward uploads without touching the filesystem.
func loadSpec(opts Options) ([]byte, error) {
	if len(opts.SpecBytes) > 0 {
		return opts.SpecBytes, nil
	}
	if opts.SpecPath == "" {
		return nil, errors.New(errors.ErrCodeMissingField, "missing required field: spec_path or spec_bytes")
	}
	data, err := os.ReadFile(opts.SpecPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read spec file %s", opts.SpecPath)
	}
	return data, nil
}

// source names the spec origin for logs and hooks.
func source(opts Options) string {
	if len(opts.SpecBytes) > 0 && opts.SpecPath == "" {
		return "<bytes>"
	}
	return opts.SpecPath
}
