// Package forest defines the declarative specification for forest
// plots: rows of point estimates with confidence intervals, an
// optional group hierarchy, auxiliary data columns, reference-line
// annotations, and a theme overlay.
//
// A [Spec] is a plain document. It carries no computed state; the
// plot, layout, and render packages derive everything else from it, so
// specs round-trip through JSON without loss and two renders of the
// same spec agree exactly.
//
// Structural problems (missing required sections, unknown enum values,
// unresolvable group references) fail fast with typed errors from
// [Parse] or [Spec.Validate]. Numeric degeneracy is never an error:
// rows without estimates render as text-only, empty intervals collapse
// to their point, and degenerate axis domains widen to a displayable
// range downstream.
package forest

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/forestplot/pkg/errors"
	"github.com/matzehuels/forestplot/pkg/forest/theme"
)

// ============================================================================
// Spec Document
// ============================================================================

// Spec is the root plot document.
type Spec struct {
	Data        Data         `json:"data" bson:"data"`
	Columns     []Column     `json:"columns,omitempty" bson:"-"`
	Annotations []Annotation `json:"annotations,omitempty" bson:"annotations,omitempty"`
	Axis        AxisConfig   `json:"axis,omitempty" bson:"axis,omitempty"`
	Theme       *theme.Spec  `json:"theme,omitempty" bson:"theme,omitempty"`
	Interaction *Interaction `json:"interaction,omitempty" bson:"interaction,omitempty"`
	Layout      LayoutHints  `json:"layout,omitempty" bson:"layout,omitempty"`
	Labels      Labels       `json:"labels,omitempty" bson:"labels,omitempty"`
}

// Interactions returns the effective interaction switches. A spec
// without an interaction section allows everything; an explicit
// section is taken literally, so listing only sort disables the rest.
func (s *Spec) Interactions() Interaction {
	if s.Interaction == nil {
		return Interaction{
			Sort:     true,
			Collapse: true,
			Select:   true,
			Hover:    true,
			Resize:   true,
			Export:   true,
		}
	}
	return *s.Interaction
}

// EffectList returns the effect series to draw. Without an explicit
// list the primary point/lower/upper row fields form a single unnamed
// effect.
func (s *Spec) EffectList() []Effect {
	if len(s.Data.Effects) > 0 {
		return s.Data.Effects
	}
	return []Effect{{}}
}

// EffectiveColumns returns the table columns to lay out. A spec that
// declares none gets the conventional pair: row labels left of the
// plot, the formatted interval to its right.
func (s *Spec) EffectiveColumns() []Column {
	if len(s.Columns) > 0 {
		return s.Columns
	}
	return []Column{
		{Field: FieldLabel, Header: "Study", Options: TextOptions{}},
		{
			Type:     ColumnInterval,
			Position: PositionRight,
			Align:    AlignRight,
			Header:   "Estimate (95% CI)",
			Options:  IntervalOptions{Decimals: 2},
		},
	}
}

// Clone returns a deep copy of the spec via a JSON round-trip.
func (s *Spec) Clone() (*Spec, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "clone plot spec")
	}
	var out Spec
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "clone plot spec")
	}
	return &out, nil
}

// ============================================================================
// Serialization
// ============================================================================

// Parse decodes a JSON plot spec and validates it.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse plot spec")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadFile loads and validates a plot spec from a JSON file.
func ReadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read spec file %s", path)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "parse spec file %s", path)
	}
	return spec, nil
}

// Marshal encodes the spec as indented JSON.
func (s *Spec) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal plot spec")
	}
	return data, nil
}

// WriteFile validates the spec and writes it to path as indented JSON.
func (s *Spec) WriteFile(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write spec file %s", path)
	}
	return nil
}
