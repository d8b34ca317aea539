package forest

import (
	"github.com/matzehuels/forestplot/pkg/errors"
)

// Validate checks the structural integrity of a spec: required
// sections, known enum values, resolvable group references, and a
// cycle-free group hierarchy. It never inspects numeric values; data
// degeneracy (missing estimates, empty rows) is handled downstream with
// documented fallbacks instead of errors.
func (s *Spec) Validate() error {
	if s.Data.Rows == nil {
		return errors.New(errors.ErrCodeMissingField, "missing required field: data.rows")
	}

	switch s.Data.Scale {
	case "", ScaleLinear, ScaleLog:
	default:
		return errors.New(errors.ErrCodeInvalidScale, "unknown scale: %q", s.Data.Scale)
	}

	groups, err := validateGroups(s.Data.Groups)
	if err != nil {
		return err
	}

	if err := validateRows(s.Data.Rows, groups); err != nil {
		return err
	}

	for i := range s.Data.Effects {
		if s.Data.Effects[i].Field == "" {
			return errors.New(errors.ErrCodeMissingField, "missing required field: data.effects[%d].field", i)
		}
	}

	for i := range s.Columns {
		if err := validateColumn(&s.Columns[i]); err != nil {
			return err
		}
	}

	for i := range s.Annotations {
		a := &s.Annotations[i]
		switch a.Style {
		case "", LineSolid, LineDashed, LineDotted:
		default:
			return errors.New(errors.ErrCodeInvalidSpec, "annotation %d: unknown line style %q", i, a.Style)
		}
		if a.Color != "" {
			if err := errors.ValidateColor(a.Color); err != nil {
				return err
			}
		}
	}

	if err := validateAxis(&s.Axis, s.Data.LogScale()); err != nil {
		return err
	}

	if err := s.Theme.Validate(); err != nil {
		return err
	}

	return nil
}

// validateGroups checks id uniqueness, parent resolution, hierarchy
// acyclicity, and explicit depth consistency. It returns the group
// index for row reference checks.
func validateGroups(groups []Group) (map[string]*Group, error) {
	index := make(map[string]*Group, len(groups))
	for i := range groups {
		g := &groups[i]
		if g.ID == "" {
			return nil, errors.New(errors.ErrCodeMissingField, "missing required field: data.groups[%d].id", i)
		}
		if _, dup := index[g.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidGroup, "duplicate group id: %q", g.ID)
		}
		index[g.ID] = g
	}

	for i := range groups {
		g := &groups[i]
		if g.Parent == "" {
			continue
		}
		if g.Parent == g.ID {
			return nil, errors.New(errors.ErrCodeInvalidGroup, "group %q is its own parent", g.ID)
		}
		if _, ok := index[g.Parent]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidGroup, "group %q references unknown parent %q", g.ID, g.Parent)
		}
	}

	// Depth derivation doubles as cycle detection: a parent chain
	// longer than the group count must loop.
	depths := make(map[string]int, len(groups))
	for i := range groups {
		g := &groups[i]
		depth, err := deriveDepth(g, index, depths, len(groups))
		if err != nil {
			return nil, err
		}
		if g.Depth != 0 && g.Depth != depth {
			return nil, errors.New(errors.ErrCodeInvalidGroup,
				"group %q declares depth %d but its ancestry gives depth %d", g.ID, g.Depth, depth)
		}
	}

	return index, nil
}

func deriveDepth(g *Group, index map[string]*Group, depths map[string]int, limit int) (int, error) {
	if d, ok := depths[g.ID]; ok {
		return d, nil
	}

	depth := 0
	cur := g
	for steps := 0; cur.Parent != ""; steps++ {
		if steps > limit {
			return 0, errors.New(errors.ErrCodeInvalidGroup, "group hierarchy contains a cycle through %q", g.ID)
		}
		cur = index[cur.Parent]
		depth++
	}

	depths[g.ID] = depth
	return depth, nil
}

func validateRows(rows []Row, groups map[string]*Group) error {
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		r := &rows[i]

		switch r.Kind {
		case "", RowKindData, RowKindHeader, RowKindSummary, RowKindSpacer:
		default:
			return errors.New(errors.ErrCodeInvalidSpec, "row %d: unknown kind %q", i, r.Kind)
		}

		if r.ID != "" {
			if seen[r.ID] {
				return errors.New(errors.ErrCodeInvalidSpec, "duplicate row id: %q", r.ID)
			}
			seen[r.ID] = true
		}

		if r.Group != "" {
			if _, ok := groups[r.Group]; !ok {
				return errors.New(errors.ErrCodeInvalidGroup, "row %d references unknown group %q", i, r.Group)
			}
		}
	}
	return nil
}

// columnNeedsField reports whether a leaf column is unusable without a
// field. Interval, range, and forest columns fall back to the row's
// primary estimate, and reference columns may carry static text.
func columnNeedsField(c *Column) bool {
	switch c.EffectiveType() {
	case ColumnInterval, ColumnRange, ColumnForest:
		return false
	case ColumnReference:
		o, _ := c.Options.(ReferenceOptions)
		return o.Text == ""
	case ColumnBoxplot:
		o, _ := c.Options.(BoxplotOptions)
		return len(o.Fields) == 0
	case ColumnViolin:
		o, _ := c.Options.(ViolinOptions)
		return o.Field == ""
	default:
		return true
	}
}

func validateColumn(c *Column) error {
	if c.IsGroup() {
		for i := range c.Columns {
			if err := validateColumn(&c.Columns[i]); err != nil {
				return err
			}
		}
		return nil
	}

	switch c.EffectiveType() {
	case ColumnText, ColumnNumeric, ColumnInterval, ColumnBar, ColumnPValue,
		ColumnSparkline, ColumnIcon, ColumnBadge, ColumnStars, ColumnImg,
		ColumnReference, ColumnRange, ColumnForest, ColumnVizBar,
		ColumnBoxplot, ColumnViolin:
	default:
		return errors.New(errors.ErrCodeInvalidColumn, "unknown column type: %q", c.Type)
	}

	switch c.Position {
	case "", PositionLeft, PositionRight:
	default:
		return errors.New(errors.ErrCodeInvalidColumn, "column %q: unknown position %q", c.Key(), c.Position)
	}

	switch c.Align {
	case "", AlignLeft, AlignCenter, AlignRight:
	default:
		return errors.New(errors.ErrCodeInvalidColumn, "column %q: unknown alignment %q", c.Key(), c.Align)
	}

	if c.Width < 0 {
		return errors.New(errors.ErrCodeInvalidColumn, "column %q: negative width", c.Key())
	}

	if c.Field == "" && columnNeedsField(c) {
		return errors.New(errors.ErrCodeMissingField, "column %q (%s) has no field", c.Key(), c.EffectiveType())
	}

	return nil
}

func validateAxis(a *AxisConfig, log bool) error {
	if a.ClipFactor < 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "axis clip_factor cannot be negative")
	}
	if a.Min != nil && a.Max != nil && *a.Min >= *a.Max {
		return errors.New(errors.ErrCodeInvalidSpec, "axis min %v must be below max %v", *a.Min, *a.Max)
	}
	if log {
		if a.Min != nil && *a.Min <= 0 {
			return errors.New(errors.ErrCodeInvalidScale, "log axis min must be positive, got %v", *a.Min)
		}
		if a.Max != nil && *a.Max <= 0 {
			return errors.New(errors.ErrCodeInvalidScale, "log axis max must be positive, got %v", *a.Max)
		}
	}
	if a.Ticks < 0 {
		return errors.New(errors.ErrCodeInvalidSpec, "axis ticks cannot be negative")
	}
	return nil
}
