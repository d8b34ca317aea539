package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forestplot/pkg/forest"
	"github.com/matzehuels/forestplot/pkg/plot/axis"
	"github.com/matzehuels/forestplot/pkg/plot/format"
	"github.com/matzehuels/forestplot/pkg/plot/sequence"
)

// inspectCommand creates the inspect command for examining a spec without
// rendering it.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [spec.json]",
		Short: "Parse and validate a spec, print its statistics",
		Long: `Parse and validate a plot spec, then print row, group, column, and
axis statistics without rendering anything. Useful for checking a spec
before committing to a render, and for debugging axis domain surprises.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}
}

// runInspect parses the spec and prints its structure.
func (c *CLI) runInspect(input string) error {
	spec, err := forest.ReadFile(input)
	if err != nil {
		return err
	}

	tree, err := sequence.Build(&spec.Data)
	if err != nil {
		return err
	}

	printSuccess("Spec is valid")
	printNewline()

	printKeyValue("Title", orDash(spec.Labels.Title))
	printKeyValue("Rows", fmt.Sprintf("%d (%s)", len(spec.Data.Rows), describeRowKinds(spec)))
	printKeyValue("Groups", describeGroups(tree))
	printKeyValue("Columns", describeColumns(spec))
	printKeyValue("Effects", describeEffects(spec))
	printKeyValue("Axis", describeAxis(spec))
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s", appName, input))

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// describeRowKinds summarizes the row mix, e.g. "11 data, 1 summary".
func describeRowKinds(spec *forest.Spec) string {
	counts := map[string]int{}
	for i := range spec.Data.Rows {
		r := &spec.Data.Rows[i]
		switch {
		case r.IsSummary():
			counts[forest.RowKindSummary]++
		case r.IsHeader():
			counts[forest.RowKindHeader]++
		case r.IsSpacer():
			counts[forest.RowKindSpacer]++
		default:
			counts[forest.RowKindData]++
		}
	}

	var parts []string
	for _, kind := range []string{forest.RowKindData, forest.RowKindHeader, forest.RowKindSummary, forest.RowKindSpacer} {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[kind], kind))
		}
	}
	return strings.Join(parts, ", ")
}

// describeGroups summarizes the hierarchy depth and node count.
func describeGroups(tree *sequence.Tree) string {
	if !tree.HasGroups() {
		return "none"
	}
	maxDepth := 0
	for _, id := range tree.GroupIDs() {
		if d, ok := tree.Depth(id); ok && d > maxDepth {
			maxDepth = d
		}
	}
	return fmt.Sprintf("%d (max depth %d)", tree.GroupCount(), maxDepth+1)
}

// describeColumns lists the effective columns with their types.
func describeColumns(spec *forest.Spec) string {
	cols := spec.EffectiveColumns()
	var leaves []string
	for i := range cols {
		for _, leaf := range cols[i].Leaves(nil) {
			leaves = append(leaves, fmt.Sprintf("%s (%s)", leaf.Key(), leaf.EffectiveType()))
		}
	}
	return fmt.Sprintf("%d: %s", len(leaves), strings.Join(leaves, ", "))
}

// describeEffects names the effects that will draw markers.
func describeEffects(spec *forest.Spec) string {
	effects := spec.EffectList()
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = effectName(e)
	}
	return strings.Join(names, ", ")
}

func effectName(e forest.Effect) string {
	switch {
	case e.Label != "":
		return e.Label
	case e.ID != "":
		return e.ID
	case e.Field != "":
		return e.Field
	}
	return "primary"
}

// describeAxis computes the axis from the same inputs the layout uses,
// then prints the resulting domain and ticks.
func describeAxis(spec *forest.Spec) string {
	rows := make([]*forest.Row, 0, len(spec.Data.Rows)+1)
	for i := range spec.Data.Rows {
		rows = append(rows, &spec.Data.Rows[i])
	}
	if spec.Data.Overall != nil {
		rows = append(rows, spec.Data.Overall)
	}

	a := axis.Compute(axis.Params{
		Rows:    rows,
		Effects: spec.EffectList(),
		Config:  spec.Axis,
		Log:     spec.Data.LogScale(),
		Null:    spec.Data.Null(),
	})

	kind := "linear"
	if a.Log {
		kind = "log"
	}
	ticks := make([]string, len(a.Ticks))
	for i, t := range a.Ticks {
		ticks[i] = format.Tick(t)
	}
	return fmt.Sprintf("%s [%s, %s], ticks %s",
		kind, format.Tick(a.Min), format.Tick(a.Max), strings.Join(ticks, " "))
}
