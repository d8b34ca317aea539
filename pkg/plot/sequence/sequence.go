// Package sequence resolves a spec's row list and group hierarchy into
// the flat display sequence the layout engine consumes.
//
// The hierarchy is held in a [Tree]: an arena of group nodes built once
// per spec, cheap to re-resolve under changing collapse, sort, and
// filter state. [Tree.Resolve] produces []Entry, the single ordering
// both renderers honor: ungrouped rows first, then each root group's
// subtree (header, child subtrees, own rows), then the overall summary
// row when present. Collapsing a group keeps its header visible and
// drops every descendant entry; the header keeps reporting the hidden
// row count.
package sequence

import (
	"errors"
	"math"
	"sort"

	"github.com/matzehuels/forestplot/pkg/forest"
)

var (
	// ErrInvalidGroupID is returned by [Build] when a group has an empty ID.
	ErrInvalidGroupID = errors.New("group ID must not be empty")

	// ErrDuplicateGroup is returned by [Build] when two groups share an ID.
	ErrDuplicateGroup = errors.New("duplicate group ID")

	// ErrUnknownGroup is returned by [Build] when a row or a child group
	// references a group that does not exist.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrHierarchyCycle is returned by [Build] when the parent chain loops.
	// Cycles are detected as groups unreachable from any root.
	ErrHierarchyCycle = errors.New("group hierarchy contains a cycle")
)

// EntryKind distinguishes display sequence entries.
type EntryKind int

const (
	// EntryRow is a table row: data, header, summary, or spacer.
	EntryRow EntryKind = iota
	// EntryHeader is a collapsible group header line.
	EntryHeader
)

// Entry is one line of the display sequence.
type Entry struct {
	Kind  EntryKind
	Depth int // indent level; headers sit at their group's depth, rows one deeper

	// Row is set for EntryRow entries.
	Row *forest.Row

	// Group, RowCount, and Collapsed are set for EntryHeader entries.
	// RowCount is the number of data rows beneath the group after
	// filtering, whether or not the group is collapsed.
	Group     *forest.Group
	RowCount  int
	Collapsed bool
}

// Options control one resolution pass. The zero value resolves the
// spec as written: spec-order rows, spec collapse defaults, no filter.
type Options struct {
	// Collapsed overrides collapse state per group ID. Groups without
	// an entry keep their spec default.
	Collapsed map[string]bool

	// SortField reorders data rows within each group bucket. "label"
	// sorts by row label, "point", "lower", and "upper" by the primary
	// estimate, anything else by that metadata field. Rows without a
	// value sort last. Non-data rows keep their positions.
	SortField string
	SortDesc  bool

	// Filter hides data rows it rejects. Groups left without any
	// visible row in their subtree disappear entirely, including
	// their headers. Summary and other non-data rows are never
	// filtered, so a group keeps its header while they remain.
	Filter func(*forest.Row) bool
}

type node struct {
	group    *forest.Group
	depth    int
	children []string // child group IDs in spec order
	rows     []*forest.Row
}

// Tree is the resolved group hierarchy of one spec. Build it once and
// call [Tree.Resolve] for every collapse/sort/filter combination; the
// tree itself never changes. Tree is not safe for concurrent mutation
// of the underlying spec.
type Tree struct {
	nodes    map[string]*node
	roots    []string // root group IDs in spec order
	loose    []*forest.Row
	overall  *forest.Row
	rowTotal int
}

// Build constructs the hierarchy arena for a spec's data section.
// Specs that passed [forest.Spec.Validate] never trip the sentinel
// errors; they guard direct programmatic construction.
func Build(data *forest.Data) (*Tree, error) {
	t := &Tree{nodes: make(map[string]*node, len(data.Groups))}

	for i := range data.Groups {
		g := &data.Groups[i]
		if g.ID == "" {
			return nil, ErrInvalidGroupID
		}
		if _, exists := t.nodes[g.ID]; exists {
			return nil, ErrDuplicateGroup
		}
		t.nodes[g.ID] = &node{group: g}
	}

	for i := range data.Groups {
		g := &data.Groups[i]
		if g.Parent == "" {
			t.roots = append(t.roots, g.ID)
			continue
		}
		parent, ok := t.nodes[g.Parent]
		if !ok {
			return nil, ErrUnknownGroup
		}
		parent.children = append(parent.children, g.ID)
	}

	if err := t.assignDepths(); err != nil {
		return nil, err
	}

	for i := range data.Rows {
		r := &data.Rows[i]
		if r.Group == "" {
			t.loose = append(t.loose, r)
		} else {
			n, ok := t.nodes[r.Group]
			if !ok {
				return nil, ErrUnknownGroup
			}
			n.rows = append(n.rows, r)
		}
	}
	t.rowTotal = len(data.Rows)

	if data.Overall != nil {
		overall := *data.Overall
		if overall.Kind == "" {
			overall.Kind = forest.RowKindSummary
		}
		t.overall = &overall
	}

	return t, nil
}

// assignDepths walks the hierarchy from the roots. Groups the walk
// never reaches sit on a parent cycle.
func (t *Tree) assignDepths() error {
	visited := 0

	var dfs func(id string, depth int)
	dfs = func(id string, depth int) {
		n := t.nodes[id]
		n.depth = depth
		visited++
		for _, child := range n.children {
			dfs(child, depth+1)
		}
	}

	for _, id := range t.roots {
		dfs(id, 0)
	}

	if visited != len(t.nodes) {
		return ErrHierarchyCycle
	}
	return nil
}

// Group returns the group with the given ID, or false when absent.
func (t *Tree) Group(id string) (*forest.Group, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return n.group, true
}

// Depth returns the derived depth of a group, or false when absent.
func (t *Tree) Depth(id string) (int, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	return n.depth, true
}

// GroupIDs returns all group IDs in spec order.
func (t *Tree) GroupIDs() []string {
	ids := make([]string, 0, len(t.nodes))
	var walk func(id string)
	walk = func(id string) {
		ids = append(ids, id)
		for _, child := range t.nodes[id].children {
			walk(child)
		}
	}
	for _, id := range t.roots {
		walk(id)
	}
	return ids
}

// GroupCount returns the number of groups in the hierarchy.
func (t *Tree) GroupCount() int { return len(t.nodes) }

// HasGroups reports whether the spec defines any groups. Banding mode
// "auto" keys off this.
func (t *Tree) HasGroups() bool { return len(t.nodes) > 0 }

// Resolve flattens the hierarchy into the display sequence for the
// given collapse, sort, and filter state.
func (t *Tree) Resolve(opts Options) []Entry {
	entries := make([]Entry, 0, t.rowTotal+len(t.nodes)+1)

	for _, r := range t.visibleRows(t.loose, opts) {
		entries = append(entries, Entry{Kind: EntryRow, Row: r, Depth: 0})
	}
	for _, id := range t.roots {
		entries = t.appendGroup(entries, id, opts)
	}
	if t.overall != nil {
		entries = append(entries, Entry{Kind: EntryRow, Row: t.overall, Depth: 0})
	}
	return entries
}

func (t *Tree) appendGroup(entries []Entry, id string, opts Options) []Entry {
	n := t.nodes[id]
	count, total := t.countRows(id, opts)
	if total == 0 {
		return entries
	}

	collapsed := t.collapsedState(id, opts)
	entries = append(entries, Entry{
		Kind:      EntryHeader,
		Depth:     n.depth,
		Group:     n.group,
		RowCount:  count,
		Collapsed: collapsed,
	})
	if collapsed {
		return entries
	}

	// Child subtrees precede the group's own rows, so a group-level
	// summary row closes its block.
	for _, child := range n.children {
		entries = t.appendGroup(entries, child, opts)
	}
	for _, r := range t.visibleRows(n.rows, opts) {
		entries = append(entries, Entry{Kind: EntryRow, Row: r, Depth: n.depth + 1})
	}
	return entries
}

func (t *Tree) collapsedState(id string, opts Options) bool {
	if v, ok := opts.Collapsed[id]; ok {
		return v
	}
	return t.nodes[id].group.Collapsed
}

// countRows tallies the subtree beneath a group after filtering,
// ignoring collapse state: data counts only data rows and feeds the
// header's row count, total counts every visible row and decides
// whether the group renders at all.
func (t *Tree) countRows(id string, opts Options) (data, total int) {
	n := t.nodes[id]
	for _, r := range n.rows {
		if !rowVisible(r, opts) {
			continue
		}
		total++
		if r.IsData() {
			data++
		}
	}
	for _, child := range n.children {
		d, tot := t.countRows(child, opts)
		data += d
		total += tot
	}
	return data, total
}

func rowVisible(r *forest.Row, opts Options) bool {
	if !r.IsData() || opts.Filter == nil {
		return true
	}
	return opts.Filter(r)
}

// visibleRows filters and sorts one row bucket. Only data rows are
// subject to the filter and the sort; other kinds keep their slots.
func (t *Tree) visibleRows(rows []*forest.Row, opts Options) []*forest.Row {
	out := make([]*forest.Row, 0, len(rows))
	for _, r := range rows {
		if rowVisible(r, opts) {
			out = append(out, r)
		}
	}
	if opts.SortField == "" {
		return out
	}

	idx := make([]int, 0, len(out))
	for i, r := range out {
		if r.IsData() {
			idx = append(idx, i)
		}
	}
	data := make([]*forest.Row, len(idx))
	for i, j := range idx {
		data[i] = out[j]
	}

	sort.SliceStable(data, func(i, j int) bool {
		return lessRows(data[i], data[j], opts.SortField, opts.SortDesc)
	})
	for i, j := range idx {
		out[j] = data[i]
	}
	return out
}

// lessRows orders two data rows by the sort field. Rows with a value
// always precede rows without one, regardless of direction.
func lessRows(a, b *forest.Row, field string, desc bool) bool {
	av, aNum, as := rowSortKey(a, field)
	bv, bNum, bs := rowSortKey(b, field)

	if aNum != bNum {
		return aNum
	}
	if aNum {
		if desc {
			return av > bv
		}
		return av < bv
	}
	if as == "" || bs == "" {
		return bs == "" && as != ""
	}
	if desc {
		return as > bs
	}
	return as < bs
}

// rowSortKey resolves the sort value of a row: a number when the field
// is numeric, a string otherwise.
func rowSortKey(r *forest.Row, field string) (num float64, isNum bool, str string) {
	switch field {
	case "label":
		return 0, false, r.Label
	case "point":
		num = r.Estimate(nil).Point
	case "lower":
		num = r.Estimate(nil).Lower
	case "upper":
		num = r.Estimate(nil).Upper
	default:
		num = forest.MetaFloat(r.Meta, field)
		if math.IsNaN(num) {
			return 0, false, forest.MetaString(r.Meta, field)
		}
	}
	if math.IsNaN(num) {
		return 0, false, ""
	}
	return num, true, ""
}

// Rows extracts the row entries of a resolved sequence in order.
func Rows(entries []Entry) []*forest.Row {
	rows := make([]*forest.Row, 0, len(entries))
	for _, e := range entries {
		if e.Kind == EntryRow {
			rows = append(rows, e.Row)
		}
	}
	return rows
}
