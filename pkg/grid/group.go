package grid

import "fmt"

// GroupInfo describes one run of rows sharing a grouping value.
type GroupInfo struct {
	Level  int
	Column string
	Value  any
	// Rows are the visible row ids of the run, in display order.
	Rows []int
}

// GroupRenderer produces the text of a group header or footer.
type GroupRenderer func(GroupInfo) string

// GroupLevel is one level of the grouping hierarchy, outermost first.
type GroupLevel struct {
	Column    string
	Direction Direction
	Header    GroupRenderer
	// Footer is optional; without it no footer is emitted.
	Footer GroupRenderer
}

// PlanKind identifies a render plan entry.
type PlanKind int

// Plan entry kinds.
const (
	PlanRow PlanKind = iota
	PlanGroupHeader
	PlanGroupFooter
)

// PlanItem is one entry of the render plan: a row, or a group header or
// footer around a run of rows.
type PlanItem struct {
	Kind  PlanKind
	Row   int
	Group GroupInfo
}

// BuildPlan walks rows in order and brackets every run of equal grouping
// keys with a header before its first row and a footer after its last.
// A boundary at level d closes and reopens every level from d inward.
// Runs are split where key differs; headers carry value of the run's first
// row. A nil key compares values.
func BuildPlan(rows []int, levels []GroupLevel, key, value func(column string, row int) any) []PlanItem {
	if key == nil {
		key = value
	}
	items := make([]PlanItem, 0, len(rows)+2*len(levels))
	if len(levels) == 0 {
		for _, r := range rows {
			items = append(items, PlanItem{Kind: PlanRow, Row: r})
		}
		return items
	}

	n, depth := len(rows), len(levels)
	start := make([]int, depth)
	header := make([]int, depth)

	for k := 0; k <= n; k++ {
		boundary := depth
		switch {
		case k == 0 || k == n:
			boundary = 0
		default:
			for l, lv := range levels {
				if compareSortValues(key(lv.Column, rows[k-1]), key(lv.Column, rows[k])) != 0 {
					boundary = l
					break
				}
			}
		}

		if k > 0 && boundary < depth {
			for l := depth - 1; l >= boundary; l-- {
				run := rows[start[l]:k]
				items[header[l]].Group.Rows = run
				if levels[l].Footer != nil {
					info := items[header[l]].Group
					items = append(items, PlanItem{Kind: PlanGroupFooter, Row: run[len(run)-1], Group: info})
				}
			}
		}
		if k == n {
			break
		}

		for l := boundary; l < depth; l++ {
			start[l] = k
			header[l] = len(items)
			items = append(items, PlanItem{
				Kind: PlanGroupHeader,
				Row:  rows[k],
				Group: GroupInfo{
					Level:  l,
					Column: levels[l].Column,
					Value:  value(levels[l].Column, rows[k]),
				},
			})
		}
		items = append(items, PlanItem{Kind: PlanRow, Row: rows[k]})
	}
	return items
}

// Grouping returns the grouping levels.
func (g *Grid) Grouping() []GroupLevel { return cloneLevels(g.grouping) }

// SetGrouping replaces the grouping hierarchy and re-sorts.
func (g *Grid) SetGrouping(levels []GroupLevel) error {
	if err := g.validateGrouping(levels); err != nil {
		return err
	}
	g.grouping = cloneLevels(levels)
	g.applySort()
	g.invalidate()
	return nil
}

func (g *Grid) validateGrouping(levels []GroupLevel) error {
	seen := make(map[string]bool, len(levels))
	for i, lv := range levels {
		field := fmt.Sprintf("grouping[%d]", i)
		if !g.cols.has(lv.Column) {
			return configErrorf(field, "unknown column %q", lv.Column)
		}
		if seen[lv.Column] {
			return configErrorf(field, "column %q is grouped twice", lv.Column)
		}
		seen[lv.Column] = true
	}
	return nil
}

// Plan returns the render plan of the visible rows. Group runs use the same
// sort keys as the sort, so rows that sort as equal share one group.
func (g *Grid) Plan() []PlanItem {
	key := func(column string, row int) any {
		return SortValue(g.cols.byName[column], g.store.row(row))
	}
	return BuildPlan(g.VisibleRows(), g.grouping, key, func(column string, row int) any {
		return g.store.row(row)[column]
	})
}

// groupText renders a header or footer, defaulting to "Label: value (count)".
func (g *Grid) groupText(item PlanItem) string {
	lv := g.grouping[item.Group.Level]
	switch item.Kind {
	case PlanGroupHeader:
		if lv.Header != nil {
			return lv.Header(item.Group)
		}
		c := g.cols.byName[lv.Column]
		return fmt.Sprintf("%s: %s (%d)", c.Label, c.FormatValue(item.Group.Value, nil), len(item.Group.Rows))
	case PlanGroupFooter:
		if lv.Footer != nil {
			return lv.Footer(item.Group)
		}
	}
	return ""
}

func cloneLevels(levels []GroupLevel) []GroupLevel {
	if len(levels) == 0 {
		return nil
	}
	return append([]GroupLevel(nil), levels...)
}
