package grid

import (
	"fmt"
	"sort"
	"strings"
)

// Direction is a sort direction.
type Direction int

// Sort directions.
const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// ParseDirection parses "asc"/"ascending" and "desc"/"descending".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("unknown sort direction %q", s)
	}
}

// SortLevel is one (column, direction) key of a comparator.
type SortLevel struct {
	Column    string
	Direction Direction
}

// SortState is the per-grid sort toggle state.
type SortState struct {
	Column    string
	Direction Direction
	// Active is false until the first explicit sort.
	Active bool
}

// SortOrder returns the permutation that orders rows by levels: index i of
// the result holds the id of the row that belongs at position i. Levels are
// compared first to last and the first non-tie decides. Rows equal on every
// level keep their prior relative order.
func SortOrder(rows []Row, cols map[string]*Column, levels []SortLevel) []int {
	keys := make([][]any, len(rows))
	for i, r := range rows {
		k := make([]any, len(levels))
		for j, lv := range levels {
			k[j] = SortValue(cols[lv.Column], r)
		}
		keys[i] = k
	}

	perm := make([]int, len(rows))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return compareKeys(keys[perm[i]], keys[perm[j]], levels) < 0
	})
	return perm
}

func compareKeys(a, b []any, levels []SortLevel) int {
	for i, lv := range levels {
		c := compareSortValues(a[i], b[i])
		if c == 0 {
			continue
		}
		if lv.Direction == Descending {
			return -c
		}
		return c
	}
	return 0
}

// SortState returns the current toggle state.
func (g *Grid) SortState() SortState { return g.sort }

// SortBy toggles the sort on column: a new column sorts ascending, the
// active column flips direction.
func (g *Grid) SortBy(column string) error {
	dir := Ascending
	if g.sort.Active && g.sort.Column == column {
		dir = g.sort.Direction.Flip()
	}
	return g.Sort(column, dir)
}

// Sort sorts rows by column in dir, beneath any grouping levels.
func (g *Grid) Sort(column string, dir Direction) error {
	if !g.cols.has(column) {
		return &CellError{Op: "sort", Row: -1, Column: column, Err: ErrUnknownColumn}
	}
	g.sort = SortState{Column: column, Direction: dir, Active: true}
	g.applySort()
	g.logger.Debug("sorted rows", "column", column, "direction", dir.String(), "grouped", len(g.grouping) > 0)
	if g.hooks.Sorted != nil {
		g.hooks.Sorted(g.sort)
	}
	g.invalidate()
	return nil
}

// sortLevels lists grouping levels outermost first, followed by the sort
// column when it is not a grouping column. Sorting by a grouping column
// overrides that level's direction.
func (g *Grid) sortLevels() []SortLevel {
	levels := make([]SortLevel, 0, len(g.grouping)+1)
	appendSort := g.sort.Active
	for _, lv := range g.grouping {
		dir := lv.Direction
		if g.sort.Active && lv.Column == g.sort.Column {
			dir = g.sort.Direction
			appendSort = false
		}
		levels = append(levels, SortLevel{Column: lv.Column, Direction: dir})
	}
	if appendSort {
		levels = append(levels, SortLevel{Column: g.sort.Column, Direction: g.sort.Direction})
	}
	return levels
}

func (g *Grid) applySort() {
	levels := g.sortLevels()
	if len(levels) == 0 || g.store.Len() < 2 {
		return
	}
	g.permute(SortOrder(g.store.rows, g.cols.byName, levels))
}

// permute reorders the store and remaps the open editor's row.
func (g *Grid) permute(perm []int) {
	if g.edit.Open {
		for newID, oldID := range perm {
			if oldID == g.edit.Row {
				g.edit.Row = newID
				break
			}
		}
	}
	g.store.Permute(perm)
}
