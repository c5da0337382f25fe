package grid

import (
	"errors"
	"log/slog"
)

// Options configure a new Grid.
type Options struct {
	Columns  []Column
	Rows     []Row
	Grouping []GroupLevel
	Filter   []Predicate
	// Sort applies an initial sort when Column is set.
	Sort     SortLevel
	Settings Settings
	Hooks    Hooks
	// Width is the available width in px. Zero uses the declared widths.
	Width  int
	Logger *slog.Logger
}

// Grid is one data grid instance: column model, data store and the
// interaction state derived from them.
type Grid struct {
	logger   *slog.Logger
	settings Settings
	hooks    Hooks

	cols  *columnSet
	store *Store

	width   int
	userSet bool
	pinned  map[string]bool
	layout  *Layout

	sort     SortState
	grouping []GroupLevel

	filter    []Predicate
	filtering bool

	edit EditState
	drag DragState

	revision uint64
}

// New validates opts and builds a grid. Schema problems are reported as
// *ConfigError.
func New(opts Options) (*Grid, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cols, err := newColumnSet(opts.Columns)
	if err != nil {
		return nil, err
	}
	if opts.Width < 0 {
		return nil, configErrorf("width", "must not be negative (got %d)", opts.Width)
	}

	g := &Grid{
		logger:   logger,
		settings: opts.Settings.normalized(),
		hooks:    opts.Hooks,
		cols:     cols,
		store:    NewStore(cols.order),
		pinned:   make(map[string]bool),
		width:    opts.Width,
	}
	if g.width == 0 {
		g.width = g.settings.Reserved()
		for _, name := range cols.order {
			g.width += cols.byName[name].Width
		}
	}

	if err := g.validateGrouping(opts.Grouping); err != nil {
		return nil, err
	}
	g.grouping = cloneLevels(opts.Grouping)

	if len(opts.Filter) > 0 {
		filter, err := g.normalizeFilter(opts.Filter)
		if err != nil {
			return nil, err
		}
		g.filter = filter
		g.filtering = true
	}

	if opts.Sort.Column != "" {
		if !cols.has(opts.Sort.Column) {
			return nil, configErrorf("sort.column", "unknown column %q", opts.Sort.Column)
		}
		g.sort = SortState{Column: opts.Sort.Column, Direction: opts.Sort.Direction, Active: true}
	}

	g.store.Load(opts.Rows)
	g.layoutPass(false)
	g.applySort()

	g.logger.Debug("grid created", "columns", len(cols.order), "rows", g.store.Len())
	return g, nil
}

// Revision increases on every mutation that raised a render.
func (g *Grid) Revision() uint64 { return g.revision }

// invalidate bumps the revision and raises the Render hook.
func (g *Grid) invalidate() {
	g.revision++
	if g.hooks.Render != nil {
		g.hooks.Render()
	}
}

// SetHooks replaces the handler table.
func (g *Grid) SetHooks(h Hooks) { g.hooks = h }

// Settings returns the layout constants in use.
func (g *Grid) Settings() Settings { return g.settings }

// ---------- Column model ----------

// Columns returns copies of the column descriptors in column order.
func (g *Grid) Columns() []Column {
	out := make([]Column, 0, len(g.cols.order))
	for _, name := range g.cols.order {
		out = append(out, *g.cols.byName[name])
	}
	return out
}

// Column returns a copy of the named descriptor.
func (g *Grid) Column(name string) (Column, error) {
	c, err := g.cols.get(name)
	if err != nil {
		return Column{}, err
	}
	return *c, nil
}

// Order returns the column order.
func (g *Grid) Order() []string { return append([]string(nil), g.cols.order...) }

// Lookup returns the property-indexed column view. It must not be modified.
func (g *Grid) Lookup() *Lookup { return g.cols.lookup }

// MoveColumn places name before or after target.
func (g *Grid) MoveColumn(name, target string, after bool) error {
	moved, err := g.cols.move(name, target, after)
	if err != nil {
		return err
	}
	if !moved {
		return nil
	}
	g.layoutPass(g.userSet)
	if g.hooks.ColumnMoved != nil {
		g.hooks.ColumnMoved(name, g.cols.lookup.Position[name])
	}
	g.invalidate()
	return nil
}

// ShowColumn displays a hidden column.
func (g *Grid) ShowColumn(name string) error { return g.setHidden(name, false) }

// HideColumn hides a column. An editor open in it is cancelled.
func (g *Grid) HideColumn(name string) error { return g.setHidden(name, true) }

func (g *Grid) setHidden(name string, hidden bool) error {
	if err := g.cols.setHidden(name, hidden); err != nil {
		return err
	}
	if hidden && g.edit.Open && g.edit.Column == name {
		g.edit = EditState{}
	}
	g.layoutPass(g.userSet)
	g.invalidate()
	return nil
}

// ---------- Layout ----------

// Layout returns the current layout.
func (g *Grid) Layout() *Layout { return g.layout }

// Width returns the available width.
func (g *Grid) Width() int { return g.width }

// Resize sets the available width and runs a natural layout pass, which
// discards manual widths set since the previous one.
func (g *Grid) Resize(width int) error {
	if width < 0 {
		return configErrorf("width", "must not be negative (got %d)", width)
	}
	g.width = width
	g.userSet = false
	clear(g.pinned)
	g.layoutPass(false)
	g.invalidate()
	return nil
}

// SetColumnWidth sets a column's width, clamped to the minimum, and
// re-runs layout without flexible redistribution.
func (g *Grid) SetColumnWidth(name string, width int) error {
	if err := g.setColumnWidth(name, width); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

func (g *Grid) setColumnWidth(name string, width int) error {
	width = max(width, g.settings.MinColumnWidth)
	if err := g.cols.setWidth(name, width); err != nil {
		return err
	}
	g.pinned[name] = true
	g.userSet = true
	g.layoutPass(true)
	return nil
}

// ---------- Data ----------

// Len returns the number of rows.
func (g *Grid) Len() int { return g.store.Len() }

// Store exposes the data store for read access.
func (g *Grid) Store() *Store { return g.store }

// LoadRows replaces all rows, as delivered by a source. The open editor and
// any drag are dropped and the current sort is re-applied.
func (g *Grid) LoadRows(rows []Row) {
	g.edit = EditState{}
	g.drag = DragState{}
	g.store.Load(rows)
	g.applySort()
	g.invalidate()
}

// AppendRows adds rows at the end without re-sorting.
func (g *Grid) AppendRows(rows ...Row) {
	g.store.Append(rows...)
	g.invalidate()
}

// Row returns a copy of a row.
func (g *Grid) Row(id int) (Row, error) { return g.store.Row(id) }

// GetCell returns the raw value of a cell.
func (g *Grid) GetCell(column string, row int) (any, error) { return g.store.Get(column, row) }

// SetCell writes a value programmatically. Metadata is not flagged.
func (g *Grid) SetCell(column string, row int, v any) error {
	if err := g.store.Set(column, row, v); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

// Meta returns the metadata of a cell.
func (g *Grid) Meta(row int, column string) (CellMeta, error) { return g.store.Meta(row, column) }

// Changes lists committed edits not yet cleared.
func (g *Grid) Changes() []CellChange { return g.store.Changes() }

// ClearChanges resets the changed flags, typically after a successful push.
func (g *Grid) ClearChanges() {
	g.store.ClearChanges()
	g.invalidate()
}

// MoveRow relocates a row to index to. The order persists until the next
// explicit sort.
func (g *Grid) MoveRow(from, to int) error {
	if err := g.moveRow(from, to); err != nil {
		return err
	}
	g.invalidate()
	return nil
}

func (g *Grid) moveRow(from, to int) error {
	if err := g.store.Move(from, to); err != nil {
		return err
	}
	if g.edit.Open {
		g.edit.Row = shiftedIndex(g.edit.Row, from, to)
	}
	if g.hooks.RowMoved != nil {
		g.hooks.RowMoved(from, to)
	}
	return nil
}

// shiftedIndex maps an index through a single move of from to to.
func shiftedIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < to && i > from && i <= to:
		return i - 1
	case to < from && i >= to && i < from:
		return i + 1
	default:
		return i
	}
}

// DeleteRow removes a row and its metadata.
func (g *Grid) DeleteRow(id int) error {
	if err := g.store.Delete(id); err != nil {
		return err
	}
	if g.edit.Open {
		switch {
		case g.edit.Row == id:
			g.edit = EditState{}
		case g.edit.Row > id:
			g.edit.Row--
		}
	}
	g.invalidate()
	return nil
}

// Click validates a cell and raises the Click hook.
func (g *Grid) Click(row int, column string) error {
	if err := g.store.check("click", column, row); err != nil {
		return err
	}
	if g.hooks.Click != nil {
		g.hooks.Click(row, column)
	}
	return nil
}

// IsDataError reports whether err is a data-access failure.
func IsDataError(err error) bool {
	return errors.Is(err, ErrUnknownColumn) || errors.Is(err, ErrRowOutOfRange)
}
