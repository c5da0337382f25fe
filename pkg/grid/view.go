package grid

// ItemKind identifies a view item.
type ItemKind int

// View item kinds.
const (
	ItemRow ItemKind = iota
	ItemGroupHeader
	ItemGroupFooter
)

// View is the snapshot a renderer paints: visible columns with their
// geometry, and the render plan with formatted cells.
type View struct {
	Revision  uint64
	Available int
	Reserved  int
	Total     int

	RowReorder  bool
	MultiSelect bool

	Columns []ColumnView
	Items   []ItemView

	Sort      SortState
	Filtering bool
	Edit      EditState
	Drag      DragState

	RowCount     int
	VisibleCount int
}

// ColumnView is one visible column.
type ColumnView struct {
	Name     string
	Label    string
	Width    int
	Align    Align
	Type     ColumnType
	Editable bool
	Frozen   FrozenSide
	Offset   int
	Divider  bool
	// Sorted is set on the active sort column.
	Sorted    bool
	Direction Direction
	Options   []string
}

// ItemView is a row or a group header/footer.
type ItemView struct {
	Kind  ItemKind
	Row   int
	Level int
	// Text is set for group headers and footers.
	Text  string
	Cells []CellView
}

// CellView is one formatted cell.
type CellView struct {
	Column   string
	Value    any
	Text     string
	Editable bool
	Editing  bool
	Changed  bool
	Classes  string
}

// View builds the render snapshot. Cell classes are recomputed and cached
// in the cell metadata.
func (g *Grid) View() *View {
	v := &View{
		Revision:    g.revision,
		Available:   g.layout.Available,
		Reserved:    g.layout.Reserved,
		Total:       g.layout.Total,
		RowReorder:  g.settings.RowReorder,
		MultiSelect: g.settings.MultiSelect,
		Sort:        g.sort,
		Filtering:   g.filtering,
		Edit:        g.edit,
		Drag:        g.drag,
		RowCount:    g.store.Len(),
	}

	visible := g.cols.visibleOrder()
	for _, name := range visible {
		c := g.cols.byName[name]
		l, _ := g.layout.Column(name)
		v.Columns = append(v.Columns, ColumnView{
			Name:      name,
			Label:     c.Label,
			Width:     l.Width,
			Align:     c.Align,
			Type:      c.Type,
			Editable:  c.Editable,
			Frozen:    l.Frozen,
			Offset:    l.Offset,
			Divider:   l.Divider,
			Sorted:    g.sort.Active && g.sort.Column == name,
			Direction: g.sort.Direction,
			Options:   c.Options,
		})
	}

	for _, item := range g.Plan() {
		switch item.Kind {
		case PlanRow:
			v.VisibleCount++
			v.Items = append(v.Items, ItemView{Kind: ItemRow, Row: item.Row, Cells: g.cellViews(item.Row, visible)})
		case PlanGroupHeader:
			v.Items = append(v.Items, ItemView{Kind: ItemGroupHeader, Row: item.Row, Level: item.Group.Level, Text: g.groupText(item)})
		case PlanGroupFooter:
			v.Items = append(v.Items, ItemView{Kind: ItemGroupFooter, Row: item.Row, Level: item.Group.Level, Text: g.groupText(item)})
		}
	}
	return v
}

func (g *Grid) cellViews(id int, columns []string) []CellView {
	row := g.store.row(id)
	cells := make([]CellView, 0, len(columns))
	for _, name := range columns {
		c := g.cols.byName[name]
		value := row[name]
		meta := g.store.cellMeta(id, name)
		meta.Classes = cellClasses(c, value, row)
		cells = append(cells, CellView{
			Column:   name,
			Value:    value,
			Text:     c.FormatValue(value, row),
			Editable: c.EditableAt(row, id),
			Editing:  g.edit.Open && g.edit.Row == id && g.edit.Column == name,
			Changed:  meta.Changed,
			Classes:  meta.Classes,
		})
	}
	return cells
}

func cellClasses(c *Column, value any, row Row) string {
	classes := c.Classes
	if c.ClassFunc != nil {
		if extra := c.ClassFunc(value, row); extra != "" {
			if classes != "" {
				classes += " "
			}
			classes += extra
		}
	}
	return classes
}

// FormatCell renders one cell with its column's format.
func (g *Grid) FormatCell(column string, row int) (string, error) {
	v, err := g.store.Get(column, row)
	if err != nil {
		return "", err
	}
	return g.cols.byName[column].FormatValue(v, g.store.row(row)), nil
}
