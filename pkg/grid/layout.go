package grid

// Default layout constants in px.
const (
	DefaultRowReorderGutter  = 24
	DefaultMultiSelectGutter = 28
	DefaultColumnMargin      = 1
	MinColumnWidth           = 2
)

// Settings are the per-grid layout constants.
type Settings struct {
	// RowReorder and MultiSelect reserve a gutter left of the first column.
	RowReorder        bool
	MultiSelect       bool
	RowReorderGutter  int
	MultiSelectGutter int
	// ColumnMargin is added after every column when stacking frozen offsets.
	ColumnMargin int
	// MinColumnWidth is the lower clamp of SetColumnWidth, never below 2.
	MinColumnWidth int
}

// DefaultSettings returns settings with no gutters enabled.
func DefaultSettings() Settings {
	return Settings{
		RowReorderGutter:  DefaultRowReorderGutter,
		MultiSelectGutter: DefaultMultiSelectGutter,
		ColumnMargin:      DefaultColumnMargin,
		MinColumnWidth:    MinColumnWidth,
	}
}

func (s Settings) normalized() Settings {
	if s == (Settings{}) {
		return DefaultSettings()
	}
	if s.RowReorderGutter <= 0 {
		s.RowReorderGutter = DefaultRowReorderGutter
	}
	if s.MultiSelectGutter <= 0 {
		s.MultiSelectGutter = DefaultMultiSelectGutter
	}
	if s.ColumnMargin < 0 {
		s.ColumnMargin = 0
	}
	if s.MinColumnWidth < MinColumnWidth {
		s.MinColumnWidth = MinColumnWidth
	}
	return s
}

// Reserved returns the px taken by enabled gutters.
func (s Settings) Reserved() int {
	r := 0
	if s.RowReorder {
		r += s.RowReorderGutter
	}
	if s.MultiSelect {
		r += s.MultiSelectGutter
	}
	return r
}

// WidthSpec is the layout-relevant part of a column descriptor.
type WidthSpec struct {
	Width   int
	Fixed   bool
	Visible bool
}

// LayoutRequest is the input of ComputeLayout.
type LayoutRequest struct {
	Order     []string
	Specs     map[string]WidthSpec
	Available int
	Reserved  int
	// UserSet skips flexible redistribution; every column keeps Width.
	UserSet bool
}

// ComputeLayout returns the pixel width of every column in req.Order.
//
// Fixed columns keep their declared width. The space left after fixed
// columns and reserved gutters is split between flexible columns in
// proportion to their declared widths, rounding down. When the flexible
// weights sum to zero the flexible pass is skipped and declared widths are
// kept. Hidden columns take part in the sums; visibility is a display
// concern only.
func ComputeLayout(req LayoutRequest) map[string]int {
	widths := make(map[string]int, len(req.Order))
	if req.UserSet {
		for _, name := range req.Order {
			widths[name] = req.Specs[name].Width
		}
		return widths
	}

	fixedTotal, flexTotal := 0, 0
	for _, name := range req.Order {
		s := req.Specs[name]
		if s.Fixed {
			fixedTotal += s.Width
		} else {
			flexTotal += s.Width
		}
	}
	remaining := max(req.Available-fixedTotal-req.Reserved, 0)

	for _, name := range req.Order {
		s := req.Specs[name]
		if s.Fixed || flexTotal == 0 {
			widths[name] = s.Width
			continue
		}
		widths[name] = remaining * s.Width / flexTotal
	}
	return widths
}

// ColumnLayout is the computed geometry of one column.
type ColumnLayout struct {
	Name   string
	Width  int
	Align  Align
	Hidden bool
	Frozen FrozenSide
	// Offset is the sticky distance from the frozen edge.
	Offset int
	// Divider marks the last visible frozen column on its side.
	Divider bool
}

// Layout is the result of a layout pass, in column order.
type Layout struct {
	Columns   []ColumnLayout
	Available int
	Reserved  int
	// Total is the reserved gutter plus the widths of visible columns.
	Total   int
	UserSet bool

	index map[string]int
}

// Column returns the layout of the named column.
func (l *Layout) Column(name string) (ColumnLayout, bool) {
	i, ok := l.index[name]
	if !ok {
		return ColumnLayout{}, false
	}
	return l.Columns[i], true
}

// Widths returns the computed widths keyed by column name.
func (l *Layout) Widths() map[string]int {
	out := make(map[string]int, len(l.Columns))
	for _, c := range l.Columns {
		out[c.Name] = c.Width
	}
	return out
}

// layoutPass recomputes widths and frozen offsets. Under userSet, columns
// not pinned by SetColumnWidth keep the widths of the previous pass.
func (g *Grid) layoutPass(userSet bool) {
	cols := g.cols
	specs := make(map[string]WidthSpec, len(cols.order))
	for _, name := range cols.order {
		c := cols.byName[name]
		w := c.Width
		if userSet && !g.pinned[name] && g.layout != nil {
			if prev, ok := g.layout.Column(name); ok {
				w = prev.Width
			}
		}
		specs[name] = WidthSpec{Width: w, Fixed: c.Fixed, Visible: c.Visible()}
	}

	reserved := g.settings.Reserved()
	widths := ComputeLayout(LayoutRequest{
		Order:     cols.order,
		Specs:     specs,
		Available: g.width,
		Reserved:  reserved,
		UserSet:   userSet,
	})
	offsets := FrozenOffsets(cols.order, widths, cols.lookup, reserved, g.settings.ColumnMargin)

	l := &Layout{
		Columns:   make([]ColumnLayout, 0, len(cols.order)),
		Available: g.width,
		Reserved:  reserved,
		Total:     reserved,
		UserSet:   userSet,
		index:     make(map[string]int, len(cols.order)),
	}
	for i, name := range cols.order {
		c := cols.byName[name]
		off := offsets[name]
		l.Columns = append(l.Columns, ColumnLayout{
			Name:    name,
			Width:   widths[name],
			Align:   c.Align,
			Hidden:  c.Hidden,
			Frozen:  off.Side,
			Offset:  off.Offset,
			Divider: off.Last,
		})
		l.index[name] = i
		if !c.Hidden {
			l.Total += widths[name]
		}
	}
	g.layout = l
	g.logger.Debug("layout pass", "available", g.width, "reserved", reserved, "user_set", userSet)
}
