package grid

import "slices"

// Lookup is the property-indexed view of the column set: for every column
// property, a map from column name to value. Every map has exactly the key
// set of the column order; it is rebuilt whenever the order or a descriptor
// changes.
type Lookup struct {
	Position  map[string]int
	Label     map[string]string
	Width     map[string]int
	Align     map[string]Align
	Fixed     map[string]bool
	Visible   map[string]bool
	Type      map[string]ColumnType
	Editable  map[string]bool
	Frozen    map[string]FrozenSide
	Format    map[string]string
	Classes   map[string]string
	MinLength map[string]int
	MaxLength map[string]int
}

func buildLookup(order []string, cols map[string]*Column) *Lookup {
	n := len(order)
	l := &Lookup{
		Position:  make(map[string]int, n),
		Label:     make(map[string]string, n),
		Width:     make(map[string]int, n),
		Align:     make(map[string]Align, n),
		Fixed:     make(map[string]bool, n),
		Visible:   make(map[string]bool, n),
		Type:      make(map[string]ColumnType, n),
		Editable:  make(map[string]bool, n),
		Frozen:    make(map[string]FrozenSide, n),
		Format:    make(map[string]string, n),
		Classes:   make(map[string]string, n),
		MinLength: make(map[string]int, n),
		MaxLength: make(map[string]int, n),
	}
	for i, name := range order {
		c := cols[name]
		l.Position[name] = i
		l.Label[name] = c.Label
		l.Width[name] = c.Width
		l.Align[name] = c.Align
		l.Fixed[name] = c.Fixed
		l.Visible[name] = c.Visible()
		l.Type[name] = c.Type
		l.Editable[name] = c.Editable
		l.Frozen[name] = c.Frozen
		l.Format[name] = c.Format.Tag()
		l.Classes[name] = c.Classes
		l.MinLength[name] = c.MinLength
		l.MaxLength[name] = c.MaxLength
	}
	return l
}

// columnSet is the column model: descriptors plus their separate order.
type columnSet struct {
	order  []string
	byName map[string]*Column
	lookup *Lookup
}

func newColumnSet(cols []Column) (*columnSet, error) {
	if len(cols) == 0 {
		return nil, configErrorf("columns", "at least one column is required")
	}
	s := &columnSet{
		order:  make([]string, 0, len(cols)),
		byName: make(map[string]*Column, len(cols)),
	}
	for _, c := range cols {
		nc, err := normalizeColumn(c)
		if err != nil {
			return nil, err
		}
		if _, dup := s.byName[nc.Name]; dup {
			return nil, configErrorf("columns."+nc.Name, "duplicate column name")
		}
		s.order = append(s.order, nc.Name)
		s.byName[nc.Name] = &nc
	}
	s.sync()
	return s, nil
}

func (s *columnSet) sync() { s.lookup = buildLookup(s.order, s.byName) }

func (s *columnSet) has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *columnSet) get(name string) (*Column, error) {
	c, ok := s.byName[name]
	if !ok {
		return nil, ErrUnknownColumn
	}
	return c, nil
}

// visibleOrder returns the names of displayed columns in order.
func (s *columnSet) visibleOrder() []string {
	out := make([]string, 0, len(s.order))
	for _, name := range s.order {
		if !s.byName[name].Hidden {
			out = append(out, name)
		}
	}
	return out
}

// move relocates name next to target. It reports whether the order changed.
func (s *columnSet) move(name, target string, after bool) (bool, error) {
	if !s.has(name) || !s.has(target) {
		return false, ErrUnknownColumn
	}
	if name == target {
		return false, nil
	}
	from := s.lookup.Position[name]
	order := slices.Delete(slices.Clone(s.order), from, from+1)
	at := slices.Index(order, target)
	if after {
		at++
	}
	order = slices.Insert(order, at, name)
	if slices.Equal(order, s.order) {
		return false, nil
	}
	s.order = order
	s.sync()
	return true, nil
}

func (s *columnSet) setHidden(name string, hidden bool) error {
	c, err := s.get(name)
	if err != nil {
		return err
	}
	c.Hidden = hidden
	s.sync()
	return nil
}

func (s *columnSet) setWidth(name string, width int) error {
	c, err := s.get(name)
	if err != nil {
		return err
	}
	c.Width = width
	s.sync()
	return nil
}
