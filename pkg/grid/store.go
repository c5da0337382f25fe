package grid

import (
	"reflect"
	"slices"
)

// CellMeta is the shadow state of one cell.
type CellMeta struct {
	// Changed is set when a user edit commits.
	Changed bool
	// LastValue is the value before the latest committed edit.
	LastValue any
	// Classes caches the extra CSS classes computed for the cell.
	Classes string
}

// CellChange describes a committed edit.
type CellChange struct {
	Row    int
	Column string
	Old    any
	New    any
	// Values is a snapshot of the whole row after the edit.
	Values Row
}

// Store owns the row records and their cell metadata. Rows and metadata
// share one index space and always have equal length; a row's id is its
// index.
type Store struct {
	columns []string
	known   map[string]struct{}
	rows    []Row
	meta    []map[string]*CellMeta
}

// NewStore returns an empty store for the given column names.
func NewStore(columns []string) *Store {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	return &Store{columns: slices.Clone(columns), known: known}
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Load replaces every row. Metadata is recreated with defaults.
func (s *Store) Load(rows []Row) {
	s.rows = make([]Row, 0, len(rows))
	s.meta = make([]map[string]*CellMeta, 0, len(rows))
	s.Append(rows...)
}

// Append adds rows at the end with default metadata.
func (s *Store) Append(rows ...Row) {
	for _, r := range rows {
		s.rows = append(s.rows, r.Clone())
		s.meta = append(s.meta, s.newMeta())
	}
}

func (s *Store) newMeta() map[string]*CellMeta {
	m := make(map[string]*CellMeta, len(s.columns))
	for _, c := range s.columns {
		m[c] = &CellMeta{}
	}
	return m
}

func (s *Store) check(op, column string, id int) error {
	if id < 0 || id >= len(s.rows) {
		return &CellError{Op: op, Row: id, Column: column, Err: ErrRowOutOfRange}
	}
	if column == "" {
		return nil
	}
	if _, ok := s.known[column]; !ok {
		return &CellError{Op: op, Row: id, Column: column, Err: ErrUnknownColumn}
	}
	return nil
}

// Row returns a copy of row id.
func (s *Store) Row(id int) (Row, error) {
	if err := s.check("get row", "", id); err != nil {
		return nil, err
	}
	return s.rows[id].Clone(), nil
}

func (s *Store) row(id int) Row { return s.rows[id] }

// Get returns the raw value of a cell.
func (s *Store) Get(column string, id int) (any, error) {
	if err := s.check("get cell", column, id); err != nil {
		return nil, err
	}
	return s.rows[id][column], nil
}

// Set writes a cell without touching its metadata.
func (s *Store) Set(column string, id int, v any) error {
	if err := s.check("set cell", column, id); err != nil {
		return err
	}
	s.rows[id][column] = v
	return nil
}

// Commit writes a user edit: the previous value is kept in LastValue and the
// cell is flagged as changed.
func (s *Store) Commit(column string, id int, v any) (CellChange, error) {
	if err := s.check("commit cell", column, id); err != nil {
		return CellChange{}, err
	}
	old := s.rows[id][column]
	s.rows[id][column] = v
	m := s.meta[id][column]
	m.LastValue = old
	m.Changed = true
	return CellChange{Row: id, Column: column, Old: old, New: v, Values: s.rows[id].Clone()}, nil
}

// Meta returns a copy of a cell's metadata.
func (s *Store) Meta(id int, column string) (CellMeta, error) {
	if err := s.check("get meta", column, id); err != nil {
		return CellMeta{}, err
	}
	return *s.meta[id][column], nil
}

func (s *Store) cellMeta(id int, column string) *CellMeta { return s.meta[id][column] }

// Move relocates row from to index to, shifting the rows in between.
func (s *Store) Move(from, to int) error {
	if err := s.check("move row", "", from); err != nil {
		return err
	}
	if err := s.check("move row", "", to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	r, m := s.rows[from], s.meta[from]
	s.rows = slices.Insert(slices.Delete(s.rows, from, from+1), to, r)
	s.meta = slices.Insert(slices.Delete(s.meta, from, from+1), to, m)
	return nil
}

// Delete removes a row together with its metadata.
func (s *Store) Delete(id int) error {
	if err := s.check("delete row", "", id); err != nil {
		return err
	}
	s.rows = slices.Delete(s.rows, id, id+1)
	s.meta = slices.Delete(s.meta, id, id+1)
	return nil
}

// Permute reorders rows so that new index i holds old row perm[i].
func (s *Store) Permute(perm []int) {
	rows := make([]Row, len(perm))
	meta := make([]map[string]*CellMeta, len(perm))
	for i, old := range perm {
		rows[i] = s.rows[old]
		meta[i] = s.meta[old]
	}
	s.rows, s.meta = rows, meta
}

// Changes lists every cell whose changed flag is set, in row then column order.
func (s *Store) Changes() []CellChange {
	var out []CellChange
	for id, m := range s.meta {
		for _, c := range s.columns {
			cm := m[c]
			if !cm.Changed {
				continue
			}
			out = append(out, CellChange{
				Row:    id,
				Column: c,
				Old:    cm.LastValue,
				New:    s.rows[id][c],
				Values: s.rows[id].Clone(),
			})
		}
	}
	return out
}

// ClearChanges resets every changed flag.
func (s *Store) ClearChanges() {
	for _, m := range s.meta {
		for _, cm := range m {
			cm.Changed = false
		}
	}
}

func sameValue(a, b any) bool { return reflect.DeepEqual(a, b) }
