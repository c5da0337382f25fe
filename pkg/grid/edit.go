package grid

import (
	"fmt"
	"strings"
)

// Key is a navigation signal captured while an editor is open.
type Key int

// Editor keys.
const (
	KeyTab Key = iota
	KeyShiftTab
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
)

var keyNames = map[string]Key{
	"tab":       KeyTab,
	"shift+tab": KeyShiftTab,
	"backtab":   KeyShiftTab,
	"up":        KeyUp,
	"arrowup":   KeyUp,
	"down":      KeyDown,
	"arrowdown": KeyDown,
	"enter":     KeyEnter,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
}

// ParseKey maps browser and terminal key names to a Key.
func ParseKey(s string) (Key, error) {
	k, ok := keyNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown editor key %q", s)
	}
	return k, nil
}

// EditState is the editor state: closed, or editing one cell.
type EditState struct {
	Open   bool
	Row    int
	Column string
	// Value is the draft held by the editor.
	Value any
}

// EditState returns the editor state.
func (g *Grid) EditState() EditState { return g.edit }

// CellEditable reports whether a cell can take an editor: its row and column
// are visible and the column is editable for that row.
func (g *Grid) CellEditable(row int, column string) bool {
	c, ok := g.cols.byName[column]
	if !ok || row < 0 || row >= g.store.Len() {
		return false
	}
	return c.Visible() && g.rowVisible(row) && c.EditableAt(g.store.row(row), row)
}

// OpenEditor attaches the editor to a cell. An editor open elsewhere is
// closed through the commit path first; if that close is vetoed the editor
// stays where it was and no error is returned.
func (g *Grid) OpenEditor(row int, column string) error {
	if err := g.store.check("open editor", column, row); err != nil {
		return err
	}
	if !g.CellEditable(row, column) {
		return &CellError{Op: "open editor", Row: row, Column: column, Err: ErrNotEditable}
	}
	if g.edit.Open {
		if g.edit.Row == row && g.edit.Column == column {
			return nil
		}
		closed, err := g.commitEditor()
		if err != nil || !closed {
			return err
		}
	}
	g.edit = EditState{Open: true, Row: row, Column: column, Value: g.store.row(row)[column]}
	g.invalidate()
	return nil
}

// SetEditValue replaces the editor's draft.
func (g *Grid) SetEditValue(v any) error {
	if !g.edit.Open {
		return ErrNoEditor
	}
	g.edit.Value = v
	return nil
}

// Blur closes the editor through the commit path. It reports false when
// the BeforeClose hook vetoed.
func (g *Grid) Blur() (bool, error) {
	if !g.edit.Open {
		return false, ErrNoEditor
	}
	closed, err := g.commitEditor()
	if closed {
		g.invalidate()
	}
	return closed, err
}

// CancelEdit closes the editor and discards the draft.
func (g *Grid) CancelEdit() {
	if !g.edit.Open {
		return
	}
	g.edit = EditState{}
	g.invalidate()
}

// EditKey handles a key pressed in the editor. Navigation keys commit the
// current cell and reopen the editor on the next editable cell; Enter
// commits and closes; Escape cancels.
func (g *Grid) EditKey(k Key) error {
	if !g.edit.Open {
		return ErrNoEditor
	}
	switch k {
	case KeyEnter:
		_, err := g.Blur()
		return err
	case KeyEscape:
		g.CancelEdit()
		return nil
	}

	row, column, ok := g.nextEditable(g.edit.Row, g.edit.Column, k)
	if !ok {
		return nil
	}
	closed, err := g.commitEditor()
	if err != nil || !closed {
		return err
	}
	g.edit = EditState{Open: true, Row: row, Column: column, Value: g.store.row(row)[column]}
	g.invalidate()
	return nil
}

// commitEditor runs the close path: veto check, validation, store write,
// metadata flag and CellChanged hook. It does not raise Render.
func (g *Grid) commitEditor() (bool, error) {
	st := g.edit
	if g.hooks.BeforeClose != nil && !g.hooks.BeforeClose(st) {
		g.logger.Debug("editor close vetoed", "row", st.Row, "column", st.Column)
		return false, nil
	}

	col := g.cols.byName[st.Column]
	current := g.store.row(st.Row)[st.Column]
	if sameValue(current, st.Value) {
		g.edit = EditState{}
		return true, nil
	}
	if err := col.validateDraft(st.Value); err != nil {
		return false, err
	}

	change, err := g.store.Commit(st.Column, st.Row, st.Value)
	if err != nil {
		return false, err
	}
	g.edit = EditState{}
	g.logger.Debug("cell committed", "row", st.Row, "column", st.Column)
	if g.hooks.CellChanged != nil {
		g.hooks.CellChanged(change)
	}
	return true, nil
}

// nextEditable scans from (row, column) in the direction of k for the next
// editable cell, wrapping around the grid. Hidden columns, hidden rows and
// non-editable cells are skipped. The scan may land back on the start cell.
func (g *Grid) nextEditable(row int, column string, k Key) (int, string, bool) {
	n := g.store.Len()
	if n == 0 {
		return 0, "", false
	}

	switch k {
	case KeyUp, KeyDown:
		step := 1
		if k == KeyUp {
			step = -1
		}
		for i := 1; i <= n; i++ {
			r := ((row+step*i)%n + n) % n
			if g.CellEditable(r, column) {
				return r, column, true
			}
		}
		return 0, "", false

	case KeyTab, KeyShiftTab:
		cols := g.cols.visibleOrder()
		ci := -1
		for i, name := range cols {
			if name == column {
				ci = i
				break
			}
		}
		if ci < 0 {
			return 0, "", false
		}
		step := 1
		if k == KeyShiftTab {
			step = -1
		}
		total := n * len(cols)
		pos := row*len(cols) + ci
		for i := 1; i <= total; i++ {
			p := ((pos+step*i)%total + total) % total
			r, c := p/len(cols), cols[p%len(cols)]
			if g.CellEditable(r, c) {
				return r, c, true
			}
		}
	}
	return 0, "", false
}
