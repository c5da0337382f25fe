package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
)

func TestGrid_EditRoundTrip(t *testing.T) {
	var changes []CellChange
	g := newTestGrid(t, Options{Hooks: Hooks{CellChanged: func(c CellChange) { changes = append(changes, c) }}})

	require.NoError(t, g.OpenEditor(0, "age"))
	assert.Equal(t, EditState{Open: true, Row: 0, Column: "age", Value: 28}, g.EditState())

	require.NoError(t, g.SetEditValue(45))
	closed, err := g.Blur()
	require.NoError(t, err)
	assert.True(t, closed)
	assert.False(t, g.EditState().Open)

	v, err := g.GetCell("age", 0)
	require.NoError(t, err)
	assert.Equal(t, 45, v)

	meta, err := g.Meta(0, "age")
	require.NoError(t, err)
	assert.True(t, meta.Changed)
	assert.Equal(t, 28, meta.LastValue)

	require.Len(t, changes, 1)
	assert.Equal(t, CellChange{Row: 0, Column: "age", Old: 28, New: 45, Values: Row{"id": 1, "name": "Ann", "age": 45, "team": "red"}}, changes[0])
	assert.Len(t, g.Changes(), 1)
}

func TestGrid_EditUnchangedValueIsNotFlagged(t *testing.T) {
	g := newTestGrid(t, Options{})
	require.NoError(t, g.OpenEditor(1, "name"))
	closed, err := g.Blur()
	require.NoError(t, err)
	assert.True(t, closed)

	meta, err := g.Meta(1, "name")
	require.NoError(t, err)
	assert.False(t, meta.Changed)
}

func TestGrid_EditVeto(t *testing.T) {
	allow := false
	g := newTestGrid(t, Options{Hooks: Hooks{BeforeClose: func(EditState) bool { return allow }}})

	require.NoError(t, g.OpenEditor(0, "name"))
	require.NoError(t, g.SetEditValue("Zed"))

	closed, err := g.Blur()
	require.NoError(t, err, "a veto is not an error")
	assert.False(t, closed)
	assert.True(t, g.EditState().Open)

	// a veto also keeps the editor in place when another cell is requested
	require.NoError(t, g.OpenEditor(1, "name"))
	assert.Equal(t, 0, g.EditState().Row)

	v, _ := g.GetCell("name", 0)
	assert.Equal(t, "Ann", v)

	allow = true
	closed, err = g.Blur()
	require.NoError(t, err)
	assert.True(t, closed)
	v, _ = g.GetCell("name", 0)
	assert.Equal(t, "Zed", v)
}

func TestGrid_EditLogsVetoAndCommit(t *testing.T) {
	rec, logger := testutil.NewLogRecorder()
	allow := false
	g := newTestGrid(t, Options{Logger: logger, Hooks: Hooks{BeforeClose: func(EditState) bool { return allow }}})

	require.NoError(t, g.OpenEditor(2, "age"))
	require.NoError(t, g.SetEditValue(46))
	_, err := g.Blur()
	require.NoError(t, err)

	vetoed, ok := rec.Find("editor close vetoed")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"row": int64(2), "column": "age"}, vetoed.Attrs)
	_, ok = rec.Find("cell committed")
	assert.False(t, ok)

	allow = true
	_, err = g.Blur()
	require.NoError(t, err)
	committed, ok := rec.Find("cell committed")
	require.True(t, ok)
	assert.Equal(t, "age", committed.Attrs["column"])
}

func TestGrid_OpenEditorErrors(t *testing.T) {
	g := newTestGrid(t, Options{})

	assert.ErrorIs(t, g.OpenEditor(0, "id"), ErrNotEditable)
	assert.ErrorIs(t, g.OpenEditor(0, "nope"), ErrUnknownColumn)
	assert.ErrorIs(t, g.OpenEditor(9, "age"), ErrRowOutOfRange)
	assert.ErrorIs(t, g.SetEditValue(1), ErrNoEditor)
	assert.ErrorIs(t, g.EditKey(KeyTab), ErrNoEditor)
	_, err := g.Blur()
	assert.ErrorIs(t, err, ErrNoEditor)

	require.NoError(t, g.HideColumn("age"))
	assert.ErrorIs(t, g.OpenEditor(0, "age"), ErrNotEditable, "hidden columns cannot be edited")
}

func TestGrid_OpeningAnotherEditorCommits(t *testing.T) {
	g := newTestGrid(t, Options{})
	require.NoError(t, g.OpenEditor(0, "name"))
	require.NoError(t, g.SetEditValue("Ada"))

	require.NoError(t, g.OpenEditor(2, "team"))
	assert.Equal(t, EditState{Open: true, Row: 2, Column: "team", Value: "red"}, g.EditState())
	v, _ := g.GetCell("name", 0)
	assert.Equal(t, "Ada", v)
}

func navColumns() []Column {
	return []Column{
		{Name: "id"},
		{Name: "a", Editable: true},
		{Name: "b", Editable: true},
		{Name: "c", Editable: true},
	}
}

func navRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{"id": i, "a": "a", "b": "b", "c": "c"}
	}
	return rows
}

func TestGrid_EditNavigation(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		setup   func(t *testing.T, g *Grid)
		start   EditState
		key     Key
		wantRow int
		wantCol string
	}{
		{"tab moves right", 2, nil, EditState{Row: 0, Column: "a"}, KeyTab, 0, "b"},
		{"tab wraps to next row", 2, nil, EditState{Row: 0, Column: "c"}, KeyTab, 1, "a"},
		{"tab from last cell wraps to first", 2, nil, EditState{Row: 1, Column: "c"}, KeyTab, 0, "a"},
		{"shift tab wraps backward", 2, nil, EditState{Row: 0, Column: "a"}, KeyShiftTab, 1, "c"},
		{"shift tab moves left", 2, nil, EditState{Row: 1, Column: "b"}, KeyShiftTab, 1, "a"},
		{"up wraps to last row", 3, nil, EditState{Row: 0, Column: "b"}, KeyUp, 2, "b"},
		{"down wraps to first row", 3, nil, EditState{Row: 2, Column: "b"}, KeyDown, 0, "b"},
		{
			"tab skips hidden column", 2,
			func(t *testing.T, g *Grid) { require.NoError(t, g.HideColumn("b")) },
			EditState{Row: 0, Column: "a"}, KeyTab, 0, "c",
		},
		{
			"down skips filtered rows", 4,
			func(t *testing.T, g *Grid) {
				require.NoError(t, g.SetFilter([]Predicate{{Field: "id", Op: OpNe, Value: 1}}))
			},
			EditState{Row: 0, Column: "a"}, KeyDown, 2, "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, Options{Columns: navColumns(), Rows: navRows(tt.rows)})
			if tt.setup != nil {
				tt.setup(t, g)
			}
			require.NoError(t, g.OpenEditor(tt.start.Row, tt.start.Column))
			require.NoError(t, g.EditKey(tt.key))

			st := g.EditState()
			assert.True(t, st.Open)
			assert.Equal(t, tt.wantRow, st.Row)
			assert.Equal(t, tt.wantCol, st.Column)
		})
	}
}

func TestGrid_EditNavigationSkipsNonEditableRows(t *testing.T) {
	cols := navColumns()
	cols[1].EditableFunc = func(_ Row, id int) bool { return id != 1 }
	g := newTestGrid(t, Options{Columns: cols, Rows: navRows(3)})

	require.NoError(t, g.OpenEditor(0, "a"))
	require.NoError(t, g.EditKey(KeyDown))
	assert.Equal(t, 2, g.EditState().Row)
}

func TestGrid_EditKeyCommitsBeforeMoving(t *testing.T) {
	g := newTestGrid(t, Options{Columns: navColumns(), Rows: navRows(2)})

	require.NoError(t, g.OpenEditor(0, "a"))
	require.NoError(t, g.SetEditValue("new"))
	require.NoError(t, g.EditKey(KeyTab))

	v, _ := g.GetCell("a", 0)
	assert.Equal(t, "new", v)
	meta, _ := g.Meta(0, "a")
	assert.True(t, meta.Changed)
	assert.Equal(t, EditState{Open: true, Row: 0, Column: "b", Value: "b"}, g.EditState())
}

func TestGrid_EditEnterAndEscape(t *testing.T) {
	g := newTestGrid(t, Options{Columns: navColumns(), Rows: navRows(2)})

	require.NoError(t, g.OpenEditor(0, "a"))
	require.NoError(t, g.SetEditValue("discarded"))
	require.NoError(t, g.EditKey(KeyEscape))
	assert.False(t, g.EditState().Open)
	v, _ := g.GetCell("a", 0)
	assert.Equal(t, "a", v)

	require.NoError(t, g.OpenEditor(0, "a"))
	require.NoError(t, g.SetEditValue("kept"))
	require.NoError(t, g.EditKey(KeyEnter))
	assert.False(t, g.EditState().Open)
	v, _ = g.GetCell("a", 0)
	assert.Equal(t, "kept", v)
}

func TestGrid_EditValidation(t *testing.T) {
	g := newTestGrid(t, Options{
		Columns: []Column{
			{Name: "code", Editable: true, MinLength: 2, MaxLength: 3},
			{Name: "size", Type: TypeDropdown, Editable: true, Options: []string{"S", "M", "L"}},
		},
		Rows: []Row{{"code": "ab", "size": "M"}},
	})

	require.NoError(t, g.OpenEditor(0, "code"))
	require.NoError(t, g.SetEditValue("abcd"))
	_, err := g.Blur()
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "code", valErr.Column)
	assert.True(t, g.EditState().Open, "editor stays open on invalid input")

	require.NoError(t, g.SetEditValue("abc"))
	closed, err := g.Blur()
	require.NoError(t, err)
	assert.True(t, closed)

	require.NoError(t, g.OpenEditor(0, "size"))
	require.NoError(t, g.SetEditValue("XL"))
	_, err = g.Blur()
	require.ErrorAs(t, err, &valErr)
}

func TestGrid_EditorFollowsRowMoves(t *testing.T) {
	g := newTestGrid(t, Options{})
	require.NoError(t, g.OpenEditor(0, "name"))

	require.NoError(t, g.Sort("age", Descending))
	assert.Equal(t, 1, g.EditState().Row, "Ann (28) is second by age descending")

	require.NoError(t, g.MoveRow(1, 2))
	assert.Equal(t, 2, g.EditState().Row)

	require.NoError(t, g.DeleteRow(0))
	assert.Equal(t, 1, g.EditState().Row)

	require.NoError(t, g.DeleteRow(1))
	assert.False(t, g.EditState().Open)
}

func TestParseKey(t *testing.T) {
	for name, want := range map[string]Key{"Tab": KeyTab, "Shift+Tab": KeyShiftTab, "ArrowUp": KeyUp, "down": KeyDown, "Escape": KeyEscape} {
		k, err := ParseKey(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, k, name)
	}
	_, err := ParseKey("F5")
	assert.Error(t, err)
}
