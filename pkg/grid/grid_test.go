package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{"no columns", Options{}, "columns"},
		{"empty name", Options{Columns: []Column{{Label: "x"}}}, "columns"},
		{"duplicate name", Options{Columns: []Column{{Name: "a"}, {Name: "a"}}}, "columns.a"},
		{"negative width", Options{Columns: []Column{{Name: "a", Width: -1}}}, "columns.a"},
		{"unknown type", Options{Columns: []Column{{Name: "a", Type: "blob"}}}, "columns.a"},
		{"unknown format", Options{Columns: []Column{{Name: "a", Format: BuiltinFormat("roman")}}}, "columns.a"},
		{"custom type without function", Options{Columns: []Column{{Name: "a", Type: TypeCustom}}}, "columns.a"},
		{"inverted length limits", Options{Columns: []Column{{Name: "a", MinLength: 5, MaxLength: 2}}}, "columns.a"},
		{"unknown alignment", Options{Columns: []Column{{Name: "a", Align: "justify"}}}, "columns.a"},
		{"grouping unknown column", Options{Columns: []Column{{Name: "a"}}, Grouping: []GroupLevel{{Column: "b"}}}, "grouping[0]"},
		{"filter unknown operator", Options{Columns: []Column{{Name: "a"}}, Filter: []Predicate{{Field: "a", Op: "=~"}}}, "filter[0]"},
		{"sort unknown column", Options{Columns: []Column{{Name: "a"}}, Sort: SortLevel{Column: "b"}}, "sort.column"},
		{"negative width option", Options{Columns: []Column{{Name: "a"}}, Width: -5}, "width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.opts)
			assert.Nil(t, g)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNew_Normalization(t *testing.T) {
	g := newTestGrid(t, Options{Columns: []Column{
		{Name: "n", Type: TypeNumber},
		{Name: "s", Type: "string"},
	}, Rows: []Row{}})

	n, err := g.Column("n")
	require.NoError(t, err)
	assert.Equal(t, "n", n.Label)
	assert.Equal(t, DefaultColumnWidth, n.Width)
	assert.Equal(t, AlignRight, n.Align)
	assert.Equal(t, "number", n.Format.Tag())

	s, err := g.Column("s")
	require.NoError(t, err)
	assert.Equal(t, TypeText, s.Type)
	assert.Equal(t, AlignLeft, s.Align)

	_, err = g.Column("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestGrid_LookupStaysInSync(t *testing.T) {
	g := newTestGrid(t, Options{})

	check := func() {
		t.Helper()
		l := g.Lookup()
		order := g.Order()
		maps := []int{
			len(l.Position), len(l.Label), len(l.Width), len(l.Align), len(l.Fixed),
			len(l.Visible), len(l.Type), len(l.Editable), len(l.Frozen), len(l.Format),
			len(l.Classes), len(l.MinLength), len(l.MaxLength),
		}
		for _, n := range maps {
			assert.Equal(t, len(order), n)
		}
		for i, name := range order {
			assert.Equal(t, i, l.Position[name])
			_, ok := l.Visible[name]
			assert.True(t, ok)
		}
	}

	check()
	require.NoError(t, g.MoveColumn("team", "id", false))
	assert.Equal(t, []string{"team", "id", "name", "age"}, g.Order())
	check()

	require.NoError(t, g.HideColumn("name"))
	assert.False(t, g.Lookup().Visible["name"])
	check()

	require.NoError(t, g.SetColumnWidth("age", 120))
	assert.Equal(t, 120, g.Lookup().Width["age"])
	check()

	assert.ErrorIs(t, g.MoveColumn("nope", "id", true), ErrUnknownColumn)
}

func TestGrid_LoadRowsReappliesSort(t *testing.T) {
	renders := 0
	g := newTestGrid(t, Options{Hooks: Hooks{Render: func() { renders++ }}})
	require.NoError(t, g.Sort("age", Ascending))
	rev := g.Revision()
	require.NoError(t, g.OpenEditor(0, "name"))

	g.LoadRows([]Row{{"id": 9, "age": 90}, {"id": 8, "age": 80}})

	assert.Equal(t, []any{8, 9}, columnValues(t, g, "id"))
	assert.False(t, g.EditState().Open, "loading rows drops the editor")
	assert.Greater(t, g.Revision(), rev)
	assert.Equal(t, 3, renders)
}

func TestGrid_DataAccessErrorsLeaveStateUnchanged(t *testing.T) {
	g := newTestGrid(t, Options{})
	rev := g.Revision()

	err := g.SetCell("nope", 0, 1)
	assert.True(t, IsDataError(err))
	err = g.SetCell("age", 10, 1)
	assert.True(t, IsDataError(err))
	assert.ErrorIs(t, g.Click(-1, "age"), ErrRowOutOfRange)
	assert.Equal(t, rev, g.Revision())

	var clicked string
	g.SetHooks(Hooks{Click: func(_ int, c string) { clicked = c }})
	require.NoError(t, g.Click(1, "age"))
	assert.Equal(t, "age", clicked)
}
