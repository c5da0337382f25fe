package grid

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
)

func peopleColumns() []Column {
	return []Column{
		{Name: "id", Type: TypeNumber, Width: 50, Fixed: true},
		{Name: "name", Editable: true, Width: 150},
		{Name: "age", Type: TypeNumber, Editable: true, Width: 80},
		{Name: "team", Editable: true, Width: 100},
	}
}

func peopleRows() []Row {
	return []Row{
		{"id": 1, "name": "Ann", "age": 28, "team": "red"},
		{"id": 2, "name": "bob", "age": 26, "team": "blue"},
		{"id": 3, "name": "Cid", "age": 45, "team": "red"},
	}
}

func newTestGrid(t *testing.T, opts Options) *Grid {
	t.Helper()
	if opts.Columns == nil {
		opts.Columns = peopleColumns()
	}
	if opts.Rows == nil {
		opts.Rows = peopleRows()
	}
	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	g, err := New(opts)
	require.NoError(t, err)
	return g
}

func columnValues(t *testing.T, g *Grid, column string) []any {
	t.Helper()
	out := make([]any, 0, g.Len())
	for i := range g.Len() {
		v, err := g.GetCell(column, i)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}
