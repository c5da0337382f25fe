package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenColumns() []Column {
	return []Column{
		{Name: "id", Width: 50, Frozen: FrozenLeft},
		{Name: "name", Width: 100, Frozen: FrozenLeft},
		{Name: "age", Width: 80},
		{Name: "notes", Width: 120, Frozen: FrozenRight},
		{Name: "extra", Width: 60, Frozen: FrozenRight},
	}
}

func TestFrozenOffsets(t *testing.T) {
	set, err := newColumnSet(frozenColumns())
	require.NoError(t, err)
	widths := map[string]int{"id": 50, "name": 100, "age": 80, "notes": 120, "extra": 60}

	got := FrozenOffsets(set.order, widths, set.lookup, 24, 1)

	assert.Equal(t, map[string]StickyOffset{
		"id":    {Side: FrozenLeft, Offset: 24, Last: false},
		"name":  {Side: FrozenLeft, Offset: 75, Last: true},
		"extra": {Side: FrozenRight, Offset: 0, Last: false},
		"notes": {Side: FrozenRight, Offset: 61, Last: true},
	}, got)
	assert.Less(t, got["id"].Offset, got["name"].Offset)
}

func TestFrozenOffsets_HiddenColumns(t *testing.T) {
	cols := frozenColumns()
	cols[1].Hidden = true
	set, err := newColumnSet(cols)
	require.NoError(t, err)
	widths := map[string]int{"id": 50, "name": 100, "age": 80, "notes": 120, "extra": 60}

	got := FrozenOffsets(set.order, widths, set.lookup, 0, 0)

	_, ok := got["name"]
	assert.False(t, ok, "hidden columns get no offset")
	assert.Equal(t, StickyOffset{Side: FrozenLeft, Offset: 0, Last: true}, got["id"])
}

func TestGrid_LayoutCarriesFrozenOffsets(t *testing.T) {
	g := newTestGrid(t, Options{
		Columns:  frozenColumns(),
		Rows:     []Row{},
		Settings: Settings{RowReorder: true, ColumnMargin: 1},
	})

	l, ok := g.Layout().Column("name")
	require.True(t, ok)
	assert.Equal(t, FrozenLeft, l.Frozen)
	assert.Equal(t, DefaultRowReorderGutter+50+1, l.Offset)
	assert.True(t, l.Divider)

	require.NoError(t, g.MoveColumn("name", "id", false))
	l, _ = g.Layout().Column("id")
	assert.True(t, l.Divider, "id is now the last frozen-left column")
	assert.Equal(t, DefaultRowReorderGutter+100+1, l.Offset)
}
