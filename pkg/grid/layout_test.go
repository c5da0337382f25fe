package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name     string
		order    []string
		specs    map[string]WidthSpec
		avail    int
		reserved int
		userSet  bool
		want     map[string]int
	}{
		{
			name:  "flexible columns split proportionally",
			order: []string{"a", "b"},
			specs: map[string]WidthSpec{"a": {Width: 100}, "b": {Width: 300}},
			avail: 800,
			want:  map[string]int{"a": 200, "b": 600},
		},
		{
			name:  "fixed column keeps declared width",
			order: []string{"a", "b", "c"},
			specs: map[string]WidthSpec{"a": {Width: 50, Fixed: true}, "b": {Width: 100}, "c": {Width: 100}},
			avail: 450,
			want:  map[string]int{"a": 50, "b": 200, "c": 200},
		},
		{
			name:     "reserved gutters reduce remaining space",
			order:    []string{"a", "b"},
			specs:    map[string]WidthSpec{"a": {Width: 100}, "b": {Width: 100}},
			avail:    224,
			reserved: 24,
			want:     map[string]int{"a": 100, "b": 100},
		},
		{
			name:  "widths round down",
			order: []string{"a", "b", "c"},
			specs: map[string]WidthSpec{"a": {Width: 1}, "b": {Width: 1}, "c": {Width: 1}},
			avail: 100,
			want:  map[string]int{"a": 33, "b": 33, "c": 33},
		},
		{
			name:  "zero flexible weight skips redistribution",
			order: []string{"a", "b"},
			specs: map[string]WidthSpec{"a": {Width: 0}, "b": {Width: 50, Fixed: true}},
			avail: 500,
			want:  map[string]int{"a": 0, "b": 50},
		},
		{
			name:    "user set keeps widths verbatim",
			order:   []string{"a", "b"},
			specs:   map[string]WidthSpec{"a": {Width: 120}, "b": {Width: 80}},
			avail:   1000,
			userSet: true,
			want:    map[string]int{"a": 120, "b": 80},
		},
		{
			name:  "negative remaining clamps flexible columns",
			order: []string{"a", "b"},
			specs: map[string]WidthSpec{"a": {Width: 500, Fixed: true}, "b": {Width: 100}},
			avail: 300,
			want:  map[string]int{"a": 500, "b": 0},
		},
		{
			name:  "hidden columns take part in sums",
			order: []string{"a", "b"},
			specs: map[string]WidthSpec{"a": {Width: 100, Visible: true}, "b": {Width: 100}},
			avail: 400,
			want:  map[string]int{"a": 200, "b": 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLayout(LayoutRequest{
				Order:     tt.order,
				Specs:     tt.specs,
				Available: tt.avail,
				Reserved:  tt.reserved,
				UserSet:   tt.userSet,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeLayout_SumInvariant(t *testing.T) {
	order := []string{"id", "a", "b", "c"}
	specs := map[string]WidthSpec{
		"id": {Width: 40, Fixed: true},
		"a":  {Width: 7},
		"b":  {Width: 13},
		"c":  {Width: 29},
	}
	for _, avail := range []int{100, 333, 640, 1024, 1919} {
		widths := ComputeLayout(LayoutRequest{Order: order, Specs: specs, Available: avail, Reserved: 20})

		sum := 0
		for _, w := range widths {
			sum += w
		}
		assert.LessOrEqual(t, sum, avail, "available %d", avail)
		// one rounding unit per flexible column
		assert.Less(t, avail-20-sum, 3, "available %d", avail)
		assert.LessOrEqual(t, widths["a"], widths["b"])
		assert.LessOrEqual(t, widths["b"], widths["c"])
	}
}

func TestGrid_SetColumnWidth(t *testing.T) {
	g := newTestGrid(t, Options{
		Columns: []Column{{Name: "a", Width: 100}, {Name: "b", Width: 100}},
		Rows:    []Row{},
		Width:   400,
	})
	widths := g.Layout().Widths()
	assert.Equal(t, map[string]int{"a": 200, "b": 200}, widths)

	require.NoError(t, g.SetColumnWidth("a", 1))
	assert.True(t, g.Layout().UserSet)
	assert.Equal(t, map[string]int{"a": 2, "b": 200}, g.Layout().Widths(), "width clamps and b keeps its computed width")

	// natural pass: the resized width becomes a's weight
	require.NoError(t, g.Resize(400))
	assert.False(t, g.Layout().UserSet)
	assert.Equal(t, map[string]int{"a": 7, "b": 392}, g.Layout().Widths())

	err := g.SetColumnWidth("missing", 10)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestGrid_DefaultWidthUsesDeclaredWidths(t *testing.T) {
	g := newTestGrid(t, Options{})
	assert.Equal(t, 50+150+80+100, g.Width())
	assert.Equal(t, map[string]int{"id": 50, "name": 150, "age": 80, "team": 100}, g.Layout().Widths())
}
