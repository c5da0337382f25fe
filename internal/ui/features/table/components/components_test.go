package components

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/leapgrid/internal/ui/features"
	"github.com/leapstack-labs/leapgrid/internal/ui/workspace"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

func newSnapshot(t *testing.T, mutate func(g *grid.Grid)) workspace.Snapshot {
	t.Helper()
	g, err := grid.New(grid.Options{
		Columns: []grid.Column{
			{Name: "id", Type: grid.TypeNumber, Width: 40, Fixed: true, Frozen: grid.FrozenLeft},
			{Name: "name", Label: "Name", Editable: true},
			{Name: "team", Type: grid.TypeDropdown, Editable: true, Options: []string{"design", "platform"}},
			{Name: "note", Width: 80, Fixed: true, Frozen: grid.FrozenRight},
		},
		Rows: []grid.Row{
			{"id": 1, "name": "Ann <b>", "team": "design", "note": "x"},
			{"id": 2, "name": "Bob", "team": "platform", "note": "y"},
		},
		Grouping: []grid.GroupLevel{{Column: "team"}},
		Settings: grid.Settings{RowReorder: true},
		Width:    600,
	})
	require.NoError(t, err)
	if mutate != nil {
		mutate(g)
	}
	return workspace.Snapshot{View: g.View(), Columns: g.Columns(), Changes: len(g.Changes())}
}

func render(t *testing.T, snap workspace.Snapshot) (*html.Node, string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Grid(snap).Render(context.Background(), &buf))
	return features.ParseHTML(t, buf.String()), buf.String()
}

func TestGrid_Markup(t *testing.T) {
	doc, raw := render(t, newSnapshot(t, nil))

	assert.NotContains(t, raw, "<b>", "cell text is escaped")
	assert.Contains(t, raw, "Ann &lt;b&gt;")

	headers := features.FindAll(doc, features.ByTag("th"))
	require.Len(t, headers, 5, "gutter plus four columns")
	assert.True(t, features.HasClass(headers[0], "lg-gutter-head"))
	assert.Contains(t, features.Attr(headers[1], "style"), "left:")
	assert.Contains(t, features.Attr(headers[4], "style"), "right:0px")
	assert.True(t, features.HasClass(headers[4], "lg-divider-right"))

	groups := features.FindAll(doc, func(n *html.Node) bool { return features.HasClass(n, "lg-group-header") })
	require.Len(t, groups, 2)
	assert.Equal(t, "0", features.Attr(groups[0], "data-level"))

	handles := features.FindAll(doc, func(n *html.Node) bool { return features.Attr(n, "data-drag") == "move-row" })
	assert.Len(t, handles, 2)
	resizers := features.FindAll(doc, func(n *html.Node) bool { return features.Attr(n, "data-drag") == "resize" })
	assert.Len(t, resizers, 4)
}

func TestGrid_SortMarker(t *testing.T) {
	tests := []struct {
		name string
		dir  grid.Direction
		want string
	}{
		{"ascending", grid.Ascending, "▲"},
		{"descending", grid.Descending, "▼"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := render(t, newSnapshot(t, func(g *grid.Grid) {
				require.NoError(t, g.Sort("name", tt.dir))
			}))
			sorted := features.FindAll(doc, func(n *html.Node) bool { return features.HasClass(n, "lg-sorted") })
			require.Len(t, sorted, 1)
			assert.Equal(t, "name", features.Attr(sorted[0], "data-column"))
			marks := features.FindAll(sorted[0], func(n *html.Node) bool { return features.HasClass(n, "lg-sort") })
			require.Len(t, marks, 1)
			assert.Equal(t, tt.want, features.Text(marks[0]))
		})
	}
}

func TestGrid_Editors(t *testing.T) {
	t.Run("text input", func(t *testing.T) {
		doc, _ := render(t, newSnapshot(t, func(g *grid.Grid) {
			require.NoError(t, g.OpenEditor(1, "name"))
		}))
		editing := features.FindAll(doc, func(n *html.Node) bool { return features.HasClass(n, "lg-editing") })
		require.Len(t, editing, 1)
		inputs := features.FindAll(editing[0], features.ByTag("input"))
		require.Len(t, inputs, 1)
		assert.Equal(t, "Bob", features.Attr(inputs[0], "value"))
		assert.Contains(t, features.Attr(inputs[0], "data-on:keydown"), "/api/grid/edit/key")
	})

	t.Run("dropdown select", func(t *testing.T) {
		doc, _ := render(t, newSnapshot(t, func(g *grid.Grid) {
			require.NoError(t, g.OpenEditor(0, "team"))
		}))
		options := features.FindAll(doc, features.ByTag("option"))
		require.Len(t, options, 2)
		assert.Equal(t, "selected", options[0].Attr[len(options[0].Attr)-1].Key)
	})
}

func TestToolbar(t *testing.T) {
	snap := newSnapshot(t, func(g *grid.Grid) {
		require.NoError(t, g.HideColumn("note"))
	})
	snap.Status = "saved 2 cells"

	var buf bytes.Buffer
	require.NoError(t, Toolbar(snap).Render(context.Background(), &buf))
	doc := features.ParseHTML(t, buf.String())

	toggles := features.FindAll(doc, func(n *html.Node) bool {
		return n.Data == "input" && features.Attr(n, "type") == "checkbox"
	})
	require.Len(t, toggles, 4)
	assert.Contains(t, features.Attr(toggles[3], "data-on:change"), "/api/grid/columns/show")
	assert.Contains(t, features.Attr(toggles[0], "data-on:change"), "/api/grid/columns/hide")

	assert.Contains(t, buf.String(), "2 of 2 rows")
	assert.Contains(t, buf.String(), "saved 2 cells")
	assert.Contains(t, buf.String(), "Save (0)")
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page("people", true, newSnapshot(t, nil)).Render(context.Background(), &buf))
	out := buf.String()

	assert.Contains(t, out, "<title>people - LeapGrid</title>")
	assert.Contains(t, out, DatastarScript)
	assert.Contains(t, out, `data-dev="true"`)
	assert.Contains(t, out, `id="grid-toolbar"`)
	assert.Contains(t, out, `id="grid"`)
}
