package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

type fakeBackend struct {
	saved   int
	reloads int
	err     error
}

func (b *fakeBackend) Save(_ context.Context, g *grid.Grid) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	n := len(g.Changes())
	b.saved += n
	g.ClearChanges()
	return n, nil
}

func (b *fakeBackend) Reload(_ context.Context, _ *grid.Grid) error {
	b.reloads++
	return b.err
}

func newModel(t *testing.T) (*Model, *fakeBackend) {
	t.Helper()
	g, err := grid.New(grid.Options{
		Columns: []grid.Column{
			{Name: "id", Type: grid.TypeNumber, Width: 40, Fixed: true, Frozen: grid.FrozenLeft},
			{Name: "name", Label: "Name", Editable: true, MaxLength: 6},
			{Name: "team"},
			{Name: "salary", Type: grid.TypeNumber, Editable: true, Align: grid.AlignRight},
		},
		Rows: []grid.Row{
			{"id": 1, "name": "Cy", "team": "design", "salary": 6100},
			{"id": 2, "name": "Ann", "team": "platform", "salary": 4100},
			{"id": 3, "name": "Bob", "team": "design", "salary": 5200},
		},
		Width: 640,
	})
	require.NoError(t, err)

	backend := &fakeBackend{}
	m := New(context.Background(), Options{Grid: g, Backend: backend, Logger: testutil.NewTestLogger(t), Title: "people"})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	return m, backend
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	clearIn  = tea.KeyMsg{Type: tea.KeyCtrlU}
	saveKey  = tea.KeyMsg{Type: tea.KeyCtrlS}
	reloadIn = tea.KeyMsg{Type: tea.KeyCtrlR}
)

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

// typeText sends each rune as its own keystroke.
func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(runes(string(r)))
	}
}

func cellAt(t *testing.T, m *Model, column string, row int) any {
	t.Helper()
	v, err := m.grid.GetCell(column, row)
	require.NoError(t, err)
	return v
}

func TestModel_Keys(t *testing.T) {
	tests := []struct {
		name  string
		run   func(m *Model)
		check func(t *testing.T, m *Model, b *fakeBackend)
	}{
		{
			name: "sort toggles on the cursor column",
			run: func(m *Model) {
				press(m, runes("l"), runes("s"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				st := m.grid.SortState()
				assert.Equal(t, "name", st.Column)
				assert.Equal(t, "Ann", cellAt(t, m, "name", 0))
			},
		},
		{
			name: "filter by cell",
			run: func(m *Model) {
				press(m, runes("l"), runes("l"), runes("f"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				v := m.grid.View()
				assert.True(t, v.Filtering)
				assert.Equal(t, 2, v.VisibleCount)
				assert.Contains(t, m.message, "team == design")
			},
		},
		{
			name: "filter prompt with operator",
			run: func(m *Model) {
				press(m, runes("l"), runes("l"), runes("l"), runes("/"))
				typeText(m, ">= 5000")
				press(m, enter)
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				assert.Equal(t, modeNav, m.mode)
				assert.Equal(t, []grid.Predicate{{Field: "salary", Op: grid.OpGe, Value: "5000"}}, m.grid.Filter())
				assert.Equal(t, 2, m.grid.View().VisibleCount)
			},
		},
		{
			name: "clear filter",
			run: func(m *Model) {
				press(m, runes("l"), runes("l"), runes("f"), runes("F"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				assert.False(t, m.grid.View().Filtering)
			},
		},
		{
			name: "widen and narrow",
			run: func(m *Model) {
				press(m, runes("l"), runes(">"), runes(">"), runes("<"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				var before, after int
				for _, c := range m.grid.Columns() {
					if c.Name == "name" {
						after = c.Width
					}
				}
				fresh, _ := newModel(t)
				for _, c := range fresh.grid.View().Columns {
					if c.Name == "name" {
						before = c.Width
					}
				}
				assert.Equal(t, before+widthStep, after)
			},
		},
		{
			name: "move column right follows the cursor",
			run: func(m *Model) {
				press(m, runes("l"), runes("L"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				assert.Equal(t, []string{"id", "team", "name", "salary"}, m.grid.Order())
				assert.Equal(t, 2, m.col)
			},
		},
		{
			name: "move row down",
			run: func(m *Model) {
				press(m, runes("J"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				assert.Equal(t, "Ann", cellAt(t, m, "name", 0))
				assert.Equal(t, "Cy", cellAt(t, m, "name", 1))
				assert.Equal(t, 1, m.cursor)
			},
		},
		{
			name: "hide and show columns",
			run: func(m *Model) {
				press(m, runes("l"), runes("x"))
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				assert.Len(t, m.grid.View().Columns, 3)
				press(m, runes("a"))
				assert.Len(t, m.grid.View().Columns, 4)
			},
		},
		{
			name: "save reports the written cells",
			run: func(m *Model) {
				press(m, runes("l"), enter, clearIn)
				typeText(m, "Cyd")
				press(m, enter, saveKey)
			},
			check: func(t *testing.T, m *Model, b *fakeBackend) {
				assert.Equal(t, 1, b.saved)
				assert.Equal(t, "saved 1 cells", m.message)
				assert.Empty(t, m.grid.Changes())
			},
		},
		{
			name: "save with nothing changed",
			run: func(m *Model) {
				press(m, saveKey)
			},
			check: func(t *testing.T, m *Model, _ *fakeBackend) {
				assert.Equal(t, "nothing to save", m.message)
			},
		},
		{
			name: "reload",
			run: func(m *Model) {
				press(m, reloadIn)
			},
			check: func(t *testing.T, m *Model, b *fakeBackend) {
				assert.Equal(t, 1, b.reloads)
				assert.Equal(t, MsgSuccess, m.messageType)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, b := newModel(t)
			tt.run(m)
			tt.check(t, m, b)
		})
	}
}

func TestModel_EditNavigation(t *testing.T) {
	m, _ := newModel(t)

	// Open on name of the first row and replace the text.
	press(m, runes("l"), enter)
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "Cy", m.editor.Value())

	press(m, clearIn)
	typeText(m, "Cyd")
	press(m, tab)

	assert.Equal(t, "Cyd", cellAt(t, m, "name", 0))
	st := m.grid.EditState()
	require.True(t, st.Open)
	assert.Equal(t, "salary", st.Column)
	assert.Equal(t, "6100", m.editor.Value())
	assert.Equal(t, 3, m.col, "cursor follows the editor")

	// Numbers are typed back into numbers.
	press(m, clearIn)
	typeText(m, "7000")
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 7000, cellAt(t, m, "salary", 0))
	assert.Equal(t, 1, m.grid.EditState().Row)

	press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "name", m.grid.EditState().Column)
	assert.Equal(t, 1, m.grid.EditState().Row)

	press(m, esc)
	assert.Equal(t, modeNav, m.mode)
	assert.False(t, m.grid.EditState().Open)
	assert.Len(t, m.grid.Changes(), 2)
}

func TestModel_EditValidationKeepsEditorOpen(t *testing.T) {
	m, _ := newModel(t)

	press(m, runes("l"), enter, clearIn)
	typeText(m, "Toolong")
	press(m, enter)

	assert.Equal(t, modeEdit, m.mode)
	assert.True(t, m.grid.EditState().Open)
	assert.Equal(t, MsgError, m.messageType)
	assert.Contains(t, m.message, "longer than 6 characters")

	var verr *grid.ValidationError
	assert.True(t, errors.As(m.grid.EditKey(grid.KeyEnter), &verr))
}

func TestModel_NotEditable(t *testing.T) {
	m, _ := newModel(t)
	press(m, enter)
	assert.Equal(t, modeNav, m.mode)
	assert.Contains(t, m.message, "not editable")
}

func TestModel_SaveError(t *testing.T) {
	m, b := newModel(t)
	b.err = errors.New("disk full")
	press(m, saveKey)
	assert.Equal(t, MsgError, m.messageType)
	assert.Equal(t, "disk full", m.message)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Quitting())
	assert.Empty(t, m.View())
}

func TestModel_View(t *testing.T) {
	m, _ := newModel(t)
	press(m, runes("l"), runes("s"))

	out := m.View()
	assert.Contains(t, out, "people")
	assert.Contains(t, out, "Name ▲")
	assert.Contains(t, out, "3 rows")
	assert.Contains(t, out, "sorted by name")
	assert.Contains(t, out, "design")
}

func TestModel_ViewGrouped(t *testing.T) {
	g, err := grid.New(grid.Options{
		Columns:  []grid.Column{{Name: "name"}, {Name: "team"}},
		Rows:     []grid.Row{{"name": "Ann", "team": "a"}, {"name": "Bob", "team": "b"}},
		Grouping: []grid.GroupLevel{{Column: "team"}},
		Width:    400,
	})
	require.NoError(t, err)
	m := New(context.Background(), Options{Grid: g})

	require.Equal(t, grid.ItemGroupHeader, g.View().Items[0].Kind)
	assert.Equal(t, 1, m.cursor, "cursor starts on the first row, not a header")

	press(m, runes("j"))
	assert.Equal(t, 3, m.cursor, "headers are skipped")
	press(m, runes("j"))
	assert.Equal(t, 3, m.cursor, "last row stays put")

	out := m.View()
	assert.Contains(t, out, "team: a (1)")
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    grid.Predicate
		wantErr bool
	}{
		{in: "design", want: grid.Predicate{Field: "c", Op: grid.OpEq, Value: "design"}},
		{in: "!= design", want: grid.Predicate{Field: "c", Op: grid.OpNe, Value: "design"}},
		{in: "new york", want: grid.Predicate{Field: "c", Op: grid.OpEq, Value: "new york"}},
		{in: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFilter("c", tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		w     int
		align grid.Align
		want  string
	}{
		{"left", "ab", 4, grid.AlignLeft, "ab  "},
		{"right", "ab", 4, grid.AlignRight, "  ab"},
		{"center", "ab", 5, grid.AlignCenter, " ab  "},
		{"truncated", "abcdef", 4, grid.AlignLeft, "abc…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pad(tt.s, tt.w, tt.align))
		})
	}
}
