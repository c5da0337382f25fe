// Package tui is the terminal grid browser. It drives a grid through its
// operations and paints every frame from Grid.View.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Backend loads and stores the rows of a grid. *project.Project
// implements it.
type Backend interface {
	Reload(ctx context.Context, g *grid.Grid) error
	Save(ctx context.Context, g *grid.Grid) (int, error)
}

// mode is what keystrokes currently drive.
type mode int

const (
	modeNav mode = iota
	modeEdit
	modeFilter
)

// Terminal cells per grid pixel when painting column widths.
const pixelsPerCell = 8

// widthStep is the pixel change of one narrow or widen keystroke.
const widthStep = 16

// MessageType is the kind of status message.
type MessageType int

// Status message kinds.
const (
	MsgInfo MessageType = iota
	MsgSuccess
	MsgError
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	grid    *grid.Grid
	backend Backend
	logger  *slog.Logger
	title   string

	keys KeyMap
	help help.Model

	mode   mode
	editor textinput.Model
	filter textinput.Model

	// cursor indexes View.Items and always sits on a row item; col indexes
	// View.Columns.
	cursor    int
	col       int
	rowOffset int
	colOffset int

	width, height int

	message     string
	messageType MessageType
	quitting    bool
}

// Options configures a Model.
type Options struct {
	Grid    *grid.Grid
	Backend Backend
	Logger  *slog.Logger
	Title   string
}

// New creates a browser over a grid.
func New(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	editor := textinput.New()
	editor.Prompt = ""
	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "[op] value"

	m := &Model{
		ctx:     ctx,
		grid:    opts.Grid,
		backend: opts.Backend,
		logger:  logger,
		title:   opts.Title,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		editor:  editor,
		filter:  filter,
		width:   80,
		height:  24,
	}
	m.cursor = m.firstRow(m.grid.View())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// The grid lays out in pixels; the terminal gives cells.
		m.report(m.grid.Resize(msg.Width * pixelsPerCell))
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m, m.updateEdit(msg)
		case modeFilter:
			return m, m.updateFilter(msg)
		default:
			return m, m.updateNav(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNav(msg tea.KeyMsg) tea.Cmd {
	v := m.grid.View()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = m.stepRow(v, -1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = m.stepRow(v, 1)
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(v.Columns)-1 {
			m.col++
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Edit):
		return m.openEditor(v)
	case key.Matches(msg, m.keys.Sort):
		if c, ok := m.column(v); ok {
			if m.report(m.grid.SortBy(c.Name)) {
				m.setMessage(fmt.Sprintf("sorted by %s %s", c.Name, m.grid.SortState().Direction), MsgInfo)
			}
		}
	case key.Matches(msg, m.keys.FilterCell):
		m.filterByCell(v)
	case key.Matches(msg, m.keys.FilterInput):
		if _, ok := m.column(v); ok {
			m.mode = modeFilter
			m.filter.SetValue("")
			return m.filter.Focus()
		}
	case key.Matches(msg, m.keys.ClearFilter):
		m.grid.ClearFilter()
		m.setMessage("filter cleared", MsgInfo)
	case key.Matches(msg, m.keys.Narrow):
		m.resizeColumn(v, -widthStep)
	case key.Matches(msg, m.keys.Widen):
		m.resizeColumn(v, widthStep)
	case key.Matches(msg, m.keys.MoveLeft):
		m.moveColumn(v, -1)
	case key.Matches(msg, m.keys.MoveRight):
		m.moveColumn(v, 1)
	case key.Matches(msg, m.keys.MoveUp):
		m.moveRow(v, -1)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveRow(v, 1)
	case key.Matches(msg, m.keys.Hide):
		if c, ok := m.column(v); ok && len(v.Columns) > 1 {
			m.report(m.grid.HideColumn(c.Name))
		}
	case key.Matches(msg, m.keys.ShowAll):
		for _, c := range m.grid.Columns() {
			if c.Hidden {
				m.report(m.grid.ShowColumn(c.Name))
			}
		}
	case key.Matches(msg, m.keys.Save):
		m.save()
	case key.Matches(msg, m.keys.Reload):
		m.reload()
	}
	m.clamp()
	return nil
}

// editKeys maps editor keystrokes onto the grid's edit navigation.
var editKeys = map[string]grid.Key{
	"tab":       grid.KeyTab,
	"shift+tab": grid.KeyShiftTab,
	"up":        grid.KeyUp,
	"down":      grid.KeyDown,
	"enter":     grid.KeyEnter,
	"esc":       grid.KeyEscape,
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.grid.CancelEdit()
		m.quitting = true
		return tea.Quit
	}
	k, ok := editKeys[msg.String()]
	if !ok {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return cmd
	}

	if k != grid.KeyEscape {
		if err := m.applyDraft(); err != nil {
			m.report(err)
			return nil
		}
	}
	if !m.report(m.grid.EditKey(k)) {
		return nil
	}
	return m.syncEditor()
}

// applyDraft hands the editor text to the grid, typed for the column.
func (m *Model) applyDraft() error {
	st := m.grid.EditState()
	c, err := m.grid.Column(st.Column)
	if err != nil {
		return err
	}
	return m.grid.SetEditValue(c.CoerceInput(m.editor.Value()))
}

// syncEditor follows the grid's editor: it moves the cursor to the edited
// cell, or returns to navigation when the editor closed.
func (m *Model) syncEditor() tea.Cmd {
	st := m.grid.EditState()
	if !st.Open {
		m.mode = modeNav
		m.editor.Blur()
		return nil
	}
	v := m.grid.View()
	for i, item := range v.Items {
		if item.Kind == grid.ItemRow && item.Row == st.Row {
			m.cursor = i
			break
		}
	}
	for i, c := range v.Columns {
		if c.Name == st.Column {
			m.col = i
			break
		}
	}
	m.clamp()
	m.mode = modeEdit
	m.editor.SetValue(draftText(st.Value))
	m.editor.CursorEnd()
	return m.editor.Focus()
}

func (m *Model) openEditor(v *grid.View) tea.Cmd {
	item, ok := m.item(v)
	c, okc := m.column(v)
	if !ok || !okc {
		return nil
	}
	if !m.report(m.grid.OpenEditor(item.Row, c.Name)) {
		return nil
	}
	return m.syncEditor()
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.mode = modeNav
		m.filter.Blur()
		return nil
	case "enter":
		m.mode = modeNav
		m.filter.Blur()
		c, ok := m.column(m.grid.View())
		if !ok {
			return nil
		}
		pred, err := parseFilter(c.Name, m.filter.Value())
		if err != nil {
			m.report(err)
			return nil
		}
		if m.report(m.grid.SetFilter([]grid.Predicate{pred})) {
			m.setMessage(fmt.Sprintf("filtered on %s %s %v", pred.Field, pred.Op, pred.Value), MsgInfo)
		}
		m.clamp()
		return nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return cmd
}

// parseFilter reads "[op] value" typed for a column.
func parseFilter(column, input string) (grid.Predicate, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return grid.Predicate{}, errors.New("empty filter")
	}
	op, value := grid.OpEq, input
	if fields := strings.SplitN(input, " ", 2); len(fields) == 2 {
		if parsed, err := grid.ParseOperator(fields[0]); err == nil {
			op, value = parsed, strings.TrimSpace(fields[1])
		}
	}
	return grid.Predicate{Field: column, Op: op, Value: value}, nil
}

func (m *Model) filterByCell(v *grid.View) {
	item, ok := m.item(v)
	if !ok {
		return
	}
	for _, cell := range item.Cells {
		if cell.Column != v.Columns[m.col].Name {
			continue
		}
		pred := grid.Predicate{Field: cell.Column, Op: grid.OpEq, Value: cell.Value}
		if m.report(m.grid.SetFilter([]grid.Predicate{pred})) {
			m.setMessage(fmt.Sprintf("filtered on %s == %v", cell.Column, cell.Value), MsgInfo)
		}
		return
	}
}

func (m *Model) resizeColumn(v *grid.View, delta int) {
	c, ok := m.column(v)
	if !ok {
		return
	}
	m.report(m.grid.SetColumnWidth(c.Name, c.Width+delta))
}

func (m *Model) moveColumn(v *grid.View, step int) {
	target := m.col + step
	if target < 0 || target >= len(v.Columns) {
		return
	}
	name := v.Columns[m.col].Name
	if m.report(m.grid.MoveColumn(name, v.Columns[target].Name, step > 0)) {
		for i, c := range m.grid.View().Columns {
			if c.Name == name {
				m.col = i
			}
		}
	}
}

func (m *Model) moveRow(v *grid.View, step int) {
	item, ok := m.item(v)
	if !ok {
		return
	}
	next := m.stepRow(v, step)
	if next == m.cursor {
		return
	}
	from, to := item.Row, v.Items[next].Row
	if !m.report(m.grid.MoveRow(from, to)) {
		return
	}
	for i, it := range m.grid.View().Items {
		if it.Kind == grid.ItemRow && it.Row == to {
			m.cursor = i
		}
	}
}

func (m *Model) save() {
	if m.backend == nil {
		m.setMessage("no source to save to", MsgError)
		return
	}
	n, err := m.backend.Save(m.ctx, m.grid)
	if !m.report(err) {
		return
	}
	if n == 0 {
		m.setMessage("nothing to save", MsgInfo)
		return
	}
	m.logger.Debug("saved cells", "count", n)
	m.setMessage(fmt.Sprintf("saved %d cells", n), MsgSuccess)
}

func (m *Model) reload() {
	if m.backend == nil {
		return
	}
	if m.report(m.backend.Reload(m.ctx, m.grid)) {
		m.setMessage("reloaded", MsgSuccess)
	}
}

// report shows err in the status bar and reports whether it was nil.
func (m *Model) report(err error) bool {
	if err == nil {
		return true
	}
	m.logger.Debug("grid operation failed", "error", err)
	m.setMessage(err.Error(), MsgError)
	return false
}

func (m *Model) setMessage(msg string, t MessageType) {
	m.message = msg
	m.messageType = t
}

// item returns the row item under the cursor.
func (m *Model) item(v *grid.View) (grid.ItemView, bool) {
	if m.cursor < 0 || m.cursor >= len(v.Items) || v.Items[m.cursor].Kind != grid.ItemRow {
		return grid.ItemView{}, false
	}
	return v.Items[m.cursor], true
}

func (m *Model) column(v *grid.View) (grid.ColumnView, bool) {
	if m.col < 0 || m.col >= len(v.Columns) {
		return grid.ColumnView{}, false
	}
	return v.Columns[m.col], true
}

func (m *Model) firstRow(v *grid.View) int {
	for i, item := range v.Items {
		if item.Kind == grid.ItemRow {
			return i
		}
	}
	return 0
}

// stepRow returns the index of the next row item in direction step, or the
// cursor when there is none.
func (m *Model) stepRow(v *grid.View, step int) int {
	for i := m.cursor + step; i >= 0 && i < len(v.Items); i += step {
		if v.Items[i].Kind == grid.ItemRow {
			return i
		}
	}
	return m.cursor
}

// clamp keeps the cursor on a row item and within the view after the item
// list or column set changed.
func (m *Model) clamp() {
	v := m.grid.View()
	if m.col >= len(v.Columns) {
		m.col = len(v.Columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if m.cursor >= len(v.Items) {
		m.cursor = len(v.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if _, ok := m.item(v); !ok {
		if next := m.stepRow(v, 1); next != m.cursor {
			m.cursor = next
		} else {
			m.cursor = m.stepRow(v, -1)
		}
	}
}

// Quitting reports whether the browser asked to exit.
func (m *Model) Quitting() bool { return m.quitting }

// Run starts the browser on the terminal and blocks until it quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func draftText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
