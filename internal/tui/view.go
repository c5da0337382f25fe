package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(output.ColorAccent)
	headerStyle   = lipgloss.NewStyle().Bold(true)
	sortedStyle   = lipgloss.NewStyle().Bold(true).Foreground(output.ColorAccent)
	groupStyle    = lipgloss.NewStyle().Bold(true).Foreground(output.ColorDim)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	changedStyle  = lipgloss.NewStyle().Foreground(output.ColorWarning)
	frozenStyle   = lipgloss.NewStyle().Foreground(output.ColorAccent)
	dimStyle      = lipgloss.NewStyle().Foreground(output.ColorDim)
	errorStyle    = lipgloss.NewStyle().Foreground(output.ColorDanger)
	successStyle  = lipgloss.NewStyle().Foreground(output.ColorAccent)
	separatorChar = "│"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.grid.View()
	cols := m.visibleColumns(v)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.renderHeader(v, cols))
	b.WriteString("\n")

	body := m.bodyHeight()
	m.scrollRows(body)
	end := min(m.rowOffset+body, len(v.Items))
	for i := m.rowOffset; i < end; i++ {
		b.WriteString(m.renderItem(v, cols, i))
		b.WriteString("\n")
	}
	for i := end - m.rowOffset; i < body; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus(v))
	b.WriteString("\n")
	if m.mode == modeFilter {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// bodyHeight is the number of item lines: title, header, status and help
// take the rest.
func (m *Model) bodyHeight() int {
	h := m.height - 4
	if m.help.ShowAll {
		lines := 0
		for _, group := range m.keys.FullHelp() {
			lines = max(lines, len(group))
		}
		h -= lines - 1
	}
	return max(h, 1)
}

func (m *Model) scrollRows(body int) {
	if m.cursor < m.rowOffset {
		m.rowOffset = m.cursor
	}
	if m.cursor >= m.rowOffset+body {
		m.rowOffset = m.cursor - body + 1
	}
}

// cellWidth converts a column's pixel width into terminal cells.
func cellWidth(c grid.ColumnView) int {
	return max(c.Width/pixelsPerCell, 3)
}

// visibleColumns returns the indexes into View.Columns that fit the
// terminal. Frozen columns always show; the others scroll to keep the
// cursor column in sight.
func (m *Model) visibleColumns(v *grid.View) []int {
	var left, right, middle []int
	used := 0
	for i, c := range v.Columns {
		switch c.Frozen {
		case grid.FrozenLeft:
			left = append(left, i)
			used += cellWidth(c) + 1
		case grid.FrozenRight:
			right = append(right, i)
			used += cellWidth(c) + 1
		default:
			middle = append(middle, i)
		}
	}

	fits := func(from int) (int, int) {
		w, last := used, from-1
		for j := from; j < len(middle); j++ {
			w += cellWidth(v.Columns[middle[j]]) + 1
			if w > m.width && j > from {
				break
			}
			last = j
		}
		return from, last
	}

	pos := -1
	for j, i := range middle {
		if i == m.col {
			pos = j
		}
	}
	if pos >= 0 && pos < m.colOffset {
		m.colOffset = pos
	}
	from, last := fits(m.colOffset)
	for pos > last && from < pos {
		from++
		from, last = fits(from)
	}
	m.colOffset = from

	out := append([]int(nil), left...)
	if last >= from {
		out = append(out, middle[from:last+1]...)
	}
	return append(out, right...)
}

func (m *Model) renderHeader(v *grid.View, cols []int) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		c := v.Columns[i]
		text := pad(output.HeaderLabel(c), cellWidth(c), c.Align)
		switch {
		case c.Sorted:
			text = sortedStyle.Render(text)
		case c.Frozen != grid.FrozenNone:
			text = frozenStyle.Render(text)
		default:
			text = headerStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, dimStyle.Render(separatorChar))
}

func (m *Model) renderItem(v *grid.View, cols []int, idx int) string {
	item := v.Items[idx]
	if item.Kind != grid.ItemRow {
		if item.Text == "" {
			return ""
		}
		return groupStyle.Render(strings.Repeat("  ", item.Level) + output.PlainText(item.Text))
	}

	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		c := v.Columns[i]
		cell := item.Cells[i]
		w := cellWidth(c)

		if cell.Editing && m.mode == modeEdit {
			m.editor.Width = max(w-2, 1)
			parts = append(parts, pad(m.editor.View(), w, grid.AlignLeft))
			continue
		}

		text := pad(output.PlainText(cell.Text), w, c.Align)
		switch {
		case idx == m.cursor && i == m.col:
			text = cursorStyle.Render(text)
		case cell.Changed:
			text = changedStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, dimStyle.Render(separatorChar))
}

func (m *Model) renderStatus(v *grid.View) string {
	var parts []string
	if v.Filtering {
		parts = append(parts, fmt.Sprintf("%d of %d rows", v.VisibleCount, v.RowCount))
	} else {
		parts = append(parts, fmt.Sprintf("%d rows", v.RowCount))
	}
	if n := len(m.grid.Changes()); n > 0 {
		parts = append(parts, changedStyle.Render(fmt.Sprintf("%d unsaved", n)))
	}
	if m.mode == modeEdit {
		parts = append(parts, "EDIT")
	}
	if m.message != "" {
		switch m.messageType {
		case MsgError:
			parts = append(parts, errorStyle.Render(m.message))
		case MsgSuccess:
			parts = append(parts, successStyle.Render(m.message))
		default:
			parts = append(parts, m.message)
		}
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

// pad fits s into exactly w cells, truncating with an ellipsis.
func pad(s string, w int, align grid.Align) string {
	n := lipgloss.Width(s)
	if n > w {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
			r = r[:len(r)-1]
		}
		return string(r) + "…"
	}
	gap := strings.Repeat(" ", w-n)
	switch align {
	case grid.AlignRight:
		return gap + s
	case grid.AlignCenter:
		l := (w - n) / 2
		return strings.Repeat(" ", l) + s + strings.Repeat(" ", w-n-l)
	default:
		return s + gap
	}
}
