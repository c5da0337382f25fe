package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// WriteView writes the rows of a grid view in mode. Rows appear in view
// order; filtered-out rows are absent. Group headers and footers are kept
// in text and markdown output and dropped from json and csv.
func WriteView(w io.Writer, v *grid.View, mode Mode) error {
	switch mode {
	case ModeJSON:
		return writeJSON(w, v)
	case ModeCSV:
		return writeCSV(w, v)
	case ModeMarkdown:
		return writeMarkdown(w, v)
	default:
		return writeTable(w, v)
	}
}

// HeaderLabel is the column header with the sort marker of the active sort
// column.
func HeaderLabel(c grid.ColumnView) string {
	label := c.Label
	if label == "" {
		label = c.Name
	}
	if !c.Sorted {
		return label
	}
	if c.Direction == grid.Descending {
		return label + " ▼"
	}
	return label + " ▲"
}

func rowCount(w io.Writer, v *grid.View) {
	if v.Filtering {
		_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", v.VisibleCount, v.RowCount)
		return
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", v.VisibleCount)
}

func writeTable(w io.Writer, v *grid.View) error {
	if v.VisibleCount == 0 {
		rowCount(w, v)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(v.Columns))
	configs := make([]table.ColumnConfig, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = HeaderLabel(c)
		configs[i] = table.ColumnConfig{Number: i + 1, Align: textAlign(c.Align)}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, item := range v.Items {
		if item.Kind != grid.ItemRow {
			row := make(table.Row, len(v.Columns))
			for i := range row {
				row[i] = groupText(item)
			}
			t.AppendRow(row, table.RowConfig{AutoMerge: true})
			continue
		}
		row := make(table.Row, len(item.Cells))
		for i, c := range item.Cells {
			row[i] = PlainText(c.Text)
		}
		t.AppendRow(row)
	}

	t.Render()
	rowCount(w, v)
	return nil
}

func textAlign(a grid.Align) text.Align {
	switch a {
	case grid.AlignRight:
		return text.AlignRight
	case grid.AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignLeft
	}
}

func groupText(item grid.ItemView) string {
	return strings.Repeat("  ", item.Level) + PlainText(item.Text)
}

// writeJSON writes one object per visible row holding the raw values.
func writeJSON(w io.Writer, v *grid.View) error {
	results := make([]map[string]any, 0, v.VisibleCount)
	for _, item := range v.Items {
		if item.Kind != grid.ItemRow {
			continue
		}
		row := make(map[string]any, len(item.Cells))
		for _, c := range item.Cells {
			row[c.Column] = c.Value
		}
		results = append(results, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeCSV(w io.Writer, v *grid.View) error {
	names := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		names[i] = escapeCSV(c.Name)
	}
	_, _ = fmt.Fprintln(w, strings.Join(names, ","))

	for _, item := range v.Items {
		if item.Kind != grid.ItemRow {
			continue
		}
		values := make([]string, len(item.Cells))
		for i, c := range item.Cells {
			values[i] = escapeCSV(formatValue(c.Value))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func writeMarkdown(w io.Writer, v *grid.View) error {
	if v.VisibleCount == 0 {
		rowCount(w, v)
		return nil
	}

	labels := make([]string, len(v.Columns))
	seps := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		labels[i] = escapeMarkdown(HeaderLabel(c))
		switch c.Align {
		case grid.AlignRight:
			seps[i] = "---:"
		case grid.AlignCenter:
			seps[i] = ":---:"
		default:
			seps[i] = "---"
		}
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(labels, " | "))
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, item := range v.Items {
		values := make([]string, len(v.Columns))
		if item.Kind != grid.ItemRow {
			values[0] = "**" + escapeMarkdown(PlainText(item.Text)) + "**"
		} else {
			for i, c := range item.Cells {
				values[i] = escapeMarkdown(PlainText(c.Text))
			}
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
