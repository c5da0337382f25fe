// Package components renders grid markup for the browser UI.
package components

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/leapgrid/internal/ui/resources"
	"github.com/leapstack-labs/leapgrid/internal/ui/workspace"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// DatastarScript is the client runtime the markup's data-* attributes target.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Element ids patched by the updates stream.
const (
	GridID    = "grid"
	ToolbarID = "grid-toolbar"
)

// initialSignals are the client signals every action posts back.
const initialSignals = `{"column":"","row":-1,"op":"==","value":"","draft":"","key":""}`

// Page renders the full document for one grid instance.
func Page(title string, isDev bool, snap workspace.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		h.raw("<title>")
		h.text(title)
		h.raw(" - LeapGrid</title>")
		h.raw("<link rel=\"stylesheet\"")
		h.attr("href", resources.StaticPath("grid.css"))
		h.raw("><script type=\"module\"")
		h.attr("src", DatastarScript)
		h.raw("></script><script defer")
		h.attr("src", resources.StaticPath("grid.js"))
		h.raw("></script></head><body")
		h.attr("data-signals", initialSignals)
		h.raw(">")
		if h.err != nil {
			return h.err
		}
		if err := Toolbar(snap).Render(ctx, w); err != nil {
			return err
		}
		h.raw("<main")
		h.attr("data-init", "@get('/grid/updates')")
		if isDev {
			h.attr("data-dev", "true")
		}
		h.raw(">")
		if h.err != nil {
			return h.err
		}
		if err := Grid(snap).Render(ctx, w); err != nil {
			return err
		}
		h.raw("</main></body></html>\n")
		return h.err
	})
}

// Toolbar renders the filter form, column toggles, save state and status.
func Toolbar(snap workspace.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<div class=\"lg-toolbar\"")
		h.attr("id", ToolbarID)
		h.raw(">")

		h.raw("<select data-bind:column aria-label=\"Filter column\"><option value=\"\">column</option>")
		for _, c := range snap.Columns {
			h.raw("<option")
			h.attr("value", c.Name)
			h.raw(">")
			h.text(labelOf(c.Label, c.Name))
			h.raw("</option>")
		}
		h.raw("</select><select data-bind:op aria-label=\"Operator\">")
		for _, op := range []grid.Operator{grid.OpEq, grid.OpNe, grid.OpLt, grid.OpGt, grid.OpLe, grid.OpGe} {
			h.raw("<option")
			h.attr("value", string(op))
			h.raw(">")
			h.text(string(op))
			h.raw("</option>")
		}
		h.raw("</select><input type=\"text\" data-bind:value placeholder=\"value\" aria-label=\"Filter value\">")
		h.button("Filter", "@post('/api/grid/filter')", false)
		h.button("Clear", "@post('/api/grid/filter/clear')", !snap.View.Filtering)

		h.raw("<details class=\"lg-columns\"><summary>Columns</summary>")
		for _, c := range snap.Columns {
			action := "/api/grid/columns/hide"
			if c.Hidden {
				action = "/api/grid/columns/show"
			}
			h.raw("<label><input type=\"checkbox\"")
			if !c.Hidden {
				h.raw(" checked")
			}
			h.attr("data-on:change", fmt.Sprintf("$column = %s; @post('%s')", jsString(c.Name), action))
			h.raw(">")
			h.text(labelOf(c.Label, c.Name))
			h.raw("</label>")
		}
		h.raw("</details>")

		h.button(fmt.Sprintf("Save (%d)", snap.Changes), "@post('/api/grid/save')", snap.Changes == 0)
		h.button("Reload", "@post('/api/grid/reload')", false)

		h.raw("<span class=\"lg-status\">")
		h.text(fmt.Sprintf("%d of %d rows", snap.View.VisibleCount, snap.View.RowCount))
		if snap.Status != "" {
			h.raw(" &middot; ")
			h.text(snap.Status)
		}
		h.raw("</span></div>")
		return h.err
	})
}

// Grid renders the table for a view snapshot.
func Grid(snap workspace.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		v := snap.View
		h := &htmlWriter{w: w}
		h.raw("<div")
		h.attr("id", GridID)
		h.attr("data-revision", strconv.FormatUint(v.Revision, 10))
		h.raw("><table class=\"lg-table\"")
		h.attr("style", fmt.Sprintf("width:%dpx", v.Total+v.Reserved))
		h.raw("><colgroup>")
		if v.Reserved > 0 {
			h.raw("<col")
			h.attr("style", fmt.Sprintf("width:%dpx", v.Reserved))
			h.raw(">")
		}
		for _, c := range v.Columns {
			h.raw("<col")
			h.attr("style", fmt.Sprintf("width:%dpx", c.Width))
			h.raw(">")
		}
		h.raw("</colgroup><thead><tr>")
		if v.Reserved > 0 {
			h.raw("<th class=\"lg-gutter-head lg-frozen\" style=\"left:0px\"></th>")
		}
		for _, c := range v.Columns {
			h.header(c)
		}
		h.raw("</tr></thead><tbody>")

		span := len(v.Columns)
		if v.Reserved > 0 {
			span++
		}
		for _, item := range v.Items {
			switch item.Kind {
			case grid.ItemGroupHeader, grid.ItemGroupFooter:
				class := "lg-group-header"
				if item.Kind == grid.ItemGroupFooter {
					class = "lg-group-footer"
				}
				h.raw("<tr")
				h.attr("class", class)
				h.attr("data-level", strconv.Itoa(item.Level))
				h.raw("><td")
				h.attr("colspan", strconv.Itoa(span))
				h.attr("style", fmt.Sprintf("padding-left:%dpx", 8+16*item.Level))
				h.raw(">")
				h.text(item.Text)
				h.raw("</td></tr>")
			default:
				h.row(v, item)
			}
		}
		h.raw("</tbody></table></div>")
		return h.err
	})
}

func (h *htmlWriter) header(c grid.ColumnView) {
	classes := []string{"lg-col"}
	classes = append(classes, placement(c.Frozen, c.Divider, c.Align)...)
	if c.Sorted {
		classes = append(classes, "lg-sorted")
	}

	h.raw("<th")
	h.attr("data-column", c.Name)
	h.attr("class", strings.Join(classes, " "))
	h.attr("style", cellStyle(c))
	h.attr("data-on:click", fmt.Sprintf("if (!evt.target.closest('[data-drag]')) { $column = %s; @post('/api/grid/sort') }", jsString(c.Name)))
	h.raw("><span class=\"lg-grip\" data-drag=\"move-column\"")
	h.attr("data-column", c.Name)
	h.raw(">&#8942;</span><span class=\"lg-label\">")
	h.text(labelOf(c.Label, c.Name))
	h.raw("</span>")
	if c.Sorted {
		h.raw("<span class=\"lg-sort\">")
		if c.Direction == grid.Descending {
			h.raw("&#9660;")
		} else {
			h.raw("&#9650;")
		}
		h.raw("</span>")
	}
	h.raw("<span class=\"lg-resize\" data-drag=\"resize\"")
	h.attr("data-column", c.Name)
	h.raw("></span></th>")
}

func (h *htmlWriter) row(v *grid.View, item grid.ItemView) {
	id := strconv.Itoa(item.Row)
	h.raw("<tr")
	h.attr("data-row", id)
	h.raw(">")
	if v.Reserved > 0 {
		h.raw("<td class=\"lg-frozen\" style=\"left:0px\">")
		if v.RowReorder {
			h.raw("<span class=\"lg-gutter\" data-drag=\"move-row\"")
			h.attr("data-row", id)
			h.raw(">&#8801;</span>")
		}
		h.raw("</td>")
	}

	for i, cell := range item.Cells {
		c := v.Columns[i]
		classes := placement(c.Frozen, c.Divider, c.Align)
		if cell.Classes != "" {
			classes = append(classes, cell.Classes)
		}
		if cell.Changed {
			classes = append(classes, "lg-changed")
		}
		if cell.Editable {
			classes = append(classes, "lg-editable")
		}
		if cell.Editing {
			classes = append(classes, "lg-editing")
		}

		h.raw("<td")
		h.attr("data-column", cell.Column)
		if len(classes) > 0 {
			h.attr("class", strings.Join(classes, " "))
		}
		if style := offsetStyle(c); style != "" {
			h.attr("style", style)
		}
		if !cell.Editing {
			h.attr("data-on:click", fmt.Sprintf("$row = %s; $column = %s; @post('/api/grid/click')", id, jsString(cell.Column)))
		}
		h.raw(">")
		if cell.Editing {
			h.editor(v.Edit, c)
		} else {
			h.text(cell.Text)
		}
		h.raw("</td>")
	}
	h.raw("</tr>")
}

// editor renders the input bound to the draft signal. Navigation keys post
// the pressed key together with the cell the editor belongs to, so a stale
// blur from a replaced input cannot close the next editor.
func (h *htmlWriter) editor(st grid.EditState, c grid.ColumnView) {
	draft := ""
	if st.Value != nil {
		draft = fmt.Sprint(st.Value)
	}
	target := fmt.Sprintf("$row = %d; $column = %s", st.Row, jsString(st.Column))

	if len(c.Options) > 0 {
		h.raw("<select data-bind:draft")
		h.attr("data-signals:draft", jsString(draft))
		h.attr("data-on:change", target+"; $key = 'enter'; @post('/api/grid/edit/key')")
		h.attr("data-on:keydown", target+"; if (evt.key === 'Escape') { @post('/api/grid/edit/cancel') }")
		h.raw(" data-init=\"el.focus()\">")
		for _, opt := range c.Options {
			h.raw("<option")
			h.attr("value", opt)
			if opt == draft {
				h.raw(" selected")
			}
			h.raw(">")
			h.text(opt)
			h.raw("</option>")
		}
		h.raw("</select>")
		return
	}

	inputType := "text"
	if c.Type == grid.TypeNumber {
		inputType = "number"
	}
	h.raw("<input data-bind:draft")
	h.attr("type", inputType)
	h.attr("value", draft)
	h.attr("data-signals:draft", jsString(draft))
	h.attr("data-on:keydown", "if (['Tab', 'Enter', 'Escape', 'ArrowUp', 'ArrowDown'].includes(evt.key)) { evt.preventDefault(); "+
		target+"; $key = evt.key === 'Tab' && evt.shiftKey ? 'shift+tab' : evt.key; @post('/api/grid/edit/key') }")
	h.attr("data-on:blur", target+"; @post('/api/grid/edit/blur')")
	h.raw(" data-init=\"el.focus()\">")
}

// placement returns the classes that pin and align a column.
func placement(frozen grid.FrozenSide, divider bool, align grid.Align) []string {
	var classes []string
	if frozen != grid.FrozenNone {
		classes = append(classes, "lg-frozen")
		if divider {
			classes = append(classes, "lg-divider-"+string(frozen))
		}
	}
	switch align {
	case grid.AlignRight:
		classes = append(classes, "lg-align-right")
	case grid.AlignCenter:
		classes = append(classes, "lg-align-center")
	}
	return classes
}

func cellStyle(c grid.ColumnView) string {
	style := fmt.Sprintf("width:%dpx", c.Width)
	if off := offsetStyle(c); off != "" {
		style += ";" + off
	}
	return style
}

// offsetStyle is the sticky offset of a frozen column.
func offsetStyle(c grid.ColumnView) string {
	switch c.Frozen {
	case grid.FrozenLeft:
		return fmt.Sprintf("left:%dpx", c.Offset)
	case grid.FrozenRight:
		return fmt.Sprintf("right:%dpx", c.Offset)
	}
	return ""
}

func labelOf(label, name string) string {
	if label != "" {
		return label
	}
	return name
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// htmlWriter writes markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) { h.raw(templ.EscapeString(s)) }

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + "=\"" + templ.EscapeString(value) + "\"")
}

func (h *htmlWriter) button(label, action string, disabled bool) {
	h.raw("<button type=\"button\"")
	h.attr("data-on:click", action)
	if disabled {
		h.raw(" disabled")
	}
	h.raw(">")
	h.text(label)
	h.raw("</button>")
}
