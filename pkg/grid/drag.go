package grid

import (
	"fmt"
	"strings"
)

// DragKind identifies the drag interaction in progress.
type DragKind int

// Drag kinds.
const (
	DragNone DragKind = iota
	DragResize
	DragMoveColumn
	DragMoveRow
)

func (k DragKind) String() string {
	switch k {
	case DragResize:
		return "resize"
	case DragMoveColumn:
		return "move_column"
	case DragMoveRow:
		return "move_row"
	default:
		return "none"
	}
}

// ParseDragKind parses "resize", "move_column" or "move_row".
func ParseDragKind(s string) (DragKind, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "resize":
		return DragResize, nil
	case "move_column", "column":
		return DragMoveColumn, nil
	case "move_row", "row":
		return DragMoveRow, nil
	default:
		return DragNone, fmt.Errorf("unknown drag kind %q", s)
	}
}

// Rect is a bounding box in px.
type Rect struct {
	X, Y          int
	Width, Height int
}

// DropAfter applies the 1/3 to 2/3 split: a pointer in the leading third of
// r drops before it, anywhere else drops after. vertical selects the y axis.
func DropAfter(r Rect, x, y int, vertical bool) bool {
	if vertical {
		return 3*(y-r.Y) >= r.Height
	}
	return 3*(x-r.X) >= r.Width
}

// DragStart begins a drag. Column names the resized or moved column, Row
// the moved row.
type DragStart struct {
	Kind   DragKind
	Column string
	Row    int
	X, Y   int
}

// DragDrop ends a drag at a pointer position. For moves, Column or Row is
// the hovered target and Rect its bounding box.
type DragDrop struct {
	X, Y   int
	Column string
	Row    int
	Rect   Rect
}

// DragState is the single transient drag slot.
type DragState struct {
	Started bool
	Kind    DragKind
	Column  string
	Row     int
	StartX  int
	StartY  int
	// StartWidth is the column width when a resize began.
	StartWidth int
	// Separator is the pointer coordinate the separator handle follows:
	// x for resize and column moves, y for row moves.
	Separator int
}

// DragState returns the drag slot.
func (g *Grid) DragState() DragState { return g.drag }

// BeginDrag starts a drag. A drag already in progress is dropped without
// being applied.
func (g *Grid) BeginDrag(s DragStart) error {
	g.drag = DragState{}

	st := DragState{Started: true, Kind: s.Kind, Column: s.Column, Row: s.Row, StartX: s.X, StartY: s.Y}
	switch s.Kind {
	case DragResize, DragMoveColumn:
		if !g.cols.has(s.Column) {
			return &CellError{Op: "begin drag", Row: -1, Column: s.Column, Err: ErrUnknownColumn}
		}
		if l, ok := g.layout.Column(s.Column); ok {
			st.StartWidth = l.Width
		}
		st.Separator = s.X
	case DragMoveRow:
		if err := g.store.check("begin drag", "", s.Row); err != nil {
			return err
		}
		st.Separator = s.Y
	default:
		return configErrorf("drag.kind", "cannot begin a %s drag", s.Kind)
	}
	g.drag = st
	return nil
}

// DragMove moves the separator handle with the pointer.
func (g *Grid) DragMove(x, y int) {
	if !g.drag.Started {
		return
	}
	if g.drag.Kind == DragMoveRow {
		g.drag.Separator = y
	} else {
		g.drag.Separator = x
	}
}

// EndDrag applies the drag at drop and clears the drag slot. A render is
// always raised, even when the drop is rejected.
func (g *Grid) EndDrag(drop DragDrop) error {
	st := g.drag
	g.drag = DragState{}
	defer g.invalidate()

	if !st.Started {
		return nil
	}
	g.logger.Debug("drag ended", "kind", st.Kind.String(), "column", st.Column, "row", st.Row)

	switch st.Kind {
	case DragResize:
		return g.setColumnWidth(st.Column, st.StartWidth+drop.X-st.StartX)

	case DragMoveColumn:
		if drop.Column == "" || drop.Column == st.Column {
			return nil
		}
		after := DropAfter(drop.Rect, drop.X, drop.Y, false)
		moved, err := g.cols.move(st.Column, drop.Column, after)
		if err != nil || !moved {
			return err
		}
		g.layoutPass(g.userSet)
		if g.hooks.ColumnMoved != nil {
			g.hooks.ColumnMoved(st.Column, g.cols.lookup.Position[st.Column])
		}
		return nil

	case DragMoveRow:
		if err := g.store.check("drop row", "", drop.Row); err != nil {
			return err
		}
		if drop.Row == st.Row {
			return nil
		}
		return g.moveRow(st.Row, rowDestination(st.Row, drop.Row, DropAfter(drop.Rect, drop.X, drop.Y, true)))
	}
	return nil
}

// rowDestination is the final index of from when dropped before or after target.
func rowDestination(from, target int, after bool) int {
	to := target
	if after {
		to++
	}
	if from < to {
		to--
	}
	return to
}
