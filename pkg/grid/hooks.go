package grid

// Hooks is the optional handler table of a grid. Every field may be nil.
// Handlers run synchronously after the mutation that raised them completes.
type Hooks struct {
	// Click is raised by Grid.Click for a cell.
	Click func(row int, column string)
	// BeforeClose may veto closing the editor by returning false.
	BeforeClose func(EditState) bool
	// CellChanged is raised after an edit commits.
	CellChanged func(CellChange)
	// RowMoved is raised after a row is relocated.
	RowMoved func(from, to int)
	// ColumnMoved is raised after a column is relocated.
	ColumnMoved func(column string, position int)
	// Sorted is raised after an explicit sort.
	Sorted func(SortState)
	// Render is raised once per mutation that needs a repaint.
	Render func()
}
