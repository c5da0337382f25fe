// Package grid is the layout, ordering and interaction engine of the LeapGrid
// data grid.
//
// This package contains:
//   - The column model and its lookup table (Column, Lookup)
//   - The layout calculator and frozen-column positioning (ComputeLayout, FrozenOffsets)
//   - The row data and cell metadata store (Store)
//   - The sort/group engine and the filter engine
//   - The inline-edit navigation state machine and the drag controller
//   - The render snapshot handed to markup renderers (View)
//
// A Grid is not safe for concurrent use. Every mutation runs to completion on
// the caller's goroutine and renderers are notified afterwards through the
// Render hook; callers serving several goroutines serialize access themselves.
//
// The Golden Rule: pkg/grid imports ONLY stdlib and golang.org/x/text.
// Sources, renderers and the CLI depend on grid, not the reverse.
package grid
