package table

import "github.com/leapstack-labs/leapgrid/pkg/grid"

// SessionName is the cookie that maps a browser to its grid instance.
const SessionName = "leapgrid"

const sessionKey = "grid"

// Signals is the datastar signal set posted by every grid action. The
// pointer script posts the same shape for drags and viewport changes.
type Signals struct {
	Column string  `json:"column"`
	Row    int     `json:"row"`
	Op     string  `json:"op"`
	Value  string  `json:"value"`
	Draft  *string `json:"draft"`
	Key    string  `json:"key"`
	Width  int     `json:"width"`
	Kind   string  `json:"kind"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Rect   *Rect   `json:"rect"`
}

// Rect is a client bounding box in px.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r *Rect) toGrid() grid.Rect {
	if r == nil {
		return grid.Rect{}
	}
	return grid.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}
