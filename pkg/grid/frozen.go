package grid

// StickyOffset is the sticky position of a frozen column.
type StickyOffset struct {
	Side   FrozenSide
	Offset int
	// Last is set on the last visible frozen column of its side.
	Last bool
}

// FrozenOffsets computes sticky offsets for every visible frozen column.
//
// Left offsets start at the reserved gutter width and accumulate the width
// plus margin of every visible column before the target. Right offsets start
// at zero and walk the order backwards. Hidden and unfrozen columns get no
// entry.
func FrozenOffsets(order []string, widths map[string]int, lookup *Lookup, reserved, margin int) map[string]StickyOffset {
	out := make(map[string]StickyOffset)

	totalLeft, totalRight := 0, 0
	for _, name := range order {
		if !lookup.Visible[name] {
			continue
		}
		switch lookup.Frozen[name] {
		case FrozenLeft:
			totalLeft++
		case FrozenRight:
			totalRight++
		}
	}

	offset, seen := reserved, 0
	for _, name := range order {
		if !lookup.Visible[name] {
			continue
		}
		if lookup.Frozen[name] == FrozenLeft {
			seen++
			out[name] = StickyOffset{Side: FrozenLeft, Offset: offset, Last: seen == totalLeft}
		}
		offset += widths[name] + margin
	}

	offset, seen = 0, 0
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if !lookup.Visible[name] {
			continue
		}
		if lookup.Frozen[name] == FrozenRight {
			seen++
			out[name] = StickyOffset{Side: FrozenRight, Offset: offset, Last: seen == totalRight}
		}
		offset += widths[name] + margin
	}
	return out
}
