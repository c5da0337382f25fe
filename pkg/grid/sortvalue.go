package grid

import (
	"strconv"
	"strings"
	"time"
)

// SortValue extracts the comparable value of col in row.
//
// A column's SortValue function is used verbatim. Otherwise text columns
// compare as lowercase strings, number columns as float64 after stripping
// currency punctuation and date columns as YYYYMMDD integers (datetime adds
// HHMMSS). Values that cannot be parsed yield nil, which sorts lowest.
func SortValue(col *Column, row Row) any {
	v := row[col.Name]
	if col.SortValue != nil {
		return col.SortValue(v, row)
	}
	switch col.Type {
	case TypeNumber:
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil
	case TypeDate, TypeDateTime:
		if k, ok := dateKey(v, col.Type == TypeDateTime); ok {
			return k
		}
		return nil
	default:
		if v == nil {
			return nil
		}
		return strings.ToLower(formatText(v, row))
	}
}

// dateKey re-serializes a date as digits in year-month-day(-time) order.
func dateKey(v any, withTime bool) (int64, bool) {
	t, ok := toTime(v)
	if !ok {
		return 0, false
	}
	k := int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())
	if withTime {
		k = k*1000000 + int64(t.Hour())*10000 + int64(t.Minute())*100 + int64(t.Second())
	}
	return k, true
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		return parseDate(x)
	case []byte:
		return parseDate(string(x))
	default:
		return time.Time{}, false
	}
}

// parseDate accepts "YYYY-MM-DD[...]" and "M/D/YYYY[...]", optionally
// followed by a time of day "HH:MM[:SS]" separated by a space or "T".
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	datePart, rest := s, ""
	if i := strings.IndexAny(s, " T"); i >= 0 {
		datePart, rest = s[:i], s[i+1:]
	}

	var y, m, d int
	var ok bool
	switch {
	case strings.Count(datePart, "-") == 2:
		p := strings.Split(datePart, "-")
		if len(p[0]) != 4 {
			return time.Time{}, false
		}
		y, m, d, ok = atoi3(p[0], p[1], p[2])
	case strings.Count(datePart, "/") == 2:
		p := strings.Split(datePart, "/")
		if len(p[2]) != 4 {
			return time.Time{}, false
		}
		y, m, d, ok = atoi3(p[2], p[0], p[1])
	}
	if !ok || m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}

	hh, mm, ss := parseClock(rest)
	return time.Date(y, time.Month(m), d, hh, mm, ss, 0, time.UTC), true
}

func atoi3(a, b, c string) (int, int, int, bool) {
	x, err1 := strconv.Atoi(a)
	y, err2 := strconv.Atoi(b)
	z, err3 := strconv.Atoi(c)
	return x, y, z, err1 == nil && err2 == nil && err3 == nil
}

// parseClock reads a leading "HH:MM[:SS]"; anything unreadable is midnight.
func parseClock(s string) (int, int, int) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".Z+ "); i >= 0 {
		s = s[:i]
	}
	p := strings.Split(s, ":")
	if len(p) < 2 {
		return 0, 0, 0
	}
	h, err1 := strconv.Atoi(p[0])
	m, err2 := strconv.Atoi(p[1])
	if err1 != nil || err2 != nil || h > 23 || m > 59 {
		return 0, 0, 0
	}
	sec := 0
	if len(p) > 2 {
		if v, err := strconv.Atoi(p[2]); err == nil && v < 60 {
			sec = v
		}
	}
	return h, m, sec
}

// compareSortValues orders two extracted values. nil sorts lowest, numbers
// sort before text, and mismatched kinds fall back to their text form.
func compareSortValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	fa, aNum := numericValue(a)
	fb, bNum := numericValue(b)
	switch {
	case aNum && bNum:
		return cmpOrdered(fa, fb)
	case aNum:
		return -1
	case bNum:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(formatText(a, nil), formatText(b, nil))
}

// numericValue accepts Go number types only; numeric text is not a number here.
func numericValue(v any) (float64, bool) {
	switch v.(type) {
	case string, []byte:
		return 0, false
	}
	return toFloat(v)
}

func cmpOrdered[T int | int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
