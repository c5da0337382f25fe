package grid

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultColumnWidth is the declared width given to columns that do not set one.
const DefaultColumnWidth = 100

// Row is a single record: column name to opaque value.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ColumnType is the declared value type of a column.
type ColumnType string

// Column types.
const (
	TypeText     ColumnType = "text"
	TypeNumber   ColumnType = "number"
	TypeDate     ColumnType = "date"
	TypeDateTime ColumnType = "datetime"
	TypeDropdown ColumnType = "dropdown"
	TypeCustom   ColumnType = "custom-function"
)

// ParseColumnType parses a column type name. "string" is accepted for text.
func ParseColumnType(s string) (ColumnType, error) {
	switch t := ColumnType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", "string":
		return TypeText, nil
	case TypeText, TypeNumber, TypeDate, TypeDateTime, TypeDropdown, TypeCustom:
		return t, nil
	default:
		return "", fmt.Errorf("unknown column type %q", s)
	}
}

// Align is the horizontal alignment of a column's cells.
type Align string

// Alignments.
const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// ParseAlign parses an alignment name. The empty string yields "".
func ParseAlign(s string) (Align, error) {
	switch a := Align(strings.ToLower(strings.TrimSpace(s))); a {
	case "", AlignLeft, AlignRight, AlignCenter:
		return a, nil
	default:
		return "", fmt.Errorf("unknown alignment %q", s)
	}
}

// FrozenSide is the edge a column is pinned to during horizontal scroll.
type FrozenSide string

// Frozen sides. The zero value is FrozenNone.
const (
	FrozenNone  FrozenSide = ""
	FrozenLeft  FrozenSide = "left"
	FrozenRight FrozenSide = "right"
)

// ParseFrozenSide parses "none", "left" or "right".
func ParseFrozenSide(s string) (FrozenSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "false":
		return FrozenNone, nil
	case "left", "true":
		return FrozenLeft, nil
	case "right":
		return FrozenRight, nil
	default:
		return FrozenNone, fmt.Errorf("unknown frozen side %q", s)
	}
}

// Row-aware column callbacks.
type (
	// EditableFunc decides per row whether a column's cell can be edited.
	EditableFunc func(row Row, id int) bool
	// FormatFunc renders a cell value for display.
	FormatFunc func(value any, row Row) string
	// ClassFunc returns extra CSS classes for a cell.
	ClassFunc func(value any, row Row) string
	// SortValueFunc extracts the comparable value of a cell.
	SortValueFunc func(value any, row Row) any
)

// Format is either a builtin format tag or a custom formatting function.
// Construct it with BuiltinFormat or CustomFormat.
type Format struct {
	tag string
	fn  FormatFunc
}

// BuiltinFormat selects one of the builtin formats by tag.
func BuiltinFormat(tag string) Format { return Format{tag: tag} }

// CustomFormat formats cells with fn.
func CustomFormat(fn FormatFunc) Format { return Format{fn: fn} }

// IsZero reports whether no format was chosen.
func (f Format) IsZero() bool { return f.tag == "" && f.fn == nil }

// IsCustom reports whether f wraps a formatting function.
func (f Format) IsCustom() bool { return f.fn != nil }

// Tag returns the builtin tag, or "custom" for function formats.
func (f Format) Tag() string {
	if f.fn != nil {
		return "custom"
	}
	return f.tag
}

// Column describes one column of the grid.
type Column struct {
	Name  string
	Label string
	// Width is the declared width in px. For flexible columns it is a weight.
	Width int
	Align Align
	// Fixed columns are exempt from flexible redistribution.
	Fixed  bool
	Hidden bool
	Type   ColumnType

	Editable     bool
	EditableFunc EditableFunc // consulted only when Editable is set

	Frozen FrozenSide
	Format Format

	Classes   string
	ClassFunc ClassFunc

	MinLength int
	MaxLength int

	SortValue SortValueFunc
	// Options lists the allowed values of a dropdown column.
	Options []string

	formatter FormatFunc
}

// Visible reports whether the column is displayed.
func (c *Column) Visible() bool { return !c.Hidden }

// EditableAt reports whether the column's cell in row can be edited.
func (c *Column) EditableAt(row Row, id int) bool {
	if !c.Editable {
		return false
	}
	if c.EditableFunc == nil {
		return true
	}
	return c.EditableFunc(row, id)
}

// FormatValue renders value with the column's resolved format.
func (c *Column) FormatValue(value any, row Row) string {
	if c.formatter == nil {
		return formatText(value, row)
	}
	return c.formatter(value, row)
}

// normalizeColumn fills defaults and resolves the format variant once.
func normalizeColumn(c Column) (Column, error) {
	if strings.TrimSpace(c.Name) == "" {
		return c, configErrorf("columns", "column name is required")
	}
	field := "columns." + c.Name

	if c.Label == "" {
		c.Label = c.Name
	}
	switch {
	case c.Width < 0:
		return c, configErrorf(field, "width must not be negative (got %d)", c.Width)
	case c.Width == 0:
		c.Width = DefaultColumnWidth
	}

	t, err := ParseColumnType(string(c.Type))
	if err != nil {
		return c, configErrorf(field, "%v", err)
	}
	c.Type = t

	a, err := ParseAlign(string(c.Align))
	if err != nil {
		return c, configErrorf(field, "%v", err)
	}
	if a == "" {
		a = AlignLeft
		if c.Type == TypeNumber {
			a = AlignRight
		}
	}
	c.Align = a

	switch c.Frozen {
	case FrozenNone, FrozenLeft, FrozenRight:
	default:
		return c, configErrorf(field, "unknown frozen side %q", c.Frozen)
	}

	if c.MinLength < 0 || c.MaxLength < 0 {
		return c, configErrorf(field, "length limits must not be negative")
	}
	if c.MaxLength > 0 && c.MinLength > c.MaxLength {
		return c, configErrorf(field, "min length %d exceeds max length %d", c.MinLength, c.MaxLength)
	}

	if c.Type == TypeCustom && !c.Format.IsCustom() {
		return c, configErrorf(field, "custom-function column requires a custom format")
	}
	if c.Format.IsZero() {
		c.Format = BuiltinFormat(defaultFormatTag(c.Type))
	}
	if c.Format.IsCustom() {
		c.formatter = c.Format.fn
	} else {
		fn, ok := builtinFormatter(c.Format.tag)
		if !ok {
			return c, configErrorf(field, "unknown format %q", c.Format.tag)
		}
		c.formatter = fn
	}

	c.Options = slices.Clone(c.Options)
	return c, nil
}

func defaultFormatTag(t ColumnType) string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	default:
		return "text"
	}
}

// CoerceInput converts text typed into an editor to the column's value type.
// Number columns yield int or float64 when the text parses; everything else
// stays a string.
func (c *Column) CoerceInput(s string) any {
	if c.Type != TypeNumber {
		return s
	}
	t := strings.TrimSpace(s)
	if i, err := strconv.Atoi(t); err == nil {
		return i
	}
	if f, ok := parseNumber(t); ok {
		return f
	}
	return s
}

// validateDraft checks length limits and dropdown membership.
func (c *Column) validateDraft(v any) error {
	if c.MinLength == 0 && c.MaxLength == 0 && (c.Type != TypeDropdown || len(c.Options) == 0) {
		return nil
	}
	s := formatText(v, nil)
	n := len([]rune(s))
	if c.MinLength > 0 && n < c.MinLength {
		return &ValidationError{Column: c.Name, Value: v, Reason: fmt.Sprintf("shorter than %d characters", c.MinLength)}
	}
	if c.MaxLength > 0 && n > c.MaxLength {
		return &ValidationError{Column: c.Name, Value: v, Reason: fmt.Sprintf("longer than %d characters", c.MaxLength)}
	}
	if c.Type == TypeDropdown && len(c.Options) > 0 && !slices.Contains(c.Options, s) {
		return &ValidationError{Column: c.Name, Value: v, Reason: "not one of the dropdown options"}
	}
	return nil
}
