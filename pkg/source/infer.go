package source

import (
	"strings"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// InferType maps a database type name to a column type.
func InferType(dbType string) grid.ColumnType {
	t := strings.ToUpper(dbType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch strings.TrimSpace(t) {
	case "INT", "INTEGER", "INT2", "INT4", "INT8", "SMALLINT", "BIGINT", "TINYINT", "HUGEINT",
		"UBIGINT", "UINTEGER", "USMALLINT", "UTINYINT",
		"REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "DOUBLE PRECISION", "DECIMAL", "NUMERIC":
		return grid.TypeNumber
	case "DATE":
		return grid.TypeDate
	case "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE":
		return grid.TypeDateTime
	default:
		return grid.TypeText
	}
}

// InferValueType guesses a column type from a sample value.
func InferValueType(v any) grid.ColumnType {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return grid.TypeNumber
	case time.Time:
		return grid.TypeDateTime
	default:
		return grid.TypeText
	}
}

// Columns builds editable column descriptors for inferred names and types.
// The key column, if any, is frozen to the left and not editable.
func Columns(names []string, types []grid.ColumnType, key string) []grid.Column {
	cols := make([]grid.Column, 0, len(names))
	for i, name := range names {
		c := grid.Column{
			Name:     name,
			Label:    labelFor(name),
			Type:     types[i],
			Editable: name != key,
		}
		if name == key {
			c.Frozen = grid.FrozenLeft
			c.Fixed = true
			c.Width = 80
		}
		cols = append(cols, c)
	}
	return cols
}

// labelFor turns snake_case names into spaced labels.
func labelFor(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// normalizeValue turns driver values into grid values.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	default:
		return x
	}
}
