package grid

import (
	"errors"
	"fmt"
)

// Data-access and edit errors.
var (
	// ErrUnknownColumn is returned when a column name is not part of the column set.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrRowOutOfRange is returned when a row id does not address a loaded row.
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrNotEditable is returned when an editor is requested on a cell that cannot be edited.
	ErrNotEditable = errors.New("cell is not editable")
	// ErrNoEditor is returned by edit operations while no editor is open.
	ErrNoEditor = errors.New("no editor is open")
)

// ConfigError reports an invalid schema or grid option. It is returned by New
// and by the setters that accept schema-like input; the grid is not modified.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "grid config: " + e.Message
	}
	return fmt.Sprintf("grid config: %s: %s", e.Field, e.Message)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CellError wraps a data-access failure with the cell it addressed.
type CellError struct {
	Op     string
	Row    int
	Column string
	Err    error
}

func (e *CellError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s row %d: %v", e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("%s %s[%d]: %v", e.Op, e.Column, e.Row, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// ValidationError is returned when a draft value violates the column's
// constraints. The editor stays open.
type ValidationError struct {
	Column string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Column, e.Reason)
}
