package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/source"
)

// Validate checks if the configuration is valid. A missing source type is
// allowed when the schema file carries inline rows.
func (c *Config) Validate() error {
	var errs []error

	if c.UI.Port < 0 || c.UI.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port %d is out of range", c.UI.Port))
	}
	if c.Layout.Width < 0 {
		errs = append(errs, fmt.Errorf("layout.width must not be negative"))
	}
	for name, v := range map[string]int{
		"layout.row_reorder_gutter":  c.Layout.RowReorderGutter,
		"layout.multi_select_gutter": c.Layout.MultiSelectGutter,
		"layout.column_margin":       c.Layout.ColumnMargin,
		"layout.min_column_width":    c.Layout.MinColumnWidth,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Output {
	case "", DefaultOutput, "text", "table", "markdown", "md", "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("invalid output %q (want auto, table, markdown, json or csv)", c.Output))
	}
	if t := c.Source.Type; t != "" && !source.IsRegistered(t) {
		errs = append(errs, &source.UnknownSourceError{Type: t, Available: source.List()})
	}

	return errors.Join(errs...)
}
