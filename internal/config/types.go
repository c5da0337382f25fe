// Package config loads leapgrid configuration and builds the logger.
//
// Values are layered with koanf: defaults, then leapgrid.yaml, then
// LEAPGRID_ environment variables, then explicitly set command-line flags.
package config

import (
	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"github.com/leapstack-labs/leapgrid/pkg/source"
)

// Config holds all leapgrid configuration.
type Config struct {
	// Schema is the column definition file. Relative paths resolve against
	// the project root.
	Schema    string        `koanf:"schema"`
	Source    source.Config `koanf:"source"`
	Layout    LayoutConfig  `koanf:"layout"`
	UI        UIConfig      `koanf:"ui"`
	LogLevel  string        `koanf:"log_level"`
	LogFormat string        `koanf:"log_format"`
	Verbose   bool          `koanf:"verbose"`
	Output    string        `koanf:"output"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when there is none. Not read from configuration.
	ProjectRoot string `koanf:"-"`
}

// LayoutConfig sizes the grid and its gutters.
type LayoutConfig struct {
	// Width is the available width; 0 means the sum of declared widths.
	Width             int  `koanf:"width"`
	RowReorder        bool `koanf:"row_reorder"`
	MultiSelect       bool `koanf:"multi_select"`
	RowReorderGutter  int  `koanf:"row_reorder_gutter"`
	MultiSelectGutter int  `koanf:"multi_select_gutter"`
	ColumnMargin      int  `koanf:"column_margin"`
	MinColumnWidth    int  `koanf:"min_column_width"`
}

// Settings converts the layout section into grid settings.
func (l LayoutConfig) Settings() grid.Settings {
	return grid.Settings{
		RowReorder:        l.RowReorder,
		MultiSelect:       l.MultiSelect,
		RowReorderGutter:  l.RowReorderGutter,
		MultiSelectGutter: l.MultiSelectGutter,
		ColumnMargin:      l.ColumnMargin,
		MinColumnWidth:    l.MinColumnWidth,
	}
}

// UIConfig holds configuration for the browser UI server.
type UIConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	Watch    bool `koanf:"watch"`
	// SessionSecret signs session cookies. A random key is generated when
	// empty, so sessions do not survive a restart.
	SessionSecret string `koanf:"session_secret"`
}

// Default configuration values.
const (
	FileName        = "leapgrid.yaml"
	FileNameAlt     = "leapgrid.yml"
	EnvPrefix       = "LEAPGRID_"
	DefaultSchema   = "grid.yaml"
	DefaultPort     = 8765
	DefaultLogLevel = "info"
	DefaultFormat   = "text"
	DefaultOutput   = "auto" // TTY=table, non-TTY=markdown
)

// defaults returns the lowest-precedence configuration layer.
func defaults() map[string]any {
	d := grid.DefaultSettings()
	return map[string]any{
		"schema":                     DefaultSchema,
		"source.type":                "",
		"layout.width":               0,
		"layout.row_reorder_gutter":  d.RowReorderGutter,
		"layout.multi_select_gutter": d.MultiSelectGutter,
		"layout.column_margin":       d.ColumnMargin,
		"layout.min_column_width":    d.MinColumnWidth,
		"ui.port":                    DefaultPort,
		"ui.auto_open":               true,
		"ui.watch":                   true,
		"log_level":                  DefaultLogLevel,
		"log_format":                 DefaultFormat,
		"verbose":                    false,
		"output":                     DefaultOutput,
	}
}
