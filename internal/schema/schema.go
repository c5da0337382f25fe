// Package schema reads grid definition files: columns, grouping, initial
// sort and filter, helper files and optional inline rows.
//
// A minimal file:
//
//	columns:
//	  - name: id
//	    type: number
//	    frozen: left
//	  - name: name
//	    editable: true
//	    max_length: 40
//	sort: {column: name}
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is a parsed grid definition.
type File struct {
	Width    int              `yaml:"width"`
	Helpers  []string         `yaml:"helpers"`
	Settings *SettingsSpec    `yaml:"settings"`
	Columns  []ColumnSpec     `yaml:"columns"`
	Grouping []GroupSpec      `yaml:"grouping"`
	Sort     *SortSpec        `yaml:"sort"`
	Filter   []FilterSpec     `yaml:"filter"`
	Rows     []map[string]any `yaml:"rows"`

	// Path is the file the schema was read from; helpers resolve against
	// its directory.
	Path string `yaml:"-"`
}

// SettingsSpec toggles the gutters.
type SettingsSpec struct {
	RowReorder  *bool `yaml:"row_reorder"`
	MultiSelect *bool `yaml:"multi_select"`
}

// ColumnSpec describes one column. Expression fields hold Starlark.
type ColumnSpec struct {
	Name       string   `yaml:"name"`
	Label      string   `yaml:"label"`
	Width      int      `yaml:"width"`
	Align      string   `yaml:"align"`
	Fixed      bool     `yaml:"fixed"`
	Hidden     bool     `yaml:"hidden"`
	Type       string   `yaml:"type"`
	Editable   bool     `yaml:"editable"`
	EditableIf string   `yaml:"editable_if"`
	Frozen     string   `yaml:"frozen"`
	Format     string   `yaml:"format"`
	Expr       string   `yaml:"expr"`
	Classes    string   `yaml:"classes"`
	ClassExpr  string   `yaml:"class_expr"`
	SortExpr   string   `yaml:"sort_expr"`
	MinLength  int      `yaml:"min_length"`
	MaxLength  int      `yaml:"max_length"`
	Options    []string `yaml:"options"`
}

// GroupSpec is one grouping level.
type GroupSpec struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
	Header    string `yaml:"header"`
	Footer    string `yaml:"footer"`
}

// SortSpec is the initial sort.
type SortSpec struct {
	Column    string `yaml:"column"`
	Direction string `yaml:"direction"`
}

// FilterSpec is one filter predicate; predicates are OR-ed.
type FilterSpec struct {
	Field string `yaml:"field"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
}

// Load reads and parses a schema file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes schema YAML. Unknown keys are rejected so typos surface.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &f, nil
}

// Dir returns the directory relative helper paths resolve against.
func (f *File) Dir() string {
	if f.Path == "" {
		return "."
	}
	return filepath.Dir(f.Path)
}
