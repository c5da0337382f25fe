// Package source provides the row sources that feed a grid and receive its
// committed edits.
//
// This package contains the public contract every source implements, the
// registry of source factories and BaseSQLSource, the shared database/sql
// implementation. Concrete sources are in pkg/sources/ subdirectories and
// register themselves from init().
package source

import (
	"context"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Config selects and parameterizes a source.
type Config struct {
	Type string `koanf:"type"`
	// Path is a database file or a row file.
	Path string `koanf:"path"`
	// DSN is a full connection string; it wins over the host fields.
	DSN      string `koanf:"dsn"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// Table is read when Query is empty and is the target of pushed edits.
	Table string `koanf:"table"`
	Query string `koanf:"query"`
	// Key is the column identifying a row when edits are pushed.
	Key     string            `koanf:"key"`
	Options map[string]string `koanf:"options"`
}

// Batch is one delivery of rows. Columns are inferred from the data and are
// used when no schema file describes the grid.
type Batch struct {
	Columns []grid.Column
	Rows    []grid.Row
}

// Source delivers rows to a grid and accepts its committed edits.
type Source interface {
	// Open prepares the source using the provided config.
	Open(ctx context.Context, cfg Config) error

	// Fetch returns every row. Grids replace their rows with the result.
	Fetch(ctx context.Context) (*Batch, error)

	// Push writes committed cell edits back. Either all edits are applied
	// or none.
	Push(ctx context.Context, changes []grid.CellChange) error

	// Close releases resources.
	Close() error
}
