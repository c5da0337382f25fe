// Package duckdb provides a DuckDB row source for leapgrid.
//
// Import this package with a blank identifier to register the source:
//
//	import _ "github.com/leapstack-labs/leapgrid/pkg/sources/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/source"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	source.Register("duckdb", func(l *slog.Logger) source.Source { return New(l) })
}

// Source reads rows from a DuckDB table or query. DuckDB can also query
// parquet and csv files directly, e.g. query: SELECT * FROM 'sales.parquet'.
type Source struct {
	source.BaseSQLSource
}

// New creates a new DuckDB source. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{BaseSQLSource: source.BaseSQLSource{
		Logger:      logger,
		Placeholder: source.QuestionPlaceholder,
	}}
}

// Open connects to DuckDB. An empty path opens an in-memory database.
// Entries of cfg.Options are applied as session settings.
func (s *Source) Open(ctx context.Context, cfg source.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	for _, stmt := range settingStatements(cfg.Options) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply duckdb setting: %w", err)
		}
	}

	s.Logger.Debug("opened duckdb", slog.String("path", path))
	s.DB = db
	s.Cfg = cfg
	return nil
}

// settingStatements renders options as SET statements in key order.
func settingStatements(opts map[string]string) []string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stmts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(opts[k], "'", "''")
		stmts = append(stmts, fmt.Sprintf("SET %s = '%s'", k, v))
	}
	return stmts
}
