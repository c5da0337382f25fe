// Package sqlite provides a SQLite row source for leapgrid.
//
// Import this package with a blank identifier to register the source:
//
//	import _ "github.com/leapstack-labs/leapgrid/pkg/sources/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapgrid/pkg/source"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

func init() {
	source.Register("sqlite", func(l *slog.Logger) source.Source { return New(l) })
}

// Source reads rows from a SQLite table or query.
type Source struct {
	source.BaseSQLSource
}

// New creates a new SQLite source. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{BaseSQLSource: source.BaseSQLSource{
		Logger:      logger,
		Placeholder: source.QuestionPlaceholder,
	}}
}

// Open connects to the database at cfg.Path, or cfg.DSN when set.
// ":memory:" opens a private in-memory database.
func (s *Source) Open(ctx context.Context, cfg source.Config) error {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = cfg.Path
	}
	if dsn == "" {
		return fmt.Errorf("sqlite source needs source.path")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if dsn == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	s.Logger.Debug("opened sqlite", slog.String("path", dsn))
	s.DB = db
	s.Cfg = cfg
	return nil
}
