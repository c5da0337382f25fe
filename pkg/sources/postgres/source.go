// Package postgres provides a PostgreSQL row source for leapgrid.
//
// Import this package with a blank identifier to register the source:
//
//	import _ "github.com/leapstack-labs/leapgrid/pkg/sources/postgres"
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/leapgrid/pkg/source"
)

func init() {
	source.Register("postgres", func(l *slog.Logger) source.Source { return New(l) })
}

// Source reads rows from a PostgreSQL table or query.
type Source struct {
	source.BaseSQLSource
}

// New creates a new PostgreSQL source. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{BaseSQLSource: source.BaseSQLSource{
		Logger:      logger,
		Placeholder: source.DollarPlaceholder,
	}}
}

// Open connects to PostgreSQL.
func (s *Source) Open(ctx context.Context, cfg source.Config) error {
	connCfg, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return fmt.Errorf("invalid postgres connection settings: %w", err)
	}

	s.Logger.Debug("connecting to postgres", slog.String("host", connCfg.Host), slog.String("database", connCfg.Database))

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.DB = db
	s.Cfg = cfg
	return nil
}

// buildDSN returns cfg.DSN, or a key=value connection string from the
// host fields.
func buildDSN(cfg source.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, cfg.Database, sslmode)
	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}
