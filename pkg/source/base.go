package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Placeholder renders the n-th (1-based) bind parameter of a dialect.
type Placeholder func(n int) string

// QuestionPlaceholder is used by SQLite and DuckDB.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder is used by PostgreSQL.
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// ErrNotConnected is returned by operations on an unopened source.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQLSource provides common database/sql functionality for sources.
// Embed it in concrete sources; they only implement Open.
type BaseSQLSource struct {
	DB          *sql.DB
	Cfg         Config
	Logger      *slog.Logger
	Placeholder Placeholder
}

// Close closes the database connection.
func (b *BaseSQLSource) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLSource) IsConnected() bool {
	return b.DB != nil
}

func (b *BaseSQLSource) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// SelectQuery returns the configured query, or a full select of the table.
func (b *BaseSQLSource) SelectQuery() (string, error) {
	if q := strings.TrimSpace(b.Cfg.Query); q != "" {
		return q, nil
	}
	if b.Cfg.Table == "" {
		return "", fmt.Errorf("source needs a table or a query")
	}
	return "SELECT * FROM " + QuoteIdent(b.Cfg.Table), nil
}

// Fetch runs the select and returns its rows with inferred columns.
func (b *BaseSQLSource) Fetch(ctx context.Context) (*Batch, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	query, err := b.SelectQuery()
	if err != nil {
		return nil, err
	}

	b.logger().Debug("fetching rows", slog.String("query", query))
	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	types := make([]grid.ColumnType, len(names))
	if cts, err := rows.ColumnTypes(); err == nil {
		for i, ct := range cts {
			types[i] = InferType(ct.DatabaseTypeName())
		}
	}

	batch := &Batch{}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(grid.Row, len(names))
		for i, name := range names {
			row[name] = normalizeValue(values[i])
		}
		batch.Rows = append(batch.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for i, name := range names {
		if types[i] == grid.TypeText && len(batch.Rows) > 0 {
			types[i] = InferValueType(batch.Rows[0][name])
		}
	}
	batch.Columns = Columns(names, types, b.Cfg.Key)
	b.logger().Debug("fetched rows", slog.Int("rows", len(batch.Rows)), slog.Int("columns", len(names)))
	return batch, nil
}

// Push applies edits as one UPDATE per cell inside a single transaction.
// Every statement must match exactly one row by the key column.
func (b *BaseSQLSource) Push(ctx context.Context, changes []grid.CellChange) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	if len(changes) == 0 {
		return nil
	}
	if b.Cfg.Table == "" || b.Cfg.Key == "" {
		return fmt.Errorf("pushing edits needs source.table and source.key")
	}
	ph := b.Placeholder
	if ph == nil {
		ph = QuestionPlaceholder
	}

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range changes {
		key := c.Values[b.Cfg.Key]
		if c.Column == b.Cfg.Key {
			key = c.Old
		}
		//nolint:gosec // identifiers are quoted, values are bound
		stmt := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
			QuoteIdent(b.Cfg.Table), QuoteIdent(c.Column), ph(1), QuoteIdent(b.Cfg.Key), ph(2))

		res, err := tx.ExecContext(ctx, stmt, c.New, key)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", c.Column, err)
		}
		if n, err := res.RowsAffected(); err == nil && n != 1 {
			return fmt.Errorf("update of %s matched %d rows for %s = %v", c.Column, n, b.Cfg.Key, key)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit edits: %w", err)
	}
	b.logger().Info("pushed edits", slog.Int("cells", len(changes)), slog.String("table", b.Cfg.Table))
	return nil
}

// QuoteIdent quotes a possibly schema-qualified identifier.
func QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
