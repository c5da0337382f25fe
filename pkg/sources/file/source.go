// Package file provides a row source backed by a YAML, JSON or CSV file.
//
// YAML and JSON files hold a list of mappings, one per row. Column order
// follows the keys of the first row. CSV files carry a header line.
// Committed edits are written back to the same file.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"github.com/leapstack-labs/leapgrid/pkg/source"
)

func init() {
	source.Register("file", func(l *slog.Logger) source.Source { return New(l) })
}

// Format is an on-disk row encoding.
type Format string

// Supported formats, chosen by file extension.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatFor returns the format for a path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported row file %q (want .yaml, .yml, .json or .csv)", path)
	}
}

// Source reads rows from a file and rewrites it on Push.
type Source struct {
	mu     sync.Mutex
	logger *slog.Logger
	cfg    source.Config
	format Format

	// last fetched content; Push applies edits to it
	names []string
	rows  []grid.Row
}

// New creates a file source. If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{logger: logger}
}

// Open checks that cfg.Path names a readable row file.
func (s *Source) Open(_ context.Context, cfg source.Config) error {
	if cfg.Path == "" {
		return fmt.Errorf("file source needs source.path")
	}
	format, err := FormatFor(cfg.Path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return fmt.Errorf("failed to open row file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.format = format
	return nil
}

// Path returns the row file path.
func (s *Source) Path() string { return s.cfg.Path }

// Fetch reads the whole file.
func (s *Source) Fetch(_ context.Context) (*source.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.format == "" {
		return nil, fmt.Errorf("file source is not open")
	}

	data, err := os.ReadFile(s.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read row file: %w", err)
	}

	var names []string
	var rows []grid.Row
	switch s.format {
	case FormatCSV:
		names, rows, err = decodeCSV(data)
	default:
		// JSON is a subset of YAML; one decoder keeps key order for both.
		names, rows, err = decodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.cfg.Path, err)
	}

	s.names, s.rows = names, rows
	types := make([]grid.ColumnType, len(names))
	for i, name := range names {
		types[i] = inferColumn(rows, name)
	}

	s.logger.Debug("read row file", slog.String("path", s.cfg.Path), slog.Int("rows", len(rows)))
	out := make([]grid.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return &source.Batch{Columns: source.Columns(names, types, s.cfg.Key), Rows: out}, nil
}

// Push applies edits to the last fetched rows and rewrites the file. Rows
// are matched by source.key when set and by position otherwise. The file
// is replaced atomically, so a failed push leaves it untouched.
func (s *Source) Push(_ context.Context, changes []grid.CellChange) error {
	if len(changes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		return fmt.Errorf("file source has no fetched rows to update")
	}

	rows := make([]grid.Row, len(s.rows))
	for i, r := range s.rows {
		rows[i] = r.Clone()
	}
	names := append([]string(nil), s.names...)

	for _, c := range changes {
		i, err := s.match(rows, c)
		if err != nil {
			return err
		}
		if _, ok := rows[i][c.Column]; !ok {
			names = appendMissing(names, c.Column)
		}
		rows[i][c.Column] = c.New
	}

	var data []byte
	var err error
	switch s.format {
	case FormatCSV:
		data, err = encodeCSV(names, rows)
	case FormatJSON:
		data, err = encodeJSON(names, rows)
	default:
		data, err = encodeYAML(names, rows)
	}
	if err != nil {
		return err
	}
	if err := writeAtomic(s.cfg.Path, data); err != nil {
		return err
	}

	s.names, s.rows = names, rows
	s.logger.Info("wrote row file", slog.String("path", s.cfg.Path), slog.Int("cells", len(changes)))
	return nil
}

func (s *Source) match(rows []grid.Row, c grid.CellChange) (int, error) {
	key := s.cfg.Key
	if key == "" {
		if c.Row < 0 || c.Row >= len(rows) {
			return 0, fmt.Errorf("edit of row %d is outside the %d file rows", c.Row, len(rows))
		}
		return c.Row, nil
	}

	want := c.Values[key]
	if c.Column == key {
		want = c.Old
	}
	for i, r := range rows {
		if fmt.Sprint(r[key]) == fmt.Sprint(want) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no row with %s = %v", key, want)
}

// Close releases the cached rows.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows, s.names = nil, nil
	return nil
}

func appendMissing(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func inferColumn(rows []grid.Row, name string) grid.ColumnType {
	for _, r := range rows {
		if v, ok := r[name]; ok && v != nil {
			return source.InferValueType(v)
		}
	}
	return grid.TypeText
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write row file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write row file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write row file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace row file: %w", err)
	}
	return nil
}
