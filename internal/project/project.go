// Package project opens a configured grid: it combines the configuration,
// the schema file and the row source into ready-to-use grid instances.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/leapstack-labs/leapgrid/internal/config"
	"github.com/leapstack-labs/leapgrid/internal/schema"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"github.com/leapstack-labs/leapgrid/pkg/source"

	// Register the built-in sources.
	_ "github.com/leapstack-labs/leapgrid/pkg/sources/duckdb"
	_ "github.com/leapstack-labs/leapgrid/pkg/sources/file"
	_ "github.com/leapstack-labs/leapgrid/pkg/sources/postgres"
	_ "github.com/leapstack-labs/leapgrid/pkg/sources/sqlite"
)

// Project is an opened grid project. Grids created from it share the
// source; every grid has its own rows, edits and expression environment.
type Project struct {
	cfg    *config.Config
	logger *slog.Logger
	src    source.Source

	mu     sync.RWMutex
	schema *schema.File
}

// Open loads the schema and opens the configured source. A project needs a
// schema file, a source, or both.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Project{cfg: cfg, logger: logger}

	if err := p.loadSchema(); err != nil {
		return nil, err
	}

	if cfg.Source.Type != "" {
		src, err := source.New(cfg.Source, logger.With("source", cfg.Source.Type))
		if err != nil {
			return nil, err
		}
		if err := src.Open(ctx, cfg.Source); err != nil {
			return nil, fmt.Errorf("failed to open %s source: %w", cfg.Source.Type, err)
		}
		p.src = src
	}

	p.mu.RLock()
	noSchema := p.schema == nil
	p.mu.RUnlock()
	if noSchema && p.src == nil {
		_ = p.Close()
		return nil, fmt.Errorf("no schema at %s and no source configured\nHint: run 'leapgrid init' or set source.type in %s", cfg.Schema, config.FileName)
	}

	logger.Debug("project opened", slog.String("schema", cfg.Schema), slog.String("source", cfg.Source.Type))
	return p, nil
}

// loadSchema (re)reads the schema file. A missing file is not an error.
func (p *Project) loadSchema() error {
	f, err := schema.Load(p.cfg.Schema)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.mu.Lock()
			p.schema = nil
			p.mu.Unlock()
			return nil
		}
		return err
	}
	p.mu.Lock()
	p.schema = f
	p.mu.Unlock()
	return nil
}

// ReloadSchema re-reads the schema file; grids created afterwards use it.
func (p *Project) ReloadSchema() error {
	return p.loadSchema()
}

// Config returns the project configuration.
func (p *Project) Config() *config.Config { return p.cfg }

// Source returns the row source, or nil when rows come from the schema.
func (p *Project) Source() source.Source { return p.src }

// WatchPaths lists the files whose changes should reload grids.
func (p *Project) WatchPaths() []string {
	paths := []string{p.cfg.Schema}
	switch p.cfg.Source.Type {
	case "file", "sqlite", "duckdb":
		if p.cfg.Source.Path != "" && p.cfg.Source.Path != ":memory:" {
			paths = append(paths, p.cfg.Source.Path)
		}
	}
	return paths
}

// NewGrid builds a grid from the schema and a fresh fetch of the source.
func (p *Project) NewGrid(ctx context.Context, hooks grid.Hooks) (*grid.Grid, error) {
	var batch *source.Batch
	if p.src != nil {
		var err error
		if batch, err = p.src.Fetch(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch rows: %w", err)
		}
	}

	p.mu.RLock()
	f := p.schema
	p.mu.RUnlock()
	if f == nil {
		f = &schema.File{}
	}

	var inferred []grid.Column
	if batch != nil {
		inferred = batch.Columns
	}
	opts, env, err := f.Build(p.logger, inferred)
	if err != nil {
		return nil, err
	}
	if len(opts.Columns) == 0 {
		return nil, fmt.Errorf("grid has no columns: declare them in %s or configure a source", p.cfg.Schema)
	}

	opts.Settings = p.settings(opts.Settings)
	if p.cfg.Layout.Width > 0 {
		opts.Width = p.cfg.Layout.Width
	}
	if batch != nil {
		opts.Rows = batch.Rows
	}
	opts.Hooks = hooks

	g, err := grid.New(opts)
	if err != nil {
		return nil, err
	}
	env.BindRows(g.Row)
	return g, nil
}

// settings overlays the configured gutter sizes on the schema toggles.
func (p *Project) settings(s grid.Settings) grid.Settings {
	l := p.cfg.Layout
	if l.RowReorder {
		s.RowReorder = true
	}
	if l.MultiSelect {
		s.MultiSelect = true
	}
	if l.RowReorderGutter > 0 {
		s.RowReorderGutter = l.RowReorderGutter
	}
	if l.MultiSelectGutter > 0 {
		s.MultiSelectGutter = l.MultiSelectGutter
	}
	if l.ColumnMargin > 0 {
		s.ColumnMargin = l.ColumnMargin
	}
	if l.MinColumnWidth > 0 {
		s.MinColumnWidth = l.MinColumnWidth
	}
	return s
}

// Reload replaces the grid's rows with a fresh fetch. Grids without a
// source keep their rows.
func (p *Project) Reload(ctx context.Context, g *grid.Grid) error {
	if p.src == nil {
		return nil
	}
	batch, err := p.src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rows: %w", err)
	}
	g.LoadRows(batch.Rows)
	return nil
}

// Save pushes the grid's committed edits to the source and clears their
// changed flags. It returns the number of pushed cells.
func (p *Project) Save(ctx context.Context, g *grid.Grid) (int, error) {
	changes := g.Changes()
	if len(changes) == 0 {
		return 0, nil
	}
	if p.src == nil {
		return 0, fmt.Errorf("edits cannot be saved: no source configured")
	}
	if err := p.src.Push(ctx, changes); err != nil {
		return 0, err
	}
	g.ClearChanges()
	p.logger.Info("saved edits", slog.Int("cells", len(changes)))
	return len(changes), nil
}

// Close releases the source.
func (p *Project) Close() error {
	if p.src == nil {
		return nil
	}
	return p.src.Close()
}
