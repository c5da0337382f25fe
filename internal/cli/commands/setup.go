package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/internal/config"
	"github.com/leapstack-labs/leapgrid/internal/project"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Project  *project.Project
	Renderer *output.Renderer
}

// NewCommandContext opens the configured project. The cleanup function
// must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutProject(cmd)
	cleanup, err := cc.Open(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return cc, cleanup, nil
}

// Open validates the configuration and opens the project with cc.Logger.
func (cc *CommandContext) Open(ctx context.Context) (func(), error) {
	if err := cc.Cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	p, err := project.Open(ctx, cc.Cfg, cc.Logger)
	if err != nil {
		return nil, err
	}
	cc.Project = p

	cleanup := func() {
		_ = p.Close()
	}
	return cleanup, nil
}

// NewCommandContextWithoutProject creates a CommandContext for commands
// that don't read rows.
func NewCommandContextWithoutProject(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewGrid builds a grid from the project. Commands outside the browser
// have no repaint to trigger, so only the debug hooks are set.
func (cc *CommandContext) NewGrid(ctx context.Context) (*grid.Grid, error) {
	logger := cc.Logger
	return cc.Project.NewGrid(ctx, grid.Hooks{
		CellChanged: func(c grid.CellChange) {
			logger.Debug("cell changed", "row", c.Row, "column", c.Column)
		},
		RowMoved: func(from, to int) {
			logger.Debug("row moved", "from", from, "to", to)
		},
	})
}

// Title names the grid after its source table, if any.
func (cc *CommandContext) Title() string {
	if t := cc.Cfg.Source.Table; t != "" {
		return t
	}
	return "Grid"
}

// getConfig returns the configuration loaded by the root command, or the
// defaults when a command runs on its own.
func getConfig(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	cfg, _, err := config.Load("", nil)
	if err != nil {
		return &config.Config{Output: config.DefaultOutput, LogLevel: config.DefaultLogLevel}
	}
	return cfg
}
