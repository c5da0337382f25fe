package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// RenderOptions holds options for the render command.
type RenderOptions struct {
	Sort    string   // column[:asc|desc]
	Filters []string // "column op value", OR-ed together
	Hide    []string
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	opts := &RenderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the grid",
		Long: `Print the formatted rows of the grid once.

The schema's sort, grouping and formatters apply. Filters are OR-ed: a row
shows when any of them matches.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown
  - --output json|csv: raw values for machines`,
		Example: `  # Print the grid
  leapgrid render

  # Highest salaries first
  leapgrid render --sort salary:desc

  # Designers or anyone earning at least 100000, as CSV
  leapgrid render --filter "team == design" --filter "salary >= 100000" -o csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Sort, "sort", "s", "", "Sort by column, optionally :asc or :desc")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, `Filter "column op value" (repeatable, OR-ed)`)
	cmd.Flags().StringSliceVar(&opts.Hide, "hide", nil, "Columns to hide")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	g, err := cc.NewGrid(cmd.Context())
	if err != nil {
		return err
	}
	if err := applyRenderOptions(g, opts); err != nil {
		return err
	}

	return output.WriteView(cmd.OutOrStdout(), g.View(), cc.Renderer.Mode())
}

func applyRenderOptions(g *grid.Grid, opts *RenderOptions) error {
	for _, name := range opts.Hide {
		if err := g.HideColumn(strings.TrimSpace(name)); err != nil {
			return err
		}
	}
	if opts.Sort != "" {
		column, dir, err := parseSort(opts.Sort)
		if err != nil {
			return err
		}
		if err := g.Sort(column, dir); err != nil {
			return err
		}
	}
	if len(opts.Filters) > 0 {
		preds := make([]grid.Predicate, 0, len(opts.Filters))
		for _, f := range opts.Filters {
			p, err := parsePredicate(f)
			if err != nil {
				return err
			}
			preds = append(preds, p)
		}
		if err := g.SetFilter(preds); err != nil {
			return err
		}
	}
	return nil
}

// parseSort reads "column" or "column:direction".
func parseSort(s string) (string, grid.Direction, error) {
	column, dir, found := strings.Cut(s, ":")
	if !found {
		return column, grid.Ascending, nil
	}
	d, err := grid.ParseDirection(dir)
	if err != nil {
		return "", 0, err
	}
	return column, d, nil
}

// parsePredicate reads "column op value". The value may contain spaces; a
// missing operator means equality.
func parsePredicate(s string) (grid.Predicate, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0:
		return grid.Predicate{}, fmt.Errorf("empty filter")
	case 1:
		return grid.Predicate{}, fmt.Errorf("filter %q has no value (want \"column op value\")", s)
	}
	if op, err := grid.ParseOperator(fields[1]); err == nil && len(fields) > 2 {
		return grid.Predicate{Field: fields[0], Op: op, Value: strings.Join(fields[2:], " ")}, nil
	}
	return grid.Predicate{Field: fields[0], Op: grid.OpEq, Value: strings.Join(fields[1:], " ")}, nil
}
