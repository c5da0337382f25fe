package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	opts := &RenderOptions{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit the grid in the terminal",
		Long: `Open the grid in a full-screen terminal browser.

Move with the arrow keys, press enter to edit a cell and tab to commit it
and move on. Press ? for every key binding and ctrl+s to save edits back to
the source.`,
		Example: `  # Browse the project grid
  leapgrid browse

  # Start sorted by salary
  leapgrid browse --sort salary:desc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Sort, "sort", "s", "", "Sort by column, optionally :asc or :desc")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, `Filter "column op value" (repeatable, OR-ed)`)
	cmd.Flags().StringSliceVar(&opts.Hide, "hide", nil, "Columns to hide")

	return cmd
}

func runBrowse(cmd *cobra.Command, opts *RenderOptions) error {
	if !output.IsTerminal(cmd.OutOrStdout()) {
		return errors.New("browse needs a terminal; use render for piped output")
	}

	// Log lines would tear the full-screen view; keep them for --verbose.
	cc := NewCommandContextWithoutProject(cmd)
	if !cc.Cfg.Verbose {
		cc.Logger = slog.New(slog.DiscardHandler)
	}
	cleanup, err := cc.Open(cmd.Context())
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

	return tui.Run(cmd.Context(), tui.Options{
		Grid:    g,
		Backend: cc.Project,
		Logger:  cc.Logger,
		Title:   cc.Title(),
	})
}
