package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/internal/project"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new LeapGrid project",
		Long: `Initialize a new LeapGrid project with a working demo.

This creates:
  - leapgrid.yaml configuration file
  - grid.yaml column schema
  - helpers/display.star formatter helpers
  - demo.db SQLite database with sample employees`,
		Example: `  # Initialize in current directory
  leapgrid init

  # Initialize in a new directory
  leapgrid init my-grid

  # Force overwrite existing files
  leapgrid init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig(cmd.Context())
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	configPath := filepath.Join(dir, "leapgrid.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("leapgrid.yaml already exists. Use --force to overwrite")
	}

	files, err := project.Scaffold(dir, force)
	if err != nil {
		return err
	}

	r.Header(2, "Created")
	for _, f := range files {
		r.Println("  " + filepath.ToSlash(f))
	}

	r.Println("")
	r.Success("LeapGrid project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if dir != "." {
		r.Printf("  cd %s\n", dir)
	}
	r.Println("  leapgrid serve     Open the grid in a browser")
	r.Println("  leapgrid browse    Browse the grid in the terminal")
	r.Println("  leapgrid render    Print the grid once")

	return nil
}
