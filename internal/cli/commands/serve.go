package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid in the browser",
		Long: `Start a local web server with the interactive grid.

Every browser session edits its own copy of the rows. Changes to the schema
file rebuild the open grids; changes to the source file reload their rows.
Edits are written back to the source with the Save button.`,
		Example: `  # Serve on the configured port
  leapgrid serve

  # Serve on a custom port without opening a browser
  leapgrid serve --port 3000 --no-open

  # Serve a CSV file without a project
  leapgrid serve --source file --path people.csv --key id`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("no-open", false, "Don't auto-open the browser")
	cmd.Flags().Bool("no-watch", false, "Don't watch the schema and source files")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	uiCfg := cc.Cfg.UI
	server := ui.NewServer(ui.Config{
		Project:       cc.Project,
		Port:          uiCfg.Port,
		Watch:         uiCfg.Watch,
		SessionSecret: uiCfg.SessionSecret,
		Logger:        cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", uiCfg.Port)
	if uiCfg.AutoOpen {
		go openBrowser(url)
	}

	cc.Renderer.Success("Serving " + cc.Title() + " on " + url)
	cc.Renderer.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
