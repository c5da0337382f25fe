package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/internal/tui"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Drive the grid from an interactive prompt",
		Long: `Open an interactive prompt over one grid instance.

Commands sort, filter, edit and rearrange the grid; .print shows the
result. Edits go through the same validation as the browser and are
written back with .save.`,
		Example: `  leapgrid shell

  grid> .sort salary desc
  grid> .filter team == design
  grid> .set 0 name Ann
  grid> .save`,
		RunE: runShell,
	}
	return cmd
}

func runShell(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	g, err := cc.NewGrid(cmd.Context())
	if err != nil {
		return err
	}

	// The prompt is interactive even when piped; auto means a table here.
	mode := cc.Renderer.Mode()
	if m, _ := output.ParseMode(cc.Cfg.Output); m == output.ModeAuto {
		mode = output.ModeText
	}
	sh := &shell{
		grid:    g,
		backend: cc.Project,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		mode:    mode,
	}

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".leapgrid_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "grid> ",
		HistoryFile:     historyFile,
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(sh.out, "LeapGrid shell (%s, %d rows)\n", cc.Title(), g.Len())
	_, _ = fmt.Fprintln(sh.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sh.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if sh.exec(cmd.Context(), line) {
			break
		}
	}

	if n := len(g.Changes()); n > 0 {
		_, _ = fmt.Fprintf(sh.errOut, "%d unsaved cells discarded\n", n)
	}
	return nil
}

// shell runs textual commands against one grid.
type shell struct {
	grid    *grid.Grid
	backend tui.Backend
	out     io.Writer
	errOut  io.Writer
	mode    output.Mode
}

// shellCommands lists the commands in help order.
var shellCommands = []struct{ name, args, help string }{
	{".print", "", "Print the grid"},
	{".sort", "<column> [asc|desc]", "Sort by a column (toggles without a direction)"},
	{".filter", "<column> <op> <value>", "Add a filter; filters are OR-ed"},
	{".clear", "", "Remove all filters"},
	{".set", "<row> <column> <value>", "Edit a cell through the editor"},
	{".width", "<column> <pixels>", "Set a column width"},
	{".move", "<column> before|after <target>", "Move a column"},
	{".moverow", "<from> <to>", "Move a row"},
	{".hide", "<column>", "Hide a column"},
	{".show", "<column>", "Show a hidden column"},
	{".changes", "", "List unsaved edits"},
	{".save", "", "Write edits to the source"},
	{".reload", "", "Reload rows from the source"},
	{".format", "<table|markdown|json|csv>", "Set the print format"},
	{".help", "", "Show this help message"},
	{".quit", "", "Exit (also .exit)"},
}

// exec runs one line and reports whether the shell should exit. Errors are
// written to errOut.
func (s *shell) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	if !strings.HasPrefix(command, ".") {
		command = "." + command
	}
	args := parts[1:]

	var err error
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		s.printHelp()
	case ".print", ".p":
		err = output.WriteView(s.out, s.grid.View(), s.mode)
	case ".sort":
		err = s.sort(args)
	case ".filter":
		err = s.filter(args)
	case ".clear":
		s.grid.ClearFilter()
	case ".set":
		err = s.set(args)
	case ".width":
		err = s.width(args)
	case ".move":
		err = s.move(args)
	case ".moverow":
		err = s.moveRow(args)
	case ".hide", ".show":
		if len(args) != 1 {
			err = usage(command)
		} else if command == ".hide" {
			err = s.grid.HideColumn(args[0])
		} else {
			err = s.grid.ShowColumn(args[0])
		}
	case ".changes":
		s.printChanges()
	case ".save":
		err = s.save(ctx)
	case ".reload":
		err = s.backend.Reload(ctx, s.grid)
	case ".format":
		err = s.format(args)
	default:
		err = fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}

	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func usage(command string) error {
	for _, c := range shellCommands {
		if c.name == command {
			return fmt.Errorf("usage: %s %s", c.name, c.args)
		}
	}
	return fmt.Errorf("usage: %s", command)
}

func (s *shell) sort(args []string) error {
	switch len(args) {
	case 1:
		return s.grid.SortBy(args[0])
	case 2:
		dir, err := grid.ParseDirection(args[1])
		if err != nil {
			return err
		}
		return s.grid.Sort(args[0], dir)
	default:
		return usage(".sort")
	}
}

func (s *shell) filter(args []string) error {
	if len(args) < 2 {
		return usage(".filter")
	}
	p, err := parsePredicate(strings.Join(args, " "))
	if err != nil {
		return err
	}
	return s.grid.SetFilter(append(s.grid.Filter(), p))
}

// set edits a cell the way a user would: open the editor, type, blur.
func (s *shell) set(args []string) error {
	if len(args) < 3 {
		return usage(".set")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("row must be a number: %q", args[0])
	}
	c, err := s.grid.Column(args[1])
	if err != nil {
		return err
	}
	if err := s.grid.OpenEditor(row, c.Name); err != nil {
		return err
	}
	if err := s.grid.SetEditValue(c.CoerceInput(strings.Join(args[2:], " "))); err != nil {
		return err
	}
	closed, err := s.grid.Blur()
	if err != nil || !closed {
		s.grid.CancelEdit()
	}
	if err == nil && !closed {
		return errors.New("edit was vetoed")
	}
	return err
}

func (s *shell) width(args []string) error {
	if len(args) != 2 {
		return usage(".width")
	}
	w, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("width must be a number: %q", args[1])
	}
	return s.grid.SetColumnWidth(args[0], w)
}

func (s *shell) move(args []string) error {
	if len(args) != 3 || (args[1] != "before" && args[1] != "after") {
		return usage(".move")
	}
	return s.grid.MoveColumn(args[0], args[2], args[1] == "after")
}

func (s *shell) moveRow(args []string) error {
	if len(args) != 2 {
		return usage(".moverow")
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage(".moverow")
	}
	return s.grid.MoveRow(from, to)
}

func (s *shell) save(ctx context.Context) error {
	n, err := s.backend.Save(ctx, s.grid)
	if err != nil {
		return err
	}
	if n == 0 {
		_, _ = fmt.Fprintln(s.out, "nothing to save")
		return nil
	}
	_, _ = fmt.Fprintf(s.out, "saved %d cells\n", n)
	return nil
}

func (s *shell) format(args []string) error {
	if len(args) != 1 {
		return usage(".format")
	}
	m, err := output.ParseMode(args[0])
	if err != nil {
		return err
	}
	if m == output.ModeAuto {
		m = output.ModeText
	}
	s.mode = m
	return nil
}

func (s *shell) printChanges() {
	changes := s.grid.Changes()
	if len(changes) == 0 {
		_, _ = fmt.Fprintln(s.out, "no unsaved edits")
		return
	}
	for _, c := range changes {
		_, _ = fmt.Fprintf(s.out, "  [%d] %s: %v -> %v\n", c.Row, c.Column, c.Old, c.New)
	}
}

func (s *shell) printHelp() {
	var b strings.Builder
	b.WriteString("\nCommands:\n")
	for _, c := range shellCommands {
		fmt.Fprintf(&b, "  %-42s %s\n", strings.TrimSpace(c.name+" "+c.args), c.help)
	}
	b.WriteString(`
Tips:
  - The leading dot is optional
  - Rows are numbered from 0 in the current order
  - Operators: == != < > <= >=
  - Tab completion works for commands and column names
`)
	_, _ = fmt.Fprintln(s.out, b.String())
}

// completer completes commands and, after them, column names.
func (s *shell) completer() *readline.PrefixCompleter {
	var columns []readline.PrefixCompleterInterface
	for _, c := range s.grid.Columns() {
		columns = append(columns, readline.PcItem(c.Name))
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(shellCommands))
	for _, c := range shellCommands {
		if strings.HasPrefix(c.args, "<column>") {
			items = append(items, readline.PcItem(c.name, columns...))
			continue
		}
		items = append(items, readline.PcItem(c.name))
	}
	return readline.NewPrefixCompleter(items...)
}
