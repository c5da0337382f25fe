// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
)

// SetupTestProject creates a temporary project: a leapgrid.yaml reading a
// YAML rows file, and a schema with an editable, grouped column set.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	files := map[string]string{
		"leapgrid.yaml": `schema: grid.yaml
source:
  type: file
  path: rows.yaml
  key: id
ui:
  auto_open: false
  watch: false
`,
		"grid.yaml": `columns:
  - name: id
    type: number
    width: 40
    frozen: left
  - name: name
    label: Name
    editable: true
    max_length: 20
  - name: team
    label: Team
  - name: salary
    label: Salary
    type: number
    editable: true
sort:
  column: salary
  direction: desc
`,
		"rows.yaml": `- {id: 1, name: Ann, team: platform, salary: 4100}
- {id: 2, name: Bob, team: design, salary: 5200}
- {id: 3, name: Cy, team: design, salary: 6100}
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a test renderer. Buffers are never terminals, so
// auto resolves to markdown.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the captured stdout content.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the captured stderr content.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdownTable checks that every table line in md has the same
// number of cells as the header and that a separator line follows it.
func AssertValidMarkdownTable(t *testing.T, md string) {
	t.Helper()

	var rows []string
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "|") {
			rows = append(rows, line)
		}
	}
	if len(rows) < 2 {
		t.Errorf("markdown has no table: %q", md)
		return
	}
	want := cellCount(rows[0])
	if !strings.Contains(rows[1], "---") {
		t.Errorf("missing separator after header: %q", rows[1])
	}
	for i, row := range rows {
		if n := cellCount(row); n != want {
			t.Errorf("table line %d has %d cells, header has %d: %q", i+1, n, want, row)
		}
	}
}

// cellCount counts unescaped pipes, less the leading one.
func cellCount(row string) int {
	return strings.Count(strings.ReplaceAll(row, `\|`, ""), "|") - 1
}
