// Package features provides shared test utilities for UI feature handlers.
package features

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/leapgrid/internal/config"
	"github.com/leapstack-labs/leapgrid/internal/project"
	"github.com/leapstack-labs/leapgrid/internal/testutil"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/ui/workspace"
	"github.com/leapstack-labs/leapgrid/pkg/source"
)

// DefaultRows is a small YAML row file keyed by id.
const DefaultRows = `- {id: 1, name: Ann, team: design, salary: 5200}
- {id: 2, name: bob, team: platform, salary: 4100}
- {id: 3, name: Cy, team: design, salary: 6100}
`

// DefaultSchema declares columns over DefaultRows.
const DefaultSchema = `columns:
  - {name: id, type: number, width: 40, fixed: true, frozen: left}
  - {name: name, editable: true, max_length: 10}
  - {name: team}
  - {name: salary, type: number, format: currency, editable: true, align: right}
`

// TestFixture holds the test dependencies for handler tests.
type TestFixture struct {
	Project      *project.Project
	Workspace    *workspace.Workspace
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	RowsPath     string
	t            *testing.T
}

// SetupTestFixture creates a project backed by a YAML row file in a temp
// directory. Empty arguments select DefaultRows and DefaultSchema.
func SetupTestFixture(t *testing.T, rows, schemaSrc string) *TestFixture {
	t.Helper()

	if rows == "" {
		rows = DefaultRows
	}
	if schemaSrc == "" {
		schemaSrc = DefaultSchema
	}

	dir := t.TempDir()
	rowsPath := filepath.Join(dir, "rows.yaml")
	require.NoError(t, os.WriteFile(rowsPath, []byte(rows), 0o600))
	schemaPath := filepath.Join(dir, config.DefaultSchema)
	require.NoError(t, os.WriteFile(schemaPath, []byte(schemaSrc), 0o600))

	cfg := &config.Config{
		Schema:      schemaPath,
		Source:      source.Config{Type: "file", Path: rowsPath, Key: "id"},
		ProjectRoot: dir,
	}
	cfg.Layout.Width = 800

	logger := testutil.NewTestLogger(t)
	p, err := project.Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	n := notifier.New()
	return &TestFixture{
		Project:      p,
		Workspace:    workspace.New(p, n, logger),
		Notifier:     n,
		SessionStore: NewTestSessionStore(),
		RowsPath:     rowsPath,
		t:            t,
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// WithCookies copies the cookies set on a previous response onto r, so a
// request reaches the same session.
func WithCookies(r *http.Request, from *http.Response) *http.Request {
	for _, c := range from.Cookies() {
		r.AddCookie(c)
	}
	return r
}

// ParseHTML parses markup and fails the test on error.
func ParseHTML(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

// FindAll returns the element nodes below n that satisfy match, in document
// order.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// ByTag matches elements with tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClass reports whether n carries class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
