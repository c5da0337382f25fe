package table

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/leapgrid/internal/ui/features/table/components"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/ui/workspace"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	workspace    *workspace.Workspace
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ws *workspace.Workspace, sessionStore sessions.Store, notify *notifier.Notifier, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		workspace:    ws,
		sessionStore: sessionStore,
		notifier:     notify,
		logger:       logger,
		isDev:        isDev,
	}
}

// instance returns the grid owned by the request's session, creating one
// (and setting the session cookie) when needed. It must run before any
// response body is written.
func (h *Handlers) instance(w http.ResponseWriter, r *http.Request) (*workspace.Instance, error) {
	session, err := h.sessionStore.Get(r, SessionName)
	if session == nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	id, _ := session.Values[sessionKey].(string)

	in, created, err := h.workspace.Resolve(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if created {
		session.Values[sessionKey] = in.ID
		if err := session.Save(r, w); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return in, nil
}

// GridPage renders the page with the session's grid.
func (h *Handlers) GridPage(w http.ResponseWriter, r *http.Request) {
	in, err := h.instance(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	title := "Grid"
	if src := h.workspace.Project().Config().Source; src.Table != "" {
		title = src.Table
	}
	if err := components.Page(title, h.isDev, in.Snapshot()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GridUpdates is the long-lived SSE endpoint of a grid. It re-patches the
// grid every time the grid raises a render. It does not send initial
// state, that is rendered by GridPage.
func (h *Handlers) GridUpdates(w http.ResponseWriter, r *http.Request) {
	in, err := h.instance(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(in.ID)
	defer h.notifier.Unsubscribe(in.ID, updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			// The instance may have been replaced by a reload.
			current, err := h.workspace.Get(in.ID)
			if err != nil {
				_ = sse.ConsoleError(err)
				return
			}
			if err := patch(sse, current.Snapshot()); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

func patch(sse *datastar.ServerSentEventGenerator, snap workspace.Snapshot) error {
	if err := sse.PatchElementTempl(components.Toolbar(snap)); err != nil {
		return err
	}
	return sse.PatchElementTempl(components.Grid(snap))
}

// actionFunc mutates the grid for one action. The returned text becomes
// the status line.
type actionFunc func(ctx context.Context, g *grid.Grid, s *Signals) (string, error)

// action runs fn on the session's grid under the instance lock and answers
// with the repainted grid. Failures are reported on the status line and
// the browser console; the grid is left as the core left it.
func (h *Handlers) action(name string, fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Read signals BEFORE creating SSE (SSE consumes the request body)
		var signals Signals
		if err := readSignals(r, &signals); err != nil {
			sse := datastar.NewSSE(w, r)
			_ = sse.ConsoleError(fmt.Errorf("failed to read signals: %w", err))
			return
		}

		in, err := h.instance(w, r)
		if err != nil {
			sse := datastar.NewSSE(w, r)
			_ = sse.ConsoleError(err)
			return
		}

		var status string
		err = in.Do(func(g *grid.Grid) error {
			var err error
			status, err = fn(r.Context(), g, &signals)
			return err
		})
		if err != nil {
			h.logger.Debug("grid action failed", "action", name, "id", in.ID, "error", err)
			status = err.Error()
		}
		in.SetStatus(status)

		sse := datastar.NewSSE(w, r)
		if err != nil {
			_ = sse.ConsoleError(err)
		}
		if err := patch(sse, in.Snapshot()); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
}

// readSignals decodes the posted signals. An empty body leaves s zero.
func readSignals(r *http.Request, s *Signals) error {
	s.Row = -1
	if r.Method != http.MethodGet && r.ContentLength == 0 {
		return nil
	}
	return datastar.ReadSignals(r, s)
}

// Sort toggles the sort on a column.
func (h *Handlers) Sort(w http.ResponseWriter, r *http.Request) {
	h.action("sort", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", g.SortBy(s.Column)
	})(w, r)
}

// Filter replaces the filter with one predicate.
func (h *Handlers) Filter(w http.ResponseWriter, r *http.Request) {
	h.action("filter", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		if s.Column == "" {
			return "", errors.New("choose a column to filter on")
		}
		op, err := grid.ParseOperator(s.Op)
		if err != nil {
			return "", err
		}
		if err := g.SetFilter([]grid.Predicate{{Field: s.Column, Op: op, Value: s.Value}}); err != nil {
			return "", err
		}
		return fmt.Sprintf("filtered on %s %s %s", s.Column, op, s.Value), nil
	})(w, r)
}

// ClearFilter shows every row again.
func (h *Handlers) ClearFilter(w http.ResponseWriter, r *http.Request) {
	h.action("clear filter", func(_ context.Context, g *grid.Grid, _ *Signals) (string, error) {
		g.ClearFilter()
		return "", nil
	})(w, r)
}

// Click raises the click hook and opens an editor on editable cells.
func (h *Handlers) Click(w http.ResponseWriter, r *http.Request) {
	h.action("click", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		if err := g.Click(s.Row, s.Column); err != nil {
			return "", err
		}
		if !g.CellEditable(s.Row, s.Column) {
			return "", nil
		}
		return "", g.OpenEditor(s.Row, s.Column)
	})(w, r)
}

// Resize lays the grid out for a new viewport width.
func (h *Handlers) Resize(w http.ResponseWriter, r *http.Request) {
	h.action("resize", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		if s.Width <= 0 || s.Width == g.Width() {
			return "", nil
		}
		return "", g.Resize(s.Width)
	})(w, r)
}

// ColumnWidth sets one column's width.
func (h *Handlers) ColumnWidth(w http.ResponseWriter, r *http.Request) {
	h.action("column width", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", g.SetColumnWidth(s.Column, s.Width)
	})(w, r)
}

// ShowColumn displays a hidden column.
func (h *Handlers) ShowColumn(w http.ResponseWriter, r *http.Request) {
	h.action("show column", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", g.ShowColumn(s.Column)
	})(w, r)
}

// HideColumn hides a column.
func (h *Handlers) HideColumn(w http.ResponseWriter, r *http.Request) {
	h.action("hide column", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", g.HideColumn(s.Column)
	})(w, r)
}

// EditOpen opens the editor on a cell.
func (h *Handlers) EditOpen(w http.ResponseWriter, r *http.Request) {
	h.action("edit open", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", g.OpenEditor(s.Row, s.Column)
	})(w, r)
}

// EditInput stores the typed draft.
func (h *Handlers) EditInput(w http.ResponseWriter, r *http.Request) {
	h.action("edit input", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", applyDraft(g, s)
	})(w, r)
}

// EditKey applies the draft and handles a navigation key.
func (h *Handlers) EditKey(w http.ResponseWriter, r *http.Request) {
	h.action("edit key", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		if !ownsEditor(g, s) {
			return "", nil
		}
		k, err := grid.ParseKey(s.Key)
		if err != nil {
			return "", err
		}
		if k != grid.KeyEscape {
			if err := applyDraft(g, s); err != nil {
				return "", err
			}
		}
		return "", g.EditKey(k)
	})(w, r)
}

// EditBlur applies the draft and closes the editor through the commit path.
func (h *Handlers) EditBlur(w http.ResponseWriter, r *http.Request) {
	h.action("edit blur", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		if !ownsEditor(g, s) {
			return "", nil
		}
		if err := applyDraft(g, s); err != nil {
			return "", err
		}
		closed, err := g.Blur()
		if err != nil {
			return "", err
		}
		if !closed {
			return "edit kept open", nil
		}
		return "", nil
	})(w, r)
}

// EditCancel discards the draft and closes the editor.
func (h *Handlers) EditCancel(w http.ResponseWriter, r *http.Request) {
	h.action("edit cancel", func(_ context.Context, g *grid.Grid, _ *Signals) (string, error) {
		g.CancelEdit()
		return "", nil
	})(w, r)
}

// ownsEditor reports whether the posted cell is the one being edited.
func ownsEditor(g *grid.Grid, s *Signals) bool {
	st := g.EditState()
	return st.Open && st.Row == s.Row && st.Column == s.Column
}

// applyDraft converts the posted draft to the column's type and stores it.
func applyDraft(g *grid.Grid, s *Signals) error {
	if s.Draft == nil {
		return nil
	}
	st := g.EditState()
	if !st.Open {
		return grid.ErrNoEditor
	}
	c, err := g.Column(st.Column)
	if err != nil {
		return err
	}
	return g.SetEditValue(c.CoerceInput(*s.Draft))
}

// DragBegin starts a resize, column move or row move.
func (h *Handlers) DragBegin(w http.ResponseWriter, r *http.Request) {
	h.action("drag begin", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		kind, err := grid.ParseDragKind(s.Kind)
		if err != nil {
			return "", err
		}
		return "", g.BeginDrag(grid.DragStart{Kind: kind, Column: s.Column, Row: s.Row, X: s.X, Y: s.Y})
	})(w, r)
}

// DragMove follows the pointer.
func (h *Handlers) DragMove(w http.ResponseWriter, r *http.Request) {
	h.action("drag move", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		g.DragMove(s.X, s.Y)
		return "", nil
	})(w, r)
}

// DragEnd applies the drag at the drop position.
func (h *Handlers) DragEnd(w http.ResponseWriter, r *http.Request) {
	h.action("drag end", func(_ context.Context, g *grid.Grid, s *Signals) (string, error) {
		return "", g.EndDrag(grid.DragDrop{X: s.X, Y: s.Y, Column: s.Column, Row: s.Row, Rect: s.Rect.toGrid()})
	})(w, r)
}

// Save pushes committed edits to the source.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	h.action("save", func(ctx context.Context, g *grid.Grid, _ *Signals) (string, error) {
		n, err := h.workspace.Project().Save(ctx, g)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "nothing to save", nil
		}
		return fmt.Sprintf("saved %d cells", n), nil
	})(w, r)
}

// Reload replaces the rows with a fresh fetch.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	h.action("reload", func(ctx context.Context, g *grid.Grid, _ *Signals) (string, error) {
		if err := h.workspace.Project().Reload(ctx, g); err != nil {
			return "", err
		}
		return "reloaded", nil
	})(w, r)
}
