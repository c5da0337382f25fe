// Package workspace keeps the grid instances owned by browser sessions.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapgrid/internal/project"
	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// ErrNotFound is returned when an instance id is unknown.
var ErrNotFound = errors.New("grid instance not found")

// Instance is one grid owned by one browser session. Every mutation of the
// grid happens inside Do, under the instance mutex.
type Instance struct {
	ID string

	mu       sync.Mutex
	grid     *grid.Grid
	status   string
	lastSeen time.Time
}

// Do runs fn with exclusive access to the grid.
func (in *Instance) Do(fn func(g *grid.Grid) error) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.lastSeen = time.Now()
	return fn(in.grid)
}

// Snapshot is what a renderer needs to paint one instance.
type Snapshot struct {
	View    *grid.View
	Columns []grid.Column
	Changes int
	Status  string
}

// Snapshot captures the grid and the last status message.
func (in *Instance) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return Snapshot{
		View:    in.grid.View(),
		Columns: in.grid.Columns(),
		Changes: len(in.grid.Changes()),
		Status:  in.status,
	}
}

// SetStatus records the message shown under the grid.
func (in *Instance) SetStatus(msg string) {
	in.mu.Lock()
	in.status = msg
	in.mu.Unlock()
}

// Workspace maps instance ids to grids built from one project.
type Workspace struct {
	project  *project.Project
	notifier *notifier.Notifier
	logger   *slog.Logger

	mu        sync.RWMutex
	instances map[string]*Instance
}

// New creates a workspace. Grid repaints are announced on notify under the
// instance id.
func New(p *project.Project, notify *notifier.Notifier, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Workspace{
		project:   p,
		notifier:  notify,
		logger:    logger,
		instances: make(map[string]*Instance),
	}
}

// Project returns the project grids are built from.
func (w *Workspace) Project() *project.Project { return w.project }

// Get returns the instance with id.
func (w *Workspace) Get(id string) (*Instance, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	in, ok := w.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return in, nil
}

// Create builds a new grid from the project and registers it under a
// fresh id.
func (w *Workspace) Create(ctx context.Context) (*Instance, error) {
	id := uuid.NewString()
	in := &Instance{ID: id, lastSeen: time.Now()}

	g, err := w.project.NewGrid(ctx, w.hooks(in))
	if err != nil {
		return nil, err
	}
	in.grid = g

	w.mu.Lock()
	w.instances[id] = in
	w.mu.Unlock()

	w.logger.Debug("grid instance created", "id", id, "rows", g.Len())
	return in, nil
}

// Resolve returns the instance with id, creating a new one when id is empty
// or unknown (for example after a server restart).
func (w *Workspace) Resolve(ctx context.Context, id string) (*Instance, bool, error) {
	if id != "" {
		if in, err := w.Get(id); err == nil {
			return in, false, nil
		}
	}
	in, err := w.Create(ctx)
	if err != nil {
		return nil, false, err
	}
	return in, true, nil
}

func (w *Workspace) hooks(in *Instance) grid.Hooks {
	return grid.Hooks{
		Render: func() { w.notifier.Notify(in.ID) },
		CellChanged: func(c grid.CellChange) {
			w.logger.Debug("cell changed", "id", in.ID, "row", c.Row, "column", c.Column)
		},
		RowMoved: func(from, to int) {
			w.logger.Debug("row moved", "id", in.ID, "from", from, "to", to)
		},
		ColumnMoved: func(column string, position int) {
			w.logger.Debug("column moved", "id", in.ID, "column", column, "position", position)
		},
	}
}

// Len returns the number of live instances.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.instances)
}

// IDs returns the ids of the live instances, sorted.
func (w *Workspace) IDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]string, 0, len(w.instances))
	for id := range w.instances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (w *Workspace) all() []*Instance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Instance, 0, len(w.instances))
	for _, in := range w.instances {
		out = append(out, in)
	}
	return out
}

// ReloadAll re-reads the schema and rebuilds every instance from a fresh
// fetch. Instances keep their ids. Uncommitted edits are discarded.
func (w *Workspace) ReloadAll(ctx context.Context) error {
	if err := w.project.ReloadSchema(); err != nil {
		return err
	}

	var errs []error
	for _, in := range w.all() {
		g, err := w.project.NewGrid(ctx, w.hooks(in))
		if err != nil {
			errs = append(errs, fmt.Errorf("grid %s: %w", in.ID, err))
			continue
		}
		in.mu.Lock()
		if width := in.grid.Width(); width > 0 {
			_ = g.Resize(width)
		}
		in.grid = g
		in.status = "reloaded"
		in.mu.Unlock()
	}
	w.notifier.Broadcast()
	return errors.Join(errs...)
}

// RefreshAll replaces the rows of every instance with a fresh fetch.
// Sort, filter and layout state survive; uncommitted edits do not.
func (w *Workspace) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, in := range w.all() {
		err := in.Do(func(g *grid.Grid) error {
			return w.project.Reload(ctx, g)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("grid %s: %w", in.ID, err))
			continue
		}
		in.SetStatus("rows refreshed")
	}
	return errors.Join(errs...)
}

// Prune drops instances idle for longer than maxIdle.
func (w *Workspace) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for id, in := range w.instances {
		in.mu.Lock()
		idle := in.lastSeen.Before(cutoff)
		in.mu.Unlock()
		if idle && w.notifier.Listeners(id) == 0 {
			delete(w.instances, id)
			n++
		}
	}
	return n
}
