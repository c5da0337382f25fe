// Package table provides the grid page, its updates stream and the grid
// actions of the UI.
package table

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/leapgrid/internal/ui/notifier"
	"github.com/leapstack-labs/leapgrid/internal/ui/workspace"
)

// SetupRoutes configures routes for the grid feature.
func SetupRoutes(
	router chi.Router,
	ws *workspace.Workspace,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	logger *slog.Logger,
	isDev bool,
) error {
	handlers := NewHandlers(ws, sessionStore, notify, logger, isDev)

	router.Get("/", handlers.GridPage)
	router.Get("/grid/updates", handlers.GridUpdates)

	router.Route("/api/grid", func(r chi.Router) {
		r.Post("/sort", handlers.Sort)
		r.Post("/filter", handlers.Filter)
		r.Post("/filter/clear", handlers.ClearFilter)
		r.Post("/click", handlers.Click)
		r.Post("/resize", handlers.Resize)
		r.Post("/width", handlers.ColumnWidth)
		r.Post("/columns/show", handlers.ShowColumn)
		r.Post("/columns/hide", handlers.HideColumn)

		r.Route("/edit", func(r chi.Router) {
			r.Post("/open", handlers.EditOpen)
			r.Post("/input", handlers.EditInput)
			r.Post("/key", handlers.EditKey)
			r.Post("/blur", handlers.EditBlur)
			r.Post("/cancel", handlers.EditCancel)
		})

		r.Route("/drag", func(r chi.Router) {
			r.Post("/begin", handlers.DragBegin)
			r.Post("/move", handlers.DragMove)
			r.Post("/end", handlers.DragEnd)
		})

		r.Post("/save", handlers.Save)
		r.Post("/reload", handlers.Reload)
	})

	return nil
}
