package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/ui/features"
)

func TestSetupRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		isDev      bool
		wantStatus int
	}{
		{"page", http.MethodGet, "/", false, http.StatusOK},
		{"health", http.MethodGet, "/healthz", false, http.StatusOK},
		{"script", http.MethodGet, "/static/grid.js", false, http.StatusOK},
		{"stylesheet", http.MethodGet, "/static/grid.css", false, http.StatusOK},
		{"missing asset", http.MethodGet, "/static/nope.js", false, http.StatusNotFound},
		{"hot reload in dev", http.MethodGet, "/hotreload", true, http.StatusOK},
		{"no hot reload in prod", http.MethodGet, "/hotreload", false, http.StatusNotFound},
		{"actions are POST only", http.MethodGet, "/api/grid/sort", false, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := features.SetupTestFixture(t, "", "")
			r := chi.NewMux()
			require.NoError(t, SetupRoutes(r, fixture.Workspace, fixture.SessionStore, fixture.Notifier, nil, tt.isDev))

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
