//go:build !dev

package resources

import (
	"bytes"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

//go:embed static/*
var staticFS embed.FS

var (
	minifyOnce sync.Once
	minified   map[string][]byte
)

// minifyAll runs every embedded script and stylesheet through esbuild once.
// A file that fails to minify is served as written.
func minifyAll() {
	minified = make(map[string][]byte)
	entries, _ := fs.ReadDir(staticFS, "static")
	for _, e := range entries {
		src, err := staticFS.ReadFile("static/" + e.Name())
		if err != nil {
			continue
		}
		out, err := Minify(e.Name(), src)
		if err != nil {
			slog.Warn("failed to minify static asset", "file", e.Name(), "error", err)
			out = src
		}
		minified[e.Name()] = out
	}
}

// Handler returns an HTTP handler for serving static files.
// In production mode, files are embedded in the binary and minified.
func Handler() http.Handler {
	minifyOnce.Do(minifyAll)

	return http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := minified[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		// Cache embedded static assets for 1 year (they never change in prod)
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.ServeContent(w, r, r.URL.Path, time.Time{}, bytes.NewReader(body))
	}))
}

// IsDev reports whether assets are served from the source tree.
func IsDev() bool { return false }
