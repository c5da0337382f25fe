package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinify(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		src     string
		want    string
		wantErr bool
	}{
		{"javascript", "a.js", "function add(first, second) {\n  return first + second;\n}\nwindow.add = add;\n", "window.add=", false},
		{"stylesheet", "a.css", "body {\n  margin: 0px;\n}\n", "body{margin:0}", false},
		{"other passes through", "a.txt", "  keep  me  ", "  keep  me  ", false},
		{"syntax error", "bad.js", "function (", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Minify(tt.file, []byte(tt.src))
			if tt.wantErr {
				assert.ErrorContains(t, err, "esbuild errors")
				return
			}
			require.NoError(t, err)
			assert.Contains(t, string(out), tt.want)
			assert.LessOrEqual(t, len(out), len(tt.src))
		})
	}
}

func TestStaticPath(t *testing.T) {
	assert.Equal(t, "/static/grid.js", StaticPath("grid.js"))
}
