package expr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// LoadError reports a helper file that could not be loaded.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// LoadHelpers executes each .star file and returns one namespace per file,
// named after the file. Names starting with "_" stay private. Relative
// paths resolve against baseDir.
func LoadHelpers(baseDir string, files []string) (starlark.StringDict, error) {
	out := make(starlark.StringDict, len(files))
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		name, module, err := loadHelper(path)
		if err != nil {
			return nil, err
		}
		if _, dup := out[name]; dup {
			return nil, &LoadError{File: path, Message: fmt.Sprintf("duplicate helper namespace %q", name)}
		}
		out[name] = module
	}
	return out, nil
}

func loadHelper(path string) (string, starlark.Value, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the grid schema
	if err != nil {
		return "", nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := validateNamespace(name); err != nil {
		return "", nil, &LoadError{File: path, Message: err.Error()}
	}

	thread := &starlark.Thread{
		Name:  "load:" + name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, content, nil)
	if err != nil {
		return "", nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	exports := make(starlark.StringDict)
	for k, v := range globals {
		if !strings.HasPrefix(k, "_") {
			exports[k] = v
		}
	}
	return name, starlarkstruct.FromStringDict(starlark.String(name), exports), nil
}

// validateNamespace checks that name is a Starlark identifier.
func validateNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if !letter && (i == 0 || !digit) {
			return fmt.Errorf("namespace %q is not a valid identifier", name)
		}
	}
	return nil
}
