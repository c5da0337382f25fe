package project

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

//go:embed all:templates
var templateFS embed.FS

//go:embed migrations/*.sql
var migrations embed.FS

// DemoDatabase is the SQLite file created by Scaffold.
const DemoDatabase = "demo.db"

// Scaffold writes a new project into dir: configuration, schema, helper
// file and a SQLite database seeded by the embedded migrations. Existing
// files are kept unless force is set. It returns the written paths,
// relative to dir.
func Scaffold(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	written, err := copyTemplate("templates/demo", dir, force)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize project: %w", err)
	}

	dbPath := filepath.Join(dir, DemoDatabase)
	if force {
		_ = os.Remove(dbPath)
	}
	if _, err := os.Stat(dbPath); err != nil {
		if err := SeedDemo(dbPath); err != nil {
			return nil, err
		}
		written = append(written, DemoDatabase)
	}
	return written, nil
}

// SeedDemo creates or upgrades the demo database at path.
func SeedDemo(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open demo database: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// copyTemplate copies an embedded template directory to the target path.
func copyTemplate(root, targetDir string, force bool) ([]string, error) {
	var written []string
	err := fs.WalkDir(templateFS, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		target := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil // Skip existing files
			}
		}
		content, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0o600); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})
	return written, err
}
