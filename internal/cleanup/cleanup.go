// Package cleanup removes generated build artifacts and caches from a
// project tree.
package cleanup

import (
	"io/fs"
	"os"
	"path/filepath"

	"dotfiles/internal/logger"
)

// Group is a named set of filename patterns to remove together, so output
// can report what kind of clutter was deleted.
type Group struct {
	Name     string
	Dirs     []string
	Patterns []string
}

// DefaultGroups covers the artifacts a Python-heavy workspace accumulates.
var DefaultGroups = []Group{
	{
		Name:     "build artifacts",
		Dirs:     []string{"build", "dist"},
		Patterns: []string{"*.egg-info"},
	},
	{
		Name:     "bytecode caches",
		Dirs:     []string{"__pycache__"},
		Patterns: []string{"*.pyc"},
	},
	{
		Name:     "tool caches",
		Dirs:     []string{".mypy_cache", ".pytest_cache", ".ruff_cache", ".tox", ".nox"},
		Patterns: []string{".coverage"},
	},
}

// Clean walks root and removes everything matching the groups. Returns the
// number of paths removed. Matched directories are removed whole and not
// descended into.
func Clean(root string, groups []Group) (int, error) {
	removed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path == root {
			return nil
		}

		group, ok := match(d, groups)
		if !ok {
			return nil
		}

		logger.Debug("[DEBUG] Removing %s (%s)\n", path, group)
		if err := os.RemoveAll(path); err != nil {
			logger.Error("[ERROR] Failed to remove %s: %v\n", path, err)
			return nil
		}
		removed++
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	return removed, err
}

func match(d fs.DirEntry, groups []Group) (string, bool) {
	base := d.Name()
	for _, g := range groups {
		if d.IsDir() {
			for _, dir := range g.Dirs {
				if base == dir {
					return g.Name, true
				}
			}
		}
		for _, pattern := range g.Patterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				return g.Name, true
			}
		}
	}
	return "", false
}
