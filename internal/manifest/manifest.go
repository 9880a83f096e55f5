// Package manifest discovers package.json files and reads their declared
// dependencies.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FileName is the manifest file looked for in every directory.
const FileName = "package.json"

// ErrMalformed indicates a manifest that is not valid JSON.
var ErrMalformed = errors.New("malformed manifest")

// Project is one discovered manifest.
type Project struct {
	Name            string            `json:"name" yaml:"name"`
	Path            string            `json:"path" yaml:"path"` // slash-separated, relative to the root
	Version         string            `json:"version,omitempty" yaml:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty" yaml:"devDependencies,omitempty"`
}

// Problem records a manifest that could not be used.
type Problem struct {
	Path string
	Err  error
}

// Filter decides whether a slash-separated relative path is excluded.
type Filter func(relPath string) bool

type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Discover finds every package.json under root that the filter does not
// exclude. Malformed or unreadable manifests, and directories that cannot be
// listed, are reported as problems and skipped; only an unreadable root fails
// the walk. Projects are ordered by path.
func Discover(ctx context.Context, root string, excluded Filter, logger *slog.Logger) ([]Project, []Problem, error) {
	return discover(ctx, root, excluded, logger, filepath.WalkDir)
}

func discover(ctx context.Context, root string, excluded Filter, logger *slog.Logger, walk func(string, fs.WalkDirFunc) error) ([]Project, []Problem, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		projects []Project
		problems []Problem
	)
	skip := func(rel string, d fs.DirEntry, err error) error {
		logger.Warn("skipping unreadable path",
			slog.String("path", rel),
			slog.String("error", err.Error()),
		)
		problems = append(problems, Problem{Path: rel, Err: err})
		if d != nil && d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}

	err := walk(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == root && walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d == nil {
			return skip(rel, d, walkErr)
		}
		if rel != "." && excluded != nil && excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if walkErr != nil {
			return skip(rel, d, walkErr)
		}
		if d.IsDir() || d.Name() != FileName {
			return nil
		}

		p, err := Load(path)
		if err != nil {
			logger.Warn("skipping manifest",
				slog.String("path", rel),
				slog.String("error", err.Error()),
			)
			problems = append(problems, Problem{Path: rel, Err: err})
			return nil
		}
		p.Path = rel
		projects = append(projects, p)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })
	return projects, problems, nil
}

// Load reads a single manifest. A missing name falls back to the name of the
// directory holding the manifest.
func Load(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return Project{}, err
	}
	if p.Name == "" {
		p.Name = filepath.Base(filepath.Dir(path))
	}
	return p, nil
}

// Parse decodes manifest content.
func Parse(data []byte) (Project, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Project{
		Name:            pkg.Name,
		Version:         pkg.Version,
		Dependencies:    pkg.Dependencies,
		DevDependencies: pkg.DevDependencies,
	}, nil
}

// Merge returns the union of runtime and development dependencies across
// projects. When several projects declare the same name, the first project
// in order wins.
func Merge(projects []Project) map[string]string {
	all := make(map[string]string)
	for _, p := range projects {
		for _, deps := range []map[string]string{p.Dependencies, p.DevDependencies} {
			for name, version := range deps {
				if _, ok := all[name]; !ok {
					all[name] = version
				}
			}
		}
	}
	return all
}

// SortedNames returns the keys of deps in lexical order.
func SortedNames(deps map[string]string) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
