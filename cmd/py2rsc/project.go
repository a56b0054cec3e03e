package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/py2rs-dev/py2rs/internal/config"
)

// findProjectFile walks up from start looking for py2rs.yaml, mirroring
// config.FindProject but against the CLI's afero.Fs rather than the real
// filesystem directly, so the walk is exercised against afero.NewMemMapFs()
// in tests.
func findProjectFile(fsys afero.Fs, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	if ok, err := afero.DirExists(fsys, dir); err == nil && !ok {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, "py2rs.yaml")
		if ok, err := afero.Exists(fsys, candidate); err == nil && ok {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// loadOptions finds and parses the py2rs.yaml nearest to the first input
// path, resolving it into the CodegenOptions the pipeline actually uses.
// With no project file present, it returns config.Default() untouched.
func loadOptions(fsys afero.Fs, firstPath string) (*config.Project, config.CodegenOptions, error) {
	path, err := findProjectFile(fsys, filepath.Dir(firstPath))
	if err != nil {
		return nil, config.CodegenOptions{}, err
	}

	if path == "" {
		return nil, config.Default(), nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, config.CodegenOptions{}, fmt.Errorf("reading %s: %w", path, err)
	}

	project, err := config.ParseProject(data, path)
	if err != nil {
		return nil, config.CodegenOptions{}, err
	}

	if err := project.CheckToolchain(resolveVersion()); err != nil {
		return nil, config.CodegenOptions{}, err
	}

	return project, project.Resolve(), nil
}
