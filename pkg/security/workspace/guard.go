// Package workspace keeps file output inside a designated directory. The
// scenario runner uses it so that an artifact path taken from a scenario file
// cannot write outside the directory the run was started in.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Guard enforces workspace boundary restrictions on file paths.
type Guard struct {
	workspaceDir string   // Absolute path to workspace root
	allowedDirs  []string // Additional allowed directories outside workspace
}

// NewGuard creates a guard for an existing directory. The path is made
// absolute and symlinks are evaluated.
func NewGuard(workspaceDir string) (*Guard, error) {
	if workspaceDir == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absPath, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}
	evalPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate workspace directory symlinks: %w", err)
	}

	return &Guard{workspaceDir: evalPath}, nil
}

// Allow permits paths under dir even when it lies outside the workspace.
// The directory does not need to exist yet.
func (g *Guard) Allow(dir string) error {
	if dir == "" {
		return fmt.Errorf("allowed directory cannot be empty")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve allowed directory: %w", err)
	}

	evalPath := resolveSymlinks(absPath)
	for _, existing := range g.allowedDirs {
		if existing == evalPath {
			return nil
		}
	}
	g.allowedDirs = append(g.allowedDirs, evalPath)
	return nil
}

// Resolve turns path into an absolute path, relative paths being taken from
// the workspace, and fails if the result is outside the workspace and every
// allowed directory. A leading ~/ expands to the home directory.
func (g *Guard) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	expanded := path
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}

	abs := filepath.Clean(expanded)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(g.workspaceDir, abs)
	}

	resolved := resolveSymlinks(abs)
	if !g.contains(resolved) {
		return "", fmt.Errorf("path '%s' is outside workspace boundaries", path)
	}
	return resolved, nil
}

// contains reports whether an evaluated absolute path is the workspace, an
// allowed directory or a child of either.
func (g *Guard) contains(evalPath string) bool {
	for _, root := range append([]string{g.workspaceDir}, g.allowedDirs...) {
		if evalPath == root || strings.HasPrefix(evalPath+string(filepath.Separator), root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// WorkspaceDir returns the absolute path of the workspace directory.
func (g *Guard) WorkspaceDir() string {
	return g.workspaceDir
}

// resolveSymlinks resolves symlinks in a path, handling non-existent paths
// by resolving the nearest existing parent and re-appending the rest.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	var components []string
	currentPath := path
	for {
		if resolved, err := filepath.EvalSymlinks(currentPath); err == nil {
			result := resolved
			for i := len(components) - 1; i >= 0; i-- {
				result = filepath.Join(result, components[i])
			}
			return result
		}

		dir := filepath.Dir(currentPath)
		if dir == currentPath || dir == "." || dir == "/" {
			return filepath.Clean(path)
		}
		components = append(components, filepath.Base(currentPath))
		currentPath = dir
	}
}
