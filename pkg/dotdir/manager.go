// Package dotdir manages the .praxisvoice/ and ~/.praxisvoice directories.
//
// The directory holds config.toml, the SQLite call log when configured with
// a relative path, and the state of interactive simulate sessions.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the praxisvoice directory.
	dirName = ".praxisvoice"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .praxisvoice/ directory.
// Order of precedence is as follows:
//  1. Provided override, created if missing
//  2. Local ./.praxisvoice/ dir
//  3. Home ~/.praxisvoice/ dir
//  4. If none found, an empty string
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating praxisvoice directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if isDir(filepath.Join(cwd, dirName)) {
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if isDir(filepath.Join(home, dirName)) {
		return filepath.Join(home, dirName), nil
	}

	return "", nil
}

// Ensure behaves like Target but creates ~/.praxisvoice/ when no directory
// was found.
func (m *Manager) Ensure(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir = filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating praxisvoice directory %s: %w", dir, err)
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
