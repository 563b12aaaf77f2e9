package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// OpenLog opens name in the target .praxisvoice/ directory for appending,
// creating the file if needed. Returns nil, nil if no directory exists.
func (m *Manager) OpenLog(overrideDir, name string) (*os.File, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return nil, err
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return f, nil
}
