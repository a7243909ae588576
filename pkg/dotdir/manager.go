// Package dotdir resolves the speakmcp configuration directory and persists
// small pieces of CLI state inside it.
//
// The directory holds cli.toml, the local turn journal and the id of the
// last conversation a turn completed in, so "speakmcp send --continue" can
// pick up where the previous invocation left off.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// localDirName is the project-local directory name.
	localDirName = ".speakmcp"

	// appDirName is the directory name under the user config directory.
	appDirName = "speakmcp"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to the speakmcp config directory,
// creating it if needed. Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.speakmcp/ dir
//  3. User config dir (e.g. ~/.config/speakmcp/)
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.Resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating speakmcp directory %s: %w", dir, err)
	}

	return dir, nil
}

// Resolve returns the same path as Target without touching the filesystem.
func (m *Manager) Resolve(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, localDirName)

	default:
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("getting user config directory: %w", err)
		}
		dir = filepath.Join(base, appDirName)
	}

	return filepath.Abs(dir)
}

// localDirExists checks whether a .speakmcp/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, localDirName))
	return err == nil && info.IsDir()
}
