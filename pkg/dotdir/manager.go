// Package dotdir resolves the .gemcli/ directory that holds config.toml and
// credentials.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// dirName is the name of the gemcli directory.
	dirName = ".gemcli"

	// EnvDir names a directory to use when no override is given.
	EnvDir = "GEMCLI_DIR"
)

// Manager resolves the .gemcli/ directory. The zero value is not usable;
// create one with NewManager.
type Manager struct {
	getwd   func() (string, error)
	homeDir func() (string, error)
	getenv  func(string) string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithWorkDir resolves the local .gemcli/ directory under dir instead of the
// process working directory.
func WithWorkDir(dir string) Option {
	return func(m *Manager) {
		m.getwd = func() (string, error) { return dir, nil }
	}
}

// WithHomeDir resolves ~/.gemcli/ under dir instead of the user's home.
func WithHomeDir(dir string) Option {
	return func(m *Manager) {
		m.homeDir = func() (string, error) { return dir, nil }
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		getwd:   os.Getwd,
		homeDir: os.UserHomeDir,
		getenv:  os.Getenv,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Target returns the absolute path to the .gemcli/ directory, creating it
// when missing. Order of precedence:
//  1. Provided override ("~/" expands to the home directory)
//  2. $GEMCLI_DIR
//  3. Local ./.gemcli/ dir, when it exists
//  4. Home ~/.gemcli/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating gemcli directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

func (m *Manager) resolve(overrideDir string) (string, error) {
	if overrideDir == "" {
		overrideDir = m.getenv(EnvDir)
	}
	if overrideDir != "" {
		return m.expandHome(overrideDir)
	}

	cwd, err := m.getwd()
	if err == nil {
		local := filepath.Join(cwd, dirName)
		if info, statErr := os.Stat(local); statErr == nil && info.IsDir() {
			return local, nil
		}
	}

	home, err := m.homeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

func (m *Manager) expandHome(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok && path != "~" {
		return path, nil
	}

	home, err := m.homeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}
