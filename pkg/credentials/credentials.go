// Package credentials stores provider API keys in credentials.toml inside the
// .gemcli/ directory and resolves the key used for a request.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/gemcli/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// ProviderGemini is the only provider gemcli talks to.
	ProviderGemini = "gemini"
)

// ErrEmptyKey is returned when an empty API key would be stored.
var ErrEmptyKey = errors.New("API key is empty")

// providerEnvVars maps provider names to their expected environment variables.
var providerEnvVars = map[string]string{
	ProviderGemini: "GEMINI_API_KEY",
}

// Manager reads and writes credentials.toml in the .gemcli/ directory.
type Manager struct {
	targetPath string
}

// NewManager resolves the credentials file. A non-empty override is used as
// the .gemcli/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	target, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}

	return &Manager{targetPath: filepath.Join(target, credentialsFile)}, nil
}

// Load reads credentials.toml. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	creds := &Credentials{
		Version:   currentVersion,
		Providers: make(map[string]ProviderCredential),
	}

	data, err := os.ReadFile(m.targetPath)
	if errors.Is(err, os.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if creds.Version != currentVersion {
		return nil, fmt.Errorf("unsupported credentials version %d in %s", creds.Version, m.targetPath)
	}
	if creds.Providers == nil {
		creds.Providers = make(map[string]ProviderCredential)
	}

	return creds, nil
}

// Save replaces credentials.toml atomically. The file is only ever readable
// by its owner.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.targetPath), ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.targetPath); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// update loads the credentials, applies fn and saves the result.
func (m *Manager) update(fn func(*Credentials)) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	fn(creds)
	return m.Save(creds)
}

// SetKey stores an API key for provider, replacing any previous one.
func (m *Manager) SetKey(provider, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	return m.update(func(c *Credentials) { c.set(provider, key) })
}

// GetKey returns the stored API key for provider, or "" when none is stored.
func (m *Manager) GetKey(provider string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Key(provider), nil
}

// RemoveKey deletes the stored credential for provider.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(c *Credentials) { delete(c.Providers, provider) })
}

// ListProviders returns the providers with stored credentials, sorted.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	return creds.names(), nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForProvider returns the environment variable name for a given provider.
// Returns an empty string for unknown providers.
func EnvVarForProvider(provider string) string {
	return providerEnvVars[provider]
}

// SupportedProviders returns the list of providers that require API keys.
func SupportedProviders() []string {
	return []string{ProviderGemini}
}

// IsSupportedProvider returns true if the given provider is supported.
func IsSupportedProvider(provider string) bool {
	return slices.Contains(SupportedProviders(), provider)
}
