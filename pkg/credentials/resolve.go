package credentials

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingAPIKey is returned by ResolveAPIKey when no key can be found.
var ErrMissingAPIKey = errors.New("API key is not set")

// KeyStore is the read side of Manager used to resolve keys.
type KeyStore interface {
	GetKey(provider string) (string, error)
}

// ResolveAPIKey returns the API key for provider. The environment variable
// for the provider (which includes values loaded from .env) wins over a key
// stored in credentials.toml. store may be nil.
func ResolveAPIKey(provider string, lookupEnv func(string) (string, bool), store KeyStore) (string, error) {
	envVar := EnvVarForProvider(provider)
	if envVar == "" {
		return "", fmt.Errorf("unsupported provider %q", provider)
	}

	if lookupEnv != nil {
		if key, ok := lookupEnv(envVar); ok && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), nil
		}
	}

	if store != nil {
		key, err := store.GetKey(provider)
		if err != nil {
			return "", fmt.Errorf("reading stored credentials: %w", err)
		}
		if key != "" {
			return key, nil
		}
	}

	return "", fmt.Errorf("%w: set %s in the environment or a .env file, or run \"gemcli auth\"", ErrMissingAPIKey, envVar)
}
