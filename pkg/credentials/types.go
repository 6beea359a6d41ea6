package credentials

import (
	"sort"
	"strings"
)

// Credentials is the on-disk layout of credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential holds the API key for a single provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}

// Key returns the stored key for provider with surrounding whitespace
// removed, or "" when none is stored.
func (c *Credentials) Key(provider string) string {
	return strings.TrimSpace(c.Providers[provider].APIKey)
}

func (c *Credentials) set(provider, key string) {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderCredential)
	}
	c.Providers[provider] = ProviderCredential{APIKey: strings.TrimSpace(key)}
}

// names returns the providers with a stored credential, sorted.
func (c *Credentials) names() []string {
	providers := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}
