package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/gemcli/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Set targetPath even when the file is missing so SaveConfig can
	// create it.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in the
// order of the TOML section layout.
func ValidConfigKeys() []string {
	return []string{
		"client.model",
		"client.endpoint",
		"client.system_prompt",
		"client.stream",
		"client.timeout",
		"stream.reassemble",
		"render.markdown",
	}
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target .gemcli/
// directory. If the file does not exist, returns NewDefaultConfig() so callers
// always receive a fully-populated Config. Fields explicitly set in the file
// override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, md, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg, md)

	return cfg, nil
}

// applyDefaults fills fields missing from the decoded file with values from
// NewDefaultConfig(). Booleans are only defaulted when the key is absent, so
// an explicit false survives.
func applyDefaults(cfg *Config, md toml.MetaData) {
	defaults := NewDefaultConfig()

	if cfg.Client.Model == "" {
		cfg.Client.Model = defaults.Client.Model
	}
	if cfg.Client.Endpoint == "" {
		cfg.Client.Endpoint = defaults.Client.Endpoint
	}
	if cfg.Client.Timeout == "" {
		cfg.Client.Timeout = defaults.Client.Timeout
	}
	if !md.IsDefined("client", "stream") {
		cfg.Client.Stream = defaults.Client.Stream
	}
	if !md.IsDefined("stream", "reassemble") {
		cfg.Stream.Reassemble = defaults.Stream.Reassemble
	}
	if !md.IsDefined("render", "markdown") {
		cfg.Render.Markdown = defaults.Render.Markdown
	}
}

// SaveConfig persists the configuration to config.toml in the target .gemcli/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config. It fails on an
// unsupported version, on keys gemcli does not know and on an invalid
// client.timeout.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg, _, err := parseConfig(data)
	return cfg, err
}

func parseConfig(data []byte) (*Config, toml.MetaData, error) {
	cfg := &Config{}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, md, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, md, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, md, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if cfg.Client.Timeout != "" {
		if err := configKeys["client.timeout"].set(&Config{}, cfg.Client.Timeout); err != nil {
			return nil, md, err
		}
	}

	return cfg, md, nil
}
