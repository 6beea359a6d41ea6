package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent gemcli configuration stored as config.toml
// in the .gemcli/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Stream  StreamConfig `toml:"stream"`
	Render  RenderConfig `toml:"render"`
}

// ClientConfig holds settings for the request sent to the Gemini API.
type ClientConfig struct {
	Model    string `toml:"model,omitempty"`
	Endpoint string `toml:"endpoint,omitempty"`

	// SystemPrompt replaces the built-in system instruction when set.
	SystemPrompt string `toml:"system_prompt,omitempty"`

	// Stream selects streamGenerateContent over a single generateContent call.
	Stream bool `toml:"stream"`

	// Timeout is a Go duration string. "0s" means no timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// StreamConfig holds settings for the streaming response decoder.
type StreamConfig struct {
	Reassemble bool `toml:"reassemble"`
}

// RenderConfig holds settings for terminal output.
type RenderConfig struct {
	Markdown bool `toml:"markdown"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error {
			if v == "" {
				return fmt.Errorf("client.model must not be empty")
			}
			c.Client.Model = v
			return nil
		},
	},
	"client.endpoint": {
		get: func(c *Config) string { return c.Client.Endpoint },
		set: func(c *Config, v string) error { c.Client.Endpoint = v; return nil },
	},
	"client.system_prompt": {
		get: func(c *Config) string { return c.Client.SystemPrompt },
		set: func(c *Config, v string) error { c.Client.SystemPrompt = v; return nil },
	},
	"client.stream": {
		get: func(c *Config) string { return strconv.FormatBool(c.Client.Stream) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.stream: %w", err)
			}
			c.Client.Stream = b
			return nil
		},
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			if d < 0 {
				return fmt.Errorf("invalid value for client.timeout: %q is negative", v)
			}
			c.Client.Timeout = d.String()
			return nil
		},
	},
	"stream.reassemble": {
		get: func(c *Config) string { return strconv.FormatBool(c.Stream.Reassemble) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for stream.reassemble: %w", err)
			}
			c.Stream.Reassemble = b
			return nil
		},
	},
	"render.markdown": {
		get: func(c *Config) string { return strconv.FormatBool(c.Render.Markdown) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for render.markdown: %w", err)
			}
			c.Render.Markdown = b
			return nil
		},
	},
}
