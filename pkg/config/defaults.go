package config

import "github.com/papercomputeco/gemcli/pkg/gemini"

const (
	defaultStream     = true
	defaultTimeout    = "0s"
	defaultReassemble = false
	defaultMarkdown   = false
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			Model:    gemini.DefaultModel,
			Endpoint: gemini.DefaultBaseURL,
			Stream:   defaultStream,
			Timeout:  defaultTimeout,
		},
		Stream: StreamConfig{
			Reassemble: defaultReassemble,
		},
		Render: RenderConfig{
			Markdown: defaultMarkdown,
		},
	}
}
