package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/gemcli/pkg/dotdir"
)

// EnvPrefix is the prefix of environment variables read by InitViper,
// e.g. GEMCLI_CLIENT_MODEL.
const EnvPrefix = "GEMCLI"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the GEMCLI_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (GEMCLI_CLIENT_MODEL, GEMCLI_STREAM_REASSEMBLE, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Source names the layer a configuration value came from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceFile    Source = "config.toml"
	SourceDefault Source = "default"
)

// EnvVarForKey returns the environment variable that overrides key,
// e.g. GEMCLI_CLIENT_MODEL for client.model.
func EnvVarForKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// KeySource reports which layer supplies key in v, ignoring flags.
func KeySource(v *viper.Viper, key string) Source {
	if _, ok := os.LookupEnv(EnvVarForKey(key)); ok {
		return SourceEnv
	}
	if v.InConfig(key) {
		return SourceFile
	}
	return SourceDefault
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("client.model", d.Client.Model)
	v.SetDefault("client.endpoint", d.Client.Endpoint)
	v.SetDefault("client.system_prompt", d.Client.SystemPrompt)
	v.SetDefault("client.stream", d.Client.Stream)
	v.SetDefault("client.timeout", d.Client.Timeout)

	v.SetDefault("stream.reassemble", d.Stream.Reassemble)

	v.SetDefault("render.markdown", d.Render.Markdown)
}
