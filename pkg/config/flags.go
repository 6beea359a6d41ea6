package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline.
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling the Add*Flag helpers and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagModel        = "model"
	FlagEndpoint     = "endpoint"
	FlagSystemPrompt = "system-prompt"
	FlagStream       = "stream"
	FlagTimeout      = "timeout"
	FlagReassemble   = "reassemble"
	FlagMarkdown     = "markdown"
)

// CLIFlags is the registry of flags that map onto config keys.
var CLIFlags = FlagSet{
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "client.model",
		Description: "Gemini model to use",
	},
	FlagEndpoint: {
		Name:        "endpoint",
		ViperKey:    "client.endpoint",
		Description: "Base URL of the Gemini API",
	},
	FlagSystemPrompt: {
		Name:        "system-prompt",
		ViperKey:    "client.system_prompt",
		Description: "System instruction sent ahead of the prompt (empty for the built-in one)",
	},
	FlagStream: {
		Name:        "stream",
		ViperKey:    "client.stream",
		Description: "Stream the response as it is generated",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "client.timeout",
		Description: "Overall request timeout, e.g. 30s (0 for none)",
	},
	FlagReassemble: {
		Name:        "reassemble",
		ViperKey:    "stream.reassemble",
		Description: "Reassemble stream lines split across network reads",
	},
	FlagMarkdown: {
		Name:        "markdown",
		ViperKey:    "render.markdown",
		Description: "Render single-shot responses as markdown",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddDurationFlag registers a duration flag on cmd from the given FlagSet.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, key string, target *time.Duration) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetDuration(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().DurationVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().DurationVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only the values of NewDefaultConfig.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
