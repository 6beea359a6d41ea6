// Package configcmder provides the config command for managing persistent
// gemcli configuration stored in the .gemcli/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gemcli/pkg/config"
)

const configLongDesc string = `Manage persistent gemcli configuration.

Configuration is stored as config.toml in the .gemcli/ directory and provides
default values for command flags. CLI flags and GEMCLI_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.model, client.endpoint, client.system_prompt,
  client.stream, client.timeout,
  stream.reassemble, render.markdown

Examples:
  gemcli config set client.model gemini-2.5-pro
  gemcli config set client.timeout 30s
  gemcli config get client.model
  gemcli config list --effective`

const configShortDesc string = "Manage persistent gemcli configuration"

// configCommander carries what every config subcommand needs.
type configCommander struct {
	out       io.Writer
	configDir string
}

func newCommander(cmd *cobra.Command) *configCommander {
	configDir, _ := cmd.Flags().GetString("config-dir")
	return &configCommander{
		out:       cmd.OutOrStdout(),
		configDir: configDir,
	}
}

func (c *configCommander) configer() (*config.Configer, error) {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func validateKey(key string) error {
	if config.IsValidConfigKey(key) {
		return nil
	}
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

// completeKey offers config keys for the first positional argument.
func completeKey(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
