package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gemcli/pkg/config"
)

const listLongDesc string = `List all configuration values.

Without flags the values stored in config.toml (or their defaults) are shown.
With --effective the values gemcli would actually use are shown, including
GEMCLI_* environment overrides, along with the layer each one comes from.

Examples:
  gemcli config list
  gemcli config list --effective`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newCommander(cmd)
			if effective {
				return c.runListEffective()
			}
			return c.runList()
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Show values after environment overrides, with their source")

	return cmd
}

func keyWidth() int {
	width := 0
	for _, k := range config.ValidConfigKeys() {
		width = max(width, len(k))
	}
	return width
}

func (c *configCommander) runList() error {
	cfger, err := c.configer()
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Using config file: %s\n\n", cfger.GetTarget())

	width := keyWidth()
	for _, key := range config.ValidConfigKeys() {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Fprintf(c.out, "%-*s = <not set>\n", width, key)
			continue
		}
		fmt.Fprintf(c.out, "%-*s = %q\n", width, key, value)
	}

	return nil
}

func (c *configCommander) runListEffective() error {
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}

	width := keyWidth()
	for _, key := range config.ValidConfigKeys() {
		fmt.Fprintf(c.out, "%-*s = %-28q # %s\n", width, key, v.GetString(key), config.KeySource(v, key))
	}

	return nil
}
