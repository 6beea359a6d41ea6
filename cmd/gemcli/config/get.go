package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gemcli/pkg/cliui"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from config.toml, falling back to the
default. With --raw only the value is printed, for use in scripts.

Examples:
  gemcli config get client.model
  gemcli config get --raw client.timeout`

const getShortDesc string = "Get a configuration value"

func newGetCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:               "get <key>",
		Short:             getShortDesc,
		Long:              getLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newCommander(cmd).runGet(args[0], raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the value")

	return cmd
}

func (c *configCommander) runGet(key string, raw bool) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := c.configer()
	if err != nil {
		return err
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if raw {
		_, err := fmt.Fprintln(c.out, value)
		return err
	}

	shown := cliui.ValueStyle.Render(value)
	if value == "" {
		shown = cliui.DimStyle.Render("<not set>")
	}

	fmt.Fprintf(c.out, "\n  %s %s\n\n  %s  %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
		cliui.KeyStyle.Render(key),
		shown,
	)
	return nil
}
