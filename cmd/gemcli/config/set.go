package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gemcli/pkg/cliui"
)

const setLongDesc string = `Set a configuration value.

Writes the key to config.toml in the .gemcli/ directory. Boolean keys accept
true/false and client.timeout accepts a duration such as 30s or 2m.

Examples:
  gemcli config set client.model gemini-2.5-pro
  gemcli config set client.stream false
  gemcli config set stream.reassemble true`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             setShortDesc,
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newCommander(cmd).runSet(args[0], args[1])
		},
	}
}

func (c *configCommander) runSet(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	cfger, err := c.configer()
	if err != nil {
		return err
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	// Show the stored form, e.g. "1m30s" for "90s".
	stored, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Set %s = %s %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(stored),
		cliui.DimStyle.Render("("+cfger.GetTarget()+")"),
	)
	return nil
}
