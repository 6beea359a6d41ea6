// Package authcmder provides the auth command for storing the Gemini API key.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/gemcli/pkg/cliui"
	"github.com/papercomputeco/gemcli/pkg/credentials"
)

const authLongDesc string = `Store the API key used to call Gemini.

The key is stored in credentials.toml in the .gemcli/ directory with 0600
permissions. GEMINI_API_KEY in the environment or in a .env file takes
precedence over the stored key.

Examples:
  gemcli auth                  Prompt for the Gemini API key
  gemcli auth --list           List stored credentials
  gemcli auth --remove gemini  Remove the stored key
  echo $KEY | gemcli auth      Pipe the API key from stdin`

const authShortDesc string = "Store the Gemini API key"

type authCommander struct {
	configDir string
	in        io.Reader
	out       io.Writer
}

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [provider]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			c := &authCommander{
				configDir: configDir,
				in:        cmd.InOrStdin(),
				out:       cmd.OutOrStdout(),
			}

			switch {
			case listFlag:
				return c.runList()
			case removeFlag != "":
				return c.runRemove(removeFlag)
			default:
				provider := credentials.ProviderGemini
				if len(args) == 1 {
					provider = args[0]
				}
				return c.runAuth(provider)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedProviders(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored credentials")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove stored credentials for a provider")

	return cmd
}

func (c *authCommander) runAuth(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))

	if !credentials.IsSupportedProvider(provider) {
		return fmt.Errorf("unsupported provider: %q\n\nSupported providers: %s",
			provider, strings.Join(credentials.SupportedProviders(), ", "))
	}

	apiKey, err := c.readAPIKey(provider)
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return credentials.ErrEmptyKey
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetKey(provider, apiKey); err != nil {
		return err
	}

	envVar := credentials.EnvVarForProvider(provider)
	fmt.Fprintf(c.out, "\n  %s Stored %s credentials %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(provider),
		cliui.DimStyle.Render("("+envVar+" takes precedence when set)"),
	)

	return nil
}

func (c *authCommander) runList() error {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	providers, err := mgr.ListProviders()
	if err != nil {
		return err
	}

	if len(providers) == 0 {
		fmt.Fprintf(c.out, "\n  %s No stored credentials.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(c.out, "  Use 'gemcli auth' to store the Gemini API key.\n\n")
		return nil
	}

	fmt.Fprintf(c.out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored credentials"))
	for _, p := range providers {
		key, err := mgr.GetKey(p)
		if err != nil {
			return err
		}

		line := fmt.Sprintf("  %s  %s  %s", cliui.SuccessMark, cliui.NameStyle.Render(p), cliui.ValueStyle.Render(maskKey(key)))
		if envVar := credentials.EnvVarForProvider(p); envVar != "" {
			note := "→ " + envVar
			switch overrideSource(envVar) {
			case sourceEnv:
				note = envVar + " is set and overrides this key"
			case sourceDotenv:
				note = envVar + " in .env overrides this key"
			}
			line += "  " + cliui.DimStyle.Render(note)
		}
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out)

	return nil
}

const (
	sourceNone = iota
	sourceEnv
	sourceDotenv
)

// overrideSource reports where a non-empty envVar would come from when the
// root command runs: the environment first, then ./.env.
func overrideSource(envVar string) int {
	if v, ok := os.LookupEnv(envVar); ok && strings.TrimSpace(v) != "" {
		return sourceEnv
	}
	vars, err := godotenv.Read()
	if err == nil && strings.TrimSpace(vars[envVar]) != "" {
		return sourceDotenv
	}
	return sourceNone
}

// maskKey hides all but the last four characters of a key. Short keys are
// hidden entirely.
func maskKey(key string) string {
	const visible = 4
	if len(key) <= 2*visible {
		return "****"
	}
	return "****" + key[len(key)-visible:]
}

func (c *authCommander) runRemove(provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(provider); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n  %s Removed %s credentials.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(provider))

	return nil
}

// readAPIKey reads the first line of piped input, or prompts with hidden
// input when stdin is a terminal.
func (c *authCommander) readAPIKey(provider string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(c.out, "Enter API key for %s (%s): ", provider, credentials.EnvVarForProvider(provider))

		keyBytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(keyBytes), nil
	}

	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
