// Package gemclicmder provides the root gemcli command: send one prompt to
// Gemini and print the answer.
package gemclicmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	authcmder "github.com/papercomputeco/gemcli/cmd/gemcli/auth"
	configcmder "github.com/papercomputeco/gemcli/cmd/gemcli/config"
	versioncmder "github.com/papercomputeco/gemcli/cmd/version"
	"github.com/papercomputeco/gemcli/pkg/cliui"
	"github.com/papercomputeco/gemcli/pkg/config"
	"github.com/papercomputeco/gemcli/pkg/credentials"
	"github.com/papercomputeco/gemcli/pkg/gemini"
	"github.com/papercomputeco/gemcli/pkg/logger"
	"github.com/papercomputeco/gemcli/pkg/prompt"
	"github.com/papercomputeco/gemcli/pkg/sse"
)

const gemcliLongDesc string = `Fast AI using Gemini from your terminal.

The prompt is taken from piped stdin when present, otherwise from the
positional arguments. The answer is streamed to stdout as it is generated.

The API key is read from GEMINI_API_KEY (the environment or a .env file in
the current directory), falling back to a key stored with "gemcli auth".

Examples:
  gemcli list 3 colors
  gemcli -m gemini-2.5-pro "explain the tar flags -xzvf"
  git diff | gemcli
  gemcli --no-stream --markdown "a haiku about pipes"
  gemcli -- -v means verbose?`

const gemcliShortDesc string = "Fast AI using Gemini from your terminal"

const usageLine = "Usage: gemcli [flags] <prompt>"

// registeredFlags are the flags bound to viper keys.
var registeredFlags = []string{
	config.FlagModel,
	config.FlagEndpoint,
	config.FlagSystemPrompt,
	config.FlagStream,
	config.FlagTimeout,
	config.FlagReassemble,
	config.FlagMarkdown,
}

type gemcliCommander struct {
	// flag targets; the effective values are read back through viper
	model        string
	endpoint     string
	systemPrompt string
	stream       bool
	noStream     bool
	timeout      time.Duration
	reassemble   bool
	markdown     bool
	logFile      string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	lookupEnv  func(string) (string, bool)
	stdinPiped func(io.Reader) bool
	httpClient *http.Client

	logger *slog.Logger
}

// settings is the resolved configuration of one invocation.
type settings struct {
	model        string
	endpoint     string
	systemPrompt string
	stream       bool
	timeout      time.Duration
	reassemble   bool
	markdown     bool
}

// Option customizes the root command, mainly for tests.
type Option func(*gemcliCommander)

// WithLookupEnv replaces os.LookupEnv for API key resolution.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(c *gemcliCommander) {
		c.lookupEnv = fn
	}
}

// WithStdinPiped replaces the check that decides whether stdin carries the
// prompt.
func WithStdinPiped(fn func(io.Reader) bool) Option {
	return func(c *gemcliCommander) {
		c.stdinPiped = fn
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *gemcliCommander) {
		c.httpClient = client
	}
}

func NewGemcliCmd(opts ...Option) *cobra.Command {
	cmder := &gemcliCommander{
		lookupEnv:  os.LookupEnv,
		stdinPiped: stdinIsPiped,
	}
	for _, opt := range opts {
		opt(cmder)
	}

	cmd := &cobra.Command{
		Use:           "gemcli [prompt...]",
		Short:         gemcliShortDesc,
		Long:          gemcliLongDesc,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd, args)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .gemcli/ config directory")

	config.AddStringFlag(cmd, config.CLIFlags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.CLIFlags, config.FlagEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.CLIFlags, config.FlagSystemPrompt, &cmder.systemPrompt)
	config.AddBoolFlag(cmd, config.CLIFlags, config.FlagStream, &cmder.stream)
	config.AddDurationFlag(cmd, config.CLIFlags, config.FlagTimeout, &cmder.timeout)
	config.AddBoolFlag(cmd, config.CLIFlags, config.FlagReassemble, &cmder.reassemble)
	config.AddBoolFlag(cmd, config.CLIFlags, config.FlagMarkdown, &cmder.markdown)
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the whole answer instead of streaming (same as --stream=false)")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	// "help" and "completion" are ordinary prompt words. --help and -h still
	// print usage.
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpCommand(newPromptHelpCmd(cmd, cmder))

	return cmd
}

// newPromptHelpCmd replaces cobra's help command. Cobra always registers one
// on a root with subcommands, so it sends "help ..." to the root as a prompt.
func newPromptHelpCmd(root *cobra.Command, cmder *gemcliCommander) *cobra.Command {
	return &cobra.Command{
		Use:                "help",
		Hidden:             true,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root.InitDefaultHelpFlag()
			if err := root.ParseFlags(args); err != nil {
				return err
			}
			if help, _ := root.Flags().GetBool("help"); help {
				return root.Help()
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(root, append([]string{"help"}, root.Flags().Args()...))
		},
	}
}

func (c *gemcliCommander) run(cmd *cobra.Command, args []string) error {
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("could not get debug flag: %w", err)
	}
	configDir, _ := cmd.Flags().GetString("config-dir")

	closeLog, err := c.setupLogger(debug)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := loadDotenv(); err != nil {
		c.logger.Warn("ignoring .env file", "error", err)
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.CLIFlags, registeredFlags)

	s, err := c.resolveSettings(v)
	if err != nil {
		return err
	}

	text, err := prompt.Resolve(c.in, c.stdinPiped(c.in), args)
	if err != nil {
		if errors.Is(err, prompt.ErrEmptyPrompt) {
			fmt.Fprintln(c.errOut, usageLine)
		}
		return err
	}

	apiKey, err := c.resolveAPIKey(configDir)
	if err != nil {
		return err
	}
	c.logger = logger.Redact(c.logger, apiKey)

	client, err := gemini.NewClient(gemini.ClientConfig{
		BaseURL:       s.endpoint,
		APIKey:        apiKey,
		SystemPrompt:  s.systemPrompt,
		HTTPClient:    c.httpClient,
		Logger:        c.logger,
		StreamOptions: streamOptions(s),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	c.logger.Debug("resolved request settings",
		"model", s.model,
		"stream", s.stream,
		"reassemble", s.reassemble,
		"timeout", s.timeout,
	)

	if s.stream {
		return c.runStream(ctx, client, s, text)
	}
	return c.runGenerate(ctx, client, s, text)
}

func (c *gemcliCommander) runStream(ctx context.Context, client *gemini.Client, s settings, text string) error {
	stream, err := client.Stream(ctx, s.model, text)
	if err != nil {
		return err
	}
	defer stream.Close()

	renderer := cliui.StreamRenderer{Out: c.out, Label: cliui.Label(c.out)}
	if err := renderer.RenderStream(stream.Fragments()); err != nil {
		return fmt.Errorf("reading response stream: %w", err)
	}

	c.logger.Debug("stream finished", "saw_done", stream.SawDone())
	return nil
}

func (c *gemcliCommander) runGenerate(ctx context.Context, client *gemini.Client, s settings, text string) error {
	var res *gemini.GenerateResult
	call := func() error {
		var err error
		res, err = client.Generate(ctx, s.model, text)
		return err
	}

	var err error
	if isTerminal(c.errOut) {
		err = cliui.Step(c.errOut, "Waiting for "+s.model, call)
	} else {
		err = call()
	}
	if err != nil {
		return err
	}

	return cliui.RenderResult(c.out, c.errOut, cliui.Label(c.out), res, s.markdown)
}

func (c *gemcliCommander) resolveSettings(v *viper.Viper) (settings, error) {
	s := settings{
		model:        v.GetString("client.model"),
		endpoint:     v.GetString("client.endpoint"),
		systemPrompt: v.GetString("client.system_prompt"),
		stream:       v.GetBool("client.stream") && !c.noStream,
		reassemble:   v.GetBool("stream.reassemble"),
		markdown:     v.GetBool("render.markdown"),
	}

	rawTimeout := v.GetString("client.timeout")
	if rawTimeout == "" {
		rawTimeout = "0s"
	}
	timeout, err := time.ParseDuration(rawTimeout)
	if err != nil {
		return settings{}, fmt.Errorf("invalid client.timeout: %w", err)
	}
	if timeout < 0 {
		return settings{}, fmt.Errorf("invalid client.timeout: %s is negative", timeout)
	}
	s.timeout = timeout

	if s.model == "" {
		return settings{}, gemini.ErrEmptyModel
	}

	return s, nil
}

func (c *gemcliCommander) resolveAPIKey(configDir string) (string, error) {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		c.logger.Debug("credentials store unavailable", "error", err)
		return credentials.ResolveAPIKey(credentials.ProviderGemini, c.lookupEnv, nil)
	}
	return credentials.ResolveAPIKey(credentials.ProviderGemini, c.lookupEnv, mgr)
}

// setupLogger writes pretty logs to the error stream and, with --log-file,
// JSON logs to that file as well. The returned func closes the file.
func (c *gemcliCommander) setupLogger(debug bool) (func(), error) {
	pretty := logger.New(
		logger.WithDebug(debug),
		logger.WithFormat(logger.FormatPretty),
		logger.WithWriter(c.errOut),
	)

	if c.logFile == "" {
		c.logger = pretty
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(pretty, logger.New(
		logger.WithDebug(debug),
		logger.WithFormat(logger.FormatJSON),
		logger.WithWriter(f),
	))

	return func() { _ = f.Close() }, nil
}

func streamOptions(s settings) []sse.Option {
	if s.reassemble {
		return []sse.Option{sse.WithReassembly()}
	}
	return nil
}

// loadDotenv loads ./.env without overriding variables that are already set.
// A missing file is not an error.
func loadDotenv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// stdinIsPiped treats anything other than an interactive terminal as piped
// input.
func stdinIsPiped(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return true
	}
	return prompt.StdinIsPiped(f)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
