package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/gemcli/pkg/config"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("client.model")).To(Equal(defaults.Client.Model))
		Expect(v.GetString("client.endpoint")).To(Equal(defaults.Client.Endpoint))
		Expect(v.GetBool("client.stream")).To(BeTrue())
		Expect(v.GetDuration("client.timeout")).To(BeZero())
	})

	It("reads config file values over defaults", func() {
		data := `[client]
model = "gemini-2.5-pro"
timeout = "10s"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.model")).To(Equal("gemini-2.5-pro"))
		Expect(v.GetDuration("client.timeout")).To(Equal(10 * time.Second))
		Expect(v.GetBool("client.stream")).To(BeTrue())
	})

	It("returns an error for an unreadable config file", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[client"), 0o600)).To(Succeed())

		_, err := config.InitViper(tmpDir)
		Expect(err).To(MatchError(ContainSubstring("reading config")))
	})

	It("env vars take precedence over config file values", func() {
		data := `[client]
model = "gemini-2.5-pro"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		GinkgoT().Setenv("GEMCLI_CLIENT_MODEL", "gemini-from-env")
		GinkgoT().Setenv("GEMCLI_STREAM_REASSEMBLE", "true")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.model")).To(Equal("gemini-from-env"))
		Expect(v.GetBool("stream.reassemble")).To(BeTrue())
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("binds cobra flags to viper keys via the registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var model string
		var timeout time.Duration
		var reassemble bool
		config.AddStringFlag(cmd, config.CLIFlags, config.FlagModel, &model)
		config.AddDurationFlag(cmd, config.CLIFlags, config.FlagTimeout, &timeout)
		config.AddBoolFlag(cmd, config.CLIFlags, config.FlagReassemble, &reassemble)

		Expect(cmd.ParseFlags([]string{"-m", "gemini-flag", "--timeout", "2s", "--reassemble"})).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.CLIFlags, []string{
			config.FlagModel, config.FlagTimeout, config.FlagReassemble,
		})

		Expect(v.GetString("client.model")).To(Equal("gemini-flag"))
		Expect(v.GetDuration("client.timeout")).To(Equal(2 * time.Second))
		Expect(v.GetBool("stream.reassemble")).To(BeTrue())
	})

	It("falls through to config when the flag is not set", func() {
		data := `[render]
markdown = true
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var markdown bool
		config.AddBoolFlag(cmd, config.CLIFlags, config.FlagMarkdown, &markdown)
		config.BindRegisteredFlags(v, cmd, config.CLIFlags, []string{config.FlagMarkdown})

		Expect(v.GetBool("render.markdown")).To(BeTrue())
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.CLIFlags, []string{"nonexistent", config.FlagModel})

		Expect(v.GetString("client.model")).To(Equal(config.NewDefaultConfig().Client.Model))
	})

	It("takes name, shorthand, description and default from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var model string
		var stream bool
		config.AddStringFlag(cmd, config.CLIFlags, config.FlagModel, &model)
		config.AddBoolFlag(cmd, config.CLIFlags, config.FlagStream, &stream)

		f := cmd.Flags().Lookup("model")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("m"))
		Expect(f.Usage).To(Equal("Gemini model to use"))
		Expect(f.DefValue).To(Equal("gemini-2.5-flash-lite"))

		Expect(cmd.Flags().Lookup("stream").DefValue).To(Equal("true"))
	})

	It("ignores unknown registry keys when adding flags", func() {
		cmd := &cobra.Command{Use: "test"}
		var s string
		config.AddStringFlag(cmd, config.CLIFlags, "nonexistent", &s)
		Expect(cmd.Flags().HasFlags()).To(BeFalse())
	})
})

var _ = Describe("KeySource", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[client]\nmodel = \"from-file\"\n"), 0o600)).To(Succeed())
	})

	It("names the env var for a dotted key", func() {
		Expect(config.EnvVarForKey("client.system_prompt")).To(Equal("GEMCLI_CLIENT_SYSTEM_PROMPT"))
	})

	It("reports each layer", func() {
		GinkgoT().Setenv("GEMCLI_STREAM_REASSEMBLE", "true")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(config.KeySource(v, "stream.reassemble")).To(Equal(config.SourceEnv))
		Expect(config.KeySource(v, "client.model")).To(Equal(config.SourceFile))
		Expect(config.KeySource(v, "render.markdown")).To(Equal(config.SourceDefault))
	})
})
