package prompt_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gemcli/pkg/prompt"
)

var _ = Describe("Resolve", func() {
	Context("when stdin is not piped", func() {
		It("joins the arguments with single spaces", func() {
			text, err := prompt.Resolve(strings.NewReader("unused"), false, []string{"list", "3", "colors"})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("list 3 colors"))
		})

		It("trims surrounding whitespace", func() {
			text, err := prompt.Resolve(nil, false, []string{"  hello ", "world\n"})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("hello  world"))
		})

		It("rejects missing arguments", func() {
			_, err := prompt.Resolve(nil, false, nil)
			Expect(err).To(MatchError(prompt.ErrEmptyPrompt))
		})

		It("rejects whitespace-only arguments", func() {
			_, err := prompt.Resolve(nil, false, []string{" ", "\t"})
			Expect(errors.Is(err, prompt.ErrEmptyPrompt)).To(BeTrue())
		})
	})

	Context("when stdin is piped", func() {
		It("uses the whole of stdin and ignores the arguments", func() {
			text, err := prompt.Resolve(strings.NewReader("  summarize this\nplease\n\n"), true, []string{"ignored"})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("summarize this\nplease"))
		})

		It("rejects empty stdin even when arguments are present", func() {
			_, err := prompt.Resolve(strings.NewReader("\n"), true, []string{"ignored"})
			Expect(err).To(MatchError(prompt.ErrEmptyPrompt))
		})

		It("wraps a read failure", func() {
			_, err := prompt.Resolve(iotest.ErrReader(errors.New("broken pipe")), true, nil)
			Expect(err).To(MatchError(ContainSubstring("reading prompt from stdin: broken pipe")))
		})
	})
})

var _ = Describe("StdinIsPiped", func() {
	It("treats a regular file as piped", func() {
		path := filepath.Join(GinkgoT().TempDir(), "prompt.txt")
		Expect(os.WriteFile(path, []byte("hi"), 0o600)).To(Succeed())

		f, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(prompt.StdinIsPiped(f)).To(BeTrue())
	})

	It("treats a nil file as not piped", func() {
		Expect(prompt.StdinIsPiped(nil)).To(BeFalse())
	})
})
