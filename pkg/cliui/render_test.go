package cliui_test

import (
	"bytes"
	"errors"
	"iter"
	"os"

	"github.com/muesli/termenv"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gemcli/pkg/cliui"
	"github.com/papercomputeco/gemcli/pkg/gemini"
)

func fragments(items ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func failingAfter(err error, items ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		yield("", err)
	}
}

var _ = Describe("Label", func() {
	BeforeEach(func() {
		if v, ok := os.LookupEnv("NO_COLOR"); ok {
			Expect(os.Unsetenv("NO_COLOR")).To(Succeed())
			DeferCleanup(os.Setenv, "NO_COLOR", v)
		}
	})

	It("is plain text for a writer without color support", func() {
		Expect(cliui.Label(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))).To(Equal(cliui.LabelText))
	})

	It("is styled for a color terminal", func() {
		label := cliui.Label(&bytes.Buffer{}, termenv.WithProfile(termenv.ANSI256))
		Expect(label).To(ContainSubstring("\x1b["))
		Expect(label).To(ContainSubstring(cliui.LabelText))
	})
})

var _ = Describe("StreamRenderer", func() {
	var (
		out      *bytes.Buffer
		renderer cliui.StreamRenderer
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		renderer = cliui.StreamRenderer{Out: out, Label: cliui.LabelText}
	})

	It("prints the label, the fragments without separators and one newline", func() {
		Expect(renderer.RenderStream(fragments("Red", "Green", "Blue"))).To(Succeed())
		Expect(out.String()).To(Equal("GemCLI: RedGreenBlue\n"))
	})

	It("prints the label and a newline for an empty stream", func() {
		Expect(renderer.RenderStream(fragments())).To(Succeed())
		Expect(out.String()).To(Equal("GemCLI: \n"))
	})

	It("keeps printed fragments and adds no newline on a transport error", func() {
		reset := errors.New("connection reset")
		err := renderer.RenderStream(failingAfter(reset, "Red", "Gr"))
		Expect(err).To(MatchError(reset))
		Expect(out.String()).To(Equal("GemCLI: RedGr"))
	})
})

var _ = Describe("RenderResult", func() {
	var out, errOut *bytes.Buffer

	BeforeEach(func() {
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
	})

	It("prints the text after the label", func() {
		res := &gemini.GenerateResult{Text: "Hello", HasText: true}
		Expect(cliui.RenderResult(out, errOut, "GemCLI: ", res, false)).To(Succeed())
		Expect(out.String()).To(Equal("GemCLI: Hello\n"))
		Expect(errOut.String()).To(BeEmpty())
	})

	It("reports an API error on the error stream", func() {
		res := &gemini.GenerateResult{APIError: `{"code":403}`}
		Expect(cliui.RenderResult(out, errOut, "GemCLI: ", res, false)).To(Succeed())
		Expect(out.String()).To(BeEmpty())
		Expect(errOut.String()).To(Equal("API Error: {\"code\":403}\n"))
	})

	It("reports a document without text together with the raw document", func() {
		res := &gemini.GenerateResult{Raw: []byte(`{"candidates":[]}`)}
		Expect(cliui.RenderResult(out, errOut, "GemCLI: ", res, false)).To(Succeed())
		Expect(out.String()).To(BeEmpty())
		Expect(errOut.String()).To(Equal("Unexpected response format:\n{\"candidates\":[]}\n"))
	})

	It("renders markdown when asked to", func() {
		res := &gemini.GenerateResult{Text: "# Colors\n\n- red\n", HasText: true}
		Expect(cliui.RenderResult(out, errOut, "GemCLI: ", res, true)).To(Succeed())
		Expect(out.String()).To(HavePrefix("GemCLI: "))
		Expect(out.String()).To(ContainSubstring("Colors"))
		Expect(out.String()).To(ContainSubstring("red"))
		Expect(out.String()).To(HaveSuffix("\n"))
	})
})
