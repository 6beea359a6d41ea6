package cliui

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/papercomputeco/gemcli/pkg/gemini"
)

// LabelText is printed once before the model output.
const LabelText = "GemCLI: "

const labelColor = "82"

// Label renders LabelText in bold green for w. Writers that are not color
// terminals get the plain text. opts override the detected termenv output,
// e.g. termenv.WithProfile to force a color profile.
func Label(w io.Writer, opts ...termenv.OutputOption) string {
	r := lipgloss.NewRenderer(w, opts...)
	return r.NewStyle().
		Foreground(lipgloss.Color(labelColor)).
		Bold(true).
		Render(LabelText)
}

// StreamRenderer writes streamed fragments to Out as they arrive.
type StreamRenderer struct {
	Out   io.Writer
	Label string
}

// RenderStream prints the label once, every fragment with no separator, and
// a single trailing newline when the sequence completes. A transport error
// ends rendering and is returned as-is: fragments already printed stay on
// screen and no newline is added.
func (r StreamRenderer) RenderStream(seq iter.Seq2[string, error]) error {
	if _, err := io.WriteString(r.Out, r.Label); err != nil {
		return err
	}

	for fragment, err := range seq {
		if err != nil {
			return err
		}
		if _, werr := io.WriteString(r.Out, fragment); werr != nil {
			return werr
		}
	}

	_, err := io.WriteString(r.Out, "\n")
	return err
}

// RenderResult prints the outcome of a single-shot call. API errors and
// documents without text are reported on errOut and are not failures.
func RenderResult(out, errOut io.Writer, label string, res *gemini.GenerateResult, markdown bool) error {
	switch {
	case res.APIError != "":
		_, err := fmt.Fprintf(errOut, "API Error: %s\n", res.APIError)
		return err

	case !res.HasText:
		_, err := fmt.Fprintf(errOut, "Unexpected response format:\n%s\n", res.Raw)
		return err
	}

	text := res.Text
	if markdown {
		// Fall back to the raw text if glamour fails.
		text, _ = RenderMarkdown(text, TerminalWidth(out))
		text = strings.TrimRight(text, "\n")
	}

	_, err := fmt.Fprintf(out, "%s%s\n", label, text)
	return err
}
