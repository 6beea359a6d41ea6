// Package cliui provides reusable terminal UI helpers (styles, spinners,
// markdown rendering and the response renderer) for gemcli commands.
package cliui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	NameStyle   = lipgloss.NewStyle().Bold(true)
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	HeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

const (
	spinnerInterval      = 80 * time.Millisecond
	defaultMarkdownWidth = 80
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner animates a single status line until Stop is called.
type Spinner struct {
	w       io.Writer
	msg     string
	start   time.Time
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// StartSpinner draws msg behind an animated frame on w.
func StartSpinner(w io.Writer, msg string) *Spinner {
	s := &Spinner{
		w:       w,
		msg:     msg,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.spin()
	return s
}

func (s *Spinner) spin() {
	defer close(s.stopped)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), s.msg)

		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and replaces the line with a ✓ or ✗ for err and
// the elapsed time. Only the first call has an effect.
func (s *Spinner) Stop(err error) {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped

		fmt.Fprintf(s.w, "\r  %s %s %s\n",
			Mark(err),
			s.msg,
			DimStyle.Render("("+FormatDuration(time.Since(s.start))+")"),
		)
	})
}

// Step shows a spinner on w while fn runs and returns fn's error.
func Step(w io.Writer, msg string, fn func() error) error {
	s := StartSpinner(w, msg)
	err := fn()
	s.Stop(err)
	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display ("12ms", "3.2s", "1m05s").
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

// TerminalWidth returns the column count of w when it is a terminal, and 0
// otherwise.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// RenderMarkdown renders markdown for terminal display with glamour, wrapped
// at width columns (80 when width is not positive). On failure the content is
// returned unchanged along with the error.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = defaultMarkdownWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
