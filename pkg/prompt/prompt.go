// Package prompt resolves the user prompt from piped stdin or positional
// arguments.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyPrompt is returned when neither stdin nor the arguments carry any
// non-whitespace text.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Resolve returns the prompt text. When piped is true the whole of stdin is
// the prompt and args are ignored, even if stdin turns out to be empty.
// Otherwise args are joined with single spaces.
func Resolve(stdin io.Reader, piped bool, args []string) (string, error) {
	var text string

	if piped {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading prompt from stdin: %w", err)
		}
		text = string(data)
	} else {
		text = strings.Join(args, " ")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyPrompt
	}

	return text, nil
}

// StdinIsPiped reports whether f is something other than an interactive
// terminal: a pipe, a file or /dev/null.
func StdinIsPiped(f *os.File) bool {
	if f == nil {
		return false
	}
	return !term.IsTerminal(int(f.Fd()))
}
