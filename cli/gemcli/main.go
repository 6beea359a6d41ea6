package main

import (
	"errors"
	"fmt"
	"os"

	gemclicmder "github.com/papercomputeco/gemcli/cmd/gemcli"
	"github.com/papercomputeco/gemcli/pkg/prompt"
)

func main() {
	cmd := gemclicmder.NewGemcliCmd()
	if err := cmd.Execute(); err != nil {
		// The usage line has already been printed for an empty prompt.
		if !errors.Is(err, prompt.ErrEmptyPrompt) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
