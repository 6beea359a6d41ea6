package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/gemcli/internal/dagger"
)

// CheckGoModTidy fails when "go mod tidy" would change go.mod or go.sum, or
// when a downloaded module does not match go.sum.
//
// +check
func (g *Gemcli) CheckGoModTidy(ctx context.Context) (string, error) {
	out, err := g.goContainer().
		WithExec([]string{"go", "mod", "verify"}).
		WithExec([]string{"sh", "-c", "cp go.mod /tmp/go.mod.want && cp go.sum /tmp/go.sum.want"}).
		WithExec([]string{"go", "mod", "tidy"}).
		WithExec([]string{
			"sh", "-c",
			"diff -u /tmp/go.mod.want go.mod && diff -u /tmp/go.sum.want go.sum",
		}).
		Stdout(ctx)

	var execErr *dagger.ExecError
	switch {
	case errors.As(err, &execErr):
		return "", fmt.Errorf("go.mod or go.sum are not tidy or verified: run 'go mod tidy' and commit the changes\n\n%s%s",
			execErr.Stdout, execErr.Stderr)
	case err != nil:
		return "", fmt.Errorf("checking go.mod: %w", err)
	}

	return "go.mod and go.sum are tidy\n" + out, nil
}
