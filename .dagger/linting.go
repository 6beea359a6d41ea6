package main

import (
	"context"
	"fmt"

	"dagger/gemcli/internal/dagger"
)

const golangciLintVersion = "v2.8.0"

// lintOpts returns the GolangcilintOpts shared by CheckLint and FixLint.
func (g *Gemcli) lintOpts() dagger.GolangcilintOpts {
	base := g.goContainer().
		WithExec([]string{
			"go",
			"install",
			fmt.Sprintf("github.com/golangci/golangci-lint/v2/cmd/golangci-lint@%s", golangciLintVersion),
		})

	return dagger.GolangcilintOpts{
		BaseCtr: base,
		Config:  g.Source.File(".golangci.yml"),
	}
}

// CheckLint runs golangci-lint without applying fixes.
func (g *Gemcli) CheckLint(ctx context.Context) (string, error) {
	return dag.Golangcilint(g.Source, g.lintOpts()).Check(ctx)
}

// FixLint runs golangci-lint with --fix and returns the modified source directory.
func (g *Gemcli) FixLint(ctx context.Context) *dagger.Directory {
	return dag.Golangcilint(g.Source, g.lintOpts()).Lint()
}
