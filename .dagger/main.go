// Gemcli CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/gemcli/internal/dagger"
)

// Gemcli is the main module for the gemcli CI/CD pipeline
type Gemcli struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Gemcli CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", "build", "tmp", ".env"]
	source *dagger.Directory,
) *Gemcli {
	return &Gemcli{
		Source: source,
	}
}

// goContainer returns a Go container with module and build caches and the
// project source mounted. gemcli is pure Go, so CGO stays off.
func (g *Gemcli) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", g.Source)
}

// Test runs the gemcli unit tests via "go test". GEMINI_API_KEY is cleared so
// no test can reach the real API.
func (g *Gemcli) Test(ctx context.Context) (string, error) {
	return g.goContainer().
		WithoutEnvVariable("GEMINI_API_KEY").
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
