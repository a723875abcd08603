// Coursewise CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/coursewise/internal/dagger"
)

// Coursewise is the main module for the Coursewise CI/CD pipeline
type Coursewise struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Coursewise CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", ".coursewise", "build", "tmp"]
	source *dagger.Directory,
) *Coursewise {
	return &Coursewise{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc and CGO
// enabled, which the sqlite-vec index driver needs.
//
// It is the shared foundation for tests, builds, and linting.
func (c *Coursewise) goContainer() *dagger.Container {
	return c.goContainerFor("")
}

// goContainerFor is goContainer for an explicit platform, e.g. "linux/arm64".
func (c *Coursewise) goContainerFor(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", c.Source)
}

// Test runs the coursewise unit tests via "go test"
func (c *Coursewise) Test(ctx context.Context) (string, error) {
	return c.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// TestRace runs the unit tests with the race detector, covering the ingest
// worker pool and file watcher.
func (c *Coursewise) TestRace(ctx context.Context) (string, error) {
	return c.goContainer().
		WithExec([]string{"go", "test", "-race", "./pkg/...", "./api/..."}).
		Stdout(ctx)
}
