package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/coursewise/internal/dagger"
)

// Build and return directory of go binaries
func (c *Coursewise) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	// sqlite-vec needs CGO, so binaries are built natively per architecture
	// rather than cross compiled.
	goarches := []string{"amd64", "arm64"}

	outputs := dag.Directory()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := c.goContainerFor(dagger.Platform("linux/" + goarch)).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/coursewise"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (c *Coursewise) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/coursewise/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/coursewise/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/coursewise/pkg/utils.Buildtime=%s'", buildtime),
	}

	return c.Build(ctx, strings.Join(ldflags, " "))
}
