package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/praxisvoice/internal/dagger"
)

const versionPkg = "github.com/papercomputeco/praxisvoice/pkg/utils"

// platforms are built natively (emulated where needed) since the SQLite
// driver requires cgo.
var platforms = []dagger.Platform{"linux/amd64", "linux/arm64"}

// Build and return directory of praxisvoice binaries, one per platform
func (p *Praxisvoice) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	outputs := dag.Directory()

	for _, platform := range platforms {
		path := string(platform) + "/"

		build := p.goContainer(platform).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/praxisvoice"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (p *Praxisvoice) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	return p.Build(ctx, releaseLDFlags(version, commit, time.Now()))
}

// Image returns a runtime container serving the voice webhook and the API
func (p *Praxisvoice) Image(
	ctx context.Context,

	// Version string of build
	// +optional
	// +default="dev"
	version string,

	// Git commit SHA of build
	// +optional
	// +default="HEAD"
	commit string,
) *dagger.Container {
	binary := p.goContainer("").
		WithExec([]string{"go", "build", "-ldflags", releaseLDFlags(version, commit, time.Now()), "-o", "/out/praxisvoice", "./cli/praxisvoice"}).
		File("/out/praxisvoice")

	return dag.Container().
		From("debian:bookworm-slim").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "ca-certificates", "libsqlite3-0"}).
		WithFile("/usr/local/bin/praxisvoice", binary).
		WithExposedPort(8080).
		WithExposedPort(8081).
		WithEntrypoint([]string{"praxisvoice"}).
		WithDefaultArgs([]string{"serve"})
}

func releaseLDFlags(version, commit string, buildtime time.Time) string {
	return strings.Join([]string{
		"-s",
		"-w",
		fmt.Sprintf("-X '%s.Version=%s'", versionPkg, version),
		fmt.Sprintf("-X '%s.Sha=%s'", versionPkg, commit),
		fmt.Sprintf("-X '%s.Buildtime=%s'", versionPkg, buildtime.Format(time.RFC3339)),
	}, " ")
}
