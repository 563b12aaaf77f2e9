// Praxisvoice CI
//
// Package main builds and tests praxisvoice in containers, locally and in CI.
package main

import (
	"context"

	"dagger/praxisvoice/internal/dagger"
)

const goImage = "golang:1.25-bookworm"

// Praxisvoice is the CI module of the praxisvoice phone line service
type Praxisvoice struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Praxisvoice CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", ".praxisvoice", "_examples"]
	source *dagger.Directory,
) *Praxisvoice {
	return &Praxisvoice{
		Source: source,
	}
}

// goContainer returns a Debian based Go container for platform with gcc,
// libsqlite3-dev, CGO enabled and the project source mounted. An empty
// platform is the engine's own.
func (p *Praxisvoice) goContainer(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From(goImage).
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", p.Source)
}

// postgres starts a throwaway PostgreSQL for the call log store tests.
func (p *Praxisvoice) postgres() *dagger.Service {
	return dag.Container().
		From("postgres:17-alpine").
		WithEnvVariable("POSTGRES_USER", "praxisvoice").
		WithEnvVariable("POSTGRES_PASSWORD", "praxisvoice").
		WithEnvVariable("POSTGRES_DB", "praxisvoice").
		WithExposedPort(5432).
		AsService()
}

// Test runs the unit tests via "go test", including the PostgreSQL store
// tests against a service container.
func (p *Praxisvoice) Test(ctx context.Context) (string, error) {
	return p.goContainer("").
		WithServiceBinding("db", p.postgres()).
		WithEnvVariable("PRAXISVOICE_TEST_POSTGRES_DSN", "postgres://praxisvoice:praxisvoice@db:5432/praxisvoice?sslmode=disable").
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// Vet runs "go vet" over the module
//
// +check
func (p *Praxisvoice) Vet(ctx context.Context) (string, error) {
	return p.goContainer("").
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
