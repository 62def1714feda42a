// Package pipeline chains version resolution, matrix filtering, the conan
// builds and the upload into one run.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bentoudev/conanci/internal/ciprovider"
	"github.com/bentoudev/conanci/internal/config"
	"github.com/bentoudev/conanci/internal/executor"
	"github.com/bentoudev/conanci/internal/history"
	"github.com/bentoudev/conanci/internal/matrix"
	"github.com/bentoudev/conanci/internal/packager"
	"github.com/bentoudev/conanci/internal/release"
	"github.com/bentoudev/conanci/internal/security"
)

// Options carry everything a run depends on; nothing is read from globals.
type Options struct {
	Project     config.Project
	Credentials packager.Credentials
	// Platform is a GOOS value and selects the default matrix.
	Platform  string
	Lookup    ciprovider.Lookup
	Providers []ciprovider.Provider
	Runner    executor.Runner
	// DryRun must match the Runner; it keeps a skipped upload from being
	// reported as done.
	DryRun bool
	// History is optional; a nil repository disables the ledger.
	History *history.Repository
	Stdout  io.Writer
	Stderr  io.Writer
	Now     func() time.Time
}

// Result summarises a successful run.
type Result struct {
	Release  release.Descriptor
	Builds   []matrix.BuildConfig
	Uploaded bool
}

// Resolve computes the release descriptor without building anything.
func Resolve(ctx context.Context, opts Options) (release.Descriptor, error) {
	r := &release.Resolver{
		Providers:   opts.Providers,
		Lookup:      opts.Lookup,
		Git:         &release.Git{Runner: opts.Runner, Dir: opts.Project.GitDir},
		StableInGit: opts.Project.StableInGit,
	}
	return r.Resolve(ctx)
}

// Plan returns the filtered build matrix for opts.
func Plan(opts Options) []matrix.BuildConfig {
	rules := opts.Project.Matrix
	rules.Compiler = matrix.SelectCompiler(opts.Platform, opts.Lookup)
	builds := matrix.Generate(matrix.SettingsFromEnv(opts.Platform, opts.Lookup))
	return matrix.Filter(builds, rules)
}

// Run performs a full build and upload. Every outcome, including failure,
// is written to the history ledger when one is configured.
func Run(ctx context.Context, opts Options) (Result, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	cwd, _ := os.Getwd()
	log.Info().Str("dir", cwd).Msg("current dir")
	log.Info().
		Str("package", opts.Project.Package).
		Str("git_dir", opts.Project.GitDir).
		Str("prefix", opts.Project.EnvPrefix).
		Msg("project")

	res, err := run(ctx, opts)
	record(opts, res, started, now(), err)
	return res, err
}

func run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	if opts.Credentials.Complete() {
		if err := security.CheckRemoteURL(opts.Credentials.URL); err != nil {
			return res, err
		}
	}

	d, err := Resolve(ctx, opts)
	if err != nil {
		// reported once by the caller
		return res, err
	}
	res.Release = d
	log.Info().Str("channel", d.Channel).Str("version", d.Version).Str("commit", d.Commit).Msg("release resolved")

	pkg := &packager.Packager{
		Runner:   opts.Runner,
		Project:  opts.Project,
		Platform: opts.Platform,
		DryRun:   opts.DryRun,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
	}
	res.Builds = Plan(opts)
	if err := pkg.Build(ctx, res.Builds, d); err != nil {
		return res, err
	}
	res.Uploaded, err = pkg.Upload(ctx, opts.Credentials)
	return res, err
}

func record(opts Options, res Result, started, finished time.Time, runErr error) {
	if opts.History == nil {
		return
	}
	run := history.Run{
		StartedAt:   started,
		FinishedAt:  finished,
		Package:     opts.Project.Package,
		Version:     res.Release.Version,
		Commit:      res.Release.Commit,
		Channel:     res.Release.Channel,
		Provider:    res.Release.Provider,
		BuildNumber: res.Release.BuildNumber,
		Builds:      len(res.Builds),
		Uploaded:    res.Uploaded,
		Status:      history.StatusSuccess,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = security.Redact(runErr.Error(), opts.Credentials.Key)
	}
	id, err := opts.History.Record(run)
	if err != nil {
		log.Warn().Err(err).Msg("could not record run history")
		return
	}
	log.Debug().Str("run", id).Str("status", run.Status).Msg("run recorded")
}
