// Package packager drives conan: one `conan create` per matrix entry, then
// an optional upload of everything produced.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/bentoudev/conanci/internal/config"
	"github.com/bentoudev/conanci/internal/executor"
	"github.com/bentoudev/conanci/internal/matrix"
	"github.com/bentoudev/conanci/internal/release"
)

// Tool is the packaging executable.
const Tool = "conan"

// ErrEmptyMatrix is returned by Build when filtering left nothing to build.
var ErrEmptyMatrix = errors.New("build matrix is empty")

// Credentials authenticate against the upload remote. They are never
// persisted and never logged.
type Credentials struct {
	Key string
	URL string
}

// Complete reports whether both the key and the URL are present.
func (c Credentials) Complete() bool {
	return c.Key != "" && c.URL != ""
}

// Packager invokes conan for one project.
type Packager struct {
	Runner   executor.Runner
	Project  config.Project
	Platform string
	// DryRun reports uploads as not done even when Runner accepted them.
	DryRun bool
	Stdout io.Writer
	Stderr io.Writer
}

// Environment returns the variables exported to every conan invocation.
func (p *Packager) Environment(d release.Descriptor) map[string]string {
	env := map[string]string{
		p.Project.EnvPrefix + "_COMMIT":  d.Commit,
		p.Project.EnvPrefix + "_VERSION": d.Version,
		"CONAN_USERNAME":                 p.Project.Username,
		"CONAN_CHANNEL":                  d.Channel,
	}
	if p.Platform == matrix.PlatformWin {
		// char8_t breaks EASTL based packages on MSVC
		env["CXXFLAGS"] = "/Zc:char8_t-"
	}
	return env
}

// CreateCommand returns the `conan create` invocation for one entry.
func (p *Packager) CreateCommand(b matrix.BuildConfig, d release.Descriptor) executor.Command {
	args := []string{"create", p.Project.RecipeDir, p.Project.Username + "/" + d.Channel}
	for _, s := range b.Settings() {
		args = append(args, "-s", s)
	}
	return executor.Command{Name: Tool, Args: args, Env: p.Environment(d)}
}

// Build runs `conan create` for every entry in order and stops at the
// first failure.
func (p *Packager) Build(ctx context.Context, builds []matrix.BuildConfig, d release.Descriptor) error {
	if len(builds) == 0 {
		return ErrEmptyMatrix
	}
	if err := matrix.Validate(builds); err != nil {
		return err
	}
	log.Info().Int("builds", len(builds)).Msg("executing conan build")
	for i, b := range builds {
		log.Info().Int("n", i+1).Int("of", len(builds)).Str("settings", b.String()).Msg("building")
		if err := p.Runner.Run(ctx, p.CreateCommand(b, d), p.Stdout, p.Stderr); err != nil {
			return fmt.Errorf("build %d/%d (%s): %w", i+1, len(builds), b, err)
		}
	}
	return nil
}

// UploadCommands returns the remote registration, login and upload
// invocations, in order.
func (p *Packager) UploadCommands(c Credentials) []executor.Command {
	remote := p.Project.Remote
	return []executor.Command{
		{Name: Tool, Args: []string{"remote", "add", remote, c.URL}},
		{Name: Tool, Args: []string{"user", "-p", c.Key, "-r", remote, p.Project.Username}, Secrets: []string{c.Key}},
		{Name: Tool, Args: []string{
			"upload", p.Project.Package + "*", "--all", "-r", remote, "-c",
			"--retry", strconv.Itoa(p.Project.UploadRetry),
			"--retry-wait", strconv.Itoa(p.Project.UploadRetryWait),
		}},
	}
}

// Upload publishes the built packages. It does nothing and reports false
// unless both the key and the URL are set.
func (p *Packager) Upload(ctx context.Context, c Credentials) (bool, error) {
	if !c.Complete() {
		log.Info().Msg("no repository key or url, skipping upload")
		return false, nil
	}
	for _, cmd := range p.UploadCommands(c) {
		if err := p.Runner.Run(ctx, cmd, p.Stdout, p.Stderr); err != nil {
			return false, fmt.Errorf("upload: %w", err)
		}
	}
	if p.DryRun {
		log.Info().Msg("dry-run, packages not uploaded")
		return false, nil
	}
	return true, nil
}
