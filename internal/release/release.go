// Package release derives the version, commit and channel a build is
// published under, from CI metadata or, failing that, from git.
package release

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bentoudev/conanci/internal/ciprovider"
	"github.com/bentoudev/conanci/internal/executor"
)

// Release channels.
const (
	ChannelStable = "stable"
	ChannelDev    = "dev"
)

// ErrUnresolvedVersion is returned when neither CI metadata nor git yield
// both a version and a commit.
var ErrUnresolvedVersion = errors.New("unable to determine version")

// Descriptor identifies what is being released. It is computed once per
// run and passed by value afterwards.
type Descriptor struct {
	Version string
	Commit  string
	Channel string
	// Provider is the detected CI service, empty for local runs.
	Provider string
	// BuildNumber is recorded for reference only; it never alters Version.
	BuildNumber string
}

// Resolver computes a Descriptor.
type Resolver struct {
	Providers []ciprovider.Provider
	Lookup    ciprovider.Lookup
	Git       *Git
	// StableInGit publishes versions derived from git on the stable channel.
	StableInGit bool
}

// Resolve returns the release descriptor for the current environment.
func (r *Resolver) Resolve(ctx context.Context) (Descriptor, error) {
	ci := ciprovider.Detect(r.Lookup, r.Providers)
	d := Descriptor{
		Version:     ci.Tag,
		Commit:      ci.Commit,
		Channel:     ChannelDev,
		Provider:    ci.Provider(),
		BuildNumber: ci.BuildNumber,
	}

	if d.Version == "" || d.Commit == "" {
		log.Info().Msg("attempt to get version from git")
		d.Version = r.Git.Describe(ctx)
		d.Commit = r.Git.Head(ctx)
		if r.StableInGit {
			d.Channel = ChannelStable
		}
		d.Version = DevVersion(d.Version)
	} else {
		d.Channel = ChannelStable
	}

	if d.Version == "" || d.Commit == "" {
		return Descriptor{}, ErrUnresolvedVersion
	}
	return d, nil
}

// DevVersion turns a git description of an untagged commit
// ("1.2.0-14-g3f2a1bc") into "1.2.0-dev". Exact tags are returned as is.
func DevVersion(described string) string {
	parts := strings.Split(described, "-")
	if len(parts) > 1 {
		return parts[0] + "-dev"
	}
	return described
}

// Git queries the local checkout.
type Git struct {
	Runner executor.Runner
	Dir    string
}

// Describe returns the first line of `git describe`, or "" on failure.
func (g *Git) Describe(ctx context.Context) string {
	return g.firstLine(ctx, "describe")
}

// Head returns the commit hash of HEAD, or "" on failure.
func (g *Git) Head(ctx context.Context) string {
	return g.firstLine(ctx, "rev-parse", "HEAD")
}

func (g *Git) firstLine(ctx context.Context, args ...string) string {
	out, err := g.Runner.Output(ctx, executor.Command{Name: "git", Args: args, Dir: g.Dir})
	if err != nil {
		log.Warn().Err(err).Msg("caught error")
		return ""
	}
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(line)
}
