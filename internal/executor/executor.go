// Package executor runs the external tools conanci orchestrates (git,
// conan) as blocking subprocesses.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/bentoudev/conanci/internal/security"
)

// Command is one subprocess invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is layered on top of the parent environment.
	Env map[string]string
	// Secrets are masked wherever the command line is printed.
	Secrets []string
}

// String renders the command as a shell-quoted line with secrets masked.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, security.RedactArgs(c.Args, c.Secrets...)...)...)
}

// Runner is an interface for executing commands. It allows tests to inject
// fake implementations without running real subprocesses.
type Runner interface {
	// Output runs c with stderr merged into stdout and returns what it
	// printed. It is meant for read-only queries and ignores DryRun.
	Output(ctx context.Context, c Command) (string, error)
	// Run runs c, streaming its output to stdout and stderr. A non-zero
	// exit status is returned as an error.
	Run(ctx context.Context, c Command, stdout, stderr io.Writer) error
}

// Executor is the os/exec backed Runner.
type Executor struct {
	DryRun  bool
	Verbose bool
}

// New returns a Runner backed by the real Executor implementation.
func New(dry, verbose bool) Runner {
	return &Executor{DryRun: dry, Verbose: verbose}
}

// Output implements Runner.
func (e *Executor) Output(ctx context.Context, c Command) (string, error) {
	if err := validate(c); err != nil {
		return "", err
	}
	if e.Verbose {
		log.Debug().Str("cmd", c.String()).Str("dir", c.Dir).Msg("running command")
	}
	var out bytes.Buffer
	cmd := build(ctx, c)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), checkExecutionError(err, c, out.String())
	}
	if e.Verbose {
		log.Debug().Str("cmd", c.Name).Str("stdout", out.String()).Msg("command output")
	}
	return out.String(), nil
}

// Run implements Runner.
func (e *Executor) Run(ctx context.Context, c Command, stdout, stderr io.Writer) error {
	if handled := e.handleDryRunIfNeeded(c, stdout); handled {
		return nil
	}
	if err := validate(c); err != nil {
		return err
	}
	log.Info().Str("cmd", c.String()).Msg("executing")

	// keep a copy of stderr so a failure can explain itself
	var berr bytes.Buffer
	cmd := build(ctx, c)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &berr)
	if err := cmd.Run(); err != nil {
		return checkExecutionError(err, c, berr.String())
	}
	return nil
}

func (e *Executor) handleDryRunIfNeeded(c Command, stdout io.Writer) bool {
	if !e.DryRun {
		return false
	}
	if e.Verbose {
		_, _ = fmt.Fprintf(stdout, "dry-run: %s\n", c)
	}
	log.Info().Str("cmd", c.String()).Msg("dry-run, not executed")
	return true
}

func build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}
	return cmd
}

// MergeEnv returns base with overlay applied. Overlay keys replace
// existing entries and new keys are appended in sorted order.
func MergeEnv(base []string, overlay map[string]string) []string {
	out := make([]string, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(overlay))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if v, ok := overlay[k]; ok {
			out = append(out, k+"="+v)
			seen[k] = true
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+overlay[k])
	}
	return out
}

// validate catches problems that would otherwise surface as an opaque
// exec failure.
func validate(c Command) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("invalid command: empty executable name")
	}
	if _, err := exec.LookPath(c.Name); err != nil {
		return fmt.Errorf("executable not found in PATH: %s", c.Name)
	}
	// ensure args don't contain NUL or control chars that are likely to break CreateProcess
	for i, a := range c.Args {
		if strings.IndexFunc(a, func(r rune) bool { return r == 0 || (r < 32 && r != '\t') || r == 0x7f }) != -1 {
			return fmt.Errorf("invalid arg[%d] for %s: contains control characters", i, c.Name)
		}
	}
	return nil
}

func checkExecutionError(err error, c Command, output string) error {
	out := strings.TrimSpace(security.Redact(output, c.Secrets...))
	if out != "" {
		return fmt.Errorf("command failed: %w (cmd=%s output=%q)", err, c, out)
	}
	return fmt.Errorf("command failed: %w (cmd=%s)", err, c)
}

// ExitCode extracts the process exit status from an error returned by a
// Runner, or -1 when err did not come from a process exit.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
