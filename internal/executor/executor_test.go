package executor

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh based test skipped on Windows")
	}
}

func TestRunEcho(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out, errb bytes.Buffer
	e := &Executor{}
	if err := e.Run(ctx, Command{Name: "sh", Args: []string{"-c", "echo hello"}}, &out, &errb); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Fatalf("expected 'hello' in stdout, got: %q", out.String())
	}
}

func TestRunFailReportsExitCode(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	e := &Executor{}
	err := e.Run(ctx, Command{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}, io.Discard, io.Discard)
	if err == nil {
		t.Fatalf("expected error for failing command")
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("expected exit code 3, got %d (%v)", code, err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected stderr in error, got: %v", err)
	}
}

func TestRunMasksSecretsInErrors(t *testing.T) {
	skipOnWindows(t)
	e := &Executor{}
	c := Command{Name: "sh", Args: []string{"-c", "echo s3cr3t >&2; exit 1", "s3cr3t"}, Secrets: []string{"s3cr3t"}}
	err := e.Run(context.Background(), c, io.Discard, io.Discard)
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), "s3cr3t") {
		t.Fatalf("secret leaked into error: %v", err)
	}
}

func TestDryRun(t *testing.T) {
	skipOnWindows(t)
	var out bytes.Buffer
	e := &Executor{DryRun: true, Verbose: true}
	if err := e.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 1"}}, &out, io.Discard); err != nil {
		t.Fatalf("dry-run should not error: %v", err)
	}
	if !strings.Contains(out.String(), "dry-run:") {
		t.Fatalf("expected dry-run message, got: %q", out.String())
	}
}

func TestOutputMergesStderrAndUsesDir(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	e := &Executor{DryRun: true}
	out, err := e.Output(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd; echo warn >&2"}, Dir: dir})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(out, "warn") {
		t.Fatalf("expected stderr merged into output, got %q", out)
	}
	if !strings.Contains(out, dir) {
		t.Fatalf("expected command to run in %s, got %q", dir, out)
	}
}

func TestRunPassesEnvOverlay(t *testing.T) {
	skipOnWindows(t)
	var out bytes.Buffer
	e := &Executor{}
	c := Command{Name: "sh", Args: []string{"-c", "echo $CONANCI_TEST_VALUE"}, Env: map[string]string{"CONANCI_TEST_VALUE": "overlay"}}
	if err := e.Run(context.Background(), c, &out, io.Discard); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "overlay" {
		t.Fatalf("expected overlay value, got %q", out.String())
	}
}

func TestMissingExecutable(t *testing.T) {
	e := &Executor{}
	err := e.Run(context.Background(), Command{Name: "conanci-definitely-missing"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "not found in PATH") {
		t.Fatalf("expected PATH error, got %v", err)
	}
	if ExitCode(err) != -1 {
		t.Fatalf("expected -1 exit code for non-process error")
	}
}

func TestRejectsControlCharacters(t *testing.T) {
	skipOnWindows(t)
	e := &Executor{}
	err := e.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hi\nnext"}}, io.Discard, io.Discard)
	if err == nil {
		t.Fatalf("expected error for newline in args")
	}
}

func TestMergeEnv(t *testing.T) {
	got := MergeEnv([]string{"A=1", "B=2"}, map[string]string{"B": "3", "D": "5", "C": "4"})
	want := []string{"A=1", "B=3", "C=4", "D=5"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("MergeEnv = %v, want %v", got, want)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "conan", Args: []string{"user", "-p", "hunter2", "-r", "yage", "bentoudev"}, Secrets: []string{"hunter2"}}
	if got := c.String(); got != "conan user -p REDACTED -r yage bentoudev" {
		t.Fatalf("unexpected rendering: %q", got)
	}
	c = Command{Name: "conan", Args: []string{"create", ".", "-s", "compiler=Visual Studio"}}
	if got := c.String(); got != "conan create . -s 'compiler=Visual Studio'" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}
