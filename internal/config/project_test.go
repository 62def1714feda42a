package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), ".conanci.yaml", `
package: eastl
env_prefix: EASTL
git_dir: ../eastl
stable_in_git: false
matrix:
  gcc_majors: ["9"]
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Package != "eastl" || cfg.EnvPrefix != "EASTL" || cfg.GitDir != "../eastl" {
		t.Fatalf("unexpected project: %+v", cfg)
	}
	if cfg.StableInGit {
		t.Fatalf("expected stable_in_git override to false")
	}
	if !reflect.DeepEqual(cfg.Matrix.GCCMajors, []string{"9"}) {
		t.Fatalf("unexpected gcc majors: %v", cfg.Matrix.GCCMajors)
	}
	// untouched keys keep their defaults
	if cfg.Remote != "yage" || cfg.UploadRetry != 3 || cfg.Matrix.Arch != "x86_64" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "conanci.toml", `
package = "yage-core"
env_prefix = "YAGE"
upload_retry = 5

[matrix]
clang_majors = ["6", "7"]
exclude_runtime = "MD"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Package != "yage-core" || cfg.UploadRetry != 5 {
		t.Fatalf("unexpected project: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Matrix.ClangMajors, []string{"6", "7"}) || cfg.Matrix.ExcludeRuntime != "MD" {
		t.Fatalf("unexpected matrix rules: %+v", cfg.Matrix)
	}
	if len(cfg.Matrix.ClangLibCxx) != 2 {
		t.Fatalf("expected default libcxx variants, got %v", cfg.Matrix.ClangLibCxx)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := writeFile(t, dir, "bad.yaml", "package: [unterminated")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parse failed") {
		t.Fatalf("expected parse error, got %v", err)
	}
	ini := writeFile(t, dir, "conanci.ini", "package=x")
	if _, err := Load(ini); err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Fatalf("expected no file, got %s", got)
	}
	tomlPath := writeFile(t, dir, ".conanci.toml", "")
	if got := Find(dir); got != tomlPath {
		t.Fatalf("expected %s, got %s", tomlPath, got)
	}
	yml := writeFile(t, dir, ".conanci.yaml", "")
	if got := Find(dir); got != yml {
		t.Fatalf("expected yaml to win, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Package = "eastl"
	valid.EnvPrefix = "EASTL"
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := map[string]func(p *Project){
		"missing package":  func(p *Project) { p.Package = "" },
		"bad prefix":       func(p *Project) { p.EnvPrefix = "EA-STL" },
		"missing username": func(p *Project) { p.Username = "" },
		"negative retry":   func(p *Project) { p.UploadRetry = -1 },
		"no libcxx":        func(p *Project) { p.Matrix.ClangLibCxx = nil },
	}
	for name, mutate := range cases {
		p := valid
		p.Matrix.ClangLibCxx = append([]string(nil), valid.Matrix.ClangLibCxx...)
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
