package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/bentoudev/conanci/internal/matrix"
	"github.com/bentoudev/conanci/internal/nameutil"
)

// DefaultFiles are probed, in order, when no project file is given.
var DefaultFiles = []string{".conanci.yaml", ".conanci.yml", ".conanci.toml"}

// Project describes the package being built. It replaces the per-package
// constants a build script would otherwise hardcode.
type Project struct {
	// Package is the conan package name; uploads match "<Package>*".
	Package string `yaml:"package" toml:"package"`
	// GitDir is where version lookups run.
	GitDir string `yaml:"git_dir" toml:"git_dir"`
	// EnvPrefix names the <prefix>_VERSION / <prefix>_COMMIT variables
	// exported to the recipe.
	EnvPrefix string `yaml:"env_prefix" toml:"env_prefix"`
	// RecipeDir holds the conanfile passed to `conan create`.
	RecipeDir   string `yaml:"recipe_dir" toml:"recipe_dir"`
	Username    string `yaml:"username" toml:"username"`
	StableInGit bool   `yaml:"stable_in_git" toml:"stable_in_git"`
	Remote      string `yaml:"remote" toml:"remote"`
	// UploadRetry and UploadRetryWait (seconds) are handed to `conan upload`.
	UploadRetry     int          `yaml:"upload_retry" toml:"upload_retry"`
	UploadRetryWait int          `yaml:"upload_retry_wait" toml:"upload_retry_wait"`
	Matrix          matrix.Rules `yaml:"matrix" toml:"matrix"`
}

// Default returns a Project with every optional field populated.
func Default() Project {
	return Project{
		GitDir:          ".",
		RecipeDir:       ".",
		Username:        "bentoudev",
		StableInGit:     true,
		Remote:          "yage",
		UploadRetry:     3,
		UploadRetryWait: 10,
		Matrix:          matrix.DefaultRules(),
	}
}

// Load reads a YAML or TOML project file on top of Default. The format is
// picked from the file extension.
func Load(path string) (Project, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	case ".toml":
		err = toml.Unmarshal(data, &p)
	default:
		return Project{}, fmt.Errorf("config load failed (%s): unsupported format", path)
	}
	if err != nil {
		return Project{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	p.normalize()
	return p, nil
}

// Find returns the first of DefaultFiles present in dir, or "" when none is.
func Find(dir string) string {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
	}
	return ""
}

func (p *Project) normalize() {
	p.Package, _ = nameutil.SanitizeName(p.Package)
	p.EnvPrefix, _ = nameutil.SanitizeName(p.EnvPrefix)
	p.Username, _ = nameutil.SanitizeName(p.Username)
	p.Remote, _ = nameutil.SanitizeName(p.Remote)
	if p.GitDir == "" {
		p.GitDir = "."
	}
	if p.RecipeDir == "" {
		p.RecipeDir = "."
	}
}

// Validate reports the first problem that would make a build run fail.
func (p Project) Validate() error {
	if err := nameutil.ValidateName("package", p.Package); err != nil {
		return err
	}
	if err := nameutil.ValidateEnvPrefix(p.EnvPrefix); err != nil {
		return err
	}
	if err := nameutil.ValidateName("username", p.Username); err != nil {
		return err
	}
	if err := nameutil.ValidateName("remote", p.Remote); err != nil {
		return err
	}
	if p.UploadRetry < 0 || p.UploadRetryWait < 0 {
		return errors.New("upload retry settings must not be negative")
	}
	if p.Matrix.Arch == "" {
		return errors.New("matrix arch must not be empty")
	}
	if len(p.Matrix.ClangLibCxx) == 0 {
		return errors.New("matrix clang_libcxx must list at least one library")
	}
	return nil
}
