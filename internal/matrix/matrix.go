// Package matrix expands the default conan build matrix and filters it down
// to the configurations a package actually supports.
package matrix

import (
	"fmt"
	"strings"
)

// Compiler family names as conan spells them in settings.
const (
	GCC           = "gcc"
	Clang         = "clang"
	AppleClang    = "apple-clang"
	VisualStudio  = "Visual Studio"
	ArchX86       = "x86"
	ArchX86_64    = "x86_64"
	BuildDebug    = "Debug"
	PlatformWin   = "windows"
	PlatformLinux = "linux"
	PlatformMac   = "darwin"
)

// BuildConfig is one entry of the build matrix.
type BuildConfig struct {
	Arch            string
	Compiler        string
	CompilerVersion string
	// Runtime is only set for Visual Studio (MT, MD, MTd, MDd).
	Runtime string
	// LibCxx is only set for gcc and the clang families.
	LibCxx    string
	BuildType string
}

// Settings renders b as conan "-s key=value" pairs in a stable order.
func (b BuildConfig) Settings() []string {
	out := []string{
		"arch=" + b.Arch,
		"compiler=" + b.Compiler,
		"compiler.version=" + b.CompilerVersion,
	}
	if b.Runtime != "" {
		out = append(out, "compiler.runtime="+b.Runtime)
	}
	if b.LibCxx != "" {
		out = append(out, "compiler.libcxx="+b.LibCxx)
	}
	return append(out, "build_type="+b.BuildType)
}

func (b BuildConfig) String() string {
	return strings.Join(b.Settings(), " ")
}

// Major returns the leading numeric component of a compiler version
// ("6.0" -> "6", "15" -> "15").
func Major(version string) string {
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}

// Count returns how many entries in builds use compiler.
func Count(builds []BuildConfig, compiler string) int {
	n := 0
	for _, b := range builds {
		if b.Compiler == compiler {
			n++
		}
	}
	return n
}

// Validate rejects entries conan would refuse before any subprocess runs.
func Validate(builds []BuildConfig) error {
	for i, b := range builds {
		if b.Arch == "" || b.Compiler == "" || b.CompilerVersion == "" || b.BuildType == "" {
			return fmt.Errorf("build[%d] incomplete: %s", i, b)
		}
	}
	return nil
}
