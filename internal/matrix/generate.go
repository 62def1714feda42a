package matrix

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Environment variables read by Generate. They share names with the ones
// conan package tools understands so existing CI definitions keep working.
const (
	EnvArchs              = "CONAN_ARCHS"
	EnvBuildTypes         = "CONAN_BUILD_TYPES"
	EnvVisualVersions     = "CONAN_VISUAL_VERSIONS"
	EnvGCCVersions        = "CONAN_GCC_VERSIONS"
	EnvClangVersions      = "CONAN_CLANG_VERSIONS"
	EnvAppleClangVersions = "CONAN_APPLE_CLANG_VERSIONS"
	EnvCXX                = "CXX"
)

var (
	defaultArchs              = []string{ArchX86, ArchX86_64}
	defaultVisualVersions     = []string{"15", "16"}
	defaultGCCVersions        = []string{"4.9", "5", "6", "7", "8", "9"}
	defaultClangVersions      = []string{"3.9", "4.0", "5.0", "6.0", "7.0", "8"}
	defaultAppleClangVersions = []string{"10.0", "11.0"}
	windowsBuildTypes         = []string{"Release", "Debug", "RelWithDebInfo", "MinSizeRel"}
	unixBuildTypes            = []string{"Release", "Debug"}
)

// Settings are the inputs of the default matrix.
type Settings struct {
	Platform           string
	Archs              []string
	BuildTypes         []string
	VisualVersions     []string
	GCCVersions        []string
	ClangVersions      []string
	AppleClangVersions []string
}

// SettingsFromEnv builds Settings for platform, taking overrides from
// lookup and falling back to defaults for anything unset.
func SettingsFromEnv(platform string, lookup func(string) (string, bool)) Settings {
	s := Settings{
		Platform:           platform,
		Archs:              defaultArchs,
		VisualVersions:     defaultVisualVersions,
		GCCVersions:        defaultGCCVersions,
		ClangVersions:      defaultClangVersions,
		AppleClangVersions: defaultAppleClangVersions,
	}
	if platform == PlatformWin {
		s.BuildTypes = windowsBuildTypes
	} else {
		s.BuildTypes = unixBuildTypes
	}

	if v, ok := lookup(EnvVisualVersions); ok {
		// a single version is expected here, not a list
		s.VisualVersions = []string{strings.TrimSpace(v)}
		log.Info().Str("version", v).Msg("selected Visual Studio version")
	}
	if v, ok := lookup(EnvBuildTypes); ok {
		s.BuildTypes = strings.Fields(v)
	}
	if v, ok := lookup(EnvArchs); ok {
		s.Archs = splitList(v)
	}
	if v, ok := lookup(EnvGCCVersions); ok {
		s.GCCVersions = splitList(v)
	}
	if v, ok := lookup(EnvClangVersions); ok {
		s.ClangVersions = splitList(v)
	}
	if v, ok := lookup(EnvAppleClangVersions); ok {
		s.AppleClangVersions = splitList(v)
	}
	return s
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Generate expands s into the full cross product of architectures,
// compilers, compiler versions, runtimes and build types.
func Generate(s Settings) []BuildConfig {
	var out []BuildConfig
	for _, arch := range s.Archs {
		for _, bt := range s.BuildTypes {
			switch s.Platform {
			case PlatformWin:
				for _, v := range s.VisualVersions {
					for _, rt := range visualRuntimes(bt) {
						out = append(out, BuildConfig{Arch: arch, Compiler: VisualStudio, CompilerVersion: v, Runtime: rt, BuildType: bt})
					}
				}
			case PlatformMac:
				for _, v := range s.AppleClangVersions {
					out = append(out, BuildConfig{Arch: arch, Compiler: AppleClang, CompilerVersion: v, LibCxx: "libc++", BuildType: bt})
				}
			default:
				for _, v := range s.GCCVersions {
					out = append(out, BuildConfig{Arch: arch, Compiler: GCC, CompilerVersion: v, LibCxx: "libstdc++11", BuildType: bt})
				}
				for _, v := range s.ClangVersions {
					out = append(out, BuildConfig{Arch: arch, Compiler: Clang, CompilerVersion: v, LibCxx: "libstdc++", BuildType: bt})
				}
			}
		}
	}
	return out
}

func visualRuntimes(buildType string) []string {
	if buildType == BuildDebug {
		return []string{"MTd", "MDd"}
	}
	return []string{"MT", "MD"}
}

// SelectCompiler picks the compiler family to build with. On Linux the CXX
// variable decides between clang and gcc, macOS always uses apple-clang,
// and on Windows every compiler in the matrix is kept and "" is returned.
func SelectCompiler(platform string, lookup func(string) (string, bool)) string {
	switch platform {
	case PlatformWin:
		return ""
	case PlatformMac:
		log.Info().Msg("selected apple-clang")
		return AppleClang
	}
	if cxx, ok := lookup(EnvCXX); ok && strings.HasPrefix(cxx, Clang) {
		log.Info().Msg("selected clang")
		return Clang
	}
	log.Info().Msg("selected gcc")
	return GCC
}
