package matrix

import "strings"

// Rules are the inclusion rules Filter applies. The yaml/toml tags let the
// project configuration override them.
type Rules struct {
	// Arch is the only architecture kept.
	Arch string `yaml:"arch" toml:"arch"`
	// Compiler restricts the matrix to one family when non-empty.
	Compiler string `yaml:"-" toml:"-"`
	// GCCMajors and ClangMajors are allow-lists of major versions.
	GCCMajors   []string `yaml:"gcc_majors" toml:"gcc_majors"`
	ClangMajors []string `yaml:"clang_majors" toml:"clang_majors"`
	// ClangLibCxx lists the standard libraries every kept clang entry is
	// built against.
	ClangLibCxx []string `yaml:"clang_libcxx" toml:"clang_libcxx"`
	// ExcludeRuntime drops Visual Studio entries whose runtime has this
	// prefix ("MT" drops both MT and MTd).
	ExcludeRuntime string `yaml:"exclude_runtime" toml:"exclude_runtime"`
}

// DefaultRules returns the rules used when the project does not override
// them.
func DefaultRules() Rules {
	return Rules{
		Arch:           ArchX86_64,
		GCCMajors:      []string{"7", "8"},
		ClangMajors:    []string{"6"},
		ClangLibCxx:    []string{"libc++", "libstdc++"},
		ExcludeRuntime: "MT",
	}
}

// Filter applies r to builds in a single pass and returns the supported
// subset. The input slice is not modified.
func Filter(builds []BuildConfig, r Rules) []BuildConfig {
	var out []BuildConfig
	for _, b := range builds {
		if b.Arch != r.Arch {
			continue
		}
		if r.Compiler != "" && b.Compiler != r.Compiler {
			continue
		}
		switch b.Compiler {
		case Clang:
			if !hasMajor(r.ClangMajors, b.CompilerVersion) {
				continue
			}
			for _, libcxx := range r.ClangLibCxx {
				dup := b
				dup.LibCxx = libcxx
				out = append(out, dup)
			}
		case GCC:
			if !hasMajor(r.GCCMajors, b.CompilerVersion) {
				continue
			}
			out = append(out, b)
		case VisualStudio:
			if r.ExcludeRuntime != "" && strings.HasPrefix(b.Runtime, r.ExcludeRuntime) {
				continue
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
	}
	return out
}

// hasMajor reports whether version's major component is in allowed.
func hasMajor(allowed []string, version string) bool {
	major := Major(version)
	for _, a := range allowed {
		if major == a {
			return true
		}
	}
	return false
}
