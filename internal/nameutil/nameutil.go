// Package nameutil validates the identifiers conanci hands to conan and to
// the subprocess environment.
package nameutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// conan accepts 2-51 characters for names, users and channels.
var referencePart = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_+.-]{1,50}$`)

var envPrefix = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName checks that name is usable as one component of a conan
// reference (package name, user, channel or remote). kind is only used in
// the error message.
func ValidateName(kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("invalid %s: cannot be empty", kind)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("invalid %s: contains invalid encoding", kind)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("invalid %s: contains control character U+%04X (%q)", kind, r, r)
		}
	}
	if !referencePart.MatchString(name) {
		return fmt.Errorf("invalid %s %q: must match %s", kind, name, referencePart)
	}
	return nil
}

// ValidateEnvPrefix checks that prefix can start an environment variable
// name such as <prefix>_VERSION.
func ValidateEnvPrefix(prefix string) error {
	if !envPrefix.MatchString(prefix) {
		return fmt.Errorf("invalid env prefix %q: must match %s", prefix, envPrefix)
	}
	return nil
}

// SanitizeName removes control and zero-width characters commonly
// introduced by copy/paste, trims surrounding whitespace, and reports
// whether anything changed.
func SanitizeName(name string) (string, bool) {
	if name == "" {
		return name, false
	}
	out := make([]rune, 0, len(name))
	changed := false
	for _, r := range name {
		if unicode.IsControl(r) {
			changed = true
			continue
		}
		switch r {
		case '\u200B', '\u200C', '\u200D', '\uFEFF':
			changed = true
			continue
		}
		out = append(out, r)
	}
	res := strings.TrimSpace(string(out))
	if res != name {
		changed = true
	}
	return res, changed
}
