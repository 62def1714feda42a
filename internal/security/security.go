// Package security keeps repository credentials out of logs and error
// messages.
package security

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Mask replaces every redacted secret.
const Mask = "REDACTED"

// Redact returns s with every non-empty secret replaced by Mask.
func Redact(s string, secrets ...string) string {
	for _, sec := range secrets {
		if sec == "" {
			continue
		}
		s = strings.ReplaceAll(s, sec, Mask)
	}
	return s
}

// RedactArgs returns a copy of args with secrets masked.
func RedactArgs(args []string, secrets ...string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = Redact(a, secrets...)
	}
	return out
}

// CheckRemoteURL rejects repository URLs that conan cannot register or that
// would leak a password through the remote list.
func CheckRemoteURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid repository url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid repository url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("invalid repository url: missing host")
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		return errors.New("invalid repository url: embedded password, pass the key separately")
	}
	return nil
}
