// Package cmdline renders external command invocations for logs and results,
// with secrets masked.
package cmdline

import (
	"strings"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// Mask replaces secret values in rendered output.
const Mask = "********"

// PasswordFlag is the prefix of the argument that carries a password.
const PasswordFlag = "--password="

// Redact returns a copy of args with every password value masked.
// The flag name is kept so the rendered command still shows the option was passed.
func Redact(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, PasswordFlag) {
			arg = PasswordFlag + Mask
		}
		out[i] = arg
	}
	return out
}

// String renders inv as a single shell-like line.
// Arguments containing whitespace are single-quoted unless already double-quoted.
func String(inv ports.Invocation) string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, quote(inv.Name))
	for _, arg := range inv.Args {
		parts = append(parts, quote(arg))
	}
	return strings.Join(parts, " ")
}

// RedactedString renders inv with password values masked.
func RedactedString(inv ports.Invocation) string {
	inv.Args = Redact(inv.Args)
	return String(inv)
}

// Scrub masks every literal occurrence of each non-empty secret in text.
func Scrub(text string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, secret, Mask)
	}
	return text
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s
	}
	if !strings.ContainsAny(s, " \t\n'") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
