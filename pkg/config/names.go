package config

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeName returns the canonical form of a group or user name. Group and
// user names are compared, and laid out on disk, in this form only.
func NormalizeName(name string) string {
	// Casers aren't safe for concurrent use, so one is created per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}
