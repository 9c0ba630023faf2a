// Package language normalizes locale identifiers and matches them against the
// set of languages a recognition engine supports.
package language

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Normalize parses a locale identifier ("en-US", "en_US.UTF-8", "pt") and
// returns its canonical BCP-47 form.
func Normalize(value string) (string, error) {
	cleaned := cleanEnvLocale(value)
	if cleaned == "" {
		return "", fmt.Errorf("empty locale")
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", value, err)
	}
	return tag.String(), nil
}

// Base returns the two-letter base language of a locale ("en-US" -> "en").
func Base(locale string) (string, error) {
	tag, err := language.Parse(cleanEnvLocale(locale))
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", locale, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// Matches reports whether the requested locale is served by one of the
// supported language codes.
func Matches(locale string, supported []string) bool {
	requested, err := language.Parse(cleanEnvLocale(locale))
	if err != nil {
		return false
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return false
	}
	_, _, confidence := language.NewMatcher(tags).Match(requested)
	return confidence >= language.High
}

// SystemDefault derives the default locale from the process environment,
// falling back to en-US.
func SystemDefault() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := os.Getenv(key)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		if normalized, err := Normalize(raw); err == nil {
			return normalized
		}
	}
	return "en-US"
}

// cleanEnvLocale strips POSIX environment decoration: "en_US.UTF-8@euro"
// becomes "en-US".
func cleanEnvLocale(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		value = value[:idx]
	}
	if idx := strings.IndexByte(value, '@'); idx >= 0 {
		value = value[:idx]
	}
	return strings.ReplaceAll(value, "_", "-")
}
