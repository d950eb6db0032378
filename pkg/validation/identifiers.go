package validation

import (
	"errors"
	"regexp"
	"strings"
)

// slugPattern is what school slugs must match after normalization. The slug
// lands in URLs, so the character set stays deliberately narrow.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,18}[a-z0-9]$`)

// ErrInvalidIdentifier reports a slug that fails the format rules.
var ErrInvalidIdentifier = errors.New("invalid identifier. Use 3-20 lowercase characters (letters, numbers, hyphens)")

// NormalizeIdentifier lowercases and trims an identifier, then validates it.
func NormalizeIdentifier(value string) (string, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	if !slugPattern.MatchString(normalized) {
		return "", ErrInvalidIdentifier
	}
	return normalized, nil
}
