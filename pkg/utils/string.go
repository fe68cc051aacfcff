package utils

import (
	"strings"
	"unicode/utf8"
)

// illegalFilenameChars are removed from sanitized filenames along with
// tab, newline, carriage return, vertical tab and form feed.
const illegalFilenameChars = "\\/*?:\"<>|\t\n\r\v\f"

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// SanitizeFilename turns an arbitrary identifier into a single path segment.
// Surrounding whitespace is trimmed, inner spaces become underscores and
// illegal characters are dropped. The result may be empty.
func (s *StringHelper) SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")

	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}

		return r
	}, name)
}

// TruncateString truncates string to max bytes without splitting a rune.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	if len(str) <= maxLength {
		return str
	}

	cut := maxLength
	for cut > 0 && !utf8.RuneStart(str[cut]) {
		cut--
	}

	return str[:cut] + "..."
}
