package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	s := NewStringHelper()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "abc123", "abc123"},
		{"spaces and illegal", " a/b\\c:d ", "a_bcd"},
		{"inner spaces", "my article id", "my_article_id"},
		{"all illegal chars", `x*?"<>|y`, "xy"},
		{"control whitespace", "a\tb\nc\rd\ve\ff", "abcdef"},
		{"arabic kept", " مقال 1 ", "مقال_1"},
		{"only illegal", "///", ""},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.SanitizeFilename(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	s := NewStringHelper()

	assert.Equal(t, "short", s.TruncateString("short", 10))
	assert.Equal(t, "abc...", s.TruncateString("abcdef", 3))
	// "é" is two bytes; cutting inside it backs up to the rune start.
	assert.Equal(t, "a...", s.TruncateString("aé", 2))
}

func TestBuildHeaders(t *testing.T) {
	h := NewHTTPHelper()

	headers := h.BuildHeaders(map[string]string{
		"User-Agent": "custom/1.0",
		"X-Extra":    "1",
	})

	assert.Equal(t, "custom/1.0", headers.Get("User-Agent"))
	assert.Equal(t, "1", headers.Get("X-Extra"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "null", headers.Get("Origin"))
	assert.Empty(t, headers.Get("Accept-Encoding"))
}

func TestIsValidURL(t *testing.T) {
	h := NewHTTPHelper()

	assert.True(t, h.IsValidURL("https://search.altibbi.com/api/all"))
	assert.True(t, h.IsValidURL("http://127.0.0.1:8080/x"))
	assert.False(t, h.IsValidURL("search.altibbi.com/api/all"))
	assert.False(t, h.IsValidURL("ftp://host/file"))
	assert.False(t, h.IsValidURL("://bad"))
}
