package normalizer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// templatingPattern matches a non-nested {...} placeholder.
var templatingPattern = regexp.MustCompile(`\{[^{}]*\}`)

// ToPlainText returns the concatenated text nodes of an HTML fragment.
// Markup that cannot be parsed is returned unchanged.
func ToPlainText(markup string) string {
	if markup == "" {
		return ""
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	return goquery.NewDocumentFromNode(root).Text()
}

// StripTemplating deletes every {...} placeholder and leaves the rest of the text as is.
func StripTemplating(text string) string {
	return templatingPattern.ReplaceAllString(text, "")
}

// NormalizeBody converts an HTML body to plain text without placeholders.
func NormalizeBody(markup string) string {
	return StripTemplating(ToPlainText(markup))
}
