package lingo

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IgnoredTags contains markup tags whose content is never worth
// translating when the host hands us rendered snippets.
var IgnoredTags = map[string]bool{
	"script": true,
	"style":  true,
	"code":   true,
	"pre":    true,
}

var (
	urlPattern = regexp.MustCompile(`^(https?|ftp)://\S+$`)
	// Host-specific inline tokens: mentions <@123>, channels <#123>,
	// custom emoji <:name:123> or <a:name:123>, timestamps <t:123:R>.
	tokenPattern = regexp.MustCompile(`<a?[@#:t][^<>]*>`)
	fencePattern = regexp.MustCompile("(?s)```.*?```|`[^`\\n]*`")
)

// PlainText reduces message content to its translatable text. Markup is
// stripped via an HTML parse (skipping IgnoredTags), code fences and
// host-specific inline tokens are removed.
func PlainText(content string) string {
	text := fencePattern.ReplaceAllString(content, " ")
	text = tokenPattern.ReplaceAllString(text, " ")

	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			for tag := range IgnoredTags {
				doc.Find(tag).Remove()
			}
			text = doc.Text()
		}
	}

	return Normalize(text)
}

// Translatable reports whether text (as returned by PlainText) carries
// anything worth sending to a backend. Empty, URL-only, and
// punctuation-only content is skipped.
func Translatable(text string) bool {
	text = Normalize(text)
	if text == "" {
		return false
	}

	hasWord := false
	for _, field := range strings.Fields(text) {
		if urlPattern.MatchString(field) {
			continue
		}
		for _, r := range field {
			if isWordRune(r) {
				hasWord = true
				break
			}
		}
		if hasWord {
			break
		}
	}
	return hasWord
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r > 127: // Non-ASCII letters count as content
		return true
	}
	return false
}
