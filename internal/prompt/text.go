package prompt

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	blockTagRegex  = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/h[1-6]|/div)\s*/?\s*>`)
	blankLineRegex = regexp.MustCompile(`\n{3,}`)
)

// PlainText reduces rich-text job descriptions to plain text. Block-level tags
// become line breaks so lists survive; text without tags passes through trimmed.
func PlainText(content string) string {
	if !strings.Contains(content, "<") && !strings.Contains(content, "&") {
		return strings.TrimSpace(content)
	}
	s := blockTagRegex.ReplaceAllString(content, "\n")
	s = htmlTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLineRegex.ReplaceAllString(s, "\n\n"))
}
