package ai

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	braceObjectRegex = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ExtractJSON pulls a JSON object out of a model reply. In order it tries the
// first fenced code block, then the widest {...} span; otherwise raw is
// returned unchanged so the caller's decode fails on the original text.
func ExtractJSON(raw string) string {
	if m := fencedBlockRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := braceObjectRegex.FindString(raw); m != "" {
		return m
	}
	return raw
}
