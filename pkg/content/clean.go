package content

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// entityReplacer decodes the five entities that actually show up in stored
// course HTML. Anything more exotic stays as-is.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
)

// CleanHTML strips markup from stored course HTML and returns plain text:
// tags are removed, runs of whitespace collapse to single spaces, and common
// entities are decoded.
func CleanHTML(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	text := tagPattern.ReplaceAllString(htmlContent, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = entityReplacer.Replace(text)

	return strings.TrimSpace(text)
}
