// Package sanitize strips markup from user supplied text before it is stored
// or indexed.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every HTML tag, unescapes entities and collapses whitespace
// runs within a line. Line breaks are kept.
func Text(content string) string {
	// Replace block tags with newlines to prevent text merging
	for _, tag := range []string{"</p>", "<br>", "<br/>", "<br />", "</div>"} {
		content = strings.ReplaceAll(content, tag, "\n")
	}

	cleaned := html.UnescapeString(strict.Sanitize(content))

	lines := strings.Split(cleaned, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Inline is Text folded onto a single line, for search documents.
func Inline(content string) string {
	return strings.Join(strings.Fields(Text(content)), " ")
}
