// ABOUTME: ContentCleaner strips HTML and normalizes whitespace before chunking
// ABOUTME: Cleaning happens once, so the chunker's invariants hold over cleaned content
package core

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRunPattern   = regexp.MustCompile(` +`)
	newlineRunPattern = regexp.MustCompile(`\n{3,}`)
)

// ContentCleaner normalizes raw document content.
type ContentCleaner struct{}

// NewContentCleaner creates a new ContentCleaner instance
func NewContentCleaner() *ContentCleaner {
	return &ContentCleaner{}
}

// Clean removes HTML tags, decodes entities, and normalizes whitespace.
func (cc *ContentCleaner) Clean(content string) string {
	// Block-level tags become line breaks so structure survives tag removal.
	cleaned := strings.ReplaceAll(content, "\r\n", "\n")
	for _, tag := range []string{"</p>", "</div>", "</li>", "<br>", "<br/>", "<br />", "</h1>", "</h2>", "</h3>", "</h4>", "</tr>"} {
		cleaned = strings.ReplaceAll(cleaned, tag, tag+"\n")
	}

	cleaned = tagPattern.ReplaceAllString(cleaned, "")
	cleaned = html.UnescapeString(cleaned)
	cleaned = spaceRunPattern.ReplaceAllString(cleaned, " ")

	// Trim trailing spaces per line, then collapse newline runs.
	lines := strings.Split(cleaned, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	cleaned = strings.Join(lines, "\n")
	cleaned = newlineRunPattern.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
