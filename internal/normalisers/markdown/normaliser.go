package markdown

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextNormaliser = (*Normaliser)(nil)

var (
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*)`)
	newlines     = regexp.MustCompile(`\n{3,}`)
)

// Normaliser strips markdown syntax from pattern heading content.
type Normaliser struct {
	// KeepCode keeps the text of inline code spans instead of dropping them.
	KeepCode bool
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{KeepCode: true}
}

// Normalise converts markdown content to plain text.
func (n *Normaliser) Normalise(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	if n.KeepCode {
		content = inlineCode.ReplaceAllString(content, "$1")
	} else {
		content = inlineCode.ReplaceAllString(content, "")
	}

	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")

	// Rules before list markers so "---" is not read as a list item.
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "")

	content = newlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
