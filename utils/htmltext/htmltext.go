// ABOUTME: This file converts provider HTML fragments into plain text
// ABOUTME: Used by adapters to normalize feed descriptions and API snippets
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// Sanitize removes every HTML tag and returns the unescaped remaining text.
func Sanitize(raw string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(raw))
}

// ExtractText converts an HTML fragment into readable plain text.
// Paragraph-level elements are joined with blank lines; inputs that already
// contain no markup pass through with whitespace normalized.
func ExtractText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if !strings.Contains(trimmed, "<") {
		return normalizeWhitespace(trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return normalizeWhitespace(Sanitize(trimmed))
	}

	doc.Find("script, style, noscript").Remove()

	paragraphs := doc.Find("p, li, blockquote").Map(func(_ int, s *goquery.Selection) string {
		return strings.TrimSpace(s.Text())
	})

	var parts []string
	for _, p := range paragraphs {
		if p != "" {
			parts = append(parts, normalizeWhitespace(p))
		}
	}

	if len(parts) == 0 {
		// No paragraph structure; take the whole document text.
		return normalizeWhitespace(doc.Text())
	}

	return strings.Join(parts, "\n\n")
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
