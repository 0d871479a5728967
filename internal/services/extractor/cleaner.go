package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/nuntius/internal/interfaces"
)

// DefaultTitle is used when the page exposes no title at all
const DefaultTitle = "Article"

var multiNewlineRegex = regexp.MustCompile(`\n{3,}`)

// cleanDocument reduces a parsed page to clean article content. Boilerplate
// elements are removed first, then body text is assembled from trimmed
// paragraph nodes joined by blank lines. Pages without usable paragraphs
// fall back to whole-document text.
func cleanDocument(doc *goquery.Document) *interfaces.ExtractedArticle {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = DefaultTitle
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	paragraphs := []string{}
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n\n")
	if text == "" {
		text = doc.Text()
	}

	return &interfaces.ExtractedArticle{
		Title: title,
		Text:  normalizeWhitespace(text),
	}
}

// normalizeWhitespace collapses runs of 3+ newlines to exactly one blank
// line without losing paragraph structure, and trims the edges. It is
// idempotent: cleaning already-clean text changes nothing.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = multiNewlineRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
