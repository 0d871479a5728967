package interfaces

import (
	"context"
)

// ExtractedArticle is the cleaned title + body text for one URL
type ExtractedArticle struct {
	Title string
	Text  string
}

// Extractor retrieves a page and reduces it to clean article content.
// Implementations convert all network, timeout, and parse errors into a
// models.Failure; they never persist anything.
type Extractor interface {
	Extract(ctx context.Context, url string) (*ExtractedArticle, error)
	Close() error
}
