package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

// StaticExtractor fetches raw HTML without rendering. Sufficient for
// server-rendered pages; script-rendered pages need RenderedExtractor.
type StaticExtractor struct {
	collector *colly.Collector
	config    common.ExtractorConfig
	logger    arbor.ILogger
}

// contextAwareTransport wraps an http.RoundTripper to support context cancellation
type contextAwareTransport struct {
	base http.RoundTripper
	ctx  context.Context
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	select {
	case <-t.ctx.Done():
		return nil, t.ctx.Err()
	default:
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// NewStaticExtractor creates a static-fetch extractor backed by Colly
func NewStaticExtractor(config common.ExtractorConfig, logger arbor.ILogger) *StaticExtractor {
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.MaxBodySize = config.MaxBodySize
	c.SetRequestTimeout(config.RequestTimeout)

	return &StaticExtractor{
		collector: c,
		config:    config,
		logger:    logger,
	}
}

// Extract fetches the URL and reduces it to clean article content. Every
// network or parse error converts to an extraction failure.
func (s *StaticExtractor) Extract(ctx context.Context, targetURL string) (*interfaces.ExtractedArticle, error) {
	// Clone to avoid handler accumulation across calls
	c := s.collector.Clone()
	c.WithTransport(&contextAwareTransport{base: http.DefaultTransport, ctx: ctx})

	var body []byte
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil && r.StatusCode > 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, models.NewFailure(models.FailureExtract, err)
	}
	c.Wait()

	if ctx.Err() != nil {
		return nil, models.NewFailure(models.FailureExtract, ctx.Err())
	}
	if fetchErr != nil {
		return nil, models.NewFailure(models.FailureExtract, fetchErr)
	}
	if len(body) == 0 {
		return nil, models.NewFailure(models.FailureExtract, fmt.Errorf("empty response body for %s", targetURL))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, models.NewFailure(models.FailureExtract, fmt.Errorf("failed to parse HTML: %w", err))
	}

	article := cleanDocument(doc)

	s.logger.Debug().
		Str("url", targetURL).
		Str("title", article.Title).
		Int("text_length", len(article.Text)).
		Msg("Static extraction completed")

	return article, nil
}

// Close cleans up extractor resources
func (s *StaticExtractor) Close() error {
	s.logger.Debug().Msg("Closing static extractor")
	return nil
}
