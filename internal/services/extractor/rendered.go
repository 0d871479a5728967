package extractor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

// RenderedExtractor drives a headless Chrome instance via chromedp to
// obtain the final DOM of script-rendered pages before cleaning. The
// browser is started lazily on first use and reused across articles.
type RenderedExtractor struct {
	config common.ExtractorConfig
	logger arbor.ILogger

	mu              sync.Mutex
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	initialized     bool
}

// NewRenderedExtractor creates a rendering-capable extractor
func NewRenderedExtractor(config common.ExtractorConfig, logger arbor.ILogger) *RenderedExtractor {
	return &RenderedExtractor{
		config: config,
		logger: logger,
	}
}

// init starts the browser and verifies it responds. Must be called with
// the mutex held.
func (r *RenderedExtractor) init(ctx context.Context) error {
	if r.initialized {
		return nil
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.config.Headless),
		chromedp.Flag("no-sandbox", r.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(r.config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			r.logger.Debug().Msgf("chromedp: "+s, i...)
		}),
	)

	// Startup test
	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser failed startup test: %w", err)
	}

	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	r.allocatorCancel = allocatorCancel
	r.initialized = true

	r.logger.Info().
		Bool("headless", r.config.Headless).
		Dur("page_timeout", r.config.PageTimeout).
		Msg("Rendered extractor browser started")

	return nil
}

// Extract navigates to the URL, waits for client-side script, captures the
// final DOM, and reduces it to clean article content. Navigation and
// readiness share a bounded wait; exceeding it is an extraction failure,
// not a crash.
func (r *RenderedExtractor) Extract(ctx context.Context, targetURL string) (*interfaces.ExtractedArticle, error) {
	r.mu.Lock()
	if err := r.init(ctx); err != nil {
		r.mu.Unlock()
		return nil, models.NewFailure(models.FailureExtract, err)
	}
	browserCtx := r.browserCtx
	r.mu.Unlock()

	pageCtx, cancel := context.WithTimeout(browserCtx, r.config.PageTimeout)
	defer cancel()

	// Propagate caller cancellation into the page context
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-pageCtx.Done():
		}
	}()

	var html, title string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(targetURL),
		chromedp.Sleep(r.config.JavaScriptWaitTime),
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
	)
	if err != nil {
		return nil, models.NewFailure(models.FailureExtract, fmt.Errorf("page render failed: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewFailure(models.FailureExtract, fmt.Errorf("failed to parse rendered DOM: %w", err))
	}

	article := cleanDocument(doc)
	if article.Title == DefaultTitle && strings.TrimSpace(title) != "" {
		article.Title = strings.TrimSpace(title)
	}

	r.logger.Debug().
		Str("url", targetURL).
		Str("title", article.Title).
		Int("text_length", len(article.Text)).
		Msg("Rendered extraction completed")

	return article, nil
}

// Close shuts down the browser
func (r *RenderedExtractor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil
	}

	r.logger.Debug().Msg("Shutting down rendered extractor browser")
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocatorCancel != nil {
		r.allocatorCancel()
	}
	r.initialized = false
	return nil
}
