package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

// Orchestrator drives one sequential run of the pipeline: discover
// companies, then for each company extract, analyze, and persist each
// of its articles. Failures on one item never abort the run; they are
// recorded as events and the loop moves on.
type Orchestrator struct {
	discovery interfaces.DiscoveryService
	extractor interfaces.Extractor
	tokens    interfaces.TokenSource
	analyzer  interfaces.Analyzer
	storage   interfaces.StorageManager
	logger    arbor.ILogger
}

// Stats summarizes one pipeline run
type Stats struct {
	Companies        int
	CompaniesSkipped int
	Articles         int
	Persisted        int
	Failed           int
}

// NewOrchestrator wires the pipeline services together
func NewOrchestrator(
	discovery interfaces.DiscoveryService,
	extractor interfaces.Extractor,
	tokens interfaces.TokenSource,
	analyzer interfaces.Analyzer,
	storage interfaces.StorageManager,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		discovery: discovery,
		extractor: extractor,
		tokens:    tokens,
		analyzer:  analyzer,
		storage:   storage,
		logger:    logger,
	}
}

// Run executes one full pipeline pass. Only two conditions are fatal:
// the discovery call failing and the discovery call returning zero
// companies. Everything after that is isolated per item.
func (o *Orchestrator) Run(ctx context.Context) (*Stats, error) {
	runID := common.NewRunID()
	start := time.Now()
	stats := &Stats{}

	o.logger.Info().Str("run_id", runID).Msg("Pipeline run starting")

	companies, err := o.discovery.Companies(ctx)
	if err != nil {
		o.logEvent(ctx, models.EventConnectionFailed, err.Error(), "")
		return stats, fmt.Errorf("discovery failed: %w", err)
	}

	if len(companies) == 0 {
		o.logEvent(ctx, models.EventDiscoveryEmpty, "discovery returned no companies", "")
		return stats, fmt.Errorf("discovery returned no companies")
	}

	o.logger.Info().Int("companies", len(companies)).Msg("Discovery complete")

	for i := range companies {
		o.processCompany(ctx, &companies[i], stats)
	}

	o.logger.Info().
		Str("run_id", runID).
		Int("companies", stats.Companies).
		Int("articles", stats.Articles).
		Int("persisted", stats.Persisted).
		Int("failed", stats.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Pipeline run complete")

	return stats, nil
}

func (o *Orchestrator) processCompany(ctx context.Context, company *models.Company, stats *Stats) {
	if company.ExternalID == "" || company.Name == "" || company.Ticker == "" {
		stats.CompaniesSkipped++
		o.logger.Warn().
			Str("name", company.Name).
			Str("ticker", company.Ticker).
			Str("external_id", company.ExternalID).
			Msg("Skipping company with incomplete identity")
		o.logEvent(ctx, models.EventSkippedItem,
			fmt.Sprintf("company missing identity: name=%q ticker=%q external_id=%q",
				company.Name, company.Ticker, company.ExternalID),
			company.ExternalID)
		return
	}

	if err := o.storage.CompanyStorage().Upsert(ctx, company); err != nil {
		stats.CompaniesSkipped++
		o.logger.Warn().Err(err).Str("external_id", company.ExternalID).Msg("Company upsert failed, skipping its articles")
		o.logEvent(ctx, models.EventPersistFailed, err.Error(), company.ExternalID)
		return
	}

	stats.Companies++

	if len(company.Articles) == 0 {
		o.logger.Info().Str("ticker", company.Ticker).Msg("No articles discovered for company")
		o.logEvent(ctx, models.EventNoArticles,
			fmt.Sprintf("no articles for %s (%s)", company.Name, company.Ticker),
			company.ExternalID)
		return
	}

	for _, article := range company.Articles {
		if article.URL == "" {
			o.logger.Warn().
				Str("ticker", company.Ticker).
				Str("external_id", company.ExternalID).
				Msg("Skipping discovered article without URL")
			o.logEvent(ctx, models.EventSkippedItem,
				fmt.Sprintf("article without URL for %s", company.ExternalID),
				company.ExternalID)
			continue
		}

		stats.Articles++
		if err := o.processArticle(ctx, company, article.URL); err != nil {
			stats.Failed++
			continue
		}
		stats.Persisted++
	}
}

// processArticle runs one article through extract, authenticate,
// analyze, and persist. Any stage error is recorded as an event keyed
// by the article URL and returned; the caller just counts it.
func (o *Orchestrator) processArticle(ctx context.Context, company *models.Company, url string) error {
	extracted, err := o.extractor.Extract(ctx, url)
	if err != nil {
		o.logger.Warn().Err(err).Str("ticker", company.Ticker).Str("url", url).Msg("Content extraction failed")
		o.recordFailure(ctx, err, url)
		return err
	}

	token, err := o.tokens.Authenticate(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Str("ticker", company.Ticker).Str("url", url).Msg("Token exchange failed")
		o.recordFailure(ctx, err, url)
		return err
	}

	analysis, err := o.analyzer.Analyze(ctx, token, extracted.Text)
	if err != nil {
		o.logger.Warn().Err(err).Str("ticker", company.Ticker).Str("url", url).Msg("Article analysis failed")
		o.recordFailure(ctx, err, url)
		return err
	}

	record := buildRecord(company, url, extracted, analysis)
	if err := o.storage.AnalysisStorage().Insert(ctx, record); err != nil {
		o.logger.Warn().Err(err).Str("ticker", company.Ticker).Str("url", url).Msg("Analysis persistence failed")
		o.logEvent(ctx, models.EventPersistFailed, err.Error(), url)
		return err
	}

	o.logger.Info().
		Str("ticker", company.Ticker).
		Str("url", url).
		Float64("sentiment_score", analysis.SentimentScore).
		Msg("Article analyzed and persisted")
	o.logEvent(ctx, models.EventPersisted,
		fmt.Sprintf("analysis stored for %s", company.Ticker), url)

	return nil
}

// buildRecord flattens the structured analysis into the persisted row.
// The article title from the analysis wins over the extracted one when
// present, since the model sees the full text rather than the tag soup.
func buildRecord(company *models.Company, url string, extracted *interfaces.ExtractedArticle, analysis *models.StructuredAnalysis) *models.ArticleAnalysis {
	title := analysis.ArticleTitle
	if title == "" {
		title = extracted.Title
	}

	companyName := analysis.CompanyName
	if companyName == "" {
		companyName = company.Name
	}

	return &models.ArticleAnalysis{
		Ticker:                company.Ticker,
		ExternalID:            company.ExternalID,
		ExecutionTimestamp:    time.Now().UTC(),
		URL:                   url,
		RawText:               extracted.Text,
		Summary:               analysis.Summary,
		SentimentScore:        analysis.SentimentScore,
		Analysis:              analysis.Raw,
		CompanyName:           companyName,
		Title:                 title,
		PublishedTS:           analysis.PublishedTime(),
		ModifiedTS:            analysis.ModifiedTime(),
		SentimentReasoning:    analysis.SentimentReasoning,
		ValuationSignificance: analysis.ValuationSignificance,
		ValuationReasoning:    analysis.ValuationReasoning,
		ExplicitImpacts:       analysis.ExplicitImpacts,
		ImplicitIndustry:      analysis.ImplicitIndustry,
		ImplicitPeers:         analysis.PeerCompanies.Join(),
	}
}

// recordFailure maps a stage failure to its event category. Non-Failure
// errors fall back to a generic analysis event rather than being dropped.
func (o *Orchestrator) recordFailure(ctx context.Context, err error, url string) {
	kind := models.EventAnalysisFailed
	details := err.Error()
	if failure, ok := models.AsFailure(err); ok {
		kind = failure.EventKind()
		if failure.Kind == models.FailureMalformedAnalysis && failure.Raw != "" {
			details = fmt.Sprintf("%s; raw response: %s", details, failure.Raw)
		}
	}
	o.logEvent(ctx, kind, details, url)
}

// logEvent appends an audit event. Appending is best-effort: a failure
// here is logged and swallowed so event persistence can never take the
// pipeline down with it.
func (o *Orchestrator) logEvent(ctx context.Context, kind models.EventKind, details, relatedItem string) {
	event := &models.Event{
		Kind:        kind,
		Details:     details,
		RelatedItem: relatedItem,
	}
	if err := o.storage.EventStorage().Append(ctx, event); err != nil {
		o.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to append audit event")
	}
}
