package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

// AnalysisStorage implements interfaces.AnalysisStorage
type AnalysisStorage struct {
	db     *PostgresDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new analysis storage instance
func NewAnalysisStorage(db *PostgresDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

// Insert writes the full record keyed on (external_id, url). A rerun of
// the same company+URL replaces the row with the freshest analysis, so
// the row count per key never exceeds one.
func (a *AnalysisStorage) Insert(ctx context.Context, record *models.ArticleAnalysis) error {
	query := `
		INSERT INTO article_analyses (
			external_id, url, ticker, execution_ts, raw_text, summary,
			sentiment_score, analysis, company_name, title, published_ts,
			modified_ts, sentiment_reasoning, valuation_significance,
			valuation_reasoning, explicit_impacts, implicit_industry_impacts,
			implicit_peer_impacts
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (external_id, url) DO UPDATE SET
			ticker = EXCLUDED.ticker,
			execution_ts = EXCLUDED.execution_ts,
			raw_text = EXCLUDED.raw_text,
			summary = EXCLUDED.summary,
			sentiment_score = EXCLUDED.sentiment_score,
			analysis = EXCLUDED.analysis,
			company_name = EXCLUDED.company_name,
			title = EXCLUDED.title,
			published_ts = EXCLUDED.published_ts,
			modified_ts = EXCLUDED.modified_ts,
			sentiment_reasoning = EXCLUDED.sentiment_reasoning,
			valuation_significance = EXCLUDED.valuation_significance,
			valuation_reasoning = EXCLUDED.valuation_reasoning,
			explicit_impacts = EXCLUDED.explicit_impacts,
			implicit_industry_impacts = EXCLUDED.implicit_industry_impacts,
			implicit_peer_impacts = EXCLUDED.implicit_peer_impacts
	`

	var publishedTS, modifiedTS sql.NullTime
	if record.PublishedTS != nil {
		publishedTS = sql.NullTime{Time: *record.PublishedTS, Valid: true}
	}
	if record.ModifiedTS != nil {
		modifiedTS = sql.NullTime{Time: *record.ModifiedTS, Valid: true}
	}

	_, err := a.db.db.ExecContext(ctx, query,
		record.ExternalID,
		record.URL,
		record.Ticker,
		record.ExecutionTimestamp,
		record.RawText,
		record.Summary,
		record.SentimentScore,
		string(record.Analysis),
		record.CompanyName,
		record.Title,
		publishedTS,
		modifiedTS,
		record.SentimentReasoning,
		record.ValuationSignificance,
		record.ValuationReasoning,
		record.ExplicitImpacts,
		record.ImplicitIndustry,
		record.ImplicitPeers,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis for %s %s: %w", record.ExternalID, record.URL, err)
	}

	a.logger.Debug().
		Str("external_id", record.ExternalID).
		Str("url", record.URL).
		Float64("sentiment_score", record.SentimentScore).
		Msg("Article analysis persisted")

	return nil
}

// CountForKey reports how many rows exist for a company+URL pair
func (a *AnalysisStorage) CountForKey(ctx context.Context, externalID, url string) (int, error) {
	var count int
	err := a.db.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM article_analyses WHERE external_id = $1 AND url = $2",
		externalID, url).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses for %s %s: %w", externalID, url, err)
	}
	return count, nil
}
