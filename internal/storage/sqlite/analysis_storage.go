package sqlite

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
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new analysis storage instance
func NewAnalysisStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.AnalysisStorage {
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
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id, url) DO UPDATE SET
			ticker = excluded.ticker,
			execution_ts = excluded.execution_ts,
			raw_text = excluded.raw_text,
			summary = excluded.summary,
			sentiment_score = excluded.sentiment_score,
			analysis = excluded.analysis,
			company_name = excluded.company_name,
			title = excluded.title,
			published_ts = excluded.published_ts,
			modified_ts = excluded.modified_ts,
			sentiment_reasoning = excluded.sentiment_reasoning,
			valuation_significance = excluded.valuation_significance,
			valuation_reasoning = excluded.valuation_reasoning,
			explicit_impacts = excluded.explicit_impacts,
			implicit_industry_impacts = excluded.implicit_industry_impacts,
			implicit_peer_impacts = excluded.implicit_peer_impacts
	`

	var publishedTS, modifiedTS sql.NullInt64
	if record.PublishedTS != nil {
		publishedTS = sql.NullInt64{Int64: record.PublishedTS.Unix(), Valid: true}
	}
	if record.ModifiedTS != nil {
		modifiedTS = sql.NullInt64{Int64: record.ModifiedTS.Unix(), Valid: true}
	}

	_, err := a.db.db.ExecContext(ctx, query,
		record.ExternalID,
		record.URL,
		record.Ticker,
		record.ExecutionTimestamp.Unix(),
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
		"SELECT COUNT(*) FROM article_analyses WHERE external_id = ? AND url = ?",
		externalID, url).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses for %s %s: %w", externalID, url, err)
	}
	return count, nil
}
