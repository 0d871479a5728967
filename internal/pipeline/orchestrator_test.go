package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

type mockDiscovery struct {
	companies []models.Company
	err       error
}

func (m *mockDiscovery) Companies(ctx context.Context) ([]models.Company, error) {
	return m.companies, m.err
}

type mockExtractor struct {
	article *interfaces.ExtractedArticle
	err     error
	calls   int
}

func (m *mockExtractor) Extract(ctx context.Context, url string) (*interfaces.ExtractedArticle, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.article, nil
}

func (m *mockExtractor) Close() error { return nil }

type mockTokenSource struct {
	token string
	err   error
}

func (m *mockTokenSource) Authenticate(ctx context.Context) (string, error) {
	return m.token, m.err
}

type mockAnalyzer struct {
	analysis *models.StructuredAnalysis
	err      error
}

func (m *mockAnalyzer) Analyze(ctx context.Context, token, text string) (*models.StructuredAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

type mockCompanyStorage struct {
	upserted []models.Company
	err      error
}

func (m *mockCompanyStorage) Upsert(ctx context.Context, company *models.Company) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, *company)
	return nil
}

type mockAnalysisStorage struct {
	inserted []models.ArticleAnalysis
	err      error
}

func (m *mockAnalysisStorage) Insert(ctx context.Context, record *models.ArticleAnalysis) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, *record)
	return nil
}

func (m *mockAnalysisStorage) CountForKey(ctx context.Context, externalID, url string) (int, error) {
	count := 0
	for _, record := range m.inserted {
		if record.ExternalID == externalID && record.URL == url {
			count++
		}
	}
	return count, nil
}

type mockEventStorage struct {
	events []models.Event
	err    error
}

func (m *mockEventStorage) Append(ctx context.Context, event *models.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockEventStorage) kinds() []models.EventKind {
	kinds := make([]models.EventKind, 0, len(m.events))
	for _, event := range m.events {
		kinds = append(kinds, event.Kind)
	}
	return kinds
}

type mockStorageManager struct {
	company  *mockCompanyStorage
	analysis *mockAnalysisStorage
	event    *mockEventStorage
}

func newMockStorageManager() *mockStorageManager {
	return &mockStorageManager{
		company:  &mockCompanyStorage{},
		analysis: &mockAnalysisStorage{},
		event:    &mockEventStorage{},
	}
}

func (m *mockStorageManager) CompanyStorage() interfaces.CompanyStorage   { return m.company }
func (m *mockStorageManager) AnalysisStorage() interfaces.AnalysisStorage { return m.analysis }
func (m *mockStorageManager) EventStorage() interfaces.EventStorage       { return m.event }
func (m *mockStorageManager) Close() error                                { return nil }

func testCompany() models.Company {
	return models.Company{
		Name:       "Acme Corp",
		Ticker:     "ACME",
		ExternalID: "PB001",
		Articles:   []models.Article{{URL: "https://news.example.com/acme-earnings"}},
	}
}

func testAnalysis() *models.StructuredAnalysis {
	return &models.StructuredAnalysis{
		CompanyName:    "Acme Corp",
		ArticleTitle:   "Acme beats earnings",
		Summary:        "Strong quarter.",
		SentimentScore: 0.72,
		PeerCompanies:  models.PeerCompanies{"Globex"},
		Raw:            json.RawMessage(`{"Sentiment Score": 0.72}`),
	}
}

func newTestOrchestrator(discovery *mockDiscovery, extractor *mockExtractor,
	tokens *mockTokenSource, analyzer *mockAnalyzer, storage *mockStorageManager) *Orchestrator {
	return NewOrchestrator(discovery, extractor, tokens, analyzer, storage, arbor.NewLogger())
}

func TestRunSuccess(t *testing.T) {
	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{testCompany()}},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body text"}},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Companies)
	assert.Equal(t, 1, stats.Articles)
	assert.Equal(t, 1, stats.Persisted)
	assert.Equal(t, 0, stats.Failed)

	require.Len(t, storage.company.upserted, 1)
	require.Len(t, storage.analysis.inserted, 1)

	record := storage.analysis.inserted[0]
	assert.Equal(t, "PB001", record.ExternalID)
	assert.Equal(t, "https://news.example.com/acme-earnings", record.URL)
	assert.Equal(t, "Acme beats earnings", record.Title)
	assert.Equal(t, "body text", record.RawText)
	assert.Equal(t, 0.72, record.SentimentScore)
	assert.Equal(t, "Globex", record.ImplicitPeers)
	assert.False(t, record.ExecutionTimestamp.IsZero())

	assert.Equal(t, []models.EventKind{models.EventPersisted}, storage.event.kinds())
}

func TestRunDiscoveryFailureIsFatal(t *testing.T) {
	storage := newMockStorageManager()
	extractor := &mockExtractor{}
	orchestrator := newTestOrchestrator(
		&mockDiscovery{err: errors.New("connection refused")},
		extractor,
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	_, err := orchestrator.Run(context.Background())
	require.Error(t, err)

	assert.Zero(t, extractor.calls)
	assert.Equal(t, []models.EventKind{models.EventConnectionFailed}, storage.event.kinds())
}

func TestRunEmptyDiscoveryIsFatal(t *testing.T) {
	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{}},
		&mockExtractor{},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	_, err := orchestrator.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []models.EventKind{models.EventDiscoveryEmpty}, storage.event.kinds())
}

func TestRunExtractFailureIsolatedToArticle(t *testing.T) {
	company := testCompany()
	company.Articles = append(company.Articles, models.Article{URL: "https://news.example.com/acme-outlook"})

	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{company}},
		&mockExtractor{err: models.NewFailure(models.FailureExtract, errors.New("timeout"))},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	// both articles fail, the run itself still completes
	assert.Equal(t, 2, stats.Articles)
	assert.Equal(t, 0, stats.Persisted)
	assert.Equal(t, 2, stats.Failed)
	assert.Empty(t, storage.analysis.inserted)

	kinds := storage.event.kinds()
	require.Len(t, kinds, 2)
	assert.Equal(t, models.EventExtractFailed, kinds[0])
	assert.Equal(t, models.EventExtractFailed, kinds[1])
}

func TestRunAuthFailureIsolatedToArticle(t *testing.T) {
	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{testCompany()}},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body"}},
		&mockTokenSource{err: models.NewFailure(models.FailureAuth, errors.New("invalid_client"))},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, storage.analysis.inserted)
	assert.Equal(t, []models.EventKind{models.EventAuthFailed}, storage.event.kinds())
}

func TestRunMalformedAnalysisRecordsRawResponse(t *testing.T) {
	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{testCompany()}},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body"}},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{err: models.NewMalformedAnalysisFailure("not json at all", errors.New("invalid character"))},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	require.Len(t, storage.event.events, 1)
	event := storage.event.events[0]
	assert.Equal(t, models.EventAnalysisFailed, event.Kind)
	assert.Contains(t, event.Details, "not json at all")
}

func TestRunSkipsIncompleteCompanies(t *testing.T) {
	companies := []models.Company{
		{Name: "No ID Inc", Ticker: "NOID"},
		{ExternalID: "PB003", Ticker: "NONAME"},
		{ExternalID: "PB004", Name: "No Ticker Ltd"},
		testCompany(),
	}

	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: companies},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body"}},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Companies)
	assert.Equal(t, 3, stats.CompaniesSkipped)
	assert.Equal(t, 1, stats.Persisted)
	require.Len(t, storage.company.upserted, 1)

	kinds := storage.event.kinds()
	assert.Equal(t, []models.EventKind{
		models.EventSkippedItem,
		models.EventSkippedItem,
		models.EventSkippedItem,
		models.EventPersisted,
	}, kinds)
}

func TestRunSkipsArticlesWithoutURL(t *testing.T) {
	company := testCompany()
	company.Articles = []models.Article{{URL: ""}, {URL: "https://news.example.com/acme-earnings"}}

	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{company}},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body"}},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Articles)
	assert.Equal(t, 1, stats.Persisted)
	assert.Equal(t, []models.EventKind{
		models.EventSkippedItem,
		models.EventPersisted,
	}, storage.event.kinds())
}

func TestRunCompanyWithNoArticles(t *testing.T) {
	company := testCompany()
	company.Articles = nil

	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{company}},
		&mockExtractor{},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Companies)
	assert.Equal(t, 0, stats.Articles)
	assert.Equal(t, []models.EventKind{models.EventNoArticles}, storage.event.kinds())
}

func TestRunCompanyUpsertFailureSkipsItsArticles(t *testing.T) {
	storage := newMockStorageManager()
	storage.company.err = errors.New("disk full")
	extractor := &mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body"}}

	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{testCompany()}},
		extractor,
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, extractor.calls)
	assert.Equal(t, 0, stats.Articles)
	// a company whose upsert fails is skipped, not counted both ways
	assert.Equal(t, 0, stats.Companies)
	assert.Equal(t, 1, stats.CompaniesSkipped)
	assert.Equal(t, []models.EventKind{models.EventPersistFailed}, storage.event.kinds())
}

func TestRunEventStorageFailureDoesNotAbort(t *testing.T) {
	storage := newMockStorageManager()
	storage.event.err = errors.New("events table locked")

	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{testCompany()}},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Article", Text: "body"}},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: testAnalysis()},
		storage,
	)

	stats, err := orchestrator.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Persisted)
}

func TestRunTitleFallsBackToExtracted(t *testing.T) {
	analysis := testAnalysis()
	analysis.ArticleTitle = ""

	storage := newMockStorageManager()
	orchestrator := newTestOrchestrator(
		&mockDiscovery{companies: []models.Company{testCompany()}},
		&mockExtractor{article: &interfaces.ExtractedArticle{Title: "Extracted title", Text: "body"}},
		&mockTokenSource{token: "tok-123"},
		&mockAnalyzer{analysis: analysis},
		storage,
	)

	_, err := orchestrator.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, storage.analysis.inserted, 1)
	assert.Equal(t, "Extracted title", storage.analysis.inserted[0].Title)
}
