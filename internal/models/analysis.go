package models

import (
	"encoding/json"
	"strings"
	"time"
)

// TimestampFormat is the layout the completion prompt pins the model to
// for published/modified timestamps (UTC).
const TimestampFormat = "2006-01-02 15:04"

// StructuredAnalysis is the JSON-shaped set of narrative and numeric
// fields produced by the analysis service for one article. Field keys
// match the prompt's enumerated set exactly. Raw retains the verbatim
// document so new analysis fields survive without a schema migration.
type StructuredAnalysis struct {
	CompanyName           string        `json:"Company Name"`
	ArticleTitle          string        `json:"Article Title"`
	PublishedTimestamp    string        `json:"Published Timestamp"`
	ModifiedTimestamp     string        `json:"Modified Timestamp"`
	NewsSource            string        `json:"News Source"`
	Summary               string        `json:"Article Summary"`
	SentimentScore        float64       `json:"Sentiment Score"`
	SentimentReasoning    string        `json:"Sentiment Score Reasoning"`
	ValuationSignificance string        `json:"Company Valuation Significance"`
	ValuationReasoning    string        `json:"Company Valuation Significance Reasoning"`
	ExplicitImpacts       string        `json:"Explicit Company Impacts"`
	ImplicitIndustry      string        `json:"Implicit Industry Impacts"`
	PeerCompanies         PeerCompanies `json:"Implicit Impact Peer Companies"`

	Raw json.RawMessage `json:"-"`
}

// PeerCompanies tolerates both a JSON array of names and a single
// comma-joined string, since the model is not reliable about which it
// returns.
type PeerCompanies []string

func (p *PeerCompanies) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*p = names
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}

	*p = nil
	for _, name := range strings.Split(joined, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			*p = append(*p, trimmed)
		}
	}
	return nil
}

// Join returns the comma-joined list form used for persistence
func (p PeerCompanies) Join() string {
	return strings.Join(p, ", ")
}

// PublishedTime parses the published timestamp; nil when absent or unparseable
func (a *StructuredAnalysis) PublishedTime() *time.Time {
	return parseTimestamp(a.PublishedTimestamp)
}

// ModifiedTime parses the modified timestamp; nil when absent or unparseable.
// Not all sources expose a modified time, so nil is the common case.
func (a *StructuredAnalysis) ModifiedTime() *time.Time {
	return parseTimestamp(a.ModifiedTimestamp)
}

func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{TimestampFormat, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}

// ArticleAnalysis is the persisted analysis record for one company+URL.
// (ExternalID, URL) is the sole de-duplication boundary.
type ArticleAnalysis struct {
	Ticker                string          `json:"ticker"`
	ExternalID            string          `json:"external_id"`
	ExecutionTimestamp    time.Time       `json:"execution_timestamp"`
	URL                   string          `json:"url"`
	RawText               string          `json:"raw_text"`
	Summary               string          `json:"summary"`
	SentimentScore        float64         `json:"sentiment_score"`
	Analysis              json.RawMessage `json:"analysis"`
	CompanyName           string          `json:"company_name"`
	Title                 string          `json:"title"`
	PublishedTS           *time.Time      `json:"published_ts,omitempty"`
	ModifiedTS            *time.Time      `json:"modified_ts,omitempty"`
	SentimentReasoning    string          `json:"sentiment_reasoning"`
	ValuationSignificance string          `json:"valuation_significance"`
	ValuationReasoning    string          `json:"valuation_reasoning"`
	ExplicitImpacts       string          `json:"explicit_impacts"`
	ImplicitIndustry      string          `json:"implicit_industry_impacts"`
	ImplicitPeers         string          `json:"implicit_peer_impacts"`
}
