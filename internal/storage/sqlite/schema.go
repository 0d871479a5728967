package sqlite

const schemaSQL = `
-- Company identity table
-- external_id is the stable upstream key; first write wins
CREATE TABLE IF NOT EXISTS companies (
	external_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	ticker TEXT NOT NULL
);

-- One analysis per company+URL; reprocessing replaces the row
CREATE TABLE IF NOT EXISTS article_analyses (
	external_id TEXT NOT NULL REFERENCES companies(external_id),
	url TEXT NOT NULL,
	ticker TEXT NOT NULL,
	execution_ts INTEGER NOT NULL,
	raw_text TEXT,
	summary TEXT,
	sentiment_score REAL,
	analysis TEXT,
	company_name TEXT,
	title TEXT,
	published_ts INTEGER,
	modified_ts INTEGER,
	sentiment_reasoning TEXT,
	valuation_significance TEXT,
	valuation_reasoning TEXT,
	explicit_impacts TEXT,
	implicit_industry_impacts TEXT,
	implicit_peer_impacts TEXT,
	PRIMARY KEY (external_id, url)
);

-- Append-only audit trail; rows are never updated or deleted
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	details TEXT,
	related_item TEXT,
	timestamp INTEGER NOT NULL
);
`
