package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
)

// PostgresDB manages the PostgreSQL database connection
type PostgresDB struct {
	db     *sql.DB
	logger arbor.ILogger
	config *common.PostgresConfig
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(logger arbor.ILogger, config *common.PostgresConfig) (*PostgresDB, error) {
	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &PostgresDB{
		db:     db,
		logger: logger,
		config: config,
	}

	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info().Msg("PostgreSQL database ready")

	return p, nil
}

func (p *PostgresDB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			external_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			ticker TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS article_analyses (
			external_id TEXT NOT NULL REFERENCES companies(external_id),
			url TEXT NOT NULL,
			ticker TEXT NOT NULL,
			execution_ts TIMESTAMPTZ NOT NULL,
			raw_text TEXT NOT NULL,
			summary TEXT NOT NULL,
			sentiment_score DOUBLE PRECISION NOT NULL,
			analysis JSONB NOT NULL,
			company_name TEXT NOT NULL,
			title TEXT NOT NULL,
			published_ts TIMESTAMPTZ,
			modified_ts TIMESTAMPTZ,
			sentiment_reasoning TEXT NOT NULL,
			valuation_significance TEXT NOT NULL,
			valuation_reasoning TEXT NOT NULL,
			explicit_impacts TEXT NOT NULL,
			implicit_industry_impacts TEXT NOT NULL,
			implicit_peer_impacts TEXT NOT NULL,
			PRIMARY KEY (external_id, url)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			details TEXT NOT NULL,
			related_item TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_events_related ON events(related_item)`,
	}

	for _, query := range queries {
		if _, err := p.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// DB returns the underlying database handle
func (p *PostgresDB) DB() *sql.DB {
	return p.db
}

// Close closes the database connection
func (p *PostgresDB) Close() error {
	p.logger.Debug().Msg("Closing PostgreSQL database")
	return p.db.Close()
}
