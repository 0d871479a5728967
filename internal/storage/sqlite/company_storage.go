package sqlite

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

// CompanyStorage implements interfaces.CompanyStorage
type CompanyStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewCompanyStorage creates a new company storage instance
func NewCompanyStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.CompanyStorage {
	return &CompanyStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts the company if absent. A conflicting external_id is
// silently ignored: company identity is first-write-wins, a later sighting
// with a different name or ticker never overwrites the stored row.
func (c *CompanyStorage) Upsert(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (external_id, name, ticker)
		VALUES (?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING
	`

	_, err := c.db.db.ExecContext(ctx, query, company.ExternalID, company.Name, company.Ticker)
	if err != nil {
		return fmt.Errorf("failed to upsert company %s: %w", company.ExternalID, err)
	}

	c.logger.Debug().
		Str("external_id", company.ExternalID).
		Str("ticker", company.Ticker).
		Msg("Company upserted")

	return nil
}
