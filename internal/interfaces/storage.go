package interfaces

import (
	"context"

	"github.com/ternarybob/nuntius/internal/models"
)

// CompanyStorage persists company identity records
type CompanyStorage interface {
	// Upsert inserts the company if absent, keyed on external_id.
	// Conflicting inserts are silently ignored - first write wins.
	Upsert(ctx context.Context, company *models.Company) error
}

// AnalysisStorage persists per-article analysis records
type AnalysisStorage interface {
	// Insert writes the full record keyed on (external_id, url). A
	// conflict replaces the row with the freshest analysis; the row
	// count per key never exceeds one.
	Insert(ctx context.Context, record *models.ArticleAnalysis) error
	// CountForKey reports how many rows exist for a company+URL pair
	CountForKey(ctx context.Context, externalID, url string) (int, error)
}

// EventStorage appends audit-trail events. Append is best-effort at the
// call site: a logging failure must never abort the pipeline.
type EventStorage interface {
	Append(ctx context.Context, event *models.Event) error
}

// StorageManager bundles the persistence gateway's storages over one
// backing store connection.
type StorageManager interface {
	CompanyStorage() CompanyStorage
	AnalysisStorage() AnalysisStorage
	EventStorage() EventStorage
	Close() error
}
