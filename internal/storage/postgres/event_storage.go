package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/models"
)

// EventStorage implements interfaces.EventStorage
type EventStorage struct {
	db     *PostgresDB
	logger arbor.ILogger
}

// NewEventStorage creates a new event storage instance
func NewEventStorage(db *PostgresDB, logger arbor.ILogger) interfaces.EventStorage {
	return &EventStorage{
		db:     db,
		logger: logger,
	}
}

// Append writes one audit event. Rows are append-only; there is no
// update or delete path.
func (e *EventStorage) Append(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = common.NewEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO events (id, kind, details, related_item, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := e.db.db.ExecContext(ctx, query,
		event.ID,
		string(event.Kind),
		event.Details,
		event.RelatedItem,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", event.Kind, err)
	}

	return nil
}
