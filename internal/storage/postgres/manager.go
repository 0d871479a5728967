package postgres

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
)

// Manager implements the StorageManager interface
type Manager struct {
	db       *PostgresDB
	company  interfaces.CompanyStorage
	analysis interfaces.AnalysisStorage
	event    interfaces.EventStorage
	logger   arbor.ILogger
}

// NewManager creates a new PostgreSQL storage manager
func NewManager(logger arbor.ILogger, config *common.PostgresConfig) (interfaces.StorageManager, error) {
	db, err := NewPostgresDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:       db,
		company:  NewCompanyStorage(db, logger),
		analysis: NewAnalysisStorage(db, logger),
		event:    NewEventStorage(db, logger),
		logger:   logger,
	}, nil
}

// CompanyStorage returns the Company storage interface
func (m *Manager) CompanyStorage() interfaces.CompanyStorage {
	return m.company
}

// AnalysisStorage returns the Analysis storage interface
func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysis
}

// EventStorage returns the Event storage interface
func (m *Manager) EventStorage() interfaces.EventStorage {
	return m.event
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
