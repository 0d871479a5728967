package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/interfaces"
	"github.com/ternarybob/nuntius/internal/storage/postgres"
	"github.com/ternarybob/nuntius/internal/storage/sqlite"
)

// NewStorageManager creates a storage manager for the configured driver
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Driver {
	case "sqlite", "":
		return sqlite.NewManager(logger, &config.Storage.SQLite)
	case "postgres":
		return postgres.NewManager(logger, &config.Storage.Postgres)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", config.Storage.Driver)
	}
}
