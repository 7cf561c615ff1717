package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db        *BadgerDB
	snapshots interfaces.SnapshotStorage
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("path", config.Path).Msg("Badger storage manager initialized")

	return &Manager{
		db:        db,
		snapshots: NewSnapshotStorage(db, logger),
		logger:    logger,
	}, nil
}

// SnapshotStorage returns the snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshots
}

// Close closes the database
func (m *Manager) Close() error {
	return m.db.Close()
}
