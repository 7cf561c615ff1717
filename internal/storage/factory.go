package storage

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/storage/badger"
	"github.com/ternarybob/monthlens/internal/storage/warehouse"
)

// NewStorageManager opens the snapshot store
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	return badger.NewManager(logger, &config.Storage.Badger)
}

// NewFactSource opens the warehouse and returns its repository together with
// the connection so the caller can close it
func NewFactSource(ctx context.Context, logger arbor.ILogger, config *common.Config) (interfaces.FactRepository, *warehouse.Warehouse, error) {
	w, err := warehouse.Open(ctx, logger, &config.Warehouse)
	if err != nil {
		return nil, nil, err
	}
	return warehouse.NewFactRepository(w.DB(), logger), w, nil
}
