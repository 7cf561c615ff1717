package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/monthlens/internal/models"
)

// ErrSnapshotNotFound is returned when no snapshot is stored for a company and month
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrSnapshotExists is returned by runners that refuse to overwrite without force
var ErrSnapshotExists = errors.New("snapshot already exists")

// SnapshotStorage persists one rollup per (company, month). Save replaces
// any existing record for the same pair.
type SnapshotStorage interface {
	Save(ctx context.Context, record *models.SnapshotRecord) error
	Get(ctx context.Context, companyKey, month string) (*models.SnapshotRecord, error)
	Exists(ctx context.Context, companyKey, month string) (bool, error)
	ListByCompany(ctx context.Context, companyKey string) ([]*models.SnapshotRecord, error)
	Delete(ctx context.Context, companyKey, month string) error
}

// StorageManager owns the local snapshot store
type StorageManager interface {
	SnapshotStorage() SnapshotStorage
	Close() error
}
