package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/models"
)

// SnapshotStorage implements the SnapshotStorage interface for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// Save stores record, replacing any snapshot of the same company and month
func (s *SnapshotStorage) Save(ctx context.Context, record *models.SnapshotRecord) error {
	if record.CompanyKey == "" || record.Month == "" {
		return fmt.Errorf("snapshot record requires company key and month")
	}
	record.ID = models.SnapshotID(record.CompanyKey, record.Month)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", record.ID, err)
	}

	s.logger.Debug().
		Str("company", record.CompanyKey).
		Str("month", record.Month).
		Str("run_id", record.RunID).
		Int("bytes", len(record.Payload)).
		Msg("Snapshot saved")
	return nil
}

// Get returns the snapshot of a company and month
func (s *SnapshotStorage) Get(ctx context.Context, companyKey, month string) (*models.SnapshotRecord, error) {
	var record models.SnapshotRecord
	err := s.db.Store().Get(models.SnapshotID(companyKey, month), &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &record, nil
}

// Exists reports whether a snapshot is stored for the company and month
func (s *SnapshotStorage) Exists(ctx context.Context, companyKey, month string) (bool, error) {
	_, err := s.Get(ctx, companyKey, month)
	if errors.Is(err, interfaces.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByCompany returns a company's snapshots ordered by month
func (s *SnapshotStorage) ListByCompany(ctx context.Context, companyKey string) ([]*models.SnapshotRecord, error) {
	var records []models.SnapshotRecord
	query := badgerhold.Where("CompanyKey").Eq(companyKey).SortBy("Month")
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	out := make([]*models.SnapshotRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out, nil
}

// Delete removes the snapshot of a company and month
func (s *SnapshotStorage) Delete(ctx context.Context, companyKey, month string) error {
	err := s.db.Store().Delete(models.SnapshotID(companyKey, month), &models.SnapshotRecord{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return interfaces.ErrSnapshotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
