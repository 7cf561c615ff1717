package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "snapshots")}
	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestSnapshotStorage_SaveReplaces(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	ctx := context.Background()

	first := &models.SnapshotRecord{CompanyKey: "acme", Month: "2025-03", RunID: "run-1", Payload: []byte(`{"v":1}`)}
	require.NoError(t, storage.Save(ctx, first))
	assert.Equal(t, "snapshot:acme:2025-03", first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &models.SnapshotRecord{CompanyKey: "acme", Month: "2025-03", RunID: "run-2", Payload: []byte(`{"v":2}`)}
	require.NoError(t, storage.Save(ctx, second))

	got, err := storage.Get(ctx, "acme", "2025-03")
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.RunID)
	assert.JSONEq(t, `{"v":2}`, string(got.Payload))

	list, err := storage.ListByCompany(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSnapshotStorage_GetMissing(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	ctx := context.Background()

	_, err := storage.Get(ctx, "acme", "2025-01")
	assert.ErrorIs(t, err, interfaces.ErrSnapshotNotFound)

	exists, err := storage.Exists(ctx, "acme", "2025-01")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, storage.Delete(ctx, "acme", "2025-01"), interfaces.ErrSnapshotNotFound)
}

func TestSnapshotStorage_ListAndDelete(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	ctx := context.Background()

	for _, r := range []*models.SnapshotRecord{
		{CompanyKey: "acme", Month: "2025-03"},
		{CompanyKey: "acme", Month: "2025-01"},
		{CompanyKey: "store-a,store-b", Month: "2025-02"},
	} {
		require.NoError(t, storage.Save(ctx, r))
	}

	list, err := storage.ListByCompany(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-01", list[0].Month)
	assert.Equal(t, "2025-03", list[1].Month)

	require.NoError(t, storage.Delete(ctx, "acme", "2025-01"))
	exists, err := storage.Exists(ctx, "acme", "2025-01")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = storage.Exists(ctx, "store-a,store-b", "2025-02")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSnapshotStorage_RequiresKey(t *testing.T) {
	storage := newTestManager(t).SnapshotStorage()
	assert.Error(t, storage.Save(context.Background(), &models.SnapshotRecord{Month: "2025-03"}))
}
