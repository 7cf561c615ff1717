package warehouse

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/models"
)

var kst = time.FixedZone("report", 9*3600)

func newTestWarehouse(t *testing.T) *Warehouse {
	t.Helper()
	config := &common.WarehouseConfig{
		Driver:       "sqlite3",
		DSN:          filepath.Join(t.TempDir(), "warehouse.db"),
		MaxOpenConns: 1,
		InitSchema:   true,
	}
	w, err := Open(context.Background(), arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func seed(t *testing.T, w *Warehouse, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := w.DB().Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, kst)
}

func TestFactRepository_SalesDailySumsCompanies(t *testing.T) {
	w := newTestWarehouse(t)
	seed(t, w,
		`INSERT INTO sales_daily VALUES ('store-a', '2025-03-01', 100, 120, 2, 3, 20)`,
		`INSERT INTO sales_daily VALUES ('store-b', '2025-03-01', 50, 50, 1, 1, 0)`,
		`INSERT INTO sales_daily VALUES ('store-a', '2025-03-31', 10, 10, 1, 1, 0)`,
		`INSERT INTO sales_daily VALUES ('store-a', '2025-04-01', 999, 999, 9, 9, 0)`,
		`INSERT INTO sales_daily VALUES ('store-c', '2025-03-02', 999, 999, 9, 9, 0)`,
	)
	repo := NewFactRepository(w.DB(), arbor.NewLogger())

	rows, err := repo.SalesDaily(context.Background(), models.ManyCompanies("store-a", "store-b"), date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Date.Equal(date(2025, 3, 1)))
	assert.Equal(t, 150.0, rows[0].NetSales)
	assert.Equal(t, 170.0, rows[0].GrossSales)
	assert.Equal(t, int64(3), rows[0].Orders)
	assert.Equal(t, int64(4), rows[0].Units)
	assert.Equal(t, 20.0, rows[0].RefundAmount)

	assert.True(t, rows[1].Date.Equal(date(2025, 3, 31)))
	assert.Equal(t, 10.0, rows[1].NetSales)
}

func TestFactRepository_EmptyRange(t *testing.T) {
	w := newTestWarehouse(t)
	repo := NewFactRepository(w.DB(), arbor.NewLogger())
	ctx := context.Background()
	company := models.SingleCompany("acme")

	sales, err := repo.SalesDaily(ctx, company, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.NotNil(t, sales)
	assert.Empty(t, sales)

	views, err := repo.ViewItems(ctx, company, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestFactRepository_RejectsEmptyCompany(t *testing.T) {
	w := newTestWarehouse(t)
	repo := NewFactRepository(w.DB(), arbor.NewLogger())

	_, err := repo.AdsDaily(context.Background(), models.ManyCompanies(), date(2025, 3, 1), date(2025, 3, 31))
	assert.Error(t, err)
}

func TestFactRepository_AdsAndTraffic(t *testing.T) {
	w := newTestWarehouse(t)
	seed(t, w,
		`INSERT INTO ads_daily VALUES ('acme', '2025-03-05', 1000, 10000, 200, 4, 40000)`,
		`INSERT INTO ads_by_ad VALUES ('acme', '2025-03-05', '전환_봄', 'ad-1', 'Spring', 600, 6000, 120, 3, 30000)`,
		`INSERT INTO ads_by_ad VALUES ('acme', '2025-03-05', '트래픽_봄', 'ad-2', 'Visit', 400, 4000, 80, 1, 10000)`,
		`INSERT INTO traffic_daily VALUES ('acme', '2025-03-05', 300, 120, 400, 900, 6, 50000)`,
	)
	repo := NewFactRepository(w.DB(), arbor.NewLogger())
	ctx := context.Background()
	company := models.SingleCompany("acme")

	ads, err := repo.AdsDaily(ctx, company, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, 1000.0, ads[0].Spend)
	assert.Equal(t, int64(200), ads[0].Clicks)

	adLevel, err := repo.AdsByCampaign(ctx, company, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, adLevel, 2)
	assert.Equal(t, "전환_봄", adLevel[0].CampaignName)
	assert.Equal(t, "ad-1", adLevel[0].AdID)
	assert.Equal(t, int64(3), adLevel[0].Purchases)
	assert.True(t, adLevel[1].Date.Equal(date(2025, 3, 5)))

	traffic, err := repo.TrafficDaily(ctx, company, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, traffic, 1)
	assert.Equal(t, int64(300), traffic[0].Users)
	assert.Equal(t, 50000.0, traffic[0].Revenue)
}

func TestFactRepository_TopProducts(t *testing.T) {
	w := newTestWarehouse(t)
	seed(t, w,
		`INSERT INTO product_sales_daily VALUES ('acme', '2025-03-01', 'p1', 'Linen Shirt', 2, 100)`,
		`INSERT INTO product_sales_daily VALUES ('acme', '2025-03-02', 'p1', 'Linen Shirt', 1, 50)`,
		`INSERT INTO product_sales_daily VALUES ('acme', '2025-03-02', 'p2', 'Wool Coat', 1, 300)`,
		`INSERT INTO product_sales_daily VALUES ('acme', '2025-03-03', 'p3', 'Socks', 5, 20)`,
		`INSERT INTO product_sales_daily VALUES ('acme', '2025-02-28', 'p3', 'Socks', 100, 9999)`,
	)
	repo := NewFactRepository(w.DB(), arbor.NewLogger())
	ctx := context.Background()
	company := models.SingleCompany("acme")

	rows, err := repo.TopProducts(ctx, company, date(2025, 3, 1), date(2025, 3, 31), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ProductSales{ProductID: "p2", Name: "Wool Coat", Quantity: 1, Sales: 300}, rows[0])
	assert.Equal(t, models.ProductSales{ProductID: "p1", Name: "Linen Shirt", Quantity: 3, Sales: 150}, rows[1])

	none, err := repo.TopProducts(ctx, company, date(2025, 3, 1), date(2025, 3, 31), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFactRepository_ViewItemsGroupsByName(t *testing.T) {
	w := newTestWarehouse(t)
	seed(t, w,
		`INSERT INTO viewitem_daily VALUES ('acme', '2025-03-01', 'Linen Shirt_L', 100)`,
		`INSERT INTO viewitem_daily VALUES ('acme', '2025-03-02', 'Linen Shirt_L', 50)`,
		`INSERT INTO viewitem_daily VALUES ('acme', '2025-03-02', '[NEW] Linen Shirt', 70)`,
	)
	repo := NewFactRepository(w.DB(), arbor.NewLogger())

	rows, err := repo.ViewItems(context.Background(), models.SingleCompany("acme"), date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.Equal(t, []models.ViewItemRow{
		{ItemName: "Linen Shirt_L", ViewCount: 150},
		{ItemName: "[NEW] Linen Shirt", ViewCount: 70},
	}, rows)
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-03-01", date(2025, 3, 1), false},
		{"2025-03-01T00:00:00Z", date(2025, 3, 1), false},
		{"2025-03-01 00:00:00", date(2025, 3, 1), false},
		{"2025-3-1", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDay(tt.in, kst)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want))
		})
	}
}

func TestSQLitePath(t *testing.T) {
	assert.Equal(t, "./data/w.db", sqlitePath("file:./data/w.db?_busy_timeout=5000"))
	assert.Equal(t, "./data/w.db", sqlitePath("./data/w.db"))
	assert.True(t, isMemoryDSN(":memory:"))
	assert.True(t, isMemoryDSN("file:x?mode=memory&cache=shared"))
	assert.False(t, isMemoryDSN("./data/w.db"))
}
