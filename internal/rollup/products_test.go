package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/monthlens/internal/models"
)

func TestRoleForShare(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name  string
		share *float64
		want  ProductRole
	}{
		{"core boundary", ptr(20.0), RoleCore},
		{"just below core", ptr(19.9), RoleHit},
		{"hit boundary", ptr(10.0), RoleHit},
		{"just below hit", ptr(9.9), RoleNormal},
		{"zero share", ptr(0.0), RoleNormal},
		{"unknown share", nil, RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleForShare(tt.share, th))
		})
	}
}

func TestClassifyProducts(t *testing.T) {
	th := DefaultThresholds()
	d90Rows := []models.ProductSales{
		{ProductID: "p1", Name: "가디건", Quantity: 90, Sales: 900},
		{ProductID: "p2", Name: "니트", Quantity: 20, Sales: 199},
		{ProductID: "p3", Name: "셔츠", Quantity: 10, Sales: 99},
		{ProductID: "p4", Name: "코트", Quantity: 5, Sales: 200},
	}
	d30Rows := []models.ProductSales{
		{ProductID: "p1", Name: "가디건", Quantity: 20, Sales: 200},
		{ProductID: "p3", Name: "셔츠", Quantity: 10, Sales: 99},
		{ProductID: "p4", Name: "코트", Quantity: 5, Sales: 200},
	}
	total := ptr(1000.0)

	d30, d90 := ClassifyProducts(d30Rows, d90Rows, total, th)
	require.Len(t, d30, 3)
	require.Len(t, d90, 4)

	byID := map[string]RankedProduct{}
	for _, p := range d90 {
		byID[p.ProductID] = p
	}

	p1 := byID["p1"]
	assert.Equal(t, RoleCore, p1.Role)
	assert.Equal(t, 90.0, *p1.SharePct)
	require.NotNil(t, p1.IsDeclining)
	assert.True(t, *p1.IsDeclining, "200/30 < 900/90")

	p2 := byID["p2"]
	assert.Equal(t, RoleHit, p2.Role)
	assert.Equal(t, 19.9, *p2.SharePct)
	assert.Nil(t, p2.IsDeclining, "hit product missing from 30-day list")

	p3 := byID["p3"]
	assert.Equal(t, RoleNormal, p3.Role)
	assert.Nil(t, p3.IsDeclining, "normal products are never trend-checked")

	p4 := byID["p4"]
	assert.Equal(t, RoleCore, p4.Role)
	require.NotNil(t, p4.IsDeclining)
	assert.False(t, *p4.IsDeclining, "200/30 > 200/90")
}

func TestClassifyProducts_NoTotal(t *testing.T) {
	rows := []models.ProductSales{{ProductID: "p1", Name: "가디건", Sales: 100}}

	for _, total := range []*float64{nil, ptr(0.0)} {
		_, d90 := ClassifyProducts(rows, rows, total, DefaultThresholds())
		require.Len(t, d90, 1)
		assert.Nil(t, d90[0].SharePct)
		assert.Equal(t, RoleUnknown, d90[0].Role)
		assert.Nil(t, d90[0].IsDeclining)
	}
}

func TestNewProductShare(t *testing.T) {
	d30 := []Product{{ProductID: "old", Sales: 60}, {ProductID: "new", Sales: 40}}
	d90 := []RankedProduct{{Product: Product{ProductID: "old"}}}

	share := newProductShare(d30, d90)
	require.NotNil(t, share)
	assert.Equal(t, 40.0, *share)

	assert.Nil(t, newProductShare(nil, d90))
}
