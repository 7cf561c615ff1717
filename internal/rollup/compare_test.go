package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeltaOf(t *testing.T) {
	tests := []struct {
		name    string
		curr    *float64
		base    *float64
		want    *Delta
		wantNil bool
	}{
		{name: "missing base", curr: ptr(100.0), base: nil, wantNil: true},
		{name: "missing current", curr: nil, base: ptr(100.0), wantNil: true},
		{name: "zero base", curr: ptr(50.0), base: ptr(0.0), want: &Delta{Abs: 50}},
		{name: "growth", curr: ptr(1500000.0), base: ptr(1000000.0), want: &Delta{Abs: 500000, Pct: ptr(50.0)}},
		{name: "decline", curr: ptr(75.0), base: ptr(100.0), want: &Delta{Abs: -25, Pct: ptr(-25.0)}},
		{name: "both zero", curr: ptr(0.0), base: ptr(0.0), want: &Delta{Abs: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaOf(tt.curr, tt.base)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want.Abs, got.Abs)
			assert.Equal(t, tt.want.Pct, got.Pct)
		})
	}
}

func TestBaseSmall(t *testing.T) {
	assert.Nil(t, BaseSmall(nil, 100))
	assert.True(t, *BaseSmall(ptr(99.0), 100))
	assert.False(t, *BaseSmall(ptr(100.0), 100))
}

func TestCompareFamily(t *testing.T) {
	this := &SalesBlock{NetSales: 1500000, Orders: 30, AOV: ptr(50000.0)}
	prev := &SalesBlock{NetSales: 800000, Orders: 20, AOV: ptr(40000.0)}

	fc := CompareFamily(this, prev, (*SalesBlock)(nil), "net_sales", 1000000)

	require.NotNil(t, fc.MoM["net_sales"])
	assert.Equal(t, 700000.0, fc.MoM["net_sales"].Abs)
	assert.Equal(t, 87.5, *fc.MoM["net_sales"].Pct)
	assert.Equal(t, 10.0, fc.MoM["orders"].Abs)
	assert.Nil(t, fc.MoM["refund_rate_pct"], "ratio missing on both sides")
	require.NotNil(t, fc.NoteIfBaseSmallMoM)
	assert.True(t, *fc.NoteIfBaseSmallMoM)

	assert.Contains(t, fc.YoY, "net_sales")
	assert.Nil(t, fc.YoY["net_sales"], "no year-ago block")
	assert.Nil(t, fc.NoteIfBaseSmallYoY)
}

func TestCompareFacts_PerGoal(t *testing.T) {
	var f Facts
	f.MetaAdsGoals.This = &GoalBreakdown{Conversion: &GoalBlock{AdsBlock: AdsBlock{Spend: 200000}, Ads: 3}}
	f.MetaAdsGoals.Prev = &GoalBreakdown{Conversion: &GoalBlock{AdsBlock: AdsBlock{Spend: 50000}, Ads: 2}}

	c := CompareFacts(f, DefaultThresholds())
	require.Len(t, c.MetaAdsGoals, len(AllGoals))

	conv := c.MetaAdsGoals[GoalConversion]
	assert.Equal(t, 150000.0, conv.MoM["spend"].Abs)
	assert.Equal(t, 300.0, *conv.MoM["spend"].Pct)
	assert.Equal(t, 1.0, conv.MoM["ads"].Abs)
	assert.True(t, *conv.NoteIfBaseSmallMoM)
	assert.Nil(t, conv.YoY["spend"])

	assert.Nil(t, c.MetaAdsGoals[GoalTraffic].MoM["spend"])
	assert.Nil(t, c.MallSales.MoM["net_sales"])
}
