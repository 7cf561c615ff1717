package rollup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	empty := Stats(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Nil(t, empty.Min)
	assert.Nil(t, empty.Max)
	assert.Nil(t, empty.Median)

	one := Stats([]float64{42})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 42.0, *one.Min)
	assert.Equal(t, 42.0, *one.Max)
	assert.Equal(t, 42.0, *one.Median)

	even := Stats([]float64{10, 40, 20, 30})
	assert.Equal(t, 4, even.Count)
	assert.Equal(t, 10.0, *even.Min)
	assert.Equal(t, 40.0, *even.Max)
	assert.Equal(t, 25.0, *even.Median)
}

func salesPoint(ym string, net float64) SalesHistoryPoint {
	return SalesHistoryPoint{Ym: ym, SalesBlock: &SalesBlock{NetSales: net}}
}

func TestForecastMetric(t *testing.T) {
	next := YearMonth{Year: 2025, Month: time.April}

	history := salesSamples([]SalesHistoryPoint{
		salesPoint("2024-03", 900),
		salesPoint("2024-04", 1000),
		salesPoint("2024-05", 1200),
		{Ym: "2024-06"},
		salesPoint("2025-03", 1100),
	})

	f := ForecastMetric(history, next, "net_sales")
	assert.Equal(t, 1, f.SameMonth.Count)
	assert.Equal(t, 1000.0, *f.SameMonth.Median)
	assert.Equal(t, 1, f.NextMonth.Count)
	assert.Equal(t, 1200.0, *f.NextMonth.Median)
	require.NotNil(t, f.YoYGrowthPct)
	assert.Equal(t, 20.0, *f.YoYGrowthPct)
}

func TestForecastMetric_Degenerate(t *testing.T) {
	next := YearMonth{Year: 2025, Month: time.April}

	noSame := ForecastMetric(salesSamples([]SalesHistoryPoint{salesPoint("2024-05", 1200)}), next, "net_sales")
	assert.Equal(t, 0, noSame.SameMonth.Count)
	assert.Nil(t, noSame.SameMonth.Median)
	assert.Nil(t, noSame.YoYGrowthPct)

	zeroSame := ForecastMetric(salesSamples([]SalesHistoryPoint{
		salesPoint("2024-04", 0),
		salesPoint("2024-05", 1200),
	}), next, "net_sales")
	assert.Equal(t, 0.0, *zeroSame.SameMonth.Median)
	assert.Nil(t, zeroSame.YoYGrowthPct)
}

func TestForecastMetric_DecemberWraps(t *testing.T) {
	next := YearMonth{Year: 2025, Month: time.December}
	history := salesSamples([]SalesHistoryPoint{
		salesPoint("2024-12", 100),
		salesPoint("2025-01", 150),
	})
	f := ForecastMetric(history, next, "net_sales")
	assert.Equal(t, 1, f.SameMonth.Count)
	assert.Equal(t, 1, f.NextMonth.Count)
	assert.Equal(t, 50.0, *f.YoYGrowthPct)
}
