package rollup

import "math"

// ForecastStats summarises same-calendar-month samples
type ForecastStats struct {
	Count  int      `json:"count"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Median *float64 `json:"median"`
}

// Stats computes count, min, max and median. An empty sample leaves the
// bounds nil.
func Stats(values []float64) ForecastStats {
	s := ForecastStats{Count: len(values)}
	if len(values) == 0 {
		return s
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	s.Min = ptr(lo)
	s.Max = ptr(hi)
	s.Median = ptr(round(*median(values), 2))
	return s
}

// MetricForecast is the seasonal-naive outlook for one metric.
// SameMonth samples the forecast month in earlier years; NextMonth samples
// the month after it.
type MetricForecast struct {
	SameMonth    ForecastStats `json:"same_month"`
	NextMonth    ForecastStats `json:"next_month"`
	YoYGrowthPct *float64      `json:"yoy_growth_pct"`
}

// ForecastBlock is the forecast section of a snapshot
type ForecastBlock struct {
	TargetMonth string                    `json:"target_month"`
	MallSales   map[string]MetricForecast `json:"mall_sales"`
	MetaAds     map[string]MetricForecast `json:"meta_ads"`
	GA4Traffic  map[string]MetricForecast `json:"ga4_traffic"`
}

type historySample struct {
	ym  YearMonth
	src metricSource
}

// ForecastMetric selects history samples by calendar month and compares the
// two medians. Months without data are not samples.
func ForecastMetric(history []historySample, target YearMonth, metric string) MetricForecast {
	following := target.AddMonths(1).Month
	var same, next []float64
	for _, h := range history {
		v := metricValue(h.src, metric)
		if v == nil {
			continue
		}
		switch h.ym.Month {
		case target.Month:
			same = append(same, *v)
		case following:
			next = append(next, *v)
		}
	}
	f := MetricForecast{SameMonth: Stats(same), NextMonth: Stats(next)}
	if f.SameMonth.Median != nil && f.NextMonth.Median != nil && *f.SameMonth.Median != 0 {
		sm, nm := *f.SameMonth.Median, *f.NextMonth.Median
		f.YoYGrowthPct = ptr(round((nm-sm)/sm*100, 2))
	}
	return f
}

func forecastMetrics(history []historySample, target YearMonth, metrics ...string) map[string]MetricForecast {
	out := make(map[string]MetricForecast, len(metrics))
	for _, m := range metrics {
		out[m] = ForecastMetric(history, target, m)
	}
	return out
}

func salesSamples(points []SalesHistoryPoint) []historySample {
	out := make([]historySample, 0, len(points))
	for _, p := range points {
		if ym, err := ParseYearMonth(p.Ym); err == nil {
			out = append(out, historySample{ym: ym, src: p.SalesBlock})
		}
	}
	return out
}

func adsSamples(points []AdsHistoryPoint) []historySample {
	out := make([]historySample, 0, len(points))
	for _, p := range points {
		if ym, err := ParseYearMonth(p.Ym); err == nil {
			out = append(out, historySample{ym: ym, src: p.AdsBlock})
		}
	}
	return out
}

func trafficSamples(points []TrafficHistoryPoint) []historySample {
	out := make([]historySample, 0, len(points))
	for _, p := range points {
		if ym, err := ParseYearMonth(p.Ym); err == nil {
			out = append(out, historySample{ym: ym, src: p.TrafficBlock})
		}
	}
	return out
}

// ForecastNextMonth builds the forecast section for the month after the report month
func ForecastNextMonth(f Facts, next YearMonth) ForecastBlock {
	return ForecastBlock{
		TargetMonth: next.String(),
		MallSales:   forecastMetrics(salesSamples(f.MallSales.Monthly13m), next, "net_sales", "orders"),
		MetaAds:     forecastMetrics(adsSamples(f.MetaAds.Monthly13m), next, "spend", "purchase_value"),
		GA4Traffic:  forecastMetrics(trafficSamples(f.GA4Traffic.Monthly13m), next, "users", "sessions"),
	}
}
