package rollup

// Delta is the change of one metric between two periods. Pct is nil when the
// base is zero.
type Delta struct {
	Abs float64  `json:"abs"`
	Pct *float64 `json:"pct"`
}

// DeltaOf compares curr against base. A missing value on either side yields
// nil so unavailable periods never read as "no change".
func DeltaOf(curr, base *float64) *Delta {
	if curr == nil || base == nil {
		return nil
	}
	abs := *curr - *base
	return &Delta{Abs: round(abs, 2), Pct: pct(abs, *base, 2)}
}

// BaseSmall reports whether base is under the trust threshold; nil when base is missing
func BaseSmall(base *float64, threshold float64) *bool {
	if base == nil {
		return nil
	}
	return ptr(*base < threshold)
}

// FamilyComparison holds month-over-month and year-over-year deltas for
// every metric of one family
type FamilyComparison struct {
	MoM                map[string]*Delta `json:"mom"`
	YoY                map[string]*Delta `json:"yoy"`
	NoteIfBaseSmallMoM *bool             `json:"note_if_base_small_mom"`
	NoteIfBaseSmallYoY *bool             `json:"note_if_base_small_yoy"`
}

// CompareFamily diffs this against prev and yoy metric by metric. baseMetric
// names the metric whose base value drives the base-small notes.
func CompareFamily(this, prev, yoy metricSource, baseMetric string, threshold float64) FamilyComparison {
	fc := FamilyComparison{
		MoM: make(map[string]*Delta),
		YoY: make(map[string]*Delta),
	}
	prevMetrics := prev.Metrics()
	yoyMetrics := yoy.Metrics()
	for i, m := range this.Metrics() {
		fc.MoM[m.Name] = DeltaOf(m.Value, prevMetrics[i].Value)
		fc.YoY[m.Name] = DeltaOf(m.Value, yoyMetrics[i].Value)
	}
	fc.NoteIfBaseSmallMoM = BaseSmall(metricValue(prev, baseMetric), threshold)
	fc.NoteIfBaseSmallYoY = BaseSmall(metricValue(yoy, baseMetric), threshold)
	return fc
}

// Comparisons is the comparison section of a snapshot
type Comparisons struct {
	MallSales    FamilyComparison              `json:"mall_sales"`
	MetaAds      FamilyComparison              `json:"meta_ads"`
	GA4Traffic   FamilyComparison              `json:"ga4_traffic"`
	MetaAdsGoals map[GoalType]FamilyComparison `json:"meta_ads_goals"`
}

// CompareFacts runs CompareFamily for every family and, for ad goals, every objective
func CompareFacts(f Facts, t Thresholds) Comparisons {
	c := Comparisons{
		MallSales:    CompareFamily(f.MallSales.This, f.MallSales.Prev, f.MallSales.YoY, "net_sales", t.BaseSmallSales),
		MetaAds:      CompareFamily(f.MetaAds.This, f.MetaAds.Prev, f.MetaAds.YoY, "spend", t.BaseSmallAdSpend),
		GA4Traffic:   CompareFamily(f.GA4Traffic.This, f.GA4Traffic.Prev, f.GA4Traffic.YoY, "users", t.BaseSmallTrafficUsers),
		MetaAdsGoals: make(map[GoalType]FamilyComparison, len(AllGoals)),
	}
	g := f.MetaAdsGoals
	for _, goal := range AllGoals {
		c.MetaAdsGoals[goal] = CompareFamily(g.This.Get(goal), g.Prev.Get(goal), g.YoY.Get(goal), "spend", t.BaseSmallAdSpend)
	}
	return c
}
