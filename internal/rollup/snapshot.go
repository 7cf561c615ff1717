package rollup

import (
	"time"
)

// SalesFacts is the mall_sales section
type SalesFacts struct {
	This       *SalesBlock         `json:"this"`
	Prev       *SalesBlock         `json:"prev"`
	YoY        *SalesBlock         `json:"yoy"`
	Monthly13m []SalesHistoryPoint `json:"monthly_13m"`
}

// AdsFacts is the meta_ads section
type AdsFacts struct {
	This       *AdsBlock         `json:"this"`
	Prev       *AdsBlock         `json:"prev"`
	YoY        *AdsBlock         `json:"yoy"`
	Monthly13m []AdsHistoryPoint `json:"monthly_13m"`
}

// TrafficFacts is the ga4_traffic section
type TrafficFacts struct {
	This       *TrafficBlock         `json:"this"`
	Prev       *TrafficBlock         `json:"prev"`
	YoY        *TrafficBlock         `json:"yoy"`
	Monthly13m []TrafficHistoryPoint `json:"monthly_13m"`
}

// GoalFacts is the meta_ads_goals section. TopAds covers this month only.
type GoalFacts struct {
	This       *GoalBreakdown     `json:"this"`
	Prev       *GoalBreakdown     `json:"prev"`
	YoY        *GoalBreakdown     `json:"yoy"`
	TopAds     TopAds             `json:"top_ads"`
	Monthly13m []GoalHistoryPoint `json:"monthly_13m"`
}

// Facts groups every fact section of a snapshot
type Facts struct {
	MallSales         SalesFacts    `json:"mall_sales"`
	MetaAds           AdsFacts      `json:"meta_ads"`
	MetaAdsGoals      GoalFacts     `json:"meta_ads_goals"`
	GA4Traffic        TrafficFacts  `json:"ga4_traffic"`
	Products          ProductRollup `json:"products"`
	ViewItem          ViewItemBlock `json:"viewitem"`
	Comparisons       Comparisons   `json:"comparisons"`
	ForecastNextMonth ForecastBlock `json:"forecast_next_month"`
}

// PeriodSet is the three calendar-month windows of a report
type PeriodSet struct {
	This Period `json:"this"`
	Prev Period `json:"prev"`
	YoY  Period `json:"yoy"`
}

// RollingSet is the two rolling windows of a report
type RollingSet struct {
	D30 Period `json:"d30"`
	D90 Period `json:"d90"`
}

// YoYAvailability tells whether each family had data a year ago
type YoYAvailability struct {
	MallSales    bool `json:"mall_sales"`
	MetaAds      bool `json:"meta_ads"`
	MetaAdsGoals bool `json:"meta_ads_goals"`
	GA4Traffic   bool `json:"ga4_traffic"`
}

// ReportMeta identifies a snapshot
type ReportMeta struct {
	Company      string          `json:"company"`
	Companies    []string        `json:"companies"`
	TargetMonth  string          `json:"target_month"`
	RunID        string          `json:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	AsOfDate     string          `json:"as_of_date"`
	Periods      PeriodSet       `json:"periods"`
	Rolling      RollingSet      `json:"rolling"`
	YoYAvailable YoYAvailability `json:"yoy_available"`
}

// Snapshot is the complete rollup of one company for one month
type Snapshot struct {
	ReportMeta ReportMeta `json:"report_meta"`
	Facts      Facts      `json:"facts"`
	Signals    Signals    `json:"signals"`
}
