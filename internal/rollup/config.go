package rollup

// Thresholds holds every business-tuned constant used by the matcher,
// comparison, guardrail and signal computations. Money values are in the
// reporting currency.
type Thresholds struct {
	// Product roles (share of 90-day net sales, percent)
	CoreSharePct float64 `toml:"core_share_pct" json:"core_share_pct" validate:"gte=0"`
	HitSharePct  float64 `toml:"hit_share_pct" json:"hit_share_pct" validate:"gte=0"`

	// Engagement flags
	ViewAttentionMin int64   `toml:"view_attention_min" json:"view_attention_min" validate:"gte=0"`
	ViewEfficientMin int64   `toml:"view_efficient_min" json:"view_efficient_min" validate:"gte=0"`
	QtyPerViewMin    float64 `toml:"qty_per_view_min" json:"qty_per_view_min" validate:"gte=0"`

	// Guardrails
	SalesVolumeFloor  float64 `toml:"sales_volume_floor" json:"sales_volume_floor" validate:"gte=0"`
	AdSpendFloor      float64 `toml:"ad_spend_floor" json:"ad_spend_floor" validate:"gte=0"`
	AdSpendRatioFloor float64 `toml:"ad_spend_ratio_floor" json:"ad_spend_ratio_floor" validate:"gte=0"`
	GoalSpendFloor    float64 `toml:"goal_spend_floor" json:"goal_spend_floor" validate:"gte=0"`
	GoalPurchaseFloor int64   `toml:"goal_purchase_floor" json:"goal_purchase_floor" validate:"gte=0"`

	// Top-ad eligibility for the traffic objective
	TrafficTopAdSpendFloor float64 `toml:"traffic_top_ad_spend_floor" json:"traffic_top_ad_spend_floor" validate:"gte=0"`

	// Signals
	AdsInterpretableRatio   float64 `toml:"ads_interpretable_ratio" json:"ads_interpretable_ratio" validate:"gte=0"`
	NewProductDependencyPct float64 `toml:"new_product_dependency_pct" json:"new_product_dependency_pct" validate:"gte=0"`

	// Base-small annotations per family
	BaseSmallSales        float64 `toml:"base_small_sales" json:"base_small_sales" validate:"gte=0"`
	BaseSmallAdSpend      float64 `toml:"base_small_ad_spend" json:"base_small_ad_spend" validate:"gte=0"`
	BaseSmallTrafficUsers float64 `toml:"base_small_traffic_users" json:"base_small_traffic_users" validate:"gte=0"`
}

// DefaultThresholds returns the reference thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		CoreSharePct:            20,
		HitSharePct:             10,
		ViewAttentionMin:        300,
		ViewEfficientMin:        120,
		QtyPerViewMin:           0.010,
		SalesVolumeFloor:        1_000_000,
		AdSpendFloor:            100_000,
		AdSpendRatioFloor:       0.10,
		GoalSpendFloor:          50_000,
		GoalPurchaseFloor:       5,
		TrafficTopAdSpendFloor:  10_000,
		AdsInterpretableRatio:   0.10,
		NewProductDependencyPct: 30,
		BaseSmallSales:          1_000_000,
		BaseSmallAdSpend:        100_000,
		BaseSmallTrafficUsers:   500,
	}
}

// Config controls one engine instance
type Config struct {
	TopProducts         int
	TopAds              int
	ViewItemTopN        int
	HistoryMonths       int
	TimezoneOffsetHours int
	Thresholds          Thresholds
	GoalKeywords        GoalKeywords
	ProtectedPrefixes   []string
	Placeholders        []string
}

// DefaultConfig returns the reference engine configuration
func DefaultConfig() Config {
	return Config{
		TopProducts:         50,
		TopAds:              5,
		ViewItemTopN:        50,
		HistoryMonths:       13,
		TimezoneOffsetHours: 9,
		Thresholds:          DefaultThresholds(),
		GoalKeywords:        DefaultGoalKeywords(),
		ProtectedPrefixes:   []string{"[SET]"},
		Placeholders:        []string{"(not set)"},
	}
}

// withDefaults fills zero values so a partially populated Config is usable
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TopProducts <= 0 {
		c.TopProducts = d.TopProducts
	}
	if c.TopAds <= 0 {
		c.TopAds = d.TopAds
	}
	if c.ViewItemTopN <= 0 {
		c.ViewItemTopN = d.ViewItemTopN
	}
	if c.HistoryMonths <= 0 {
		c.HistoryMonths = d.HistoryMonths
	}
	if c.GoalKeywords.IsEmpty() {
		c.GoalKeywords = d.GoalKeywords
	}
	if c.ProtectedPrefixes == nil {
		c.ProtectedPrefixes = d.ProtectedPrefixes
	}
	if c.Placeholders == nil {
		c.Placeholders = d.Placeholders
	}
	return c
}
