package rollup

// Metric is one named value of a block. A nil Value means not available.
type Metric struct {
	Name  string
	Value *float64
}

// metricSource is implemented by every fact-family block. Implementations
// must tolerate a nil receiver and return their metric names with nil values.
type metricSource interface {
	Metrics() []Metric
}

func metricValue(src metricSource, name string) *float64 {
	for _, m := range src.Metrics() {
		if m.Name == name {
			return m.Value
		}
	}
	return nil
}

// SalesBlock holds store sales totals for one period
type SalesBlock struct {
	NetSales      float64  `json:"net_sales"`
	GrossSales    float64  `json:"gross_sales"`
	Orders        int64    `json:"orders"`
	Units         int64    `json:"units"`
	RefundAmount  float64  `json:"refund_amount"`
	AOV           *float64 `json:"aov"`
	RefundRatePct *float64 `json:"refund_rate_pct"`
	DaysWithData  int      `json:"days_with_data"`
}

func (b *SalesBlock) Metrics() []Metric {
	if b == nil {
		return nilMetrics("net_sales", "gross_sales", "orders", "units", "refund_amount", "aov", "refund_rate_pct")
	}
	return []Metric{
		{"net_sales", ptr(b.NetSales)},
		{"gross_sales", ptr(b.GrossSales)},
		{"orders", floatOf(b.Orders)},
		{"units", floatOf(b.Units)},
		{"refund_amount", ptr(b.RefundAmount)},
		{"aov", b.AOV},
		{"refund_rate_pct", b.RefundRatePct},
	}
}

// AdsBlock holds ad delivery totals and derived efficiency ratios
type AdsBlock struct {
	Spend         float64  `json:"spend"`
	Impressions   int64    `json:"impressions"`
	Clicks        int64    `json:"clicks"`
	Purchases     int64    `json:"purchases"`
	PurchaseValue float64  `json:"purchase_value"`
	CPC           *float64 `json:"cpc"`
	CTR           *float64 `json:"ctr"`
	CVR           *float64 `json:"cvr"`
	ROAS          *float64 `json:"roas"`
	CPA           *float64 `json:"cpa"`
	CPM           *float64 `json:"cpm"`
	DaysWithData  int      `json:"days_with_data"`
}

func (b *AdsBlock) Metrics() []Metric {
	if b == nil {
		return nilMetrics("spend", "impressions", "clicks", "purchases", "purchase_value", "cpc", "ctr", "cvr", "roas", "cpa", "cpm")
	}
	return []Metric{
		{"spend", ptr(b.Spend)},
		{"impressions", floatOf(b.Impressions)},
		{"clicks", floatOf(b.Clicks)},
		{"purchases", floatOf(b.Purchases)},
		{"purchase_value", ptr(b.PurchaseValue)},
		{"cpc", b.CPC},
		{"ctr", b.CTR},
		{"cvr", b.CVR},
		{"roas", b.ROAS},
		{"cpa", b.CPA},
		{"cpm", b.CPM},
	}
}

// derive fills the ratio fields from the raw sums
func (b *AdsBlock) derive() {
	b.CPC = ratio(b.Spend, float64(b.Clicks), 2)
	b.CTR = pct(float64(b.Clicks), float64(b.Impressions), 2)
	b.CVR = pct(float64(b.Purchases), float64(b.Clicks), 2)
	b.ROAS = ratio(b.PurchaseValue, b.Spend, 2)
	b.CPA = ratio(b.Spend, float64(b.Purchases), 2)
	b.CPM = ratio(b.Spend*1000, float64(b.Impressions), 2)
}

// TrafficBlock holds site analytics totals for one period
type TrafficBlock struct {
	Users           int64    `json:"users"`
	NewUsers        int64    `json:"new_users"`
	Sessions        int64    `json:"sessions"`
	Pageviews       int64    `json:"pageviews"`
	Purchases       int64    `json:"purchases"`
	Revenue         float64  `json:"revenue"`
	PagesPerSession *float64 `json:"pages_per_session"`
	SessionCVRPct   *float64 `json:"session_cvr_pct"`
	NewUserRatioPct *float64 `json:"new_user_ratio_pct"`
	DaysWithData    int      `json:"days_with_data"`
}

func (b *TrafficBlock) Metrics() []Metric {
	if b == nil {
		return nilMetrics("users", "new_users", "sessions", "pageviews", "purchases", "revenue", "pages_per_session", "session_cvr_pct", "new_user_ratio_pct")
	}
	return []Metric{
		{"users", floatOf(b.Users)},
		{"new_users", floatOf(b.NewUsers)},
		{"sessions", floatOf(b.Sessions)},
		{"pageviews", floatOf(b.Pageviews)},
		{"purchases", floatOf(b.Purchases)},
		{"revenue", ptr(b.Revenue)},
		{"pages_per_session", b.PagesPerSession},
		{"session_cvr_pct", b.SessionCVRPct},
		{"new_user_ratio_pct", b.NewUserRatioPct},
	}
}

// GoalBlock is an AdsBlock restricted to one campaign objective
type GoalBlock struct {
	AdsBlock
	Ads int `json:"ads"`
}

func (b *GoalBlock) Metrics() []Metric {
	if b == nil {
		return append((*AdsBlock)(nil).Metrics(), Metric{Name: "ads"})
	}
	return append(b.AdsBlock.Metrics(), Metric{"ads", ptr(float64(b.Ads))})
}

// GoalBreakdown splits ad-level facts by objective. A nil goal block means
// no row of that objective existed in the period.
type GoalBreakdown struct {
	Conversion *GoalBlock `json:"conversion"`
	Traffic    *GoalBlock `json:"traffic"`
	Awareness  *GoalBlock `json:"awareness"`
	Unknown    *GoalBlock `json:"unknown"`
}

// Get returns the block for a goal; safe on a nil breakdown
func (g *GoalBreakdown) Get(goal GoalType) *GoalBlock {
	if g == nil {
		return nil
	}
	switch goal {
	case GoalConversion:
		return g.Conversion
	case GoalTraffic:
		return g.Traffic
	case GoalAwareness:
		return g.Awareness
	default:
		return g.Unknown
	}
}

func (g *GoalBreakdown) set(goal GoalType, b *GoalBlock) {
	switch goal {
	case GoalConversion:
		g.Conversion = b
	case GoalTraffic:
		g.Traffic = b
	case GoalAwareness:
		g.Awareness = b
	default:
		g.Unknown = b
	}
}

func nilMetrics(names ...string) []Metric {
	out := make([]Metric, len(names))
	for i, n := range names {
		out[i] = Metric{Name: n}
	}
	return out
}
