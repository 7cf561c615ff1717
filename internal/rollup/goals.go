package rollup

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/monthlens/internal/models"
)

// GoalType is the objective a campaign is run for
type GoalType string

const (
	GoalConversion GoalType = "conversion"
	GoalTraffic    GoalType = "traffic"
	GoalAwareness  GoalType = "awareness"
	GoalUnknown    GoalType = "unknown"
)

// AllGoals lists objectives in classification precedence
var AllGoals = []GoalType{GoalConversion, GoalTraffic, GoalAwareness, GoalUnknown}

// GoalKeywords maps objectives to campaign-label substrings. Matching is
// case-insensitive and checked in the order conversion, traffic, awareness.
type GoalKeywords struct {
	Conversion []string `toml:"conversion" yaml:"conversion" json:"conversion"`
	Traffic    []string `toml:"traffic" yaml:"traffic" json:"traffic"`
	Awareness  []string `toml:"awareness" yaml:"awareness" json:"awareness"`
}

// DefaultGoalKeywords follows the Korean and English naming used in ad accounts
func DefaultGoalKeywords() GoalKeywords {
	return GoalKeywords{
		Conversion: []string{"전환", "구매", "판매", "conversion", "purchase", "sales"},
		Traffic:    []string{"트래픽", "유입", "클릭", "방문", "traffic", "click", "visit"},
		Awareness:  []string{"인지", "도달", "브랜딩", "노출", "awareness", "reach", "brand"},
	}
}

// IsEmpty reports whether no keyword is configured
func (k GoalKeywords) IsEmpty() bool {
	return len(k.Conversion) == 0 && len(k.Traffic) == 0 && len(k.Awareness) == 0
}

// LoadGoalKeywordsFile reads a YAML keyword table
func LoadGoalKeywordsFile(path string) (GoalKeywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GoalKeywords{}, fmt.Errorf("failed to read goal keywords file %s: %w", path, err)
	}
	var k GoalKeywords
	if err := yaml.Unmarshal(data, &k); err != nil {
		return GoalKeywords{}, fmt.Errorf("failed to parse goal keywords file %s: %w", path, err)
	}
	if k.IsEmpty() {
		return GoalKeywords{}, fmt.Errorf("goal keywords file %s defines no keywords", path)
	}
	return k, nil
}

// GoalClassifier assigns ad rows to objectives and selects representative ads
type GoalClassifier struct {
	order    []GoalType
	keywords map[GoalType][]string
}

// NewGoalClassifier creates a classifier over a keyword table
func NewGoalClassifier(k GoalKeywords) *GoalClassifier {
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &GoalClassifier{
		order: []GoalType{GoalConversion, GoalTraffic, GoalAwareness},
		keywords: map[GoalType][]string{
			GoalConversion: lower(k.Conversion),
			GoalTraffic:    lower(k.Traffic),
			GoalAwareness:  lower(k.Awareness),
		},
	}
}

// Classify returns the objective of a campaign label
func (c *GoalClassifier) Classify(label string) GoalType {
	l := strings.ToLower(label)
	for _, goal := range c.order {
		for _, kw := range c.keywords[goal] {
			if strings.Contains(l, kw) {
				return goal
			}
		}
	}
	return GoalUnknown
}

type goalAcc struct {
	block *GoalBlock
	days  map[string]bool
	ads   map[string]bool
}

// SumGoals totals ad-level rows per objective. Returns nil for no rows.
func (c *GoalClassifier) SumGoals(rows []models.AdDay) *GoalBreakdown {
	if len(rows) == 0 {
		return nil
	}
	accs := make(map[GoalType]*goalAcc)
	for _, r := range rows {
		goal := c.Classify(r.CampaignName)
		a, ok := accs[goal]
		if !ok {
			a = &goalAcc{block: &GoalBlock{}, days: map[string]bool{}, ads: map[string]bool{}}
			accs[goal] = a
		}
		b := a.block
		b.Spend += r.Spend
		b.Impressions += r.Impressions
		b.Clicks += r.Clicks
		b.Purchases += r.Purchases
		b.PurchaseValue += r.PurchaseValue
		a.days[r.Date.Format(dateLayout)] = true
		a.ads[adKey(r)] = true
	}
	out := &GoalBreakdown{}
	for goal, a := range accs {
		a.block.derive()
		a.block.DaysWithData = len(a.days)
		a.block.Ads = len(a.ads)
		out.set(goal, a.block)
	}
	return out
}

// TopAd is one ad's totals over a period
type TopAd struct {
	AdID          string   `json:"ad_id"`
	AdName        string   `json:"ad_name"`
	CampaignName  string   `json:"campaign_name"`
	Spend         float64  `json:"spend"`
	Impressions   int64    `json:"impressions"`
	Clicks        int64    `json:"clicks"`
	Purchases     int64    `json:"purchases"`
	PurchaseValue float64  `json:"purchase_value"`
	CTR           *float64 `json:"ctr"`
	ROAS          *float64 `json:"roas"`
	ctr           float64
}

// TopAds holds the representative ads per objective
type TopAds struct {
	Conversion []TopAd `json:"conversion"`
	Traffic    []TopAd `json:"traffic"`
	Awareness  []TopAd `json:"awareness"`
}

func adKey(r models.AdDay) string {
	if r.AdID != "" {
		return r.AdID
	}
	return r.AdName
}

// SelectTopAds ranks ads per objective:
//   - conversion: purchases, purchase value, spend (all DESC)
//   - traffic: spend >= trafficSpendFloor only, then CTR, clicks (DESC)
//   - awareness: spend DESC
//
// Ties fall back to ad name for a stable order. Each list holds at most n ads.
func (c *GoalClassifier) SelectTopAds(rows []models.AdDay, n int, trafficSpendFloor float64) TopAds {
	byGoal := make(map[GoalType]map[string]*TopAd)
	for _, r := range rows {
		goal := c.Classify(r.CampaignName)
		if goal == GoalUnknown {
			continue
		}
		ads, ok := byGoal[goal]
		if !ok {
			ads = make(map[string]*TopAd)
			byGoal[goal] = ads
		}
		key := adKey(r)
		ad, ok := ads[key]
		if !ok {
			ad = &TopAd{AdID: r.AdID, AdName: r.AdName, CampaignName: r.CampaignName}
			ads[key] = ad
		}
		ad.Spend += r.Spend
		ad.Impressions += r.Impressions
		ad.Clicks += r.Clicks
		ad.Purchases += r.Purchases
		ad.PurchaseValue += r.PurchaseValue
	}

	collect := func(goal GoalType, keep func(*TopAd) bool) []*TopAd {
		out := make([]*TopAd, 0, len(byGoal[goal]))
		for _, ad := range byGoal[goal] {
			if impressions := float64(ad.Impressions); impressions > 0 {
				ad.ctr = float64(ad.Clicks) / impressions * 100
			}
			ad.CTR = pct(float64(ad.Clicks), float64(ad.Impressions), 2)
			ad.ROAS = ratio(ad.PurchaseValue, ad.Spend, 2)
			if keep == nil || keep(ad) {
				out = append(out, ad)
			}
		}
		return out
	}

	conversion := collect(GoalConversion, nil)
	sort.Slice(conversion, func(i, j int) bool {
		a, b := conversion[i], conversion[j]
		if a.Purchases != b.Purchases {
			return a.Purchases > b.Purchases
		}
		if a.PurchaseValue != b.PurchaseValue {
			return a.PurchaseValue > b.PurchaseValue
		}
		if a.Spend != b.Spend {
			return a.Spend > b.Spend
		}
		return a.AdName < b.AdName
	})

	traffic := collect(GoalTraffic, func(ad *TopAd) bool { return ad.Spend >= trafficSpendFloor })
	sort.Slice(traffic, func(i, j int) bool {
		a, b := traffic[i], traffic[j]
		if (a.CTR == nil) != (b.CTR == nil) {
			return a.CTR != nil
		}
		if a.ctr != b.ctr {
			return a.ctr > b.ctr
		}
		if a.Clicks != b.Clicks {
			return a.Clicks > b.Clicks
		}
		return a.AdName < b.AdName
	})

	awareness := collect(GoalAwareness, nil)
	sort.Slice(awareness, func(i, j int) bool {
		a, b := awareness[i], awareness[j]
		if a.Spend != b.Spend {
			return a.Spend > b.Spend
		}
		return a.AdName < b.AdName
	})

	return TopAds{
		Conversion: capAds(conversion, n),
		Traffic:    capAds(traffic, n),
		Awareness:  capAds(awareness, n),
	}
}

func capAds(ads []*TopAd, n int) []TopAd {
	if len(ads) > n {
		ads = ads[:n]
	}
	out := make([]TopAd, len(ads))
	for i, ad := range ads {
		out[i] = *ad
	}
	return out
}
