package rollup

import (
	"sort"

	"github.com/ternarybob/monthlens/internal/models"
)

// ViewItemRecord is the page-view total of one normalized item name and its
// match against the 30-day top sellers
type ViewItemRecord struct {
	NormalizedName                 string   `json:"normalized_name"`
	TotalViewItem                  int64    `json:"total_view_item"`
	MatchedProductID               *string  `json:"matched_product_id"`
	MatchedQuantity                *int64   `json:"matched_quantity"`
	MatchedSales                   *float64 `json:"matched_sales"`
	QtyPerView                     *float64 `json:"qty_per_view"`
	SalesPerView                   *float64 `json:"sales_per_view"`
	AttentionWithoutConversion     bool     `json:"attention_without_conversion"`
	EfficientConversion            bool     `json:"efficient_conversion"`
	HighAttentionAndHighConversion bool     `json:"high_attention_and_high_conversion"`
}

// EngagementFlags reports whether any record carries each flag, including
// records cut from Items by the top-N limit
type EngagementFlags struct {
	AttentionWithoutConversion     bool `json:"attention_without_conversion"`
	EfficientConversion            bool `json:"efficient_conversion"`
	HighAttentionAndHighConversion bool `json:"high_attention_and_high_conversion"`
}

func (f *EngagementFlags) add(rec ViewItemRecord) {
	f.AttentionWithoutConversion = f.AttentionWithoutConversion || rec.AttentionWithoutConversion
	f.EfficientConversion = f.EfficientConversion || rec.EfficientConversion
	f.HighAttentionAndHighConversion = f.HighAttentionAndHighConversion || rec.HighAttentionAndHighConversion
}

// ViewItemBlock is the engagement section of a snapshot
type ViewItemBlock struct {
	Window     Period           `json:"window"`
	TotalItems int              `json:"total_items"`
	Flags      EngagementFlags  `json:"flags"`
	Items      []ViewItemRecord `json:"items"`
}

// EngagementMatcher joins viewed-item counts to product sales by normalized name
type EngagementMatcher struct {
	normalizer *NameNormalizer
	thresholds Thresholds
	topN       int
}

// NewEngagementMatcher creates a matcher keeping at most topN records
func NewEngagementMatcher(normalizer *NameNormalizer, t Thresholds, topN int) *EngagementMatcher {
	return &EngagementMatcher{normalizer: normalizer, thresholds: t, topN: topN}
}

// Match aggregates view counts per normalized name and derives the engagement
// flags. Items are ordered by views DESC, then name, and capped at topN;
// Flags and TotalItems cover every record. Window is left to the caller.
func (m *EngagementMatcher) Match(rows []models.ViewItemRow, products []Product) ViewItemBlock {
	lookup := make(map[string]Product, len(products))
	for _, p := range products {
		key := m.normalizer.Normalize(p.Name)
		if key == "" {
			continue
		}
		if _, ok := lookup[key]; !ok {
			lookup[key] = p
		}
	}

	views := make(map[string]int64)
	var order []string
	for _, r := range rows {
		key := m.normalizer.Normalize(r.ItemName)
		if key == "" || r.ViewCount <= 0 {
			continue
		}
		if _, seen := views[key]; !seen {
			order = append(order, key)
		}
		views[key] += r.ViewCount
	}

	var block ViewItemBlock
	records := make([]ViewItemRecord, 0, len(order))
	for _, key := range order {
		rec := ViewItemRecord{NormalizedName: key, TotalViewItem: views[key]}
		var qty int64
		var qpv *float64
		if p, ok := lookup[key]; ok {
			qty = p.Quantity
			rec.MatchedProductID = ptr(p.ProductID)
			rec.MatchedQuantity = ptr(p.Quantity)
			rec.MatchedSales = ptr(p.Sales)
			qpv = ptr(float64(p.Quantity) / float64(rec.TotalViewItem))
			rec.QtyPerView = ptr(round(*qpv, 4))
			rec.SalesPerView = ratio(p.Sales, float64(rec.TotalViewItem), 2)
		}
		m.flag(&rec, qty, qpv)
		block.Flags.add(rec)
		records = append(records, rec)
	}
	block.TotalItems = len(records)

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].TotalViewItem != records[j].TotalViewItem {
			return records[i].TotalViewItem > records[j].TotalViewItem
		}
		return records[i].NormalizedName < records[j].NormalizedName
	})
	if m.topN > 0 && len(records) > m.topN {
		records = records[:m.topN]
	}
	block.Items = records
	return block
}

// flag sets the three threshold flags from unrounded inputs
func (m *EngagementMatcher) flag(rec *ViewItemRecord, qty int64, qpv *float64) {
	t := m.thresholds
	views := rec.TotalViewItem
	converting := qpv != nil && *qpv >= t.QtyPerViewMin
	rec.AttentionWithoutConversion = views >= t.ViewAttentionMin && qty == 0
	rec.EfficientConversion = views >= t.ViewEfficientMin && converting
	rec.HighAttentionAndHighConversion = views >= t.ViewAttentionMin && converting
}
