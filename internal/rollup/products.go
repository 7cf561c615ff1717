package rollup

import (
	"github.com/ternarybob/monthlens/internal/models"
)

// ProductRole ranks a product by its share of 90-day net sales
type ProductRole string

const (
	RoleCore    ProductRole = "core"
	RoleHit     ProductRole = "hit"
	RoleNormal  ProductRole = "normal"
	RoleUnknown ProductRole = "unknown"
)

// Product is a top seller within a rolling window
type Product struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	Sales     float64 `json:"sales"`
}

// RankedProduct is a 90-day top seller with its derived role
type RankedProduct struct {
	Product
	Role        ProductRole `json:"role"`
	SharePct    *float64    `json:"share_of_net_sales_pct_90d"`
	IsDeclining *bool       `json:"is_declining"`
}

// ProductRollup holds both rolling top-seller lists
type ProductRollup struct {
	AsOf             string          `json:"as_of"`
	TotalNetSales90d *float64        `json:"total_net_sales_90d"`
	D30              []Product       `json:"rolling_d30"`
	D90              []RankedProduct `json:"rolling_d90"`
}

// RoleForShare maps a share percentage to a role. Boundaries are inclusive.
func RoleForShare(share *float64, t Thresholds) ProductRole {
	switch {
	case share == nil:
		return RoleUnknown
	case *share >= t.CoreSharePct:
		return RoleCore
	case *share >= t.HitSharePct:
		return RoleHit
	default:
		return RoleNormal
	}
}

func toProducts(rows []models.ProductSales) []Product {
	out := make([]Product, len(rows))
	for i, r := range rows {
		out[i] = Product{ProductID: r.ProductID, Name: r.Name, Quantity: r.Quantity, Sales: r.Sales}
	}
	return out
}

// ClassifyProducts builds the rolling lists. total90 is the 90-day net sales
// total; nil or zero leaves every share nil and every role unknown. Only core
// and hit products are trend-checked against the 30-day list.
func ClassifyProducts(d30Rows, d90Rows []models.ProductSales, total90 *float64, t Thresholds) ([]Product, []RankedProduct) {
	d30 := toProducts(d30Rows)
	byID := make(map[string]Product, len(d30))
	for _, p := range d30 {
		if _, ok := byID[p.ProductID]; !ok {
			byID[p.ProductID] = p
		}
	}

	d90 := make([]RankedProduct, 0, len(d90Rows))
	for _, p := range toProducts(d90Rows) {
		rp := RankedProduct{Product: p}
		if total90 != nil {
			rp.SharePct = pct(p.Sales, *total90, 2)
		}
		rp.Role = RoleForShare(rp.SharePct, t)
		if rp.Role == RoleCore || rp.Role == RoleHit {
			if recent, ok := byID[p.ProductID]; ok {
				rp.IsDeclining = ptr(recent.Sales/30 < p.Sales/90)
			}
		}
		d90 = append(d90, rp)
	}
	return d30, d90
}

// newProductShare returns the percentage of 30-day top-seller sales that
// comes from products missing from the 90-day list
func newProductShare(d30 []Product, d90 []RankedProduct) *float64 {
	known := make(map[string]bool, len(d90))
	for _, p := range d90 {
		known[p.ProductID] = true
	}
	var total, fresh float64
	for _, p := range d30 {
		total += p.Sales
		if !known[p.ProductID] {
			fresh += p.Sales
		}
	}
	return pct(fresh, total, 2)
}
