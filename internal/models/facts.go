package models

import "time"

// SalesDay is one day of store order facts for a company.
type SalesDay struct {
	Date         time.Time `json:"date" db:"date"`
	NetSales     float64   `json:"net_sales" db:"net_sales"`
	GrossSales   float64   `json:"gross_sales" db:"gross_sales"`
	Orders       int64     `json:"orders" db:"orders"`
	Units        int64     `json:"units" db:"units"`
	RefundAmount float64   `json:"refund_amount" db:"refund_amount"`
}

// AdsDay is one day of account-level ad delivery facts.
type AdsDay struct {
	Date          time.Time `json:"date" db:"date"`
	Spend         float64   `json:"spend" db:"spend"`
	Impressions   int64     `json:"impressions" db:"impressions"`
	Clicks        int64     `json:"clicks" db:"clicks"`
	Purchases     int64     `json:"purchases" db:"purchases"`
	PurchaseValue float64   `json:"purchase_value" db:"purchase_value"`
}

// AdDay is one day of ad-level delivery facts. CampaignName is the free-text
// label used to classify the row into an objective.
type AdDay struct {
	Date          time.Time `json:"date" db:"date"`
	CampaignName  string    `json:"campaign_name" db:"campaign_name"`
	AdID          string    `json:"ad_id" db:"ad_id"`
	AdName        string    `json:"ad_name" db:"ad_name"`
	Spend         float64   `json:"spend" db:"spend"`
	Impressions   int64     `json:"impressions" db:"impressions"`
	Clicks        int64     `json:"clicks" db:"clicks"`
	Purchases     int64     `json:"purchases" db:"purchases"`
	PurchaseValue float64   `json:"purchase_value" db:"purchase_value"`
}

// TrafficDay is one day of site analytics facts.
type TrafficDay struct {
	Date      time.Time `json:"date" db:"date"`
	Users     int64     `json:"users" db:"users"`
	NewUsers  int64     `json:"new_users" db:"new_users"`
	Sessions  int64     `json:"sessions" db:"sessions"`
	Pageviews int64     `json:"pageviews" db:"pageviews"`
	Purchases int64     `json:"purchases" db:"purchases"`
	Revenue   float64   `json:"revenue" db:"revenue"`
}

// ProductSales is a product's quantity and sales summed over a window.
type ProductSales struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Name      string  `json:"name" db:"product_name"`
	Quantity  int64   `json:"quantity" db:"quantity"`
	Sales     float64 `json:"sales" db:"sales"`
}

// ViewItemRow is a raw "viewed item" count as reported by site analytics.
// Several rows may carry spelling variants of the same product.
type ViewItemRow struct {
	ItemName  string `json:"item_name" db:"item_name"`
	ViewCount int64  `json:"view_count" db:"view_count"`
}
