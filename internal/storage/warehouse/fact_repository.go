package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/models"
)

const dayLayout = "2006-01-02"

var errNoCompany = errors.New("company filter has no account names")

// FactRepository implements interfaces.FactRepository over the warehouse
// tables. Rows of every account in the filter are summed per day.
type FactRepository struct {
	db     *sqlx.DB
	logger arbor.ILogger
}

// NewFactRepository creates a repository reading from db
func NewFactRepository(db *sqlx.DB, logger arbor.ILogger) interfaces.FactRepository {
	return &FactRepository{db: db, logger: logger}
}

type salesRow struct {
	Day string `db:"day"`
	models.SalesDay
}

type adsRow struct {
	Day string `db:"day"`
	models.AdsDay
}

type adRow struct {
	Day string `db:"day"`
	models.AdDay
}

type trafficRow struct {
	Day string `db:"day"`
	models.TrafficDay
}

// selectRange expands the company list into the query, rebinds it for the
// driver and scans into dest
func (r *FactRepository) selectRange(ctx context.Context, dest interface{}, query string, company models.CompanyFilter, from, to time.Time, extra ...interface{}) error {
	if company.IsEmpty() {
		return errNoCompany
	}
	args := append([]interface{}{company.Names(), from.Format(dayLayout), to.Format(dayLayout)}, extra...)
	q, args, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to expand query: %w", err)
	}
	q = r.db.Rebind(q)
	if err := r.db.SelectContext(ctx, dest, q, args...); err != nil {
		return err
	}
	return nil
}

// parseDay reads the calendar date from a scanned day column. Drivers may
// return a bare date or a full timestamp, so only the first ten characters
// are used.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	if len(s) < len(dayLayout) {
		return time.Time{}, fmt.Errorf("invalid day value %q", s)
	}
	return time.ParseInLocation(dayLayout, s[:len(dayLayout)], loc)
}

// SalesDaily returns store order facts per day
func (r *FactRepository) SalesDaily(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.SalesDay, error) {
	var rows []salesRow
	err := r.selectRange(ctx, &rows, `
		SELECT day, SUM(net_sales) AS net_sales, SUM(gross_sales) AS gross_sales,
			SUM(orders) AS orders, SUM(units) AS units, SUM(refund_amount) AS refund_amount
		FROM sales_daily
		WHERE company IN (?) AND day BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day`, company, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales_daily: %w", err)
	}

	out := make([]models.SalesDay, 0, len(rows))
	for _, row := range rows {
		d, err := parseDay(row.Day, from.Location())
		if err != nil {
			return nil, err
		}
		row.SalesDay.Date = d
		out = append(out, row.SalesDay)
	}
	return out, nil
}

// AdsDaily returns account-level ad facts per day
func (r *FactRepository) AdsDaily(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.AdsDay, error) {
	var rows []adsRow
	err := r.selectRange(ctx, &rows, `
		SELECT day, SUM(spend) AS spend, SUM(impressions) AS impressions, SUM(clicks) AS clicks,
			SUM(purchases) AS purchases, SUM(purchase_value) AS purchase_value
		FROM ads_daily
		WHERE company IN (?) AND day BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day`, company, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query ads_daily: %w", err)
	}

	out := make([]models.AdsDay, 0, len(rows))
	for _, row := range rows {
		d, err := parseDay(row.Day, from.Location())
		if err != nil {
			return nil, err
		}
		row.AdsDay.Date = d
		out = append(out, row.AdsDay)
	}
	return out, nil
}

// AdsByCampaign returns ad-level facts per day
func (r *FactRepository) AdsByCampaign(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.AdDay, error) {
	var rows []adRow
	err := r.selectRange(ctx, &rows, `
		SELECT day, campaign_name, ad_id, ad_name,
			SUM(spend) AS spend, SUM(impressions) AS impressions, SUM(clicks) AS clicks,
			SUM(purchases) AS purchases, SUM(purchase_value) AS purchase_value
		FROM ads_by_ad
		WHERE company IN (?) AND day BETWEEN ? AND ?
		GROUP BY day, campaign_name, ad_id, ad_name
		ORDER BY day, campaign_name, ad_id`, company, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query ads_by_ad: %w", err)
	}

	out := make([]models.AdDay, 0, len(rows))
	for _, row := range rows {
		d, err := parseDay(row.Day, from.Location())
		if err != nil {
			return nil, err
		}
		row.AdDay.Date = d
		out = append(out, row.AdDay)
	}
	return out, nil
}

// TrafficDaily returns site analytics facts per day
func (r *FactRepository) TrafficDaily(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.TrafficDay, error) {
	var rows []trafficRow
	err := r.selectRange(ctx, &rows, `
		SELECT day, SUM(users) AS users, SUM(new_users) AS new_users, SUM(sessions) AS sessions,
			SUM(pageviews) AS pageviews, SUM(purchases) AS purchases, SUM(revenue) AS revenue
		FROM traffic_daily
		WHERE company IN (?) AND day BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day`, company, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic_daily: %w", err)
	}

	out := make([]models.TrafficDay, 0, len(rows))
	for _, row := range rows {
		d, err := parseDay(row.Day, from.Location())
		if err != nil {
			return nil, err
		}
		row.TrafficDay.Date = d
		out = append(out, row.TrafficDay)
	}
	return out, nil
}

// TopProducts returns up to limit products ordered by sales DESC
func (r *FactRepository) TopProducts(ctx context.Context, company models.CompanyFilter, from, to time.Time, limit int) ([]models.ProductSales, error) {
	if limit <= 0 {
		return []models.ProductSales{}, nil
	}
	var rows []models.ProductSales
	err := r.selectRange(ctx, &rows, `
		SELECT product_id, MAX(product_name) AS product_name,
			SUM(quantity) AS quantity, SUM(sales) AS sales
		FROM product_sales_daily
		WHERE company IN (?) AND day BETWEEN ? AND ?
		GROUP BY product_id
		ORDER BY sales DESC, product_id
		LIMIT ?`, company, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query product_sales_daily: %w", err)
	}
	if rows == nil {
		rows = []models.ProductSales{}
	}
	return rows, nil
}

// ViewItems returns viewed-item counts summed per raw item name
func (r *FactRepository) ViewItems(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.ViewItemRow, error) {
	var rows []models.ViewItemRow
	err := r.selectRange(ctx, &rows, `
		SELECT item_name, SUM(view_count) AS view_count
		FROM viewitem_daily
		WHERE company IN (?) AND day BETWEEN ? AND ?
		GROUP BY item_name
		ORDER BY view_count DESC, item_name`, company, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewitem_daily: %w", err)
	}
	if rows == nil {
		rows = []models.ViewItemRow{}
	}
	return rows, nil
}
