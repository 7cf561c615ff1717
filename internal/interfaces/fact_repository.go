package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/monthlens/internal/models"
)

// FactRepository reads pre-cleaned daily facts from the warehouse. All
// ranges are inclusive calendar dates. Implementations return an empty
// slice, not an error, when a range has no rows.
type FactRepository interface {
	// SalesDaily returns store order facts per day.
	SalesDaily(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.SalesDay, error)

	// AdsDaily returns account-level ad facts per day.
	AdsDaily(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.AdsDay, error)

	// AdsByCampaign returns ad-level facts per day, carrying campaign labels.
	AdsByCampaign(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.AdDay, error)

	// TrafficDaily returns site analytics facts per day.
	TrafficDaily(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.TrafficDay, error)

	// TopProducts returns up to limit products ordered by sales DESC.
	TopProducts(ctx context.Context, company models.CompanyFilter, from, to time.Time, limit int) ([]models.ProductSales, error)

	// ViewItems returns raw viewed-item counts summed per item name.
	ViewItems(ctx context.Context, company models.CompanyFilter, from, to time.Time) ([]models.ViewItemRow, error)
}
