package rollup

import (
	"github.com/ternarybob/monthlens/internal/models"
)

// SumSales totals store sales rows. Returns nil when rows is empty so a
// missing period is never reported as a real zero.
func SumSales(rows []models.SalesDay) *SalesBlock {
	if len(rows) == 0 {
		return nil
	}
	b := &SalesBlock{}
	days := make(map[string]bool)
	for _, r := range rows {
		b.NetSales += r.NetSales
		b.GrossSales += r.GrossSales
		b.Orders += r.Orders
		b.Units += r.Units
		b.RefundAmount += r.RefundAmount
		days[r.Date.Format(dateLayout)] = true
	}
	b.AOV = ratio(b.NetSales, float64(b.Orders), 2)
	b.RefundRatePct = pct(b.RefundAmount, b.GrossSales, 2)
	b.DaysWithData = len(days)
	return b
}

// SumAds totals account-level ad rows
func SumAds(rows []models.AdsDay) *AdsBlock {
	if len(rows) == 0 {
		return nil
	}
	b := &AdsBlock{}
	days := make(map[string]bool)
	for _, r := range rows {
		b.Spend += r.Spend
		b.Impressions += r.Impressions
		b.Clicks += r.Clicks
		b.Purchases += r.Purchases
		b.PurchaseValue += r.PurchaseValue
		days[r.Date.Format(dateLayout)] = true
	}
	b.derive()
	b.DaysWithData = len(days)
	return b
}

// SumTraffic totals site analytics rows
func SumTraffic(rows []models.TrafficDay) *TrafficBlock {
	if len(rows) == 0 {
		return nil
	}
	b := &TrafficBlock{}
	days := make(map[string]bool)
	for _, r := range rows {
		b.Users += r.Users
		b.NewUsers += r.NewUsers
		b.Sessions += r.Sessions
		b.Pageviews += r.Pageviews
		b.Purchases += r.Purchases
		b.Revenue += r.Revenue
		days[r.Date.Format(dateLayout)] = true
	}
	b.PagesPerSession = ratio(float64(b.Pageviews), float64(b.Sessions), 2)
	b.SessionCVRPct = pct(float64(b.Purchases), float64(b.Sessions), 2)
	b.NewUserRatioPct = pct(float64(b.NewUsers), float64(b.Users), 2)
	b.DaysWithData = len(days)
	return b
}

// SalesHistoryPoint is one month of SalesBlock; the block is nil for a month without rows
type SalesHistoryPoint struct {
	Ym string `json:"ym"`
	*SalesBlock
}

// AdsHistoryPoint is one month of AdsBlock
type AdsHistoryPoint struct {
	Ym string `json:"ym"`
	*AdsBlock
}

// TrafficHistoryPoint is one month of TrafficBlock
type TrafficHistoryPoint struct {
	Ym string `json:"ym"`
	*TrafficBlock
}

// GoalHistoryPoint is one month of GoalBreakdown
type GoalHistoryPoint struct {
	Ym    string         `json:"ym"`
	Goals *GoalBreakdown `json:"goals"`
}

// historyMonths lists the months calendar months ending at end, oldest first
func historyMonths(end YearMonth, months int) []YearMonth {
	out := make([]YearMonth, months)
	for i := 0; i < months; i++ {
		out[i] = end.AddMonths(i - (months - 1))
	}
	return out
}

// groupByMonth buckets rows by calendar month of their date
func groupByMonth[R any](rows []R, date func(R) YearMonth) map[YearMonth][]R {
	out := make(map[YearMonth][]R)
	for _, r := range rows {
		ym := date(r)
		out[ym] = append(out[ym], r)
	}
	return out
}

// SalesHistory builds a month-indexed history ending at end
func SalesHistory(rows []models.SalesDay, end YearMonth, months int) []SalesHistoryPoint {
	byMonth := groupByMonth(rows, func(r models.SalesDay) YearMonth { return YearMonthOf(r.Date) })
	out := make([]SalesHistoryPoint, 0, months)
	for _, ym := range historyMonths(end, months) {
		out = append(out, SalesHistoryPoint{Ym: ym.String(), SalesBlock: SumSales(byMonth[ym])})
	}
	return out
}

// AdsHistory builds a month-indexed history ending at end
func AdsHistory(rows []models.AdsDay, end YearMonth, months int) []AdsHistoryPoint {
	byMonth := groupByMonth(rows, func(r models.AdsDay) YearMonth { return YearMonthOf(r.Date) })
	out := make([]AdsHistoryPoint, 0, months)
	for _, ym := range historyMonths(end, months) {
		out = append(out, AdsHistoryPoint{Ym: ym.String(), AdsBlock: SumAds(byMonth[ym])})
	}
	return out
}

// TrafficHistory builds a month-indexed history ending at end
func TrafficHistory(rows []models.TrafficDay, end YearMonth, months int) []TrafficHistoryPoint {
	byMonth := groupByMonth(rows, func(r models.TrafficDay) YearMonth { return YearMonthOf(r.Date) })
	out := make([]TrafficHistoryPoint, 0, months)
	for _, ym := range historyMonths(end, months) {
		out = append(out, TrafficHistoryPoint{Ym: ym.String(), TrafficBlock: SumTraffic(byMonth[ym])})
	}
	return out
}

// GoalHistory builds a month-indexed objective breakdown ending at end
func (c *GoalClassifier) GoalHistory(rows []models.AdDay, end YearMonth, months int) []GoalHistoryPoint {
	byMonth := groupByMonth(rows, func(r models.AdDay) YearMonth { return YearMonthOf(r.Date) })
	out := make([]GoalHistoryPoint, 0, months)
	for _, ym := range historyMonths(end, months) {
		out = append(out, GoalHistoryPoint{Ym: ym.String(), Goals: c.SumGoals(byMonth[ym])})
	}
	return out
}
