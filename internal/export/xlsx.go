package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"

	"github.com/ternarybob/monthlens/internal/rollup"
)

const (
	SheetSummary  = "Summary"
	SheetSales    = "Mall Sales"
	SheetAds      = "Meta Ads"
	SheetGoals    = "Ad Goals"
	SheetTraffic  = "GA4 Traffic"
	SheetProducts = "Products"
	SheetViewItem = "View Items"
	SheetHistory  = "History 13m"
	SheetForecast = "Forecast"
)

type metricSource interface {
	Metrics() []rollup.Metric
}

// XLSXWriter renders a snapshot as a workbook
type XLSXWriter struct {
	logger arbor.ILogger
}

// NewXLSXWriter creates an XLSXWriter
func NewXLSXWriter(logger arbor.ILogger) *XLSXWriter {
	return &XLSXWriter{logger: logger}
}

// FileName is the workbook name for a snapshot
func FileName(snap *rollup.Snapshot) string {
	return fmt.Sprintf("monthlens_%s_%s.xlsx", sanitize(snap.ReportMeta.Company), snap.ReportMeta.TargetMonth)
}

// WriteFile renders snap into dir and returns the file path
func (w *XLSXWriter) WriteFile(snap *rollup.Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(snap))

	f, err := w.build(snap)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info().Str("path", path).Str("run_id", snap.ReportMeta.RunID).Msg("Snapshot workbook written")
	return path, nil
}

// Write renders snap to out
func (w *XLSXWriter) Write(snap *rollup.Snapshot, out io.Writer) error {
	f, err := w.build(snap)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) build(snap *rollup.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	s := &sheetWriter{f: f, header: header}

	facts := snap.Facts
	cmp := facts.Comparisons

	s.summary(snap)
	s.family(SheetSales, facts.MallSales.This, facts.MallSales.Prev, facts.MallSales.YoY, cmp.MallSales)
	s.family(SheetAds, facts.MetaAds.This, facts.MetaAds.Prev, facts.MetaAds.YoY, cmp.MetaAds)
	s.goals(facts.MetaAdsGoals, cmp.MetaAdsGoals)
	s.family(SheetTraffic, facts.GA4Traffic.This, facts.GA4Traffic.Prev, facts.GA4Traffic.YoY, cmp.GA4Traffic)
	s.products(facts.Products)
	s.viewItems(facts.ViewItem)
	s.history(facts)
	s.forecast(facts.ForecastNextMonth)

	if s.err != nil {
		f.Close()
		return nil, s.err
	}

	// NewFile starts with Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// sheetWriter appends rows to sheets, keeping the first error
type sheetWriter struct {
	f      *excelize.File
	header int
	sheet  string
	row    int
	err    error
}

func (s *sheetWriter) open(name string, columns ...interface{}) {
	if s.err != nil {
		return
	}
	if _, err := s.f.NewSheet(name); err != nil {
		s.err = fmt.Errorf("failed to add sheet %s: %w", name, err)
		return
	}
	s.sheet = name
	s.row = 0
	if len(columns) > 0 {
		s.append(columns...)
		if s.err == nil {
			s.err = s.f.SetRowStyle(name, 1, 1, s.header)
		}
	}
}

func (s *sheetWriter) append(values ...interface{}) {
	if s.err != nil {
		return
	}
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	if err := s.f.SetSheetRow(s.sheet, cell, &values); err != nil {
		s.err = fmt.Errorf("failed to write %s row %d: %w", s.sheet, s.row, err)
	}
}

func (s *sheetWriter) summary(snap *rollup.Snapshot) {
	meta := snap.ReportMeta
	sig := snap.Signals

	s.open(SheetSummary, "field", "value")
	s.append("company", meta.Company)
	s.append("target_month", meta.TargetMonth)
	s.append("as_of_date", meta.AsOfDate)
	s.append("run_id", meta.RunID)
	s.append("generated_at", meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	s.append("period_this", periodLabel(meta.Periods.This))
	s.append("period_prev", periodLabel(meta.Periods.Prev))
	s.append("period_yoy", periodLabel(meta.Periods.YoY))
	s.append("rolling_d30", periodLabel(meta.Rolling.D30))
	s.append("rolling_d90", periodLabel(meta.Rolling.D90))

	s.append()
	s.append("guardrail", "ok", "reason")
	s.append("sales", sig.Guardrails.Sales.OK, sig.Guardrails.Sales.Reason)
	s.append("ads_account", sig.Guardrails.AdsAccount.OK, sig.Guardrails.AdsAccount.Reason)
	for _, goal := range rollup.AllGoals {
		g := sig.Guardrails.Goals[goal]
		s.append("goal_"+string(goal), g.OK, g.Reason)
	}

	s.append()
	s.append("signal", "value")
	s.append("has_attention_without_conversion", sig.HasAttentionWithoutConversion)
	s.append("has_efficient_conversion", sig.HasEfficientConversion)
	s.append("has_high_attention_and_high_conversion", sig.HasHighAttentionAndHighConversion)
	s.append("ads_interpretable", sig.AdsInterpretable)
	s.append("ads_to_sales_pct", value(sig.AdsToSalesPct))
	s.append("core_declining", sig.CoreDeclining)
	s.append("new_product_dependency", sig.NewProductDependency)
	s.append("new_product_share_pct", value(sig.NewProductSharePct))
	s.append("net_sales_mom_pct", value(sig.NetSalesMoMPct))
	s.append("net_sales_mom_base_small", value(sig.NetSalesMoMBaseSmall))
}

// family writes one row per metric with this/prev/yoy values and deltas
func (s *sheetWriter) family(name string, this, prev, yoy metricSource, cmp rollup.FamilyComparison) {
	s.open(name, "metric", "this", "prev", "yoy", "mom_abs", "mom_pct", "yoy_abs", "yoy_pct")
	s.metricRows(nil, this, prev, yoy, cmp)
	s.append()
	s.append("base_small_mom", value(cmp.NoteIfBaseSmallMoM))
	s.append("base_small_yoy", value(cmp.NoteIfBaseSmallYoY))
}

func (s *sheetWriter) metricRows(prefix []interface{}, this, prev, yoy metricSource, cmp rollup.FamilyComparison) {
	prevMetrics := prev.Metrics()
	yoyMetrics := yoy.Metrics()
	for i, m := range this.Metrics() {
		row := append([]interface{}{}, prefix...)
		row = append(row, m.Name, value(m.Value), value(prevMetrics[i].Value), value(yoyMetrics[i].Value))
		row = append(row, deltaCells(cmp.MoM[m.Name])...)
		row = append(row, deltaCells(cmp.YoY[m.Name])...)
		s.append(row...)
	}
}

func (s *sheetWriter) goals(goals rollup.GoalFacts, cmp map[rollup.GoalType]rollup.FamilyComparison) {
	s.open(SheetGoals, "goal", "metric", "this", "prev", "yoy", "mom_abs", "mom_pct", "yoy_abs", "yoy_pct")
	for _, goal := range rollup.AllGoals {
		s.metricRows([]interface{}{string(goal)},
			goals.This.Get(goal), goals.Prev.Get(goal), goals.YoY.Get(goal), cmp[goal])
	}

	s.append()
	s.append("goal", "rank", "ad_id", "ad_name", "spend", "impressions", "clicks", "purchases", "purchase_value")
	top := map[rollup.GoalType][]rollup.TopAd{
		rollup.GoalConversion: goals.TopAds.Conversion,
		rollup.GoalTraffic:    goals.TopAds.Traffic,
		rollup.GoalAwareness:  goals.TopAds.Awareness,
	}
	for _, goal := range []rollup.GoalType{rollup.GoalConversion, rollup.GoalTraffic, rollup.GoalAwareness} {
		for i, ad := range top[goal] {
			s.append(string(goal), i+1, ad.AdID, ad.AdName, ad.Spend, ad.Impressions, ad.Clicks, ad.Purchases, ad.PurchaseValue)
		}
	}
}

func (s *sheetWriter) products(p rollup.ProductRollup) {
	s.open(SheetProducts, "window", "rank", "product_id", "name", "quantity", "sales", "role", "share_pct_90d", "is_declining")
	for i, prod := range p.D90 {
		s.append("d90", i+1, prod.ProductID, prod.Name, prod.Quantity, prod.Sales, string(prod.Role), value(prod.SharePct), value(prod.IsDeclining))
	}
	for i, prod := range p.D30 {
		s.append("d30", i+1, prod.ProductID, prod.Name, prod.Quantity, prod.Sales)
	}
	s.append()
	s.append("as_of", p.AsOf)
	s.append("total_net_sales_90d", value(p.TotalNetSales90d))
}

func (s *sheetWriter) viewItems(v rollup.ViewItemBlock) {
	s.open(SheetViewItem, "normalized_name", "total_view_item", "matched_product_id", "matched_quantity", "matched_sales",
		"qty_per_view", "sales_per_view", "attention_without_conversion", "efficient_conversion", "high_attention_and_high_conversion")
	for _, item := range v.Items {
		s.append(item.NormalizedName, item.TotalViewItem, value(item.MatchedProductID), value(item.MatchedQuantity), value(item.MatchedSales),
			value(item.QtyPerView), value(item.SalesPerView), item.AttentionWithoutConversion, item.EfficientConversion, item.HighAttentionAndHighConversion)
	}
}

// history writes the monthly series of each family side by side, keyed by month
func (s *sheetWriter) history(f rollup.Facts) {
	s.open(SheetHistory, "ym", "net_sales", "orders", "spend", "purchases", "roas", "users", "sessions")

	type row struct {
		sales   metricSource
		ads     metricSource
		traffic metricSource
	}
	rows := map[string]*row{}
	get := func(ym string) *row {
		if rows[ym] == nil {
			rows[ym] = &row{sales: (*rollup.SalesBlock)(nil), ads: (*rollup.AdsBlock)(nil), traffic: (*rollup.TrafficBlock)(nil)}
		}
		return rows[ym]
	}
	for _, p := range f.MallSales.Monthly13m {
		get(p.Ym).sales = p.SalesBlock
	}
	for _, p := range f.MetaAds.Monthly13m {
		get(p.Ym).ads = p.AdsBlock
	}
	for _, p := range f.GA4Traffic.Monthly13m {
		get(p.Ym).traffic = p.TrafficBlock
	}

	months := make([]string, 0, len(rows))
	for ym := range rows {
		months = append(months, ym)
	}
	sort.Strings(months)

	for _, ym := range months {
		r := rows[ym]
		s.append(ym,
			metricCell(r.sales, "net_sales"), metricCell(r.sales, "orders"),
			metricCell(r.ads, "spend"), metricCell(r.ads, "purchases"), metricCell(r.ads, "roas"),
			metricCell(r.traffic, "users"), metricCell(r.traffic, "sessions"))
	}
}

func (s *sheetWriter) forecast(fc rollup.ForecastBlock) {
	s.open(SheetForecast, "family", "metric", "same_count", "same_min", "same_median", "same_max",
		"next_count", "next_min", "next_median", "next_max", "yoy_growth_pct")
	families := []struct {
		name    string
		metrics map[string]rollup.MetricForecast
	}{
		{"mall_sales", fc.MallSales},
		{"meta_ads", fc.MetaAds},
		{"ga4_traffic", fc.GA4Traffic},
	}
	for _, fam := range families {
		names := make([]string, 0, len(fam.metrics))
		for n := range fam.metrics {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			m := fam.metrics[n]
			s.append(fam.name, n,
				m.SameMonth.Count, value(m.SameMonth.Min), value(m.SameMonth.Median), value(m.SameMonth.Max),
				m.NextMonth.Count, value(m.NextMonth.Min), value(m.NextMonth.Median), value(m.NextMonth.Max),
				value(m.YoYGrowthPct))
		}
	}
	s.append()
	s.append("target_month", fc.TargetMonth)
}

func metricCell(src metricSource, name string) interface{} {
	for _, m := range src.Metrics() {
		if m.Name == name {
			return value(m.Value)
		}
	}
	return nil
}

func deltaCells(d *rollup.Delta) []interface{} {
	if d == nil {
		return []interface{}{nil, nil}
	}
	return []interface{}{d.Abs, value(d.Pct)}
}

// value unwraps an optional cell; nil leaves the cell empty
func value[T any](v *T) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func periodLabel(p rollup.Period) string {
	if p.From.IsZero() {
		return ""
	}
	return p.From.Format("2006-01-02") + " ~ " + p.To.Format("2006-01-02")
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ',', ' ', '+':
			out[i] = '_'
		}
	}
	return string(out)
}
