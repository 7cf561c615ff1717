package rollup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/models"
)

// Runner executes tasks and returns once every task has finished
type Runner interface {
	Run(ctx context.Context, tasks ...func(ctx context.Context))
}

type serialRunner struct{}

func (serialRunner) Run(ctx context.Context, tasks ...func(ctx context.Context)) {
	for _, task := range tasks {
		task(ctx)
	}
}

const periodHistory PeriodLabel = "history"

// Engine builds monthly snapshots from warehouse facts
type Engine struct {
	repo       interfaces.FactRepository
	runner     Runner
	logger     arbor.ILogger
	config     Config
	loc        *time.Location
	classifier *GoalClassifier
	matcher    *EngagementMatcher
	signals    *SignalComputer
	now        func() time.Time
}

// NewEngine creates an Engine. A nil runner runs fetches one after another.
func NewEngine(repo interfaces.FactRepository, runner Runner, logger arbor.ILogger, config Config) *Engine {
	config = config.withDefaults()
	if runner == nil {
		runner = serialRunner{}
	}
	normalizer := NewNameNormalizer(config.ProtectedPrefixes, config.Placeholders)
	return &Engine{
		repo:       repo,
		runner:     runner,
		logger:     logger,
		config:     config,
		loc:        time.FixedZone("report", config.TimezoneOffsetHours*3600),
		classifier: NewGoalClassifier(config.GoalKeywords),
		matcher:    NewEngagementMatcher(normalizer, config.Thresholds, config.ViewItemTopN),
		signals:    NewSignalComputer(config.Thresholds),
		now:        time.Now,
	}
}

// Location returns the fixed reporting time zone
func (e *Engine) Location() *time.Location {
	return e.loc
}

type familyRows[T any] struct {
	this, prev, yoy, history []T
}

// fetchTask wraps one fact query. A failed query is logged and leaves dst
// empty so the block degrades to nil.
func fetchTask[T any](e *Engine, company models.CompanyFilter, family string, p Period,
	query func(context.Context, models.CompanyFilter, time.Time, time.Time) ([]T, error), dst *[]T) func(context.Context) {
	return func(ctx context.Context) {
		rows, err := query(ctx, company, p.From, p.To)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("company", company.Key()).
				Str("family", family).
				Str("period", string(p.Label)).
				Msg("Fact query failed - block left empty")
			return
		}
		*dst = rows
	}
}

func familyTasks[T any](e *Engine, company models.CompanyFilter, family string, periods []Period,
	query func(context.Context, models.CompanyFilter, time.Time, time.Time) ([]T, error), rows *familyRows[T]) []func(context.Context) {
	dsts := []*[]T{&rows.this, &rows.prev, &rows.yoy, &rows.history}
	tasks := make([]func(context.Context), len(periods))
	for i, p := range periods {
		tasks[i] = fetchTask(e, company, family, p, query, dsts[i])
	}
	return tasks
}

// Build produces the snapshot of company for the target month. Only an
// invalid month is an error; failed queries degrade to missing blocks.
func (e *Engine) Build(ctx context.Context, company models.CompanyFilter, year, month int) (*Snapshot, error) {
	periods, err := ResolvePeriods(year, month, e.loc)
	if err != nil {
		return nil, err
	}
	cfg := e.config
	t := cfg.Thresholds
	start := e.now()

	e.logger.Info().
		Str("company", company.String()).
		Str("month", periods.Target.String()).
		Msg("Building monthly snapshot")

	d30 := RollingWindow(periods.AsOf, 30, PeriodD30)
	d90 := RollingWindow(periods.AsOf, 90, PeriodD90)

	// the 90-day product total is summed from the sales history, so the
	// fetch always reaches back to the start of d90
	history := HistoryRange(periods.Target, cfg.HistoryMonths, e.loc)
	history.Label = periodHistory
	if d90.From.Before(history.From) {
		history.From = d90.From
	}
	windows := []Period{periods.This, periods.Prev, periods.YoY, history}

	var (
		sales   familyRows[models.SalesDay]
		ads     familyRows[models.AdsDay]
		adLevel familyRows[models.AdDay]
		traffic familyRows[models.TrafficDay]
	)
	var tasks []func(context.Context)
	tasks = append(tasks, familyTasks(e, company, "mall_sales", windows, e.repo.SalesDaily, &sales)...)
	tasks = append(tasks, familyTasks(e, company, "meta_ads", windows, e.repo.AdsDaily, &ads)...)
	tasks = append(tasks, familyTasks(e, company, "meta_ads_goals", windows, e.repo.AdsByCampaign, &adLevel)...)
	tasks = append(tasks, familyTasks(e, company, "ga4_traffic", windows, e.repo.TrafficDaily, &traffic)...)
	e.runner.Run(ctx, tasks...)

	var f Facts
	f.MallSales = SalesFacts{
		This:       SumSales(sales.this),
		Prev:       SumSales(sales.prev),
		YoY:        SumSales(sales.yoy),
		Monthly13m: SalesHistory(sales.history, periods.Target, cfg.HistoryMonths),
	}
	f.MetaAds = AdsFacts{
		This:       SumAds(ads.this),
		Prev:       SumAds(ads.prev),
		YoY:        SumAds(ads.yoy),
		Monthly13m: AdsHistory(ads.history, periods.Target, cfg.HistoryMonths),
	}
	f.MetaAdsGoals = GoalFacts{
		This:       e.classifier.SumGoals(adLevel.this),
		Prev:       e.classifier.SumGoals(adLevel.prev),
		YoY:        e.classifier.SumGoals(adLevel.yoy),
		TopAds:     e.classifier.SelectTopAds(adLevel.this, cfg.TopAds, t.TrafficTopAdSpendFloor),
		Monthly13m: e.classifier.GoalHistory(adLevel.history, periods.Target, cfg.HistoryMonths),
	}
	f.GA4Traffic = TrafficFacts{
		This:       SumTraffic(traffic.this),
		Prev:       SumTraffic(traffic.prev),
		YoY:        SumTraffic(traffic.yoy),
		Monthly13m: TrafficHistory(traffic.history, periods.Target, cfg.HistoryMonths),
	}

	f.Products = e.classifyProducts(ctx, company, periods.AsOf, d30, d90, sales.history)
	f.ViewItem = e.matchViewItems(ctx, company, d30, f.Products.D30)

	f.Comparisons = CompareFacts(f, t)
	f.ForecastNextMonth = ForecastNextMonth(f, periods.NextMonth)

	snap := &Snapshot{
		ReportMeta: ReportMeta{
			Company:     company.String(),
			Companies:   company.Names(),
			TargetMonth: periods.Target.String(),
			RunID:       uuid.New().String(),
			GeneratedAt: start.UTC(),
			AsOfDate:    periods.AsOf.Format(dateLayout),
			Periods:     PeriodSet{This: periods.This, Prev: periods.Prev, YoY: periods.YoY},
			Rolling:     RollingSet{D30: d30, D90: d90},
			YoYAvailable: YoYAvailability{
				MallSales:    f.MallSales.YoY != nil,
				MetaAds:      f.MetaAds.YoY != nil,
				MetaAdsGoals: f.MetaAdsGoals.YoY != nil,
				GA4Traffic:   f.GA4Traffic.YoY != nil,
			},
		},
		Facts:   f,
		Signals: e.signals.ComputeSignals(f, f.Comparisons),
	}

	e.logger.Info().
		Str("company", company.String()).
		Str("month", periods.Target.String()).
		Str("run_id", snap.ReportMeta.RunID).
		Str("elapsed", e.now().Sub(start).String()).
		Msg("Monthly snapshot built")
	return snap, nil
}

// classifyProducts loads both rolling top-seller lists. The 90-day total is
// summed from the daily sales history already fetched for the report.
func (e *Engine) classifyProducts(ctx context.Context, company models.CompanyFilter, asOf time.Time, d30, d90 Period, salesHistory []models.SalesDay) ProductRollup {
	out := ProductRollup{AsOf: asOf.Format(dateLayout)}

	d30Rows, err := e.repo.TopProducts(ctx, company, d30.From, d30.To, e.config.TopProducts)
	if err != nil {
		e.logger.Warn().Err(err).Str("company", company.Key()).Msg("Failed to load 30-day top products")
	}
	d90Rows, err := e.repo.TopProducts(ctx, company, d90.From, d90.To, e.config.TopProducts)
	if err != nil {
		e.logger.Warn().Err(err).Str("company", company.Key()).Msg("Failed to load 90-day top products")
	}

	var inWindow []models.SalesDay
	for _, r := range salesHistory {
		if d90.Contains(r.Date) {
			inWindow = append(inWindow, r)
		}
	}
	if total := SumSales(inWindow); total != nil {
		out.TotalNetSales90d = ptr(round(total.NetSales, 2))
	}

	out.D30, out.D90 = ClassifyProducts(d30Rows, d90Rows, out.TotalNetSales90d, e.config.Thresholds)
	return out
}

func (e *Engine) matchViewItems(ctx context.Context, company models.CompanyFilter, window Period, products []Product) ViewItemBlock {
	rows, err := e.repo.ViewItems(ctx, company, window.From, window.To)
	if err != nil {
		e.logger.Warn().Err(err).Str("company", company.Key()).Msg("Failed to load viewed items")
		return ViewItemBlock{Window: window, Items: []ViewItemRecord{}}
	}
	block := e.matcher.Match(rows, products)
	block.Window = window
	return block
}
