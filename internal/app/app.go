package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/export"
	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/models"
	"github.com/ternarybob/monthlens/internal/rollup"
	"github.com/ternarybob/monthlens/internal/services/scheduler"
	"github.com/ternarybob/monthlens/internal/storage"
	"github.com/ternarybob/monthlens/internal/storage/warehouse"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	Warehouse      *warehouse.Warehouse
	Facts          interfaces.FactRepository

	Pool     *common.TaskPool
	Engine   *rollup.Engine
	Exporter *export.XLSXWriter

	SchedulerService interfaces.SchedulerService
}

// RunOptions controls persistence for one report run
type RunOptions struct {
	Save    bool   // Store the snapshot in badger
	Force   bool   // Replace an existing stored snapshot
	XLSXDir string // Also write a workbook here when set
}

// RunResult is the outcome of one report run
type RunResult struct {
	Snapshot *rollup.Snapshot
	Payload  []byte
	Saved    bool
	XLSXPath string
}

// New initializes storage, the warehouse and the snapshot engine
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(ctx); err != nil {
		app.Close()
		return nil, err
	}

	if err := app.initEngine(); err != nil {
		app.Close()
		return nil, err
	}

	app.Exporter = export.NewXLSXWriter(logger)

	logger.Info().
		Str("warehouse", cfg.Warehouse.Driver).
		Int("concurrency", app.Pool.Size()).
		Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage(ctx context.Context) error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}
	a.StorageManager = storageManager

	facts, wh, err := storage.NewFactSource(ctx, a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize warehouse: %w", err)
	}
	a.Facts = facts
	a.Warehouse = wh
	return nil
}

func (a *App) initEngine() error {
	engineConfig, err := a.Config.EngineConfig()
	if err != nil {
		return fmt.Errorf("failed to build engine config: %w", err)
	}

	a.Pool = common.NewTaskPool(a.Config.Rollup.Concurrency, a.Logger)
	a.Engine = rollup.NewEngine(a.Facts, a.Pool, a.Logger, engineConfig)
	return nil
}

// Run builds the report for company and month. With Save set, a month that
// already has a stored snapshot is refused with ErrSnapshotExists unless
// Force is also set.
func (a *App) Run(ctx context.Context, company models.CompanyFilter, year, month int, opts RunOptions) (*RunResult, error) {
	if company.IsEmpty() {
		return nil, fmt.Errorf("company is required")
	}
	ym, err := rollup.NewYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	snapshots := a.StorageManager.SnapshotStorage()

	if opts.Save && !opts.Force {
		exists, err := snapshots.Exists(ctx, company.Key(), ym.String())
		if err != nil {
			return nil, err
		}
		if exists {
			a.Logger.Info().
				Str("company", company.Key()).
				Str("month", ym.String()).
				Msg("Snapshot already stored, skipping (use force to rebuild)")
			return nil, interfaces.ErrSnapshotExists
		}
	}

	snap, err := a.Engine.Build(ctx, company, year, month)
	if err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	result := &RunResult{Snapshot: snap, Payload: payload}

	if opts.Save {
		record := &models.SnapshotRecord{
			CompanyKey: company.Key(),
			Month:      ym.String(),
			RunID:      snap.ReportMeta.RunID,
			Payload:    payload,
			CreatedAt:  time.Now(),
		}
		if err := snapshots.Save(ctx, record); err != nil {
			return nil, err
		}
		result.Saved = true
	}

	if opts.XLSXDir != "" {
		path, err := a.Exporter.WriteFile(snap, opts.XLSXDir)
		if err != nil {
			return nil, err
		}
		result.XLSXPath = path
	}

	return result, nil
}

// Stored returns the saved snapshot payload of a company and month
func (a *App) Stored(ctx context.Context, company models.CompanyFilter, year, month int) (*models.SnapshotRecord, error) {
	ym, err := rollup.NewYearMonth(year, month)
	if err != nil {
		return nil, err
	}
	return a.StorageManager.SnapshotStorage().Get(ctx, company.Key(), ym.String())
}

// StoredMonths lists the months saved for a company
func (a *App) StoredMonths(ctx context.Context, company models.CompanyFilter) ([]*models.SnapshotRecord, error) {
	return a.StorageManager.SnapshotStorage().ListByCompany(ctx, company.Key())
}

// StartScheduler starts rebuilding the previous month's snapshot for the
// configured companies on the configured schedule
func (a *App) StartScheduler() error {
	cfg := a.Config.Scheduler
	run := func(ctx context.Context, company string, year, month int) error {
		_, err := a.Run(ctx, models.ParseCompanyFilter(company), year, month, RunOptions{
			Save:    true,
			Force:   cfg.Force,
			XLSXDir: a.Config.Export.XLSXDir,
		})
		return err
	}

	svc, err := scheduler.NewService(a.Logger, cfg.Schedule, cfg.Companies, a.Engine.Location(), run)
	if err != nil {
		return err
	}
	if err := svc.Start(); err != nil {
		return err
	}

	a.SchedulerService = svc
	return nil
}

// Close stops the scheduler and closes storage
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.Warehouse != nil {
		if err := a.Warehouse.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close warehouse")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
