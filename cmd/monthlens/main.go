package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/app"
	"github.com/ternarybob/monthlens/internal/common"
	"github.com/ternarybob/monthlens/internal/interfaces"
	"github.com/ternarybob/monthlens/internal/models"
	"github.com/ternarybob/monthlens/internal/services/scheduler"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	company     = flag.String("company", "", "Account name, or comma-separated names reported together")
	year        = flag.Int("year", 0, "Target year (default: previous month's year)")
	month       = flag.Int("month", 0, "Target month 1-12 (default: previous month)")
	force       = flag.Bool("force", false, "Rebuild and replace a stored snapshot")
	save        = flag.Bool("save", false, "Store the snapshot")
	out         = flag.String("out", "", "Write the snapshot JSON to this file instead of stdout")
	xlsxDir     = flag.String("xlsx", "", "Also write an xlsx workbook into this directory")
	list        = flag.Bool("list", false, "List stored snapshot months for -company")
	schedule    = flag.Bool("schedule", false, "Run the monthly scheduler until interrupted (also when scheduler.enabled is set and no -company/-list is given)")
	dsn         = flag.String("dsn", "", "Warehouse DSN (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()
	common.LoadVersionFromFile()

	if *showVersion {
		fmt.Printf("MonthLens version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("monthlens.toml"); err == nil {
			configFiles = append(configFiles, "monthlens.toml")
		} else if _, err := os.Stat("deployments/local/monthlens.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/monthlens.toml")
		}
	}

	// defaults -> files -> env -> flags
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		common.GetLogger().Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *dsn, *logLevel)
	if err := config.Validate(); err != nil {
		common.GetLogger().Error().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.InstallCrashHandler(config.Logging.Dir)
	defer common.RecoverWithCrashFile()

	scheduled := config.SchedulerMode(*schedule, *company != "" || *list)
	if scheduled {
		common.PrintBanner(config, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case scheduled:
		err = runScheduler(ctx, application, logger)
	case *list:
		err = listSnapshots(ctx, application)
	default:
		err = runOnce(ctx, application, logger)
	}

	if errors.Is(err, interfaces.ErrSnapshotExists) {
		logger.Warn().Str("company", *company).Msg("Snapshot already stored - use -force to rebuild")
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("MonthLens failed")
		application.Close()
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, application *app.App, logger arbor.ILogger) error {
	filter := models.ParseCompanyFilter(*company)
	if filter.IsEmpty() {
		return fmt.Errorf("-company is required")
	}

	y, m := *year, *month
	if y == 0 || m == 0 {
		prevYear, prevMonth := scheduler.PreviousMonth(time.Now(), application.Engine.Location())
		if y == 0 {
			y = prevYear
		}
		if m == 0 {
			m = prevMonth
		}
	}

	xlsx := *xlsxDir
	if xlsx == "" {
		xlsx = application.Config.Export.XLSXDir
	}

	result, err := application.Run(ctx, filter, y, m, app.RunOptions{
		Save:    *save,
		Force:   *force,
		XLSXDir: xlsx,
	})
	if err != nil {
		return err
	}

	if *out != "" {
		if err := os.WriteFile(*out, result.Payload, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *out, err)
		}
		logger.Info().Str("path", *out).Msg("Snapshot written")
	} else {
		fmt.Println(string(result.Payload))
	}

	logger.Info().
		Str("company", filter.String()).
		Int("year", y).
		Int("month", m).
		Bool("saved", result.Saved).
		Str("xlsx", result.XLSXPath).
		Msg("Snapshot complete")
	return nil
}

func listSnapshots(ctx context.Context, application *app.App) error {
	filter := models.ParseCompanyFilter(*company)
	if filter.IsEmpty() {
		return fmt.Errorf("-company is required")
	}
	records, err := application.StoredMonths(ctx, filter)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s\t%s\t%s\n", r.Month, r.RunID, r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runScheduler(ctx context.Context, application *app.App, logger arbor.ILogger) error {
	if len(application.Config.Scheduler.Companies) == 0 {
		return fmt.Errorf("scheduler has no companies configured")
	}
	if err := application.StartScheduler(); err != nil {
		return err
	}

	status := application.SchedulerService.Status()
	nextRun := "unknown"
	if status.NextRun != nil {
		nextRun = status.NextRun.Format(time.RFC3339)
	}
	logger.Info().
		Str("schedule", status.Schedule).
		Strs("companies", status.Companies).
		Str("next_run", nextRun).
		Msg("Scheduler ready - Press Ctrl+C to stop")

	<-ctx.Done()
	logger.Info().Msg("Interrupt signal received")
	return nil
}
