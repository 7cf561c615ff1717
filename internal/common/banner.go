package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective configuration
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("MonthLens", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Bool("production", config.IsProduction()).
		Str("warehouse_driver", config.Warehouse.Driver).
		Str("snapshot_path", config.Storage.Badger.Path).
		Int("concurrency", config.Rollup.Concurrency).
		Bool("scheduler_enabled", config.Scheduler.Enabled).
		Msg("MonthLens starting")
}
