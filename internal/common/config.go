package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/monthlens/internal/rollup"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Logging     LoggingConfig   `toml:"logging"`
	Warehouse   WarehouseConfig `toml:"warehouse"`
	Storage     StorageConfig   `toml:"storage"`
	Rollup      RollupConfig    `toml:"rollup"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Export      ExportConfig    `toml:"export"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	Dir        string   `toml:"dir"`         // Log directory for file output (default: ./logs next to the binary)
	TimeFormat string   `toml:"time_format"` // Default: "15:04:05"
}

// WarehouseConfig selects the fact warehouse connection
type WarehouseConfig struct {
	Driver       string `toml:"driver" validate:"oneof=sqlite3 pgx mysql"`
	DSN          string `toml:"dsn" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	InitSchema   bool   `toml:"init_schema"` // Create fact tables if missing (sqlite3 only)
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Snapshot database directory
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// RollupConfig tunes the snapshot engine
type RollupConfig struct {
	Concurrency         int                 `toml:"concurrency" validate:"gte=1,lte=64"` // Concurrent fact queries per run
	TopProducts         int                 `toml:"top_products" validate:"gte=1"`
	TopAds              int                 `toml:"top_ads" validate:"gte=1"`
	ViewItemTopN        int                 `toml:"viewitem_top_n" validate:"gte=1"`
	HistoryMonths       int                 `toml:"history_months" validate:"gte=1,lte=60"`
	TimezoneOffsetHours int                 `toml:"timezone_offset_hours" validate:"gte=-12,lte=14"`
	Thresholds          rollup.Thresholds   `toml:"thresholds"`
	GoalKeywords        rollup.GoalKeywords `toml:"goal_keywords"`
	GoalKeywordsFile    string              `toml:"goal_keywords_file"` // Optional YAML file replacing goal_keywords
	ProtectedPrefixes   []string            `toml:"protected_prefixes"`
	Placeholders        []string            `toml:"placeholders"`
}

// SchedulerConfig runs the previous month's rollup on a cron schedule
type SchedulerConfig struct {
	Enabled   bool     `toml:"enabled"`
	Schedule  string   `toml:"schedule"`  // 5-field cron, default "0 6 1 * *"
	Companies []string `toml:"companies"` // One entry per report; "a,b" reports several accounts together
	Force     bool     `toml:"force"`     // Rebuild months that already have a snapshot
}

type ExportConfig struct {
	XLSXDir string `toml:"xlsx_dir"` // Write a workbook per saved snapshot when set
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	engine := rollup.DefaultConfig()
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Warehouse: WarehouseConfig{
			Driver:       "sqlite3",
			DSN:          "./data/warehouse.db",
			MaxOpenConns: 4,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/snapshots",
			},
		},
		Rollup: RollupConfig{
			Concurrency:         3,
			TopProducts:         engine.TopProducts,
			TopAds:              engine.TopAds,
			ViewItemTopN:        engine.ViewItemTopN,
			HistoryMonths:       engine.HistoryMonths,
			TimezoneOffsetHours: engine.TimezoneOffsetHours,
			Thresholds:          engine.Thresholds,
			GoalKeywords:        engine.GoalKeywords,
			ProtectedPrefixes:   engine.ProtectedPrefixes,
			Placeholders:        engine.Placeholders,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Schedule: "0 6 1 * *", // 06:00 on the 1st of every month
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> .env/env
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	applyEnvOverrides(config)

	return config, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are skipped and variables already set are never overwritten.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// applyEnvOverrides applies MONTHLENS_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MONTHLENS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Logging
	if level := os.Getenv("MONTHLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if output := os.Getenv("MONTHLENS_LOG_OUTPUT"); output != "" {
		config.Logging.Output = splitList(output, ",")
	}
	if dir := os.Getenv("MONTHLENS_LOG_DIR"); dir != "" {
		config.Logging.Dir = dir
	}

	// Warehouse
	if driver := os.Getenv("MONTHLENS_WAREHOUSE_DRIVER"); driver != "" {
		config.Warehouse.Driver = driver
	}
	if dsn := os.Getenv("MONTHLENS_WAREHOUSE_DSN"); dsn != "" {
		config.Warehouse.DSN = dsn
	}
	if maxOpen := os.Getenv("MONTHLENS_WAREHOUSE_MAX_OPEN_CONNS"); maxOpen != "" {
		if n, err := strconv.Atoi(maxOpen); err == nil {
			config.Warehouse.MaxOpenConns = n
		}
	}

	// Snapshot storage
	if badgerPath := os.Getenv("MONTHLENS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Rollup
	if concurrency := os.Getenv("MONTHLENS_ROLLUP_CONCURRENCY"); concurrency != "" {
		if n, err := strconv.Atoi(concurrency); err == nil {
			config.Rollup.Concurrency = n
		}
	}
	if offset := os.Getenv("MONTHLENS_TIMEZONE_OFFSET_HOURS"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			config.Rollup.TimezoneOffsetHours = n
		}
	}
	if keywords := os.Getenv("MONTHLENS_GOAL_KEYWORDS_FILE"); keywords != "" {
		config.Rollup.GoalKeywordsFile = keywords
	}

	// Scheduler
	if enabled := os.Getenv("MONTHLENS_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if schedule := os.Getenv("MONTHLENS_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
	if companies := os.Getenv("MONTHLENS_SCHEDULER_COMPANIES"); companies != "" {
		// ";" separates reports, "," separates accounts within one report
		config.Scheduler.Companies = splitList(companies, ";")
	}

	// Export
	if dir := os.Getenv("MONTHLENS_EXPORT_XLSX_DIR"); dir != "" {
		config.Export.XLSXDir = dir
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, dsn string, logLevel string) {
	if dsn != "" {
		config.Warehouse.DSN = dsn
	}
	if logLevel != "" {
		config.Logging.Level = strings.ToLower(logLevel)
	}
}

// Validate checks field constraints and the scheduler expression
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Scheduler.Enabled {
		if err := ValidateSchedule(c.Scheduler.Schedule); err != nil {
			return err
		}
		if len(c.Scheduler.Companies) == 0 {
			return fmt.Errorf("scheduler enabled but no companies configured")
		}
	}
	return nil
}

// SchedulerMode reports whether the process runs the scheduler: asked for
// by flag, or enabled in config when no one-shot command was given
func (c *Config) SchedulerMode(scheduleFlag, oneShot bool) bool {
	return scheduleFlag || (c.Scheduler.Enabled && !oneShot)
}

// ValidateSchedule validates a 5-field cron expression
func ValidateSchedule(schedule string) error {
	if len(strings.Fields(schedule)) != 5 {
		return fmt.Errorf("invalid cron format %q: expected 5 fields", schedule)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// EngineConfig builds the snapshot engine configuration, reading the
// external goal keyword file when one is configured
func (c *Config) EngineConfig() (rollup.Config, error) {
	r := c.Rollup
	cfg := rollup.Config{
		TopProducts:         r.TopProducts,
		TopAds:              r.TopAds,
		ViewItemTopN:        r.ViewItemTopN,
		HistoryMonths:       r.HistoryMonths,
		TimezoneOffsetHours: r.TimezoneOffsetHours,
		Thresholds:          r.Thresholds,
		GoalKeywords:        r.GoalKeywords,
		ProtectedPrefixes:   r.ProtectedPrefixes,
		Placeholders:        r.Placeholders,
	}
	if r.GoalKeywordsFile != "" {
		keywords, err := rollup.LoadGoalKeywordsFile(r.GoalKeywordsFile)
		if err != nil {
			return rollup.Config{}, err
		}
		cfg.GoalKeywords = keywords
	}
	return cfg, nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// splitList splits s on sep, trimming entries and dropping empty ones
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
