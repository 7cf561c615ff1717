package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig_Valid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, "sqlite3", config.Warehouse.Driver)
	assert.Equal(t, 3, config.Rollup.Concurrency)
	assert.Equal(t, 20.0, config.Rollup.Thresholds.CoreSharePct)
	assert.Equal(t, "0 6 1 * *", config.Scheduler.Schedule)
}

func TestLoadFromFiles_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.toml", `
[warehouse]
driver = "mysql"
dsn = "report:secret@tcp(db:3306)/warehouse?parseTime=false"

[rollup]
concurrency = 4

[rollup.thresholds]
core_share_pct = 25.0
`)
	override := writeFile(t, dir, "override.toml", `
[rollup]
concurrency = 6

[rollup.goal_keywords]
conversion = ["buy"]
`)

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	assert.Equal(t, "mysql", config.Warehouse.Driver)
	assert.Equal(t, 6, config.Rollup.Concurrency)
	assert.Equal(t, 25.0, config.Rollup.Thresholds.CoreSharePct)
	assert.Equal(t, 10.0, config.Rollup.Thresholds.HitSharePct, "unset thresholds keep defaults")
	assert.Equal(t, []string{"buy"}, config.Rollup.GoalKeywords.Conversion)
	require.NoError(t, config.Validate())
}

func TestLoadFromFiles_Errors(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.toml", "[rollup\nconcurrency = ")
	_, err = LoadFromFiles(bad)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MONTHLENS_ENV", "production")
	t.Setenv("MONTHLENS_WAREHOUSE_DRIVER", "pgx")
	t.Setenv("MONTHLENS_WAREHOUSE_DSN", "postgres://report@db/warehouse")
	t.Setenv("MONTHLENS_ROLLUP_CONCURRENCY", "5")
	t.Setenv("MONTHLENS_SCHEDULER_ENABLED", "true")
	t.Setenv("MONTHLENS_SCHEDULER_COMPANIES", "acme; store-a,store-b ;")
	t.Setenv("MONTHLENS_LOG_LEVEL", "DEBUG")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.True(t, config.IsProduction())
	assert.Equal(t, "pgx", config.Warehouse.Driver)
	assert.Equal(t, "postgres://report@db/warehouse", config.Warehouse.DSN)
	assert.Equal(t, 5, config.Rollup.Concurrency)
	assert.True(t, config.Scheduler.Enabled)
	assert.Equal(t, []string{"acme", "store-a,store-b"}, config.Scheduler.Companies)
	assert.Equal(t, "debug", config.Logging.Level)
	require.NoError(t, config.Validate())
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, "", "")
	assert.Equal(t, "./data/warehouse.db", config.Warehouse.DSN)

	ApplyFlagOverrides(config, "file:other.db", "WARN")
	assert.Equal(t, "file:other.db", config.Warehouse.DSN)
	assert.Equal(t, "warn", config.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Warehouse.Driver = "oracle" }},
		{"empty dsn", func(c *Config) { c.Warehouse.DSN = "" }},
		{"zero concurrency", func(c *Config) { c.Rollup.Concurrency = 0 }},
		{"negative threshold", func(c *Config) { c.Rollup.Thresholds.SalesVolumeFloor = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad schedule", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Companies = []string{"acme"}
			c.Scheduler.Schedule = "0 0 6 1 * *"
		}},
		{"scheduler without companies", func(c *Config) { c.Scheduler.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 6 1 * *"))
	assert.NoError(t, ValidateSchedule("30 2 2 * *"))
	assert.Error(t, ValidateSchedule("0 6 32 * *"))
	assert.Error(t, ValidateSchedule("@monthly"))
}

func TestConfig_EngineConfig(t *testing.T) {
	config := NewDefaultConfig()
	config.Rollup.TopAds = 3

	cfg, err := config.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopAds)
	assert.Equal(t, config.Rollup.GoalKeywords, cfg.GoalKeywords)

	config.Rollup.GoalKeywordsFile = writeFile(t, t.TempDir(), "kw.yaml", "awareness: [\"video\"]\n")
	cfg, err = config.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"video"}, cfg.GoalKeywords.Awareness)
	assert.Empty(t, cfg.GoalKeywords.Conversion)

	config.Rollup.GoalKeywordsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = config.EngineConfig()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "MONTHLENS_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, t.TempDir(), ".env", key+"=from-file\n")
	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadFromFiles_LocalDeployment(t *testing.T) {
	config, err := LoadFromFiles("../../deployments/local/monthlens.toml")
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, []string{"store-a", "store-b,store-b-outlet"}, config.Scheduler.Companies)
	assert.Equal(t, 0.010, config.Rollup.Thresholds.QtyPerViewMin)

	config.Rollup.GoalKeywordsFile = "../../deployments/local/goal_keywords.yaml"
	engine, err := config.EngineConfig()
	require.NoError(t, err)
	assert.Contains(t, engine.GoalKeywords.Awareness, "reach")
}

func TestConfig_SchedulerMode(t *testing.T) {
	tests := []struct {
		name         string
		enabled      bool
		scheduleFlag bool
		oneShot      bool
		want         bool
	}{
		{"flag", false, true, false, true},
		{"enabled in config", true, false, false, true},
		{"one-shot run wins over config", true, false, true, false},
		{"flag wins over one-shot", false, true, true, true},
		{"neither", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			config.Scheduler.Enabled = tt.enabled
			assert.Equal(t, tt.want, config.SchedulerMode(tt.scheduleFlag, tt.oneShot))
		})
	}
}
