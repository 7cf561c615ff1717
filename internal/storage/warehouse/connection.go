package warehouse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/monthlens/internal/common"
)

// Warehouse manages the read connection to the fact warehouse
type Warehouse struct {
	db     *sqlx.DB
	logger arbor.ILogger
	config *common.WarehouseConfig
}

// Open connects to the warehouse named by config and verifies the connection
func Open(ctx context.Context, logger arbor.ILogger, config *common.WarehouseConfig) (*Warehouse, error) {
	if config.Driver == "sqlite3" && !isMemoryDSN(config.DSN) {
		dir := filepath.Dir(sqlitePath(config.DSN))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create warehouse directory: %w", err)
		}
	}

	db, err := sqlx.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach warehouse (%s): %w", config.Driver, err)
	}

	w := &Warehouse{
		db:     db,
		logger: logger,
		config: config,
	}

	if config.Driver == "sqlite3" {
		if err := w.configure(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure warehouse: %w", err)
		}
		if config.InitSchema {
			if err := w.InitSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	logger.Info().Str("driver", config.Driver).Int("max_open_conns", config.MaxOpenConns).Msg("Warehouse connection established")
	return w, nil
}

// configure sets sqlite pragmas
func (w *Warehouse) configure() error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	if !isMemoryDSN(w.config.DSN) {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := w.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// InitSchema creates the fact tables when missing
func (w *Warehouse) InitSchema(ctx context.Context) error {
	if _, err := w.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize warehouse schema: %w", err)
	}
	w.logger.Debug().Msg("Warehouse schema initialized")
	return nil
}

// DB returns the underlying connection
func (w *Warehouse) DB() *sqlx.DB {
	return w.db
}

// Close closes the connection
func (w *Warehouse) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// sqlitePath strips the file: scheme and query options from a sqlite DSN
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
