package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/datamodel"
	"github.com/frahmantamala/chathub/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// database holds the gorm handle used by repositories and an sqlx view of the
// same pool used by health checks.
type database struct {
	Gorm *gorm.DB
	SQL  *sqlx.DB
}

func (d *database) Close() error {
	return d.SQL.Close()
}

// initDB opens the configured database. Postgres goes through the pgx stdlib
// driver so gorm and sqlx share a single pool.
func initDB(cfg internal.DatabaseConfig, verbose bool) (*database, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if verbose {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var (
		gdb    *gorm.DB
		sqlxDB *sqlx.DB
		err    error
	)
	switch cfg.Driver {
	case "postgres":
		sqlxDB, err = sqlx.Connect("pgx", cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open db connection: %w", err)
		}
		gdb, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), gormCfg)
		if err != nil {
			_ = sqlxDB.Close()
			return nil, fmt.Errorf("failed to open gorm: %w", err)
		}
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(cfg.GetDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open gorm: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlxDB = sqlx.NewDb(sqlDB, "sqlite3")
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlxDB.Ping(); err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &database{Gorm: gdb, SQL: sqlxDB}, nil
}

func autoMigrate(db *gorm.DB) error {
	start := time.Now()
	if err := db.AutoMigrate(datamodel.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.LoggerWrapper().Info("schema migrated", "duration", time.Since(start))
	return nil
}
