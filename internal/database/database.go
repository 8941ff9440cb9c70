package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/entities"
)

var defaultFormats = []string{
	"Hardcover",
	"Paperback",
	"Ebook",
	"Audiobook",
}

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultBusyTimeout     = 5 * time.Second
)

// Database owns the connection pool. Every unit of work goes through WithTx or
// ReadTx so that a restore can swap the whole file without interleaving.
type Database struct {
	DB   *gorm.DB
	Path string

	// restoreMu is held shared by transactions and exclusively by a restore.
	restoreMu sync.RWMutex
}

func NewDatabase(cfg config.Database) (*Database, error) {
	if cfg.Path == "" {
		cfg.Path = config.DefaultDatabasePath
	}
	applyPoolDefaults(&cfg)

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gormLog := log.Logger.With().Str("component", "gorm").Logger()

	db, err := gorm.Open(sqlite.Open(dsn(cfg)), &gorm.Config{
		Logger: logger.New(&gormLog, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	database := &Database{DB: db, Path: cfg.Path}

	if err := database.Migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := database.seedFormats(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to seed formats: %w", err)
	}

	log.Info().Str("path", cfg.Path).Int("max_open_conns", cfg.MaxOpenConns).Msg("Database initialized")

	return database, nil
}

func applyPoolDefaults(cfg *config.Database) {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		cfg.MaxIdleConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxIdleTime <= 0 {
		cfg.ConnMaxIdleTime = defaultConnMaxIdleTime
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = defaultBusyTimeout
	}
}

func dsn(cfg config.Database) string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout.Milliseconds())
}

// Migrate creates or updates every catalog table.
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&entities.Format{},
		&entities.Genre{},
		&entities.Publisher{},
		&entities.Language{},
		&entities.Series{},
		&entities.Author{},
		&entities.Book{},
		&entities.BookAuthor{},
		&entities.SeriesIndex{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedFormats() error {
	for _, name := range defaultFormats {
		var existing entities.Format
		err := d.DB.Unscoped().Where("name = ?", name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := d.DB.Create(&entities.Format{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to create format %s: %w", name, err)
			}
			log.Debug().Str("format", name).Msg("Created format")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WithTx runs fn inside one read-write transaction. Any error returned by fn,
// or a panic, rolls the whole transaction back.
func (d *Database) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	d.restoreMu.RLock()
	defer d.restoreMu.RUnlock()
	return d.DB.WithContext(ctx).Transaction(fn)
}

// ReadTx runs fn inside a read-only transaction so counts and pages observe
// the same snapshot.
func (d *Database) ReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	d.restoreMu.RLock()
	defer d.restoreMu.RUnlock()
	return d.DB.WithContext(ctx).Transaction(fn, &sql.TxOptions{ReadOnly: true})
}

// Exclusive runs fn while no transaction is in flight and none can start.
// Used by restore to replace the live database contents.
func (d *Database) Exclusive(ctx context.Context, fn func(sqlDB *sql.DB) error) error {
	d.restoreMu.Lock()
	defer d.restoreMu.Unlock()
	sqlDB, err := d.DB.WithContext(ctx).DB()
	if err != nil {
		return err
	}
	return fn(sqlDB)
}

// Shared runs fn on the raw pool while no restore can start. Used to take
// snapshots.
func (d *Database) Shared(ctx context.Context, fn func(sqlDB *sql.DB) error) error {
	d.restoreMu.RLock()
	defer d.restoreMu.RUnlock()
	sqlDB, err := d.DB.WithContext(ctx).DB()
	if err != nil {
		return err
	}
	return fn(sqlDB)
}

// Ping checks connectivity for health reporting.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats exposes pool statistics for diagnostics.
func (d *Database) Stats() sql.DBStats {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}
