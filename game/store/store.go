package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wricardo/tictactoe/game/service"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

var _ service.Gateway = (*Store)(nil)

// Store is the gorm-backed durable record of players, matches and statistics
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the database and migrates the schema
func Open(driver, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(dsn))
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// one writer at a time; avoids SQLITE_BUSY between concurrent transactions
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := New(db, log)
	if err := s.Migrate(); err != nil {
		return nil, err
	}

	log.Info("database ready", zap.String("driver", driver))
	return s, nil
}

// New wraps an existing gorm handle
func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, logger: log}
}

// Migrate creates or updates the schema
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&playerModel{}, &matchModel{}, &statsModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return persistErr("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
		return persistErr("ping", err)
	}
	return nil
}

func persistErr(op string, err error) error {
	return &service.PersistenceError{Op: op, Err: err}
}

// sqliteDSN turns on foreign keys, which SQLite leaves off by default
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}
