package db

import (
	"context"
	"fmt"
	"time"

	"gccp-api/internal/config"
	"gccp-api/internal/domain/contract"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Pool holds the database/sql connection pool settings.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

var (
	DefaultPool = Pool{MaxOpen: 30, MaxIdle: 10, MaxLifetime: 30 * time.Minute, MaxIdleTime: 10 * time.Minute}
	// SQLite allows one writer; a single connection also keeps :memory: databases alive.
	SingleConnPool = Pool{MaxOpen: 1, MaxIdle: 1}
)

// OpenGorm connects to the store selected by cfg.DBDriver.
func OpenGorm(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var (
		dial gorm.Dialector
		pool = DefaultPool
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dial = sqlite.Open(cfg.SQLiteDSN())
		pool = SingleConnPool
	case config.DriverMySQL:
		dial = mysql.Open(cfg.MySQLDSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := OpenGormWithDialector(dial, pool, log)
	if err != nil {
		return nil, err
	}
	log.Info("gorm: connected", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// OpenGormWithDialector opens dial with the given pool and pings it. A nil
// log discards gorm's output.
func OpenGormWithDialector(dial gorm.Dialector, pool Pool, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:               newGormLogger(log),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the contracts and installments tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&contract.Contract{}, &contract.Installment{})
}
