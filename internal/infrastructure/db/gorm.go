package db

import (
	"fmt"
	"time"

	"mortgage-underwriting/internal/domain/audit"
	"mortgage-underwriting/internal/domain/document"
	"mortgage-underwriting/internal/domain/loan"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type settings struct {
	gorm        gorm.Config
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

type Option func(*settings)

// WithLogger routes gorm's slow-query and error output through logrus.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *settings) {
		s.gorm.Logger = logger.New(log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}
}

// WithPool overrides the connection pool size. Every loan mutation holds a row lock for
// the length of its transaction, so maxOpen caps concurrent writes.
func WithPool(maxOpen, maxIdle int) Option {
	return func(s *settings) { s.maxOpen, s.maxIdle = maxOpen, maxIdle }
}

func OpenGorm(dsn string, opts ...Option) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn), opts...)
}

// OpenGormWithDialector opens the pool, sizes it and pings once.
func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	s := settings{
		gorm: gorm.Config{
			Logger:               logger.Default.LogMode(logger.Warn),
			DisableAutomaticPing: true,
		},
		maxOpen:     30,
		maxIdle:     10,
		maxLifetime: 30 * time.Minute,
		maxIdleTime: 10 * time.Minute,
	}
	for _, o := range opts {
		o(&s)
	}
	gdb, err := gorm.Open(dial, &s.gorm)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(s.maxOpen)
	sqlDB.SetMaxIdleConns(s.maxIdle)
	sqlDB.SetConnMaxLifetime(s.maxLifetime)
	sqlDB.SetConnMaxIdleTime(s.maxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the loans, documents and loan_transitions tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&loan.Loan{}, &document.Document{}, &audit.Record{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
