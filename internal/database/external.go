package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgLogger "github.com/mkoumba/translog-api/pkg/logger"
)

// ConnectExternal opens a read-only style connection to one of the external
// prime databases (OPS or CNV). An empty URL means the system is not
// configured; the caller gets a nil handle and must treat the system as
// absent, not as an error.
func ConnectExternal(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, nil
	}

	gormLogger := pkgLogger.NewGormLogger(
		logger.Warn,
		500*time.Millisecond,
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to external database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get external database instance: %w", err)
	}

	// These databases belong to other teams and are queried rarely;
	// keep the footprint small and recycle connections fast so a flapping
	// network does not pin dead sockets.
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	// No startup ping: an external system being down must not prevent the
	// API from booting. Reads degrade to the snapshot cache instead.
	return db, nil
}
