package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
)

// ErrExternalNotConfigured is returned when the external database for the
// requested system has no configured connection.
var ErrExternalNotConfigured = errors.New("base externe non configurée")

// PrimeRepository reads primes from the external OPS and CNV databases.
// Both connections are strictly read-only; all queries run against tables
// owned by the operations systems. Callers bound query time through ctx.
type PrimeRepository interface {
	// ListPayees returns the primes marked paid by the operations system.
	ListPayees(ctx context.Context, system string) ([]models.Prime, error)
	FindByID(ctx context.Context, system string, id uint) (*models.Prime, error)
	Ping(ctx context.Context, system string) error
}

type primeRepository struct {
	opsDB *gorm.DB
	cnvDB *gorm.DB
}

// NewPrimeRepository creates a new prime repository over the external
// connections; either may be nil when the system is unconfigured.
func NewPrimeRepository(opsDB, cnvDB *gorm.DB) PrimeRepository {
	return &primeRepository{opsDB: opsDB, cnvDB: cnvDB}
}

func (r *primeRepository) dbFor(system string) (*gorm.DB, error) {
	var db *gorm.DB
	switch system {
	case models.SystemOPS:
		db = r.opsDB
	case models.SystemCNV:
		db = r.cnvDB
	default:
		return nil, fmt.Errorf("système inconnu: %s", system)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: %s", ErrExternalNotConfigured, system)
	}
	return db, nil
}

func (r *primeRepository) ListPayees(ctx context.Context, system string) ([]models.Prime, error) {
	db, err := r.dbFor(system)
	if err != nil {
		return nil, err
	}
	var primes []models.Prime
	err = db.WithContext(ctx).
		Where("statut IN ?", []string{models.PrimeStatutPayee, models.PrimeStatutPaye}).
		Order("date_paiement desc, id desc").
		Find(&primes).Error
	return primes, err
}

func (r *primeRepository) FindByID(ctx context.Context, system string, id uint) (*models.Prime, error) {
	db, err := r.dbFor(system)
	if err != nil {
		return nil, err
	}
	var prime models.Prime
	if err := db.WithContext(ctx).First(&prime, id).Error; err != nil {
		return nil, err
	}
	return &prime, nil
}

func (r *primeRepository) Ping(ctx context.Context, system string) error {
	db, err := r.dbFor(system)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
