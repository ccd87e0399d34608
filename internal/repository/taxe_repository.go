package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
)

// TaxeRepository defines data access for monthly tax accruals
type TaxeRepository interface {
	FindPeriode(ctx context.Context, annee, mois int, typeTaxe string) (*models.TaxeMensuelle, error)
	ListByPeriode(ctx context.Context, annee, mois int) ([]models.TaxeMensuelle, error)
	ListByYear(ctx context.Context, annee int) ([]models.TaxeMensuelle, error)
	Save(ctx context.Context, taxe *models.TaxeMensuelle) error
	SaveTx(tx *gorm.DB, taxe *models.TaxeMensuelle) error
}

type taxeRepository struct {
	db *gorm.DB
}

// NewTaxeRepository creates a new taxe repository
func NewTaxeRepository(db *gorm.DB) TaxeRepository {
	return &taxeRepository{db: db}
}

func (r *taxeRepository) FindPeriode(ctx context.Context, annee, mois int, typeTaxe string) (*models.TaxeMensuelle, error) {
	var taxe models.TaxeMensuelle
	err := r.db.WithContext(ctx).
		Where("annee = ? AND mois = ? AND type_taxe = ?", annee, mois, typeTaxe).
		First(&taxe).Error
	if err != nil {
		return nil, err
	}
	return &taxe, nil
}

func (r *taxeRepository) ListByPeriode(ctx context.Context, annee, mois int) ([]models.TaxeMensuelle, error) {
	var list []models.TaxeMensuelle
	err := r.db.WithContext(ctx).
		Where("annee = ? AND mois = ?", annee, mois).
		Order("type_taxe asc").
		Find(&list).Error
	return list, err
}

func (r *taxeRepository) ListByYear(ctx context.Context, annee int) ([]models.TaxeMensuelle, error) {
	var list []models.TaxeMensuelle
	err := r.db.WithContext(ctx).
		Where("annee = ?", annee).
		Order("mois asc, type_taxe asc").
		Find(&list).Error
	return list, err
}

func (r *taxeRepository) Save(ctx context.Context, taxe *models.TaxeMensuelle) error {
	return r.db.WithContext(ctx).Save(taxe).Error
}

func (r *taxeRepository) SaveTx(tx *gorm.DB, taxe *models.TaxeMensuelle) error {
	return tx.Save(taxe).Error
}
