package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
)

// PaiementRepository defines data access for paiements
type PaiementRepository interface {
	CreateTx(tx *gorm.DB, paiement *models.Paiement) error
	FindByID(ctx context.Context, id uint) (*models.Paiement, error)
	ListByFacture(ctx context.Context, factureID uint) ([]models.Paiement, error)
	// SumByFactureTx totals the payments applied to a facture inside tx, so
	// that a caller holding the facture's row lock reads a consistent sum.
	SumByFactureTx(tx *gorm.DB, factureID uint) (float64, error)
	DeleteTx(tx *gorm.DB, id uint) error
}

type paiementRepository struct {
	db *gorm.DB
}

// NewPaiementRepository creates a new paiement repository
func NewPaiementRepository(db *gorm.DB) PaiementRepository {
	return &paiementRepository{db: db}
}

func (r *paiementRepository) CreateTx(tx *gorm.DB, paiement *models.Paiement) error {
	return tx.Create(paiement).Error
}

func (r *paiementRepository) FindByID(ctx context.Context, id uint) (*models.Paiement, error) {
	var paiement models.Paiement
	err := r.db.WithContext(ctx).
		Preload("Banque").
		Preload("Facture").
		First(&paiement, id).Error
	if err != nil {
		return nil, err
	}
	return &paiement, nil
}

func (r *paiementRepository) ListByFacture(ctx context.Context, factureID uint) ([]models.Paiement, error) {
	var list []models.Paiement
	err := r.db.WithContext(ctx).
		Preload("Banque").
		Where("facture_id = ?", factureID).
		Order("date_paiement asc, id asc").
		Find(&list).Error
	return list, err
}

func (r *paiementRepository) SumByFactureTx(tx *gorm.DB, factureID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.Paiement{}).
		Where("facture_id = ?", factureID).
		Select("COALESCE(SUM(montant), 0)").
		Scan(&total).Error
	return total, err
}

func (r *paiementRepository) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&models.Paiement{}, id).Error
}
