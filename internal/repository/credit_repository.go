package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkoumba/translog-api/internal/models"
)

// CreditRepository defines data access for bank credits
type CreditRepository interface {
	Create(ctx context.Context, credit *models.CreditBancaire) error
	FindByID(ctx context.Context, id uint) (*models.CreditBancaire, error)
	// FindForUpdateTx locks the credit row so concurrent repayments are
	// serialized against the Σ(remboursements) ≤ montant_total check.
	FindForUpdateTx(tx *gorm.DB, id uint) (*models.CreditBancaire, error)
	List(ctx context.Context, q *ListQuery) ([]models.CreditBancaire, int64, error)
	UpdateStatutTx(tx *gorm.DB, id uint, statut string) error
	CreateRemboursementTx(tx *gorm.DB, remboursement *models.RemboursementCredit) error
	SumRemboursementsTx(tx *gorm.DB, creditID uint) (float64, error)
	MarkEcheancePayeeTx(tx *gorm.DB, echeanceID uint) error
	NextEcheanceEnAttenteTx(tx *gorm.DB, creditID uint) (*models.EcheanceCredit, error)
}

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

// Create persists the credit and its generated schedule in one transaction.
func (r *creditRepository) Create(ctx context.Context, credit *models.CreditBancaire) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *creditRepository) FindByID(ctx context.Context, id uint) (*models.CreditBancaire, error) {
	var credit models.CreditBancaire
	err := r.db.WithContext(ctx).
		Preload("Banque").
		Preload("Echeances", func(db *gorm.DB) *gorm.DB {
			return db.Order("numero_echeance asc")
		}).
		Preload("Remboursements", func(db *gorm.DB) *gorm.DB {
			return db.Order("date asc, id asc")
		}).
		First(&credit, id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepository) FindForUpdateTx(tx *gorm.DB, id uint) (*models.CreditBancaire, error) {
	var credit models.CreditBancaire
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&credit, id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepository) List(ctx context.Context, q *ListQuery) ([]models.CreditBancaire, int64, error) {
	var list []models.CreditBancaire
	var total int64

	base := r.db.WithContext(ctx).Model(&models.CreditBancaire{})
	if statut := q.Filters["statut"]; statut != "" {
		base = base.Where("statut = ?", statut)
	}
	if banqueID := q.Filters["banque_id"]; banqueID != "" {
		base = base.Where("banque_id = ?", banqueID)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Preload("Banque").
		Order("date_debut desc, id desc").
		Offset(q.offset()).Limit(q.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *creditRepository) UpdateStatutTx(tx *gorm.DB, id uint, statut string) error {
	return tx.Model(&models.CreditBancaire{}).Where("id = ?", id).
		Update("statut", statut).Error
}

func (r *creditRepository) CreateRemboursementTx(tx *gorm.DB, remboursement *models.RemboursementCredit) error {
	return tx.Create(remboursement).Error
}

func (r *creditRepository) SumRemboursementsTx(tx *gorm.DB, creditID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.RemboursementCredit{}).
		Where("credit_id = ?", creditID).
		Select("COALESCE(SUM(montant), 0)").
		Scan(&total).Error
	return total, err
}

func (r *creditRepository) MarkEcheancePayeeTx(tx *gorm.DB, echeanceID uint) error {
	return tx.Model(&models.EcheanceCredit{}).Where("id = ?", echeanceID).
		Update("statut", models.EcheanceStatutPayee).Error
}

// NextEcheanceEnAttenteTx returns the oldest unpaid installment of the credit,
// or nil when the schedule is fully settled.
func (r *creditRepository) NextEcheanceEnAttenteTx(tx *gorm.DB, creditID uint) (*models.EcheanceCredit, error) {
	var echeance models.EcheanceCredit
	err := tx.Where("credit_id = ? AND statut = ?", creditID, models.EcheanceStatutEnAttente).
		Order("numero_echeance asc").
		First(&echeance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &echeance, nil
}
