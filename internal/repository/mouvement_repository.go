package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
)

// Balance is the aggregate view of a slice of the caisse ledger.
// Solde is always Entrees − Sorties, never read from a stored column.
type Balance struct {
	Entrees float64 `json:"entrees"`
	Sorties float64 `json:"sorties"`
	Solde   float64 `json:"solde"`
}

// MouvementRepository defines data access for caisse movements
type MouvementRepository interface {
	Create(ctx context.Context, mouvement *models.MouvementCaisse) error
	CreateTx(tx *gorm.DB, mouvement *models.MouvementCaisse) error
	FindByID(ctx context.Context, id uint) (*models.MouvementCaisse, error)
	List(ctx context.Context, q *ListQuery) ([]models.MouvementCaisse, int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteByReferenceTx(tx *gorm.DB, reference string) error
	ComputeBalance(ctx context.Context, q *ListQuery) (*Balance, error)
	// ExistingReferences returns the subset of refs already present in the
	// ledger, used to flag externally owned primes as locally paid out.
	ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error)
}

type mouvementRepository struct {
	db *gorm.DB
}

// NewMouvementRepository creates a new mouvement repository
func NewMouvementRepository(db *gorm.DB) MouvementRepository {
	return &mouvementRepository{db: db}
}

func (r *mouvementRepository) Create(ctx context.Context, mouvement *models.MouvementCaisse) error {
	return r.db.WithContext(ctx).Create(mouvement).Error
}

func (r *mouvementRepository) CreateTx(tx *gorm.DB, mouvement *models.MouvementCaisse) error {
	return tx.Create(mouvement).Error
}

func (r *mouvementRepository) FindByID(ctx context.Context, id uint) (*models.MouvementCaisse, error) {
	var mouvement models.MouvementCaisse
	err := r.db.WithContext(ctx).Preload("Banque").First(&mouvement, id).Error
	if err != nil {
		return nil, err
	}
	return &mouvement, nil
}

func applyMouvementFilters(db *gorm.DB, q *ListQuery) *gorm.DB {
	if t := q.Filters["type"]; t != "" {
		db = db.Where("type = ?", t)
	}
	if c := q.Filters["categorie"]; c != "" {
		db = db.Where("categorie = ?", c)
	}
	if s := q.Filters["source"]; s != "" {
		db = db.Where("source = ?", s)
	}
	if b := q.Filters["banque_id"]; b != "" {
		db = db.Where("banque_id = ?", b)
	}
	if start := q.Filters["start_date"]; start != "" {
		db = db.Where("date >= ?", start)
	}
	if end := q.Filters["end_date"]; end != "" {
		db = db.Where("date <= ?", end)
	}
	return db
}

func (r *mouvementRepository) List(ctx context.Context, q *ListQuery) ([]models.MouvementCaisse, int64, error) {
	var list []models.MouvementCaisse
	var total int64

	base := applyMouvementFilters(r.db.WithContext(ctx).Model(&models.MouvementCaisse{}), q)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Preload("Banque").
		Order("date desc, id desc").
		Offset(q.offset()).Limit(q.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *mouvementRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MouvementCaisse{}, id).Error
}

// DeleteByReferenceTx removes a system-generated movement by its idempotency
// reference, as part of deleting the record that created it.
func (r *mouvementRepository) DeleteByReferenceTx(tx *gorm.DB, reference string) error {
	return tx.Where("reference = ?", reference).Delete(&models.MouvementCaisse{}).Error
}

func (r *mouvementRepository) ComputeBalance(ctx context.Context, q *ListQuery) (*Balance, error) {
	var b Balance
	base := applyMouvementFilters(r.db.WithContext(ctx).Model(&models.MouvementCaisse{}), q)
	err := base.Select(
		"COALESCE(SUM(CASE WHEN type = ? THEN montant ELSE 0 END), 0) AS entrees, "+
			"COALESCE(SUM(CASE WHEN type = ? THEN montant ELSE 0 END), 0) AS sorties",
		models.MouvementTypeEntree, models.MouvementTypeSortie,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	b.Solde = b.Entrees - b.Sorties
	return &b, nil
}

func (r *mouvementRepository) ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(refs))
	if len(refs) == 0 {
		return existing, nil
	}
	var found []string
	err := r.db.WithContext(ctx).Model(&models.MouvementCaisse{}).
		Where("reference IN ?", refs).
		Pluck("reference", &found).Error
	if err != nil {
		return nil, err
	}
	for _, ref := range found {
		existing[ref] = true
	}
	return existing, nil
}
