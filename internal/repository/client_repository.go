package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
)

// ClientRepository defines data access for the reference tables: clients,
// transitaires, armateurs and banques.
type ClientRepository interface {
	CreateClient(ctx context.Context, client *models.Client) error
	FindClientByID(ctx context.Context, id uint) (*models.Client, error)
	ListClients(ctx context.Context, q *ListQuery) ([]models.Client, int64, error)
	UpdateClient(ctx context.Context, client *models.Client) error

	CreateTransitaire(ctx context.Context, t *models.Transitaire) error
	FindTransitaireByID(ctx context.Context, id uint) (*models.Transitaire, error)
	ListTransitaires(ctx context.Context) ([]models.Transitaire, error)
	UpdateTransitaire(ctx context.Context, t *models.Transitaire) error

	CreateArmateur(ctx context.Context, a *models.Armateur) error
	ListArmateurs(ctx context.Context) ([]models.Armateur, error)

	CreateBanque(ctx context.Context, b *models.Banque) error
	FindBanqueByID(ctx context.Context, id uint) (*models.Banque, error)
	ListBanques(ctx context.Context) ([]models.Banque, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) CreateClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) FindClientByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ListClients(ctx context.Context, q *ListQuery) ([]models.Client, int64, error) {
	var list []models.Client
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Client{})
	if q.Search != "" {
		base = base.Where("nom ILIKE ? OR nif ILIKE ?", "%"+q.Search+"%", "%"+q.Search+"%")
	}
	if actif := q.Filters["actif"]; actif != "" {
		base = base.Where("actif = ?", actif == "true")
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("nom asc").
		Offset(q.offset()).Limit(q.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *clientRepository) UpdateClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) CreateTransitaire(ctx context.Context, t *models.Transitaire) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *clientRepository) FindTransitaireByID(ctx context.Context, id uint) (*models.Transitaire, error) {
	var t models.Transitaire
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *clientRepository) ListTransitaires(ctx context.Context) ([]models.Transitaire, error) {
	var list []models.Transitaire
	err := r.db.WithContext(ctx).Order("nom asc").Find(&list).Error
	return list, err
}

func (r *clientRepository) UpdateTransitaire(ctx context.Context, t *models.Transitaire) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *clientRepository) CreateArmateur(ctx context.Context, a *models.Armateur) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *clientRepository) ListArmateurs(ctx context.Context) ([]models.Armateur, error) {
	var list []models.Armateur
	err := r.db.WithContext(ctx).Order("nom asc").Find(&list).Error
	return list, err
}

func (r *clientRepository) CreateBanque(ctx context.Context, b *models.Banque) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *clientRepository) FindBanqueByID(ctx context.Context, id uint) (*models.Banque, error) {
	var b models.Banque
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *clientRepository) ListBanques(ctx context.Context) ([]models.Banque, error) {
	var list []models.Banque
	err := r.db.WithContext(ctx).Order("nom asc").Find(&list).Error
	return list, err
}
