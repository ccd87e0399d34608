package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
)

type mockMouvementRepo struct {
	repository.MouvementRepository
	mockCreate         func(ctx context.Context, mouvement *models.MouvementCaisse) error
	mockFindByID       func(ctx context.Context, id uint) (*models.MouvementCaisse, error)
	mockDelete         func(ctx context.Context, id uint) error
	mockComputeBalance func(ctx context.Context, q *repository.ListQuery) (*repository.Balance, error)
}

func (m *mockMouvementRepo) Create(ctx context.Context, mouvement *models.MouvementCaisse) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, mouvement)
	}
	return nil
}

func (m *mockMouvementRepo) FindByID(ctx context.Context, id uint) (*models.MouvementCaisse, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockMouvementRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockMouvementRepo) ComputeBalance(ctx context.Context, q *repository.ListQuery) (*repository.Balance, error) {
	if m.mockComputeBalance != nil {
		return m.mockComputeBalance(ctx, q)
	}
	return &repository.Balance{Entrees: 1_000_000, Solde: 1_000_000}, nil
}

func TestCaisseService_Create_ReservedCategoryRejected(t *testing.T) {
	svc := NewCaisseService(&mockMouvementRepo{}, nil)

	_, err := svc.Create(context.Background(), &MouvementInput{
		Type:      models.MouvementTypeEntree,
		Categorie: models.CategoriePaiementFacture,
		Montant:   1000,
	}, 1)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "categorie")
}

func TestCaisseService_Create_BanqueSourceRequiresBanque(t *testing.T) {
	svc := NewCaisseService(&mockMouvementRepo{}, nil)

	_, err := svc.Create(context.Background(), &MouvementInput{
		Type:      models.MouvementTypeSortie,
		Categorie: "Loyer",
		Montant:   250000,
		Source:    models.MouvementSourceBanque,
	}, 1)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "banque_id")
}

func TestCaisseService_Create_DefaultsToCaisse(t *testing.T) {
	var saved *models.MouvementCaisse
	repo := &mockMouvementRepo{
		mockCreate: func(ctx context.Context, mouvement *models.MouvementCaisse) error {
			mouvement.ID = 10
			saved = mouvement
			return nil
		},
	}
	svc := NewCaisseService(repo, nil)

	out, err := svc.Create(context.Background(), &MouvementInput{
		Type:      models.MouvementTypeSortie,
		Categorie: "Carburant",
		Montant:   45000,
	}, 3)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, models.MouvementSourceCaisse, out.Source)
	assert.False(t, out.Date.IsZero())
	assert.Equal(t, uint(3), out.UserID)
}

func TestCaisseService_Create_SortieOverdraftRejected(t *testing.T) {
	repo := &mockMouvementRepo{
		mockComputeBalance: func(ctx context.Context, q *repository.ListQuery) (*repository.Balance, error) {
			return &repository.Balance{Entrees: 100000, Sorties: 80000, Solde: 20000}, nil
		},
	}
	svc := NewCaisseService(repo, nil)

	_, err := svc.Create(context.Background(), &MouvementInput{
		Type:      models.MouvementTypeSortie,
		Categorie: "Salaires",
		Montant:   50000,
	}, 1)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "solde insuffisant")
}

func TestCaisseService_Delete_SystemOwnedRefused(t *testing.T) {
	ref := models.PaiementReference(42)
	repo := &mockMouvementRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.MouvementCaisse, error) {
			return &models.MouvementCaisse{
				ID:        id,
				Type:      models.MouvementTypeEntree,
				Categorie: models.CategoriePaiementFacture,
				Reference: &ref,
			}, nil
		},
	}
	svc := NewCaisseService(repo, nil)

	err := svc.Delete(context.Background(), 7, 1)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestCaisseService_Delete_ManualMovement(t *testing.T) {
	deleted := false
	repo := &mockMouvementRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.MouvementCaisse, error) {
			return &models.MouvementCaisse{ID: id, Type: models.MouvementTypeSortie, Categorie: "Loyer"}, nil
		},
		mockDelete: func(ctx context.Context, id uint) error {
			deleted = true
			return nil
		},
	}
	svc := NewCaisseService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 7, 1))
	assert.True(t, deleted)
}
