package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}

type mockPrimeRepo struct {
	repository.PrimeRepository
	mockListPayees func(ctx context.Context, system string) ([]models.Prime, error)
	mockFindByID   func(ctx context.Context, system string, id uint) (*models.Prime, error)
}

func (m *mockPrimeRepo) ListPayees(ctx context.Context, system string) ([]models.Prime, error) {
	return m.mockListPayees(ctx, system)
}

func (m *mockPrimeRepo) FindByID(ctx context.Context, system string, id uint) (*models.Prime, error) {
	return m.mockFindByID(ctx, system, id)
}

type mockPrimeMouvementRepo struct {
	repository.MouvementRepository
	mockCreate             func(ctx context.Context, mouvement *models.MouvementCaisse) error
	mockExistingReferences func(ctx context.Context, refs []string) (map[string]bool, error)
}

func (m *mockPrimeMouvementRepo) Create(ctx context.Context, mouvement *models.MouvementCaisse) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, mouvement)
	}
	return nil
}

func (m *mockPrimeMouvementRepo) ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error) {
	if m.mockExistingReferences != nil {
		return m.mockExistingReferences(ctx, refs)
	}
	return map[string]bool{}, nil
}

func TestPrimeService_List_FlagsDecaissees(t *testing.T) {
	primeRepo := &mockPrimeRepo{
		mockListPayees: func(ctx context.Context, system string) ([]models.Prime, error) {
			return []models.Prime{
				{ID: 1, Montant: 50000, Statut: "payee"},
				{ID: 2, Montant: 75000, Statut: "paye"},
			}, nil
		},
	}
	mouvementRepo := &mockPrimeMouvementRepo{
		mockExistingReferences: func(ctx context.Context, refs []string) (map[string]bool, error) {
			return map[string]bool{models.PrimeReference(models.SystemOPS, 1): true}, nil
		},
	}
	svc := NewPrimeService(primeRepo, mouvementRepo, nil, nil, time.Second)

	result, err := svc.List(context.Background(), models.SystemOPS)
	require.NoError(t, err)
	assert.True(t, result.Available)
	require.Len(t, result.Primes, 2)
	assert.True(t, result.Primes[0].Decaisse)
	assert.False(t, result.Primes[1].Decaisse)
}

func TestPrimeService_List_DegradedWithoutSnapshot(t *testing.T) {
	primeRepo := &mockPrimeRepo{
		mockListPayees: func(ctx context.Context, system string) ([]models.Prime, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewPrimeService(primeRepo, &mockPrimeMouvementRepo{}, nil, nil, time.Second)

	result, err := svc.List(context.Background(), models.SystemCNV)
	require.NoError(t, err)
	assert.False(t, result.Available)
	assert.Empty(t, result.Primes)
}

func TestPrimeService_List_UnknownSystem(t *testing.T) {
	svc := NewPrimeService(&mockPrimeRepo{}, &mockPrimeMouvementRepo{}, nil, nil, time.Second)

	_, err := svc.List(context.Background(), "XYZ")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestPrimeService_Decaisser_ExternalDownFailsHard(t *testing.T) {
	primeRepo := &mockPrimeRepo{
		mockFindByID: func(ctx context.Context, system string, id uint) (*models.Prime, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewPrimeService(primeRepo, &mockPrimeMouvementRepo{}, nil, nil, time.Second)

	_, err := svc.Decaisser(context.Background(), models.SystemOPS, 1, nil, 1)
	assert.ErrorIs(t, err, ErrExternalUnavailable)
}

func TestPrimeService_Decaisser_RequiresUpstreamPayee(t *testing.T) {
	primeRepo := &mockPrimeRepo{
		mockFindByID: func(ctx context.Context, system string, id uint) (*models.Prime, error) {
			return &models.Prime{ID: id, Montant: 50000, Statut: "en_attente"}, nil
		},
	}
	svc := NewPrimeService(primeRepo, &mockPrimeMouvementRepo{}, nil, nil, time.Second)

	_, err := svc.Decaisser(context.Background(), models.SystemOPS, 1, nil, 1)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "en_attente", ce.StatutActuel)
}

func TestPrimeService_Decaisser_BanqueRequiresBanqueID(t *testing.T) {
	svc := NewPrimeService(&mockPrimeRepo{}, &mockPrimeMouvementRepo{}, nil, nil, time.Second)

	_, err := svc.Decaisser(context.Background(), models.SystemOPS, 1,
		&DecaissementInput{Source: models.MouvementSourceBanque}, 1)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "banque_id")
}

func TestPrimeService_Decaisser_Idempotent(t *testing.T) {
	primeRepo := &mockPrimeRepo{
		mockFindByID: func(ctx context.Context, system string, id uint) (*models.Prime, error) {
			return &models.Prime{ID: id, Montant: 50000, Statut: "payee", Beneficiaire: "Chauffeur A"}, nil
		},
	}
	mouvementRepo := &mockPrimeMouvementRepo{
		mockCreate: func(ctx context.Context, mouvement *models.MouvementCaisse) error {
			return gorm.ErrDuplicatedKey
		},
	}
	svc := NewPrimeService(primeRepo, mouvementRepo, nil, nil, time.Second)

	_, err := svc.Decaisser(context.Background(), models.SystemCNV, 9, nil, 1)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestPrimeService_Decaisser_WritesDeterministicReference(t *testing.T) {
	primeRepo := &mockPrimeRepo{
		mockFindByID: func(ctx context.Context, system string, id uint) (*models.Prime, error) {
			return &models.Prime{ID: id, Montant: 50000, Statut: "payee", Beneficiaire: "Chauffeur A"}, nil
		},
	}
	var saved *models.MouvementCaisse
	mouvementRepo := &mockPrimeMouvementRepo{
		mockCreate: func(ctx context.Context, mouvement *models.MouvementCaisse) error {
			mouvement.ID = 1
			saved = mouvement
			return nil
		},
	}
	svc := NewPrimeService(primeRepo, mouvementRepo, nil, nil, time.Second)

	mouvement, err := svc.Decaisser(context.Background(), models.SystemOPS, 12, nil, 4)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, models.MouvementTypeSortie, mouvement.Type)
	assert.Equal(t, models.CategorieDecaissementOPS, mouvement.Categorie)
	assert.Equal(t, "OPS-PRIME-12", *mouvement.Reference)
	assert.Equal(t, 50000.0, mouvement.Montant)
}
