package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/config"
	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/statemachine"
)

type mockDevisRepo struct {
	repository.DevisRepository
	mockCreate       func(ctx context.Context, devis *models.Devis) error
	mockFindByID     func(ctx context.Context, id uint) (*models.Devis, error)
	mockUpdate       func(ctx context.Context, devis *models.Devis) error
	mockReplaceItems func(ctx context.Context, devis *models.Devis, lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error
}

func (m *mockDevisRepo) Create(ctx context.Context, devis *models.Devis) error {
	return m.mockCreate(ctx, devis)
}

func (m *mockDevisRepo) FindByID(ctx context.Context, id uint) (*models.Devis, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockDevisRepo) Update(ctx context.Context, devis *models.Devis) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, devis)
	}
	return nil
}

func (m *mockDevisRepo) ReplaceItems(ctx context.Context, devis *models.Devis, lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	if m.mockReplaceItems != nil {
		return m.mockReplaceItems(ctx, devis, lignes, conteneurs, lots)
	}
	return nil
}

type mockClientRepo struct {
	repository.ClientRepository
	mockFindClientByID func(ctx context.Context, id uint) (*models.Client, error)
}

func (m *mockClientRepo) FindClientByID(ctx context.Context, id uint) (*models.Client, error) {
	if m.mockFindClientByID != nil {
		return m.mockFindClientByID(ctx, id)
	}
	return &models.Client{ID: id, Nom: "SOGECO"}, nil
}

func testConfig() *config.Config {
	return &config.Config{TauxTVA: 18, TauxCSS: 1}
}

func TestDevisService_Create_SnapshotsRatesAndComputesTotals(t *testing.T) {
	var saved *models.Devis
	repo := &mockDevisRepo{
		mockCreate: func(ctx context.Context, devis *models.Devis) error {
			devis.ID = 1
			devis.Numero = "DEV-2026-0001"
			saved = devis
			return nil
		},
	}
	svc := NewDevisService(repo, &mockClientRepo{}, nil, testConfig())

	devis, err := svc.Create(context.Background(), &DocumentInput{
		ClientID:     7,
		TypeDocument: models.TypeDocumentIndependant,
		Lignes: []OperationInput{
			{TypeOperation: "transport", Quantite: 2, PrixUnitaire: 500000},
		},
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, models.DevisStatutBrouillon, devis.Statut)
	assert.Equal(t, 18.0, devis.TauxTVA)
	assert.Equal(t, 1.0, devis.TauxCSS)
	assert.Equal(t, 1000000.0, devis.MontantHT)
	assert.Equal(t, 180000.0, devis.MontantTVA)
	assert.Equal(t, 10000.0, devis.MontantCSS)
	assert.Equal(t, 1190000.0, devis.MontantTTC)
}

func TestDevisService_Create_UnknownClient(t *testing.T) {
	clientRepo := &mockClientRepo{
		mockFindClientByID: func(ctx context.Context, id uint) (*models.Client, error) {
			return nil, ErrNotFound
		},
	}
	svc := NewDevisService(&mockDevisRepo{}, clientRepo, nil, testConfig())

	_, err := svc.Create(context.Background(), &DocumentInput{ClientID: 99}, 1)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "client_id")
}

func TestDevisService_ChangerStatut_IllegalTransition(t *testing.T) {
	repo := &mockDevisRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Devis, error) {
			return &models.Devis{Statut: models.DevisStatutBrouillon}, nil
		},
	}
	svc := NewDevisService(repo, &mockClientRepo{}, nil, testConfig())

	_, err := svc.ChangerStatut(context.Background(), 1, models.DevisStatutAccepte, 1)
	var te *statemachine.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.DevisStatutBrouillon, te.Current)
}

func TestDevisService_ReplaceLignes_RejectedOnceEnvoye(t *testing.T) {
	repo := &mockDevisRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Devis, error) {
			return &models.Devis{Statut: models.DevisStatutEnvoye}, nil
		},
	}
	svc := NewDevisService(repo, &mockClientRepo{}, nil, testConfig())

	_, err := svc.ReplaceLignes(context.Background(), 1, &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
	}, 1)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, models.DevisStatutEnvoye, ce.StatutActuel)
}

func TestDevisService_ReplaceLignes_KeepsRateSnapshot(t *testing.T) {
	existing := &models.Devis{
		DocumentBase: models.DocumentBase{
			ID:           3,
			TauxTVA:      10, // older rate, frozen on the document
			TauxCSS:      0,
			TypeDocument: models.TypeDocumentIndependant,
		},
		Statut: models.DevisStatutBrouillon,
	}
	repo := &mockDevisRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Devis, error) {
			return existing, nil
		},
	}
	svc := NewDevisService(repo, &mockClientRepo{}, nil, testConfig())

	_, err := svc.ReplaceLignes(context.Background(), 3, &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
		Lignes:       []OperationInput{{TypeOperation: "transport", Quantite: 1, PrixUnitaire: 1000}},
	}, 1)
	require.NoError(t, err)

	// recomputed with the devis' own 10% snapshot, not the configured 18%
	assert.Equal(t, 100.0, existing.MontantTVA)
	assert.Equal(t, 0.0, existing.MontantCSS)
	assert.Equal(t, 1100.0, existing.MontantTTC)
}
