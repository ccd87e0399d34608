package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
)

type mockFactureRepo struct {
	repository.FactureRepository
	mockFindByID     func(ctx context.Context, id uint) (*models.Facture, error)
	mockUpdate       func(ctx context.Context, facture *models.Facture) error
	mockReplaceItems func(ctx context.Context, facture *models.Facture, lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error
}

func (m *mockFactureRepo) FindByID(ctx context.Context, id uint) (*models.Facture, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockFactureRepo) Update(ctx context.Context, facture *models.Facture) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, facture)
	}
	return nil
}

func (m *mockFactureRepo) ReplaceItems(ctx context.Context, facture *models.Facture, lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	if m.mockReplaceItems != nil {
		return m.mockReplaceItems(ctx, facture, lignes, conteneurs, lots)
	}
	return nil
}

func TestFactureService_ReplaceLignes_RejectsBelowPaidAmount(t *testing.T) {
	repo := &mockFactureRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Facture, error) {
			return &models.Facture{
				DocumentBase: models.DocumentBase{
					ID:           5,
					TauxTVA:      18,
					TauxCSS:      1,
					TypeDocument: models.TypeDocumentIndependant,
					MontantTTC:   1190000,
				},
				Statut: models.FactureStatutPartiellementPayee,
				Paiements: []models.Paiement{
					{Montant: 500000},
					{Montant: 100000},
				},
			}, nil
		},
	}
	svc := NewFactureService(repo, &mockClientRepo{}, nil, testConfig())

	// new items bring the TTC to 119 000, below the 600 000 already received
	_, err := svc.ReplaceLignes(context.Background(), 5, &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
		Lignes:       []OperationInput{{TypeOperation: "transport", Quantite: 1, PrixUnitaire: 100000}},
	}, 1)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, models.FactureStatutPartiellementPayee, ce.StatutActuel)
}

func TestFactureService_ReplaceLignes_FrozenWhenPayee(t *testing.T) {
	repo := &mockFactureRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Facture, error) {
			return &models.Facture{Statut: models.FactureStatutPayee}, nil
		},
	}
	svc := NewFactureService(repo, &mockClientRepo{}, nil, testConfig())

	_, err := svc.ReplaceLignes(context.Background(), 5, &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
	}, 1)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestFactureService_Envoyer(t *testing.T) {
	facture := &models.Facture{Statut: models.FactureStatutBrouillon}
	updated := false
	repo := &mockFactureRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Facture, error) {
			return facture, nil
		},
		mockUpdate: func(ctx context.Context, f *models.Facture) error {
			updated = true
			return nil
		},
	}
	svc := NewFactureService(repo, &mockClientRepo{}, nil, testConfig())

	out, err := svc.Envoyer(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, models.FactureStatutEnvoyee, out.Statut)

	// already sent: the same call now fails
	_, err = svc.Envoyer(context.Background(), 1, 1)
	assert.Error(t, err)
}
