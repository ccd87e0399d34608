package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
)

type mockCreditRepo struct {
	repository.CreditRepository
	mockCreate func(ctx context.Context, credit *models.CreditBancaire) error
}

func (m *mockCreditRepo) Create(ctx context.Context, credit *models.CreditBancaire) error {
	credit.ID = 1
	if m.mockCreate != nil {
		return m.mockCreate(ctx, credit)
	}
	return nil
}

func TestCreditService_Create_SimpleInterestAndSchedule(t *testing.T) {
	svc := NewCreditService(nil, &mockCreditRepo{}, nil)

	credit, err := svc.Create(context.Background(), &CreditInput{
		BanqueID:         1,
		MontantPrincipal: 1000000,
		TauxInteret:      12,
		DureeMois:        12,
		DateDebut:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}, 1)
	require.NoError(t, err)

	// 1 000 000 × 12% × 12/12
	assert.Equal(t, 120000.0, credit.MontantInteret)
	assert.Equal(t, 1120000.0, credit.MontantTotal)
	require.Len(t, credit.Echeances, 12)

	sum := 0.0
	for i, e := range credit.Echeances {
		assert.Equal(t, i+1, e.NumeroEcheance)
		assert.Equal(t, models.EcheanceStatutEnAttente, e.Statut)
		sum += e.Montant
	}
	// the last installment absorbs the rounding remainder
	assert.InDelta(t, credit.MontantTotal, sum, 0.001)
	assert.Equal(t, 93333.33, credit.Echeances[0].Montant)
	assert.Equal(t, 93333.37, credit.Echeances[11].Montant)

	// due dates step one month from the start date
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), credit.Echeances[0].DateEcheance)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), credit.Echeances[11].DateEcheance)
}

func TestCreditService_Create_ZeroRate(t *testing.T) {
	svc := NewCreditService(nil, &mockCreditRepo{}, nil)

	credit, err := svc.Create(context.Background(), &CreditInput{
		BanqueID:         1,
		MontantPrincipal: 600000,
		TauxInteret:      0,
		DureeMois:        6,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, credit.MontantInteret)
	assert.Equal(t, 600000.0, credit.MontantTotal)
	assert.Equal(t, 100000.0, credit.Echeances[0].Montant)
	assert.Equal(t, 100000.0, credit.Echeances[5].Montant)
}

func TestCreditService_Create_Validation(t *testing.T) {
	svc := NewCreditService(nil, &mockCreditRepo{}, nil)

	cases := []CreditInput{
		{BanqueID: 1, MontantPrincipal: 0, DureeMois: 12},
		{BanqueID: 1, MontantPrincipal: 1000, TauxInteret: -1, DureeMois: 12},
		{BanqueID: 1, MontantPrincipal: 1000, DureeMois: 0},
	}
	for i := range cases {
		_, err := svc.Create(context.Background(), &cases[i], 1)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "case %d", i)
	}
}
