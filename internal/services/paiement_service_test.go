package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
)

func TestValidatePaiementInput(t *testing.T) {
	banque := uint(1)

	tests := []struct {
		name  string
		input PaiementInput
		field string
	}{
		{
			name:  "Zero Amount",
			input: PaiementInput{Montant: 0, ModePaiement: models.ModePaiementEspeces},
			field: "montant",
		},
		{
			name:  "Negative Amount",
			input: PaiementInput{Montant: -50, ModePaiement: models.ModePaiementEspeces},
			field: "montant",
		},
		{
			name:  "Unknown Mode",
			input: PaiementInput{Montant: 100, ModePaiement: "troc"},
			field: "mode_paiement",
		},
		{
			name:  "Cheque Without Banque",
			input: PaiementInput{Montant: 100, ModePaiement: models.ModePaiementCheque},
			field: "banque_id",
		},
		{
			name:  "Virement Without Banque",
			input: PaiementInput{Montant: 100, ModePaiement: models.ModePaiementVirement},
			field: "banque_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePaiementInput(&tt.input)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	t.Run("Valid Cheque Defaults Date", func(t *testing.T) {
		input := PaiementInput{Montant: 100, ModePaiement: models.ModePaiementCheque, BanqueID: &banque}
		require.NoError(t, validatePaiementInput(&input))
		assert.False(t, input.DatePaiement.IsZero())
	})
}

func TestPaiementService_StatutProgression(t *testing.T) {
	facture := models.Facture{
		DocumentBase: models.DocumentBase{MontantTTC: 1190000},
		Statut:       models.FactureStatutEnvoyee,
	}

	// 500 000 of 1 190 000: first partial payment
	require.NoError(t, advancePaiementStatut(context.Background(), &facture, 500000))
	assert.Equal(t, models.FactureStatutPartiellementPayee, facture.Statut)
	assert.True(t, facture.MayReceivePaiement())

	// + 690 000 settles the facture
	require.NoError(t, advancePaiementStatut(context.Background(), &facture, 1190000))
	assert.Equal(t, models.FactureStatutPayee, facture.Statut)
	assert.False(t, facture.MayReceivePaiement())
}

func TestPaiementService_StatutProgression_DirectSettlement(t *testing.T) {
	facture := models.Facture{
		DocumentBase: models.DocumentBase{MontantTTC: 250000},
		Statut:       models.FactureStatutEnvoyee,
	}

	require.NoError(t, advancePaiementStatut(context.Background(), &facture, 250000))
	assert.Equal(t, models.FactureStatutPayee, facture.Statut)
}

func TestPaiementService_CheckResteAPayer(t *testing.T) {
	facture := models.Facture{
		DocumentBase: models.DocumentBase{MontantTTC: 1190000},
		Statut:       models.FactureStatutPartiellementPayee,
	}

	t.Run("Exact Remainder Accepted", func(t *testing.T) {
		assert.NoError(t, checkResteAPayer(&facture, 500000, 690000, "montant supérieur au reste à payer"))
	})

	t.Run("Overpayment Carries Reste", func(t *testing.T) {
		err := checkResteAPayer(&facture, 500000, 690000.01, "montant supérieur au reste à payer")
		var ce *ConflictError
		require.ErrorAs(t, err, &ce)
		require.NotNil(t, ce.ResteAPayer)
		assert.Equal(t, 690000.0, *ce.ResteAPayer)
	})

	t.Run("Settled Facture Owes Zero", func(t *testing.T) {
		err := checkResteAPayer(&facture, 1190000, 1, "montant supérieur au reste à payer")
		var ce *ConflictError
		require.ErrorAs(t, err, &ce)
		require.NotNil(t, ce.ResteAPayer)
		assert.Equal(t, 0.0, *ce.ResteAPayer)
	})
}

func TestPaiementService_DeleteResetsStatut(t *testing.T) {
	t.Run("Last Payment Removed", func(t *testing.T) {
		facture := models.Facture{Statut: models.FactureStatutPartiellementPayee}
		changed, err := resetStatutAfterDelete(context.Background(), &facture, 0)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, models.FactureStatutEnvoyee, facture.Statut)
	})

	t.Run("Payments Remain", func(t *testing.T) {
		facture := models.Facture{Statut: models.FactureStatutPartiellementPayee}
		changed, err := resetStatutAfterDelete(context.Background(), &facture, 400000)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, models.FactureStatutPartiellementPayee, facture.Statut)
	})

	t.Run("Envoyee Untouched", func(t *testing.T) {
		facture := models.Facture{Statut: models.FactureStatutEnvoyee}
		changed, err := resetStatutAfterDelete(context.Background(), &facture, 0)
		require.NoError(t, err)
		assert.False(t, changed)
	})
}

func TestPaiementService_ApplyGlobal_AllocationValidation(t *testing.T) {
	svc := NewPaiementService(nil, nil, nil, nil, nil)

	base := PaiementInput{Montant: 1000, ModePaiement: models.ModePaiementEspeces}

	t.Run("No Allocations", func(t *testing.T) {
		_, err := svc.ApplyGlobal(context.Background(), &PaiementGlobalInput{
			ClientID:      1,
			PaiementInput: base,
		}, 1)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "allocations")
	})

	t.Run("Announced Total Mismatch", func(t *testing.T) {
		_, err := svc.ApplyGlobal(context.Background(), &PaiementGlobalInput{
			ClientID:      1,
			PaiementInput: base,
			Allocations: []AllocationInput{
				{FactureID: 1, Montant: 600},
				{FactureID: 2, Montant: 300},
			},
		}, 1)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "montant")
	})

	t.Run("Non Positive Allocation", func(t *testing.T) {
		_, err := svc.ApplyGlobal(context.Background(), &PaiementGlobalInput{
			ClientID:      1,
			PaiementInput: base,
			Allocations: []AllocationInput{
				{FactureID: 1, Montant: 1000},
				{FactureID: 2, Montant: -0.5},
			},
		}, 1)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "allocations")
	})
}
