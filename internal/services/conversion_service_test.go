package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/statemachine"
	"github.com/mkoumba/translog-api/internal/taxes"
)

func TestConversion_CopyLignesPreservesAmountsWithFreshIdentity(t *testing.T) {
	src := []models.LigneOperation{
		{ID: 11, DocumentType: "devis", DocumentID: 4, TypeOperation: "transport", Quantite: 2, PrixUnitaire: 500000, MontantHT: 1000000, CreatedAt: time.Now()},
		{ID: 12, DocumentType: "devis", DocumentID: 4, TypeOperation: "manutention", Quantite: 1, PrixUnitaire: 150000, MontantHT: 150000, CreatedAt: time.Now()},
	}

	out := copyLignes(src)
	require.Len(t, out, 2)

	var srcHT, outHT float64
	for i := range src {
		srcHT += src[i].MontantHT
		outHT += out[i].MontantHT
		assert.Zero(t, out[i].ID)
		assert.Empty(t, out[i].DocumentType)
		assert.Zero(t, out[i].DocumentID)
		assert.True(t, out[i].CreatedAt.IsZero())
		assert.Equal(t, src[i].Quantite, out[i].Quantite)
		assert.Equal(t, src[i].PrixUnitaire, out[i].PrixUnitaire)
	}
	assert.Equal(t, srcHT, outHT)

	// The source rows keep their identity.
	assert.Equal(t, uint(11), src[0].ID)
}

func TestConversion_CopyConteneursDetachesChildren(t *testing.T) {
	armateurID := uint(3)
	src := []models.Conteneur{
		{
			ID:           7,
			DocumentType: "devis",
			DocumentID:   4,
			Numero:       "MSKU1234567",
			ArmateurID:   &armateurID,
			Armateur:     &models.Armateur{ID: armateurID, Nom: "Maersk"},
			Operations: []models.OperationItem{
				{ID: 21, ConteneurID: 7, TypeOperation: "acconage", Quantite: 1, PrixUnitaire: 80000, MontantHT: 80000},
				{ID: 22, ConteneurID: 7, TypeOperation: "relevage", Quantite: 2, PrixUnitaire: 30000, MontantHT: 60000},
			},
		},
	}

	out := copyConteneurs(src)
	require.Len(t, out, 1)
	assert.Zero(t, out[0].ID)
	assert.Nil(t, out[0].Armateur)
	assert.Equal(t, &armateurID, out[0].ArmateurID)
	require.Len(t, out[0].Operations, 2)
	for _, op := range out[0].Operations {
		assert.Zero(t, op.ID)
		assert.Zero(t, op.ConteneurID)
	}
	assert.Equal(t, 140000.0, out[0].Operations[0].MontantHT+out[0].Operations[1].MontantHT)
}

func TestConversion_CopyBaseKeepsSnapshotDropsIdentity(t *testing.T) {
	clientID := uint(9)
	base := models.DocumentBase{
		ID:           5,
		Numero:       "DEV-2026-0004",
		ClientID:     clientID,
		TypeDocument: models.TypeDocumentConteneur,
		TauxTVA:      18,
		TauxCSS:      1,
		MontantHT:    1000000,
		MontantTVA:   180000,
		MontantCSS:   10000,
		MontantTTC:   1190000,
		Date:         time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}

	out := copyBase(base)
	assert.Zero(t, out.ID)
	assert.Empty(t, out.Numero)
	assert.Equal(t, clientID, out.ClientID)
	assert.Equal(t, 18.0, out.TauxTVA)
	assert.Equal(t, 1.0, out.TauxCSS)
	assert.Equal(t, base.MontantTTC, out.MontantTTC)
	assert.False(t, out.Date.Equal(base.Date))

	// Recomputing from the carried snapshot reproduces the source totals.
	breakdown := taxes.Compute(out.MontantHT, out.TauxTVA, out.TauxCSS)
	assert.Equal(t, base.MontantTVA, breakdown.MontantTVA)
	assert.Equal(t, base.MontantCSS, breakdown.MontantCSS)
	assert.Equal(t, base.MontantTTC, breakdown.MontantTTC)
}

func TestConversion_VerifyCopiedTotals(t *testing.T) {
	lignes := []models.LigneOperation{
		{TypeOperation: "transport", Quantite: 2, PrixUnitaire: 500000, MontantHT: 1000000},
		{TypeOperation: "manutention", Quantite: 1, PrixUnitaire: 150000, MontantHT: 150000},
	}
	base := models.DocumentBase{
		TauxTVA:    18,
		TauxCSS:    1,
		MontantHT:  1150000,
		MontantTVA: 207000,
		MontantCSS: 11500,
		MontantTTC: 1368500,
	}

	require.NoError(t, verifyCopiedTotals(base, lignes, nil, nil))

	// A copy whose items no longer add up to the carried totals is refused.
	drifted := base
	drifted.MontantHT = 1150001
	assert.Error(t, verifyCopiedTotals(drifted, lignes, nil, nil))
}

func TestConversion_SourceDejaConvertieRefusee(t *testing.T) {
	// The transactional re-check runs on the locked row; a devis already in
	// converti, or carrying a converti_en_id, never yields a second target.
	devis := &models.Devis{Statut: models.DevisStatutConverti}
	err := statemachine.NewDevisFSM(devis).Convertir(context.Background())
	var te *statemachine.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.DevisStatutConverti, te.Current)

	ordre := &models.OrdreTravail{Statut: models.OrdreStatutFacture}
	err = statemachine.NewOrdreFSM(ordre).Facturer(context.Background())
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.OrdreStatutFacture, te.Current)
}
