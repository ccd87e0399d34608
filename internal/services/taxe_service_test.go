package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkoumba/translog-api/internal/models"
)

func TestAccrual_SplitsTaxedAndExonerated(t *testing.T) {
	factures := []models.Facture{
		{DocumentBase: models.DocumentBase{MontantHT: 1000000, TauxTVA: 18, MontantTVA: 180000, TauxCSS: 1, MontantCSS: 10000}},
		{DocumentBase: models.DocumentBase{MontantHT: 500000, TauxTVA: 18, MontantTVA: 90000, TauxCSS: 1, MontantCSS: 5000}},
		// exonerated document: zero rates, whole HT goes to montant_exonere
		{DocumentBase: models.DocumentBase{MontantHT: 200000, TauxTVA: 0, MontantTVA: 0, TauxCSS: 0, MontantCSS: 0}},
	}

	ht, taxe, exonere, n := accrual(factures, models.TypeTaxeTVA)
	assert.Equal(t, 1500000.0, ht)
	assert.Equal(t, 270000.0, taxe)
	assert.Equal(t, 200000.0, exonere)
	assert.Equal(t, 3, n)

	ht, taxe, exonere, n = accrual(factures, models.TypeTaxeCSS)
	assert.Equal(t, 1500000.0, ht)
	assert.Equal(t, 15000.0, taxe)
	assert.Equal(t, 200000.0, exonere)
	assert.Equal(t, 3, n)
}

func TestValidePeriode(t *testing.T) {
	assert.NoError(t, validePeriode(2026, 1))
	assert.NoError(t, validePeriode(2026, 12))
	assert.Error(t, validePeriode(2026, 0))
	assert.Error(t, validePeriode(2026, 13))
	assert.Error(t, validePeriode(1, 6))
}
