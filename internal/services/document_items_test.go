package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoumba/translog-api/internal/models"
)

func TestBuildDocumentItems_Independant(t *testing.T) {
	input := &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
		Lignes: []OperationInput{
			{TypeOperation: "transport", Quantite: 2, PrixUnitaire: 500000},
			{TypeOperation: "manutention", Quantite: 1, PrixUnitaire: 150000.50},
		},
	}

	lignes, conteneurs, lots, err := buildDocumentItems(input)
	require.NoError(t, err)
	assert.Len(t, lignes, 2)
	assert.Empty(t, conteneurs)
	assert.Empty(t, lots)
	assert.Equal(t, 1000000.0, lignes[0].MontantHT)
	assert.Equal(t, 150000.50, lignes[1].MontantHT)
	assert.Equal(t, 1150000.50, sumItemsHT(lignes, conteneurs, lots))
}

func TestBuildDocumentItems_ConteneurSumsOperations(t *testing.T) {
	input := &DocumentInput{
		TypeDocument: models.TypeDocumentConteneur,
		Conteneurs: []ConteneurInput{
			{
				Numero: "MSKU1234567",
				Operations: []OperationInput{
					{TypeOperation: "acconage", Quantite: 1, PrixUnitaire: 300000},
					{TypeOperation: "relevage", Quantite: 2, PrixUnitaire: 75000},
				},
			},
			{
				Numero: "MSKU7654321",
				Operations: []OperationInput{
					{TypeOperation: "acconage", Quantite: 1, PrixUnitaire: 300000},
				},
			},
		},
	}

	lignes, conteneurs, lots, err := buildDocumentItems(input)
	require.NoError(t, err)
	assert.Len(t, conteneurs, 2)
	assert.Equal(t, 750000.0, sumItemsHT(lignes, conteneurs, lots))
}

func TestBuildDocumentItems_RejectsMixedFamilies(t *testing.T) {
	input := &DocumentInput{
		TypeDocument: models.TypeDocumentLot,
		Lignes:       []OperationInput{{TypeOperation: "transport", Quantite: 1, PrixUnitaire: 1000}},
		Lots:         []LotInput{{Designation: "riz", Quantite: 10, PrixUnitaire: 5000}},
	}

	_, _, _, err := buildDocumentItems(input)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "type_document")
}

func TestBuildDocumentItems_RejectsNonPositiveQuantite(t *testing.T) {
	input := &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
		Lignes:       []OperationInput{{TypeOperation: "transport", Quantite: 0, PrixUnitaire: 1000}},
	}

	_, _, _, err := buildDocumentItems(input)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "quantite")
}

func TestBuildDocumentItems_FractionalRounding(t *testing.T) {
	input := &DocumentInput{
		TypeDocument: models.TypeDocumentIndependant,
		Lignes:       []OperationInput{{TypeOperation: "magasinage", Quantite: 3, PrixUnitaire: 33.335}},
	}

	lignes, _, _, err := buildDocumentItems(input)
	require.NoError(t, err)
	// 3 × 33.335 = 100.005, rounded half-up
	assert.Equal(t, 100.01, lignes[0].MontantHT)
}
