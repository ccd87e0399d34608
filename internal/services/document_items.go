package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/taxes"
)

// OperationInput is a single operation line, either attached directly to the
// document or scoped to a container.
type OperationInput struct {
	TypeOperation string     `json:"type_operation" binding:"required"`
	DateDebut     *time.Time `json:"date_debut"`
	DateFin       *time.Time `json:"date_fin"`
	Lieu          *string    `json:"lieu"`
	Quantite      float64    `json:"quantite"`
	PrixUnitaire  float64    `json:"prix_unitaire"`
}

// ConteneurInput groups operations on one container
type ConteneurInput struct {
	Numero     string           `json:"numero" binding:"required"`
	Type       string           `json:"type"`
	Taille     string           `json:"taille"`
	ArmateurID *uint            `json:"armateur_id"`
	Operations []OperationInput `json:"operations"`
}

// LotInput is a bulk-cargo line
type LotInput struct {
	Designation  string   `json:"designation" binding:"required"`
	Quantite     float64  `json:"quantite"`
	Poids        *float64 `json:"poids"`
	Volume       *float64 `json:"volume"`
	PrixUnitaire float64  `json:"prix_unitaire"`
}

// DocumentInput carries the editable fields of any document stage.
type DocumentInput struct {
	ClientID      uint       `json:"client_id" binding:"required"`
	TransitaireID *uint      `json:"transitaire_id"`
	TypeDocument  string     `json:"type_document"`
	Date          time.Time  `json:"date"`
	Notes         *string    `json:"notes"`
	DateValidite  *time.Time `json:"date_validite"`
	DateEcheance  *time.Time `json:"date_echeance"`

	Lignes     []OperationInput `json:"lignes"`
	Conteneurs []ConteneurInput `json:"conteneurs"`
	Lots       []LotInput       `json:"lots"`
}

// buildDocumentItems validates the item set against the document type and
// materializes the line models, each with its montant_ht already computed.
// Exactly one item family may be populated and it must match type_document.
func buildDocumentItems(input *DocumentInput) ([]models.LigneOperation, []models.Conteneur, []models.LotItem, error) {
	switch input.TypeDocument {
	case models.TypeDocumentIndependant:
		if len(input.Conteneurs) > 0 || len(input.Lots) > 0 {
			return nil, nil, nil, NewValidationError("type_document", "un document indépendant ne porte que des lignes d'opération")
		}
	case models.TypeDocumentConteneur:
		if len(input.Lignes) > 0 || len(input.Lots) > 0 {
			return nil, nil, nil, NewValidationError("type_document", "un document conteneur ne porte que des conteneurs")
		}
	case models.TypeDocumentLot:
		if len(input.Lignes) > 0 || len(input.Conteneurs) > 0 {
			return nil, nil, nil, NewValidationError("type_document", "un document lot ne porte que des lots")
		}
	default:
		return nil, nil, nil, NewValidationError("type_document", "type de document inconnu")
	}

	lignes := make([]models.LigneOperation, 0, len(input.Lignes))
	for _, in := range input.Lignes {
		if err := validateOperation(&in); err != nil {
			return nil, nil, nil, err
		}
		lignes = append(lignes, models.LigneOperation{
			TypeOperation: in.TypeOperation,
			DateDebut:     in.DateDebut,
			DateFin:       in.DateFin,
			Lieu:          in.Lieu,
			Quantite:      in.Quantite,
			PrixUnitaire:  in.PrixUnitaire,
			MontantHT:     taxes.LineAmount(in.Quantite, in.PrixUnitaire),
		})
	}

	conteneurs := make([]models.Conteneur, 0, len(input.Conteneurs))
	for _, in := range input.Conteneurs {
		if in.Numero == "" {
			return nil, nil, nil, NewValidationError("conteneurs.numero", "numéro de conteneur requis")
		}
		ops := make([]models.OperationItem, 0, len(in.Operations))
		for _, op := range in.Operations {
			if err := validateOperation(&op); err != nil {
				return nil, nil, nil, err
			}
			ops = append(ops, models.OperationItem{
				TypeOperation: op.TypeOperation,
				DateDebut:     op.DateDebut,
				DateFin:       op.DateFin,
				Lieu:          op.Lieu,
				Quantite:      op.Quantite,
				PrixUnitaire:  op.PrixUnitaire,
				MontantHT:     taxes.LineAmount(op.Quantite, op.PrixUnitaire),
			})
		}
		conteneurs = append(conteneurs, models.Conteneur{
			Numero:     in.Numero,
			Type:       in.Type,
			Taille:     in.Taille,
			ArmateurID: in.ArmateurID,
			Operations: ops,
		})
	}

	lots := make([]models.LotItem, 0, len(input.Lots))
	for _, in := range input.Lots {
		if in.Designation == "" {
			return nil, nil, nil, NewValidationError("lots.designation", "désignation requise")
		}
		if in.Quantite <= 0 {
			return nil, nil, nil, NewValidationError("lots.quantite", "quantité strictement positive requise")
		}
		if in.PrixUnitaire < 0 {
			return nil, nil, nil, NewValidationError("lots.prix_unitaire", "prix unitaire négatif")
		}
		lots = append(lots, models.LotItem{
			Designation:  in.Designation,
			Quantite:     in.Quantite,
			Poids:        in.Poids,
			Volume:       in.Volume,
			PrixUnitaire: in.PrixUnitaire,
			MontantHT:    taxes.LineAmount(in.Quantite, in.PrixUnitaire),
		})
	}

	return lignes, conteneurs, lots, nil
}

func validateOperation(in *OperationInput) error {
	if in.TypeOperation == "" {
		return NewValidationError("type_operation", "type d'opération requis")
	}
	if in.Quantite <= 0 {
		return NewValidationError("quantite", "quantité strictement positive requise")
	}
	if in.PrixUnitaire < 0 {
		return NewValidationError("prix_unitaire", "prix unitaire négatif")
	}
	if in.DateDebut != nil && in.DateFin != nil && in.DateFin.Before(*in.DateDebut) {
		return NewValidationError("date_fin", "date de fin antérieure à la date de début")
	}
	return nil
}

// sumItemsHT totals the pre-tax amounts over whichever item family is populated.
func sumItemsHT(lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) float64 {
	total := decimal.Zero
	for _, l := range lignes {
		total = total.Add(decimal.NewFromFloat(l.MontantHT))
	}
	for _, c := range conteneurs {
		for _, op := range c.Operations {
			total = total.Add(decimal.NewFromFloat(op.MontantHT))
		}
	}
	for _, l := range lots {
		total = total.Add(decimal.NewFromFloat(l.MontantHT))
	}
	return total.Round(2).InexactFloat64()
}

// applyBreakdown copies a computed tax breakdown onto a document base
func applyBreakdown(base *models.DocumentBase, b taxes.Breakdown) {
	base.MontantHT = b.MontantHT
	base.MontantTVA = b.MontantTVA
	base.MontantCSS = b.MontantCSS
	base.MontantTTC = b.MontantTTC
}
