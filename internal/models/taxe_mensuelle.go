package models

import (
	"time"
)

// Tax type constants
const (
	TypeTaxeTVA = "tva"
	TypeTaxeCSS = "css"
)

// TaxeMensuelle accumulates one tax type over one month, recomputed from the
// month's factures. Once Cloture is set the row is frozen; recomputation
// fails with a period-closed conflict until the period is explicitly reopened.
type TaxeMensuelle struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Annee            int       `gorm:"not null;uniqueIndex:idx_taxe_periode" json:"annee"`
	Mois             int       `gorm:"not null;uniqueIndex:idx_taxe_periode" json:"mois"`
	TypeTaxe         string    `gorm:"not null;uniqueIndex:idx_taxe_periode" json:"type_taxe"`
	MontantHTTotal   float64   `gorm:"type:decimal(15,2);not null;default:0" json:"montant_ht_total"`
	MontantTaxeTotal float64   `gorm:"type:decimal(15,2);not null;default:0" json:"montant_taxe_total"`
	MontantExonere   float64   `gorm:"type:decimal(15,2);not null;default:0" json:"montant_exonere"`
	NombreDocuments  int       `gorm:"not null;default:0" json:"nombre_documents"`
	Cloture          bool      `gorm:"not null;default:false" json:"cloture"`
	ClotureAt        *time.Time `json:"cloture_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (TaxeMensuelle) TableName() string {
	return "taxes_mensuelles"
}

// DocumentSequence is the per-prefix, per-year monotonic counter backing
// document numbering. Rows are incremented under a row-level lock so that
// concurrent creations never produce duplicate or out-of-order numbers.
type DocumentSequence struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Prefix        string `gorm:"not null;uniqueIndex:idx_sequence_prefix_annee" json:"prefix"`
	Annee         int    `gorm:"not null;uniqueIndex:idx_sequence_prefix_annee" json:"annee"`
	DernierNumero int    `gorm:"not null;default:0" json:"dernier_numero"`
}

func (DocumentSequence) TableName() string {
	return "document_sequences"
}
