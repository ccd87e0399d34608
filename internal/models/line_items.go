package models

import (
	"time"
)

// LigneOperation is a flat line item attached directly to a document
// (type_document "independant"). MontantHT = Quantite × PrixUnitaire; the
// line never stores tax, which is computed once at the document level.
type LigneOperation struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	DocumentType  string     `gorm:"not null;index:idx_ligne_document" json:"-"`
	DocumentID    uint       `gorm:"not null;index:idx_ligne_document" json:"-"`
	TypeOperation string     `gorm:"not null" json:"type_operation"`
	DateDebut     *time.Time `gorm:"type:date" json:"date_debut"`
	DateFin       *time.Time `gorm:"type:date" json:"date_fin"`
	Lieu          *string    `json:"lieu"`
	Quantite      float64    `gorm:"type:decimal(12,2);not null;default:1" json:"quantite"`
	PrixUnitaire  float64    `gorm:"type:decimal(15,2);not null" json:"prix_unitaire"`
	MontantHT     float64    `gorm:"type:decimal(15,2);not null" json:"montant_ht"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (LigneOperation) TableName() string {
	return "lignes_operation"
}

// Conteneur groups operations performed on a single container
// (type_document "conteneur").
type Conteneur struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	DocumentType string `gorm:"not null;index:idx_conteneur_document" json:"-"`
	DocumentID   uint   `gorm:"not null;index:idx_conteneur_document" json:"-"`
	Numero       string `gorm:"not null" json:"numero"`
	Type         string `json:"type"`
	Taille       string `json:"taille"`
	ArmateurID   *uint  `gorm:"index" json:"armateur_id"`

	Armateur   *Armateur       `gorm:"foreignKey:ArmateurID" json:"armateur,omitempty"`
	Operations []OperationItem `gorm:"foreignKey:ConteneurID" json:"operations,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (Conteneur) TableName() string {
	return "conteneurs"
}

// MontantHT sums the container's operations
func (c *Conteneur) MontantHT() float64 {
	total := 0.0
	for _, op := range c.Operations {
		total += op.MontantHT
	}
	return total
}

// OperationItem is an operation scoped to a container. Same shape as
// LigneOperation but owned by a Conteneur rather than by the document.
type OperationItem struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ConteneurID   uint       `gorm:"not null;index" json:"conteneur_id"`
	TypeOperation string     `gorm:"not null" json:"type_operation"`
	DateDebut     *time.Time `gorm:"type:date" json:"date_debut"`
	DateFin       *time.Time `gorm:"type:date" json:"date_fin"`
	Lieu          *string    `json:"lieu"`
	Quantite      float64    `gorm:"type:decimal(12,2);not null;default:1" json:"quantite"`
	PrixUnitaire  float64    `gorm:"type:decimal(15,2);not null" json:"prix_unitaire"`
	MontantHT     float64    `gorm:"type:decimal(15,2);not null" json:"montant_ht"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (OperationItem) TableName() string {
	return "operation_items"
}

// LotItem is a bulk-cargo line (type_document "lot").
type LotItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DocumentType string    `gorm:"not null;index:idx_lot_document" json:"-"`
	DocumentID   uint      `gorm:"not null;index:idx_lot_document" json:"-"`
	Designation  string    `gorm:"not null" json:"designation"`
	Quantite     float64   `gorm:"type:decimal(12,2);not null;default:1" json:"quantite"`
	Poids        *float64  `gorm:"type:decimal(12,3)" json:"poids"`
	Volume       *float64  `gorm:"type:decimal(12,3)" json:"volume"`
	PrixUnitaire float64   `gorm:"type:decimal(15,2);not null" json:"prix_unitaire"`
	MontantHT    float64   `gorm:"type:decimal(15,2);not null" json:"montant_ht"`
	CreatedAt    time.Time `json:"created_at"`
}

func (LotItem) TableName() string {
	return "lot_items"
}
