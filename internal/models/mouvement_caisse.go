package models

import (
	"fmt"
	"time"
)

// Movement type constants
const (
	MouvementTypeEntree = "entree"
	MouvementTypeSortie = "sortie"
)

// Movement source constants
const (
	MouvementSourceCaisse = "caisse"
	MouvementSourceBanque = "banque"
)

// System-owned movement categories. Movements in these categories are created
// by the core itself and cannot be deleted through the caisse API; they only
// disappear as a side effect of deleting the originating record.
const (
	CategoriePaiementFacture     = "Paiement facture"
	CategorieRemboursementClient = "Remboursement client"
	CategorieDecaissementOPS     = "Décaissement prime OPS"
	CategorieDecaissementCNV     = "Décaissement prime CNV"
)

// CategoriesMouvement is the catalogue of free-form categories offered by the
// UI for manually entered movements.
var CategoriesMouvement = []string{
	"Vente",
	"Achat fournitures",
	"Salaires",
	"Loyer",
	"Carburant",
	"Entretien",
	"Impôts et taxes",
	"Frais bancaires",
	"Remboursement crédit",
	"Autre",
}

// MouvementCaisse is an append-only cash or bank movement. The running
// balance is always computed on read (Σ entrées − Σ sorties), never stored.
// Reference is the idempotency key for system-generated movements and is
// unique at the storage level; the conflict on duplicate insert is what
// guarantees at-most-once semantics for décaissements.
type MouvementCaisse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"not null;index" json:"type"`
	Categorie string    `gorm:"not null;index" json:"categorie"`
	Montant   float64   `gorm:"type:decimal(15,2);not null" json:"montant"`
	Libelle   string    `json:"libelle"`
	Reference *string   `gorm:"uniqueIndex" json:"reference"`
	BanqueID  *uint     `gorm:"index" json:"banque_id"`
	Source    string    `gorm:"not null;default:caisse;index" json:"source"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	UserID    uint      `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Banque *Banque `gorm:"foreignKey:BanqueID" json:"banque,omitempty"`
}

func (MouvementCaisse) TableName() string {
	return "mouvements_caisse"
}

// IsSystemOwned returns true for movements the caisse API must not delete directly
func (m *MouvementCaisse) IsSystemOwned() bool {
	switch m.Categorie {
	case CategoriePaiementFacture, CategorieRemboursementClient,
		CategorieDecaissementOPS, CategorieDecaissementCNV:
		return true
	}
	return false
}

// PaiementReference builds the idempotency reference for a facture payment movement
func PaiementReference(paiementID uint) string {
	return fmt.Sprintf("PAIEMENT-%d", paiementID)
}

// RemboursementReference builds the idempotency reference for the refund of
// an annulled facture's payments. One refund per facture.
func RemboursementReference(factureID uint) string {
	return fmt.Sprintf("REMBOURSEMENT-%d", factureID)
}

// PrimeReference builds the idempotency reference for an external prime payout.
// The format "{SYSTEM}-PRIME-{id}" is persisted and must stay stable for
// compatibility with historic rows.
func PrimeReference(system string, primeID uint) string {
	return fmt.Sprintf("%s-PRIME-%d", system, primeID)
}
