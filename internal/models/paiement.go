package models

import (
	"time"
)

// Payment mode constants
const (
	ModePaiementEspeces     = "especes"
	ModePaiementCheque      = "cheque"
	ModePaiementVirement    = "virement"
	ModePaiementMobileMoney = "mobile_money"
)

// Paiement is a payment applied against exactly one facture.
// The invariant Σ(paiements.montant) ≤ facture.montant_ttc is enforced by
// the payment service inside the same transaction that creates the row.
type Paiement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FactureID     uint      `gorm:"not null;index" json:"facture_id"`
	Montant       float64   `gorm:"type:decimal(15,2);not null" json:"montant"`
	ModePaiement  string    `gorm:"not null" json:"mode_paiement"`
	BanqueID      *uint     `gorm:"index" json:"banque_id"`
	ReferencePiece *string  `json:"reference_piece"` // cheque number, transfer reference...
	DatePaiement  time.Time `gorm:"type:date;not null" json:"date_paiement"`
	UserID        uint      `gorm:"index" json:"user_id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	Facture Facture `gorm:"foreignKey:FactureID" json:"facture,omitempty"`
	Banque  *Banque `gorm:"foreignKey:BanqueID" json:"banque,omitempty"`
}

func (Paiement) TableName() string {
	return "paiements"
}

// IsEspeces returns true for cash payments, which mirror into the caisse ledger
func (p *Paiement) IsEspeces() bool {
	return p.ModePaiement == ModePaiementEspeces
}

// ValidModePaiement reports whether mode is one of the accepted payment modes
func ValidModePaiement(mode string) bool {
	switch mode {
	case ModePaiementEspeces, ModePaiementCheque, ModePaiementVirement, ModePaiementMobileMoney:
		return true
	}
	return false
}

// Annulation records the cancellation of a facture. A facture carries at most
// one annulation; prior payments are never deleted by cancelling.
type Annulation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FactureID      uint      `gorm:"uniqueIndex;not null" json:"facture_id"`
	Motif          string    `gorm:"type:text;not null" json:"motif"`
	UserID         uint      `gorm:"index" json:"user_id"`
	DateAnnulation time.Time `gorm:"not null" json:"date_annulation"`
	CreatedAt      time.Time `json:"created_at"`

	Facture Facture `gorm:"foreignKey:FactureID" json:"-"`
}

func (Annulation) TableName() string {
	return "annulations"
}
