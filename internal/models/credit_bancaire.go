package models

import (
	"time"
)

// Credit status constants
const (
	CreditStatutActif   = "actif"
	CreditStatutSolde   = "solde"
	CreditStatutDefaut  = "en_defaut"
)

// Echeance status constants
const (
	EcheanceStatutEnAttente = "en_attente"
	EcheanceStatutPayee     = "payee"
)

// CreditBancaire is a bank credit with simple interest:
// montant_interet = principal × taux/100 × durée/12,
// montant_total = principal + interet. The amortization schedule is generated
// once at creation; the last échéance absorbs the rounding remainder so that
// the installments sum exactly to montant_total.
type CreditBancaire struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BanqueID        uint      `gorm:"not null;index" json:"banque_id"`
	Objet           *string   `json:"objet"`
	MontantPrincipal float64  `gorm:"type:decimal(15,2);not null" json:"montant_principal"`
	TauxInteret     float64   `gorm:"type:decimal(5,2);not null" json:"taux_interet"`
	DureeMois       int       `gorm:"not null" json:"duree_mois"`
	MontantInteret  float64   `gorm:"type:decimal(15,2);not null" json:"montant_interet"`
	MontantTotal    float64   `gorm:"type:decimal(15,2);not null" json:"montant_total"`
	DateDebut       time.Time `gorm:"type:date;not null" json:"date_debut"`
	Statut          string    `gorm:"not null;default:actif;index" json:"statut"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Banque         Banque               `gorm:"foreignKey:BanqueID" json:"banque,omitempty"`
	Echeances      []EcheanceCredit     `gorm:"foreignKey:CreditID" json:"echeances,omitempty"`
	Remboursements []RemboursementCredit `gorm:"foreignKey:CreditID" json:"remboursements,omitempty"`
}

func (CreditBancaire) TableName() string {
	return "credits_bancaires"
}

// EcheanceCredit is one scheduled installment of a bank credit.
type EcheanceCredit struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreditID       uint      `gorm:"not null;index" json:"credit_id"`
	NumeroEcheance int       `gorm:"not null" json:"numero_echeance"`
	DateEcheance   time.Time `gorm:"type:date;not null" json:"date_echeance"`
	Montant        float64   `gorm:"type:decimal(15,2);not null" json:"montant"`
	Statut         string    `gorm:"not null;default:en_attente" json:"statut"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (EcheanceCredit) TableName() string {
	return "echeances_credit"
}

// RemboursementCredit is a repayment recorded against a credit.
// Σ(remboursements.montant) ≤ montant_total; the credit becomes soldé exactly
// when the sum reaches the total.
type RemboursementCredit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreditID   uint      `gorm:"not null;index" json:"credit_id"`
	EcheanceID *uint     `gorm:"index" json:"echeance_id"`
	Montant    float64   `gorm:"type:decimal(15,2);not null" json:"montant"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	UserID     uint      `gorm:"index" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (RemboursementCredit) TableName() string {
	return "remboursements_credit"
}
