package models

import (
	"time"
)

// External system identifiers
const (
	SystemOPS = "OPS"
	SystemCNV = "CNV"
)

// Upstream prime statuses meaning "paid by the operations system"
const (
	PrimeStatutPayee = "payee"
	PrimeStatutPaye  = "paye"
)

// Prime is a commission record owned by one of the external operations
// databases (OPS for trucking, CNV for conventional cargo). It is strictly
// read-only for this system; whether a prime has been paid out locally is
// derived from the existence of a MouvementCaisse with the deterministic
// reference "{SYSTEM}-PRIME-{id}", never stored on the prime itself.
type Prime struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Montant      float64    `json:"montant"`
	Statut       string     `json:"statut"`
	Beneficiaire string     `json:"beneficiaire"`
	Telephone    *string    `json:"telephone"`
	Reference    *string    `json:"reference"`
	DatePaiement *time.Time `json:"date_paiement"`
}

func (Prime) TableName() string {
	return "primes"
}

// IsPayeeUpstream returns true when the operations system marked the prime paid
func (p *Prime) IsPayeeUpstream() bool {
	return p.Statut == PrimeStatutPayee || p.Statut == PrimeStatutPaye
}

// ValidSystem reports whether system names a known external source
func ValidSystem(system string) bool {
	return system == SystemOPS || system == SystemCNV
}

// DecaissementCategorie maps an external system to its caisse category
func DecaissementCategorie(system string) string {
	if system == SystemCNV {
		return CategorieDecaissementCNV
	}
	return CategorieDecaissementOPS
}

// PrimeView is a prime enriched with its locally derived payout state.
type PrimeView struct {
	Prime
	Decaisse bool `json:"decaisse"`
}

// PrimeStats summarises one external system for the dashboard.
// Available is false when the external database could not be reached and the
// numbers are therefore zero-valued.
type PrimeStats struct {
	System        string  `json:"system"`
	NombrePrimes  int     `json:"nombre_primes"`
	MontantTotal  float64 `json:"montant_total"`
	NombrePayees  int     `json:"nombre_payees"`
	MontantPayees float64 `json:"montant_payees"`
	Available     bool    `json:"available"`
}
