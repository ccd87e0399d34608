package models

import (
	"time"
)

// Document type constants (nature of the billed goods)
const (
	TypeDocumentConteneur   = "conteneur"
	TypeDocumentLot         = "lot"
	TypeDocumentIndependant = "independant"
)

// Document number prefixes
const (
	PrefixDevis   = "DEV"
	PrefixOrdre   = "OT"
	PrefixFacture = "FAC"
	PrefixAvoir   = "CRD"
)

// DocumentBase holds the fields shared by devis, ordres de travail and factures.
// Tax rates are snapshotted at creation time and never re-read from the
// configuration afterwards; all montant_* fields are derived from the line
// items and must not be hand-edited.
type DocumentBase struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Numero        string     `gorm:"uniqueIndex;not null" json:"numero"`
	ClientID      uint       `gorm:"not null;index" json:"client_id"`
	TransitaireID *uint      `gorm:"index" json:"transitaire_id"`
	TypeDocument  string     `gorm:"not null;default:independant" json:"type_document"`
	Date          time.Time  `gorm:"type:date;not null" json:"date"`
	TauxTVA       float64    `gorm:"type:decimal(5,2);not null" json:"taux_tva"`
	TauxCSS       float64    `gorm:"type:decimal(5,2);not null" json:"taux_css"`
	MontantHT     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"montant_ht"`
	MontantTVA    float64    `gorm:"type:decimal(15,2);not null;default:0" json:"montant_tva"`
	MontantCSS    float64    `gorm:"type:decimal(15,2);not null;default:0" json:"montant_css"`
	MontantTTC    float64    `gorm:"type:decimal(15,2);not null;default:0" json:"montant_ttc"`
	Notes         *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Devis status constants
const (
	DevisStatutBrouillon = "brouillon"
	DevisStatutEnvoye    = "envoye"
	DevisStatutAccepte   = "accepte"
	DevisStatutRefuse    = "refuse"
	DevisStatutExpire    = "expire"
	DevisStatutConverti  = "converti"
	DevisStatutAnnule    = "annule"
)

// Devis is a quote, the pre-contractual stage of the document lifecycle.
type Devis struct {
	DocumentBase
	Statut        string     `gorm:"not null;default:brouillon;index" json:"statut"`
	DateValidite  *time.Time `gorm:"type:date" json:"date_validite"`
	ConvertiEnID  *uint      `gorm:"index" json:"converti_en_id"` // OrdreTravail created from this devis

	Client      Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Transitaire *Transitaire     `gorm:"foreignKey:TransitaireID" json:"transitaire,omitempty"`
	Lignes      []LigneOperation `gorm:"polymorphic:Document;polymorphicValue:devis" json:"lignes,omitempty"`
	Conteneurs  []Conteneur      `gorm:"polymorphic:Document;polymorphicValue:devis" json:"conteneurs,omitempty"`
	Lots        []LotItem        `gorm:"polymorphic:Document;polymorphicValue:devis" json:"lots,omitempty"`
}

func (Devis) TableName() string {
	return "devis"
}

// IsTerminal returns true once the devis can no longer change
func (d *Devis) IsTerminal() bool {
	return d.Statut == DevisStatutConverti || d.Statut == DevisStatutAnnule
}

// MayEditLignes returns true while the line items can still be replaced
func (d *Devis) MayEditLignes() bool {
	return d.Statut == DevisStatutBrouillon
}

// MayConvert returns true if the devis can still be converted into an ordre de travail
func (d *Devis) MayConvert() bool {
	return d.Statut == DevisStatutAccepte || d.Statut == DevisStatutRefuse || d.Statut == DevisStatutExpire
}

// OrdreTravail status constants
const (
	OrdreStatutEnAttente = "en_attente"
	OrdreStatutEnCours   = "en_cours"
	OrdreStatutTermine   = "termine"
	OrdreStatutFacture   = "facture"
	OrdreStatutAnnule    = "annule"
)

// OrdreTravail is a work order, the contracted-but-not-yet-billed stage.
type OrdreTravail struct {
	DocumentBase
	Statut       string `gorm:"not null;default:en_attente;index" json:"statut"`
	DevisID      *uint  `gorm:"uniqueIndex" json:"devis_id"` // source devis; unique, one conversion per devis
	ConvertiEnID *uint  `gorm:"index" json:"converti_en_id"` // Facture created from this ordre

	Client      Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Transitaire *Transitaire     `gorm:"foreignKey:TransitaireID" json:"transitaire,omitempty"`
	Lignes      []LigneOperation `gorm:"polymorphic:Document;polymorphicValue:ordre_travail" json:"lignes,omitempty"`
	Conteneurs  []Conteneur      `gorm:"polymorphic:Document;polymorphicValue:ordre_travail" json:"conteneurs,omitempty"`
	Lots        []LotItem        `gorm:"polymorphic:Document;polymorphicValue:ordre_travail" json:"lots,omitempty"`
}

func (OrdreTravail) TableName() string {
	return "ordres_travail"
}

func (o *OrdreTravail) IsTerminal() bool {
	return o.Statut == OrdreStatutFacture || o.Statut == OrdreStatutAnnule
}

func (o *OrdreTravail) MayEditLignes() bool {
	return o.Statut == OrdreStatutEnAttente || o.Statut == OrdreStatutEnCours
}

func (o *OrdreTravail) MayConvert() bool {
	return o.Statut == OrdreStatutTermine
}

// Facture status constants
const (
	FactureStatutBrouillon          = "brouillon"
	FactureStatutEnvoyee            = "envoyee"
	FactureStatutPartiellementPayee = "partiellement_payee"
	FactureStatutPayee              = "payee"
	FactureStatutAnnulee            = "annulee"
)

// Facture is the billable, payable document.
type Facture struct {
	DocumentBase
	Statut        string     `gorm:"not null;default:brouillon;index" json:"statut"`
	OrdreID       *uint      `gorm:"uniqueIndex" json:"ordre_id"` // source ordre; unique, one facture per ordre
	DateEcheance  *time.Time `gorm:"type:date" json:"date_echeance"`

	Client      Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Transitaire *Transitaire     `gorm:"foreignKey:TransitaireID" json:"transitaire,omitempty"`
	Lignes      []LigneOperation `gorm:"polymorphic:Document;polymorphicValue:facture" json:"lignes,omitempty"`
	Conteneurs  []Conteneur      `gorm:"polymorphic:Document;polymorphicValue:facture" json:"conteneurs,omitempty"`
	Lots        []LotItem        `gorm:"polymorphic:Document;polymorphicValue:facture" json:"lots,omitempty"`
	Paiements   []Paiement       `gorm:"foreignKey:FactureID" json:"paiements,omitempty"`
	Annulation  *Annulation      `gorm:"foreignKey:FactureID" json:"annulation,omitempty"`
}

func (Facture) TableName() string {
	return "factures"
}

func (f *Facture) IsTerminal() bool {
	return f.Statut == FactureStatutPayee || f.Statut == FactureStatutAnnulee
}

func (f *Facture) MayEditLignes() bool {
	return !f.IsTerminal()
}

// MayReceivePaiement returns true while payments can be applied
func (f *Facture) MayReceivePaiement() bool {
	return f.Statut == FactureStatutEnvoyee || f.Statut == FactureStatutPartiellementPayee
}

// MayCancel returns true while the facture can still be cancelled
func (f *Facture) MayCancel() bool {
	return !f.IsTerminal()
}
