package handlers

import (
	"github.com/mkoumba/translog-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Devis     *DevisHandler
	Ordre     *OrdreHandler
	Facture   *FactureHandler
	Paiement  *PaiementHandler
	Caisse    *CaisseHandler
	Credit    *CreditHandler
	Taxe      *TaxeHandler
	Prime     *PrimeHandler
	Reference *ReferenceHandler
	Audit     *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(svcs.Prime),
		Devis:     NewDevisHandler(svcs.Devis, svcs.Conversion),
		Ordre:     NewOrdreHandler(svcs.Ordre, svcs.Conversion),
		Facture:   NewFactureHandler(svcs.Facture, svcs.Paiement, svcs.Annulation),
		Paiement:  NewPaiementHandler(svcs.Paiement),
		Caisse:    NewCaisseHandler(svcs.Caisse),
		Credit:    NewCreditHandler(svcs.Credit),
		Taxe:      NewTaxeHandler(svcs.Taxe),
		Prime:     NewPrimeHandler(svcs.Prime),
		Reference: NewReferenceHandler(svcs.Client),
		Audit:     NewAuditHandler(svcs.Audit),
	}
}
