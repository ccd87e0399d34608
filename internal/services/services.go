package services

import (
	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/cache"
	"github.com/mkoumba/translog-api/internal/config"
	"github.com/mkoumba/translog-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Devis      *DevisService
	Ordre      *OrdreService
	Facture    *FactureService
	Conversion *ConversionService
	Paiement   *PaiementService
	Annulation *AnnulationService
	Caisse     *CaisseService
	Credit     *CreditService
	Taxe       *TaxeService
	Prime      *PrimeService
	Client     *ClientService
	Audit      *AuditService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, primeCache *cache.PrimeCache, cfg *config.Config, db *gorm.DB, queue AsyncQueue) *Services {
	auditSvc := NewAuditService(db, queue)

	return &Services{
		Devis:      NewDevisService(repos.Devis, repos.Client, auditSvc, cfg),
		Ordre:      NewOrdreService(repos.Ordre, repos.Client, auditSvc, cfg),
		Facture:    NewFactureService(repos.Facture, repos.Client, auditSvc, cfg),
		Conversion: NewConversionService(db, repos.Devis, repos.Ordre, repos.Facture, auditSvc),
		Paiement:   NewPaiementService(db, repos.Paiement, repos.Facture, repos.Mouvement, auditSvc),
		Annulation: NewAnnulationService(db, repos.Facture, repos.Paiement, repos.Mouvement, auditSvc),
		Caisse:     NewCaisseService(repos.Mouvement, auditSvc),
		Credit:     NewCreditService(db, repos.Credit, auditSvc),
		Taxe:       NewTaxeService(db, repos.Taxe, repos.Facture, auditSvc),
		Prime:      NewPrimeService(repos.Prime, repos.Mouvement, primeCache, auditSvc, cfg.ExternalQueryTimeout),
		Client:     NewClientService(repos.Client, auditSvc),
		Audit:      auditSvc,
	}
}
