package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/statemachine"
	"github.com/mkoumba/translog-api/internal/taxes"
)

// AnnulationService cancels factures and refunds their payments. Cancelling
// never deletes payments; the refund is a separate, explicit movement so the
// ledger keeps both sides of the story.
type AnnulationService struct {
	db            *gorm.DB
	factureRepo   repository.FactureRepository
	paiementRepo  repository.PaiementRepository
	mouvementRepo repository.MouvementRepository
	auditSvc      *AuditService
}

func NewAnnulationService(
	db *gorm.DB,
	factureRepo repository.FactureRepository,
	paiementRepo repository.PaiementRepository,
	mouvementRepo repository.MouvementRepository,
	auditSvc *AuditService,
) *AnnulationService {
	return &AnnulationService{
		db:            db,
		factureRepo:   factureRepo,
		paiementRepo:  paiementRepo,
		mouvementRepo: mouvementRepo,
		auditSvc:      auditSvc,
	}
}

// Annuler cancels a facture with a mandatory motif. A payée facture cannot
// be cancelled; refund its payments first is not an option either, the
// settled state is final.
func (s *AnnulationService) Annuler(ctx context.Context, factureID uint, motif string, userID uint) (*models.Facture, error) {
	if motif == "" {
		return nil, NewValidationError("motif", "motif d'annulation requis")
	}

	var facture models.Facture
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&facture, factureID).Error; err != nil {
			return err
		}

		if err := statemachine.NewFactureFSM(&facture).Annuler(tx.Statement.Context); err != nil {
			return err
		}

		annulation := &models.Annulation{
			FactureID:      facture.ID,
			Motif:          motif,
			UserID:         userID,
			DateAnnulation: time.Now(),
		}
		if err := tx.Create(annulation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: "facture déjà annulée", StatutActuel: facture.Statut}
			}
			return err
		}

		return tx.Model(&models.Facture{}).Where("id = ?", facture.ID).
			Update("statut", facture.Statut).Error
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "ANNULATION", "Facture", factureID,
		fmt.Sprintf("Annulation de la facture %s: %s", facture.Numero, motif), "", "")
	return s.factureRepo.FindByID(ctx, factureID)
}

// RemboursementFactureInput carries an optional refund amount and source.
// A zero montant refunds everything received; a nil input refunds everything
// in cash.
type RemboursementFactureInput struct {
	Montant  float64 `json:"montant"`
	Source   string  `json:"source"`
	BanqueID *uint   `json:"banque_id"`
}

// Rembourser writes the refund of an annulled facture's payments into the
// ledger: one sortie, at most once per facture thanks to the deterministic
// reference.
func (s *AnnulationService) Rembourser(ctx context.Context, factureID uint, input *RemboursementFactureInput, userID uint) (*models.MouvementCaisse, error) {
	if input == nil {
		input = &RemboursementFactureInput{}
	}
	if input.Montant < 0 {
		return nil, NewValidationError("montant", "montant négatif")
	}
	if input.Source == "" {
		input.Source = models.MouvementSourceCaisse
	}
	if input.Source != models.MouvementSourceCaisse && input.Source != models.MouvementSourceBanque {
		return nil, NewValidationError("source", "source caisse ou banque requise")
	}
	if input.Source == models.MouvementSourceBanque && input.BanqueID == nil {
		return nil, NewValidationError("banque_id", "banque requise pour un remboursement bancaire")
	}

	var mouvement *models.MouvementCaisse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var facture models.Facture
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&facture, factureID).Error; err != nil {
			return err
		}
		if facture.Statut != models.FactureStatutAnnulee {
			return &ConflictError{Reason: "seule une facture annulée se rembourse", StatutActuel: facture.Statut}
		}

		sum, err := s.paiementRepo.SumByFactureTx(tx, facture.ID)
		if err != nil {
			return err
		}
		sum = taxes.Round2(sum)
		if sum <= 0 {
			return &ConflictError{Reason: "aucun paiement à rembourser", StatutActuel: facture.Statut}
		}
		montant := input.Montant
		if montant == 0 {
			montant = sum
		}
		if montant > sum+0.005 {
			return &ConflictError{Reason: "remboursement supérieur aux paiements reçus", ResteAPayer: &sum}
		}

		ref := models.RemboursementReference(facture.ID)
		mouvement = &models.MouvementCaisse{
			Type:      models.MouvementTypeSortie,
			Categorie: models.CategorieRemboursementClient,
			Montant:   montant,
			Libelle:   fmt.Sprintf("Remboursement facture %s", facture.Numero),
			Reference: &ref,
			BanqueID:  input.BanqueID,
			Source:    input.Source,
			Date:      time.Now(),
			UserID:    userID,
		}
		if err := s.mouvementRepo.CreateTx(tx, mouvement); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: "facture déjà remboursée", StatutActuel: facture.Statut}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "REMBOURSEMENT", "Facture", factureID,
		fmt.Sprintf("Remboursement de %.2f", mouvement.Montant), "", "")
	return mouvement, nil
}
