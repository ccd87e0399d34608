package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/statemachine"
	"github.com/mkoumba/translog-api/internal/taxes"
)

// montantEpsilon absorbs the float storage representation when comparing
// monetary sums; all amounts are rounded to 2 decimals upstream.
const montantEpsilon = 0.005

// PaiementInput carries the fields of an incoming payment
type PaiementInput struct {
	Montant        float64   `json:"montant" binding:"required"`
	ModePaiement   string    `json:"mode_paiement" binding:"required"`
	BanqueID       *uint     `json:"banque_id"`
	ReferencePiece *string   `json:"reference_piece"`
	DatePaiement   time.Time `json:"date_paiement"`
}

// PaiementService applies payments to factures. Every mutation locks the
// facture row first so the Σ(paiements) ≤ montant_ttc check and the status
// recomputation are serialized across concurrent requests.
type PaiementService struct {
	db            *gorm.DB
	repo          repository.PaiementRepository
	factureRepo   repository.FactureRepository
	mouvementRepo repository.MouvementRepository
	auditSvc      *AuditService
}

func NewPaiementService(
	db *gorm.DB,
	repo repository.PaiementRepository,
	factureRepo repository.FactureRepository,
	mouvementRepo repository.MouvementRepository,
	auditSvc *AuditService,
) *PaiementService {
	return &PaiementService{
		db:            db,
		repo:          repo,
		factureRepo:   factureRepo,
		mouvementRepo: mouvementRepo,
		auditSvc:      auditSvc,
	}
}

func validatePaiementInput(input *PaiementInput) error {
	if input.Montant <= 0 {
		return NewValidationError("montant", "montant strictement positif requis")
	}
	if !models.ValidModePaiement(input.ModePaiement) {
		return NewValidationError("mode_paiement", "mode de paiement inconnu")
	}
	if (input.ModePaiement == models.ModePaiementCheque || input.ModePaiement == models.ModePaiementVirement) &&
		input.BanqueID == nil {
		return NewValidationError("banque_id", "banque requise pour ce mode de paiement")
	}
	if input.DatePaiement.IsZero() {
		input.DatePaiement = time.Now()
	}
	return nil
}

// advancePaiementStatut moves the facture forward once the cumulative paid
// total is known: payée when the sum reaches montant_ttc, partiellement payée
// on the first partial payment.
func advancePaiementStatut(ctx context.Context, facture *models.Facture, newSum float64) error {
	f := statemachine.NewFactureFSM(facture)
	switch {
	case newSum >= facture.MontantTTC-montantEpsilon:
		return f.Solder(ctx)
	case facture.Statut == models.FactureStatutEnvoyee:
		return f.PaiementPartiel(ctx)
	}
	return nil
}

// checkResteAPayer rejects an amount exceeding what the facture still owes.
// The conflict carries the remaining balance.
func checkResteAPayer(facture *models.Facture, sum, montant float64, reason string) error {
	reste := taxes.Round2(facture.MontantTTC - sum)
	if montant > reste+montantEpsilon {
		return &ConflictError{Reason: reason, ResteAPayer: &reste}
	}
	return nil
}

// resetStatutAfterDelete brings a partiellement payée facture back to envoyée
// once no payment remains. Returns true when the statut changed.
func resetStatutAfterDelete(ctx context.Context, facture *models.Facture, remaining float64) (bool, error) {
	if facture.Statut != models.FactureStatutPartiellementPayee || remaining > montantEpsilon {
		return false, nil
	}
	if err := statemachine.NewFactureFSM(facture).Reinitialiser(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// applyToFactureTx creates one payment against a locked facture, advances the
// facture's status and mirrors cash payments into the caisse ledger.
func (s *PaiementService) applyToFactureTx(tx *gorm.DB, facture *models.Facture, input *PaiementInput, montant float64, userID uint) (*models.Paiement, error) {
	paiement := &models.Paiement{
		FactureID:      facture.ID,
		Montant:        montant,
		ModePaiement:   input.ModePaiement,
		BanqueID:       input.BanqueID,
		ReferencePiece: input.ReferencePiece,
		DatePaiement:   input.DatePaiement,
		UserID:         userID,
	}
	if err := s.repo.CreateTx(tx, paiement); err != nil {
		return nil, err
	}

	newSum, err := s.repo.SumByFactureTx(tx, facture.ID)
	if err != nil {
		return nil, err
	}

	if err := advancePaiementStatut(tx.Statement.Context, facture, newSum); err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Facture{}).Where("id = ?", facture.ID).
		Update("statut", facture.Statut).Error; err != nil {
		return nil, err
	}

	if paiement.IsEspeces() {
		ref := models.PaiementReference(paiement.ID)
		mouvement := &models.MouvementCaisse{
			Type:      models.MouvementTypeEntree,
			Categorie: models.CategoriePaiementFacture,
			Montant:   montant,
			Libelle:   fmt.Sprintf("Paiement facture %s", facture.Numero),
			Reference: &ref,
			Source:    models.MouvementSourceCaisse,
			Date:      input.DatePaiement,
			UserID:    userID,
		}
		if err := s.mouvementRepo.CreateTx(tx, mouvement); err != nil {
			return nil, err
		}
	}

	return paiement, nil
}

// ApplySingle applies one payment to one facture. Overpayment is rejected
// with the remaining amount in the conflict payload.
func (s *PaiementService) ApplySingle(ctx context.Context, factureID uint, input *PaiementInput, userID uint) (*models.Paiement, error) {
	if err := validatePaiementInput(input); err != nil {
		return nil, err
	}

	var paiement *models.Paiement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var facture models.Facture
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&facture, factureID).Error; err != nil {
			return err
		}
		if !facture.MayReceivePaiement() {
			return &ConflictError{Reason: "facture non ouverte aux paiements", StatutActuel: facture.Statut}
		}

		sum, err := s.repo.SumByFactureTx(tx, facture.ID)
		if err != nil {
			return err
		}
		if err := checkResteAPayer(&facture, sum, input.Montant, "montant supérieur au reste à payer"); err != nil {
			return err
		}

		paiement, err = s.applyToFactureTx(tx, &facture, input, input.Montant, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "PAIEMENT", "Facture", factureID,
		fmt.Sprintf("Paiement de %.2f (%s)", paiement.Montant, paiement.ModePaiement), "", "")
	return paiement, nil
}

// AllocationInput names one facture and the share of the global payment
// applied to it
type AllocationInput struct {
	FactureID uint    `json:"facture_id" binding:"required"`
	Montant   float64 `json:"montant" binding:"required"`
}

// PaiementGlobalInput carries one payment spread over several factures of a
// client. Montant announces the total; it must match the allocation sum.
type PaiementGlobalInput struct {
	ClientID uint `json:"client_id" binding:"required"`
	PaiementInput
	Allocations []AllocationInput `json:"allocations" binding:"required"`
}

// ApplyGlobal applies one payment against several factures of the same
// client. The batch is validated before any row is touched and written
// all-or-nothing: an announced total that does not match the allocations,
// or any allocation exceeding its facture's reste, rejects the whole batch.
func (s *PaiementService) ApplyGlobal(ctx context.Context, input *PaiementGlobalInput, userID uint) ([]models.Paiement, error) {
	if err := validatePaiementInput(&input.PaiementInput); err != nil {
		return nil, err
	}
	if len(input.Allocations) == 0 {
		return nil, NewValidationError("allocations", "au moins une allocation requise")
	}

	totalAlloue := 0.0
	for _, a := range input.Allocations {
		if a.Montant <= 0 {
			return nil, NewValidationError("allocations", "montant d'allocation strictement positif requis")
		}
		totalAlloue += a.Montant
	}
	totalAlloue = taxes.Round2(totalAlloue)
	if totalAlloue < input.Montant-0.01 || totalAlloue > input.Montant+0.01 {
		return nil, NewValidationError("montant",
			fmt.Sprintf("le total annoncé (%.2f) ne correspond pas aux allocations (%.2f)", input.Montant, totalAlloue))
	}

	var created []models.Paiement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, alloc := range input.Allocations {
			var facture models.Facture
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&facture, alloc.FactureID).Error; err != nil {
				return err
			}
			if facture.ClientID != input.ClientID {
				return NewValidationError("allocations",
					fmt.Sprintf("la facture %s n'appartient pas au client", facture.Numero))
			}
			if !facture.MayReceivePaiement() {
				return &ConflictError{Reason: "facture non ouverte aux paiements", StatutActuel: facture.Statut}
			}

			sum, err := s.repo.SumByFactureTx(tx, facture.ID)
			if err != nil {
				return err
			}
			if err := checkResteAPayer(&facture, sum, alloc.Montant, "allocation supérieure au reste à payer"); err != nil {
				return err
			}

			paiement, err := s.applyToFactureTx(tx, &facture, &input.PaiementInput, alloc.Montant, userID)
			if err != nil {
				return err
			}
			created = append(created, *paiement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "PAIEMENT", "Client", input.ClientID,
		fmt.Sprintf("Paiement global de %.2f réparti sur %d facture(s)", input.Montant, len(created)), "", "")
	return created, nil
}

// Delete removes a payment from a still-open facture and reverses its caisse
// movement. Payments on a soldée or annulée facture are frozen history.
func (s *PaiementService) Delete(ctx context.Context, paiementID uint, userID uint) error {
	var factureID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paiement models.Paiement
		if err := tx.First(&paiement, paiementID).Error; err != nil {
			return err
		}

		var facture models.Facture
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&facture, paiement.FactureID).Error; err != nil {
			return err
		}
		factureID = facture.ID
		if facture.IsTerminal() {
			return &ConflictError{Reason: "facture figée, paiement non supprimable", StatutActuel: facture.Statut}
		}

		if err := s.repo.DeleteTx(tx, paiement.ID); err != nil {
			return err
		}
		if err := s.mouvementRepo.DeleteByReferenceTx(tx, models.PaiementReference(paiement.ID)); err != nil {
			return err
		}

		sum, err := s.repo.SumByFactureTx(tx, facture.ID)
		if err != nil {
			return err
		}
		changed, err := resetStatutAfterDelete(tx.Statement.Context, &facture, sum)
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Model(&models.Facture{}).Where("id = ?", facture.ID).
				Update("statut", facture.Statut).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditSvc.Log(ctx, userID, "DELETE", "Paiement", paiementID,
		fmt.Sprintf("Suppression du paiement sur la facture #%d", factureID), "", "")
	return nil
}

// ListByFacture returns the payments of one facture
func (s *PaiementService) ListByFacture(ctx context.Context, factureID uint) ([]models.Paiement, error) {
	return s.repo.ListByFacture(ctx, factureID)
}
