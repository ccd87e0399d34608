package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mkoumba/translog-api/internal/config"
	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/statemachine"
	"github.com/mkoumba/translog-api/internal/taxes"
)

type FactureService struct {
	repo       repository.FactureRepository
	clientRepo repository.ClientRepository
	auditSvc   *AuditService
	cfg        *config.Config
}

func NewFactureService(
	repo repository.FactureRepository,
	clientRepo repository.ClientRepository,
	auditSvc *AuditService,
	cfg *config.Config,
) *FactureService {
	return &FactureService{
		repo:       repo,
		clientRepo: clientRepo,
		auditSvc:   auditSvc,
		cfg:        cfg,
	}
}

// Create builds a facture directly, without a source ordre de travail.
func (s *FactureService) Create(ctx context.Context, input *DocumentInput, userID uint) (*models.Facture, error) {
	if input.TypeDocument == "" {
		input.TypeDocument = models.TypeDocumentIndependant
	}
	if _, err := s.clientRepo.FindClientByID(ctx, input.ClientID); err != nil {
		return nil, NewValidationError("client_id", "client introuvable")
	}

	lignes, conteneurs, lots, err := buildDocumentItems(input)
	if err != nil {
		return nil, err
	}

	facture := &models.Facture{
		DocumentBase: models.DocumentBase{
			ClientID:      input.ClientID,
			TransitaireID: input.TransitaireID,
			TypeDocument:  input.TypeDocument,
			Date:          input.Date,
			TauxTVA:       s.cfg.TauxTVA,
			TauxCSS:       s.cfg.TauxCSS,
			Notes:         input.Notes,
		},
		Statut:       models.FactureStatutBrouillon,
		DateEcheance: input.DateEcheance,
		Lignes:       lignes,
		Conteneurs:   conteneurs,
		Lots:         lots,
	}
	if facture.Date.IsZero() {
		facture.Date = time.Now()
	}

	ht := sumItemsHT(lignes, conteneurs, lots)
	applyBreakdown(&facture.DocumentBase, taxes.Compute(ht, facture.TauxTVA, facture.TauxCSS))

	if err := s.repo.Create(ctx, facture); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CREATE", "Facture", facture.ID,
		fmt.Sprintf("Création de la facture %s", facture.Numero), "", "")
	return facture, nil
}

func (s *FactureService) FindByID(ctx context.Context, id uint) (*models.Facture, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *FactureService) List(ctx context.Context, q *repository.ListQuery) ([]models.Facture, int64, error) {
	return s.repo.List(ctx, q)
}

// Update edits the metadata of a non-terminal facture.
func (s *FactureService) Update(ctx context.Context, id uint, input *DocumentInput, userID uint) (*models.Facture, error) {
	facture, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if facture.IsTerminal() {
		return nil, &ConflictError{Reason: "facture figée", StatutActuel: facture.Statut}
	}

	facture.ClientID = input.ClientID
	facture.TransitaireID = input.TransitaireID
	facture.Notes = input.Notes
	facture.DateEcheance = input.DateEcheance
	if !input.Date.IsZero() {
		facture.Date = input.Date
	}

	if err := s.repo.Update(ctx, facture); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "UPDATE", "Facture", facture.ID,
		fmt.Sprintf("Modification de la facture %s", facture.Numero), "", "")
	return facture, nil
}

// ReplaceLignes swaps the item set of a non-terminal facture. Lowering the
// total below the amount already paid is rejected, otherwise the Σ(paiements)
// ≤ montant_ttc invariant would silently break.
func (s *FactureService) ReplaceLignes(ctx context.Context, id uint, input *DocumentInput, userID uint) (*models.Facture, error) {
	facture, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !facture.MayEditLignes() {
		return nil, &ConflictError{Reason: "lignes non modifiables", StatutActuel: facture.Statut}
	}

	if input.TypeDocument == "" {
		input.TypeDocument = facture.TypeDocument
	}
	lignes, conteneurs, lots, err := buildDocumentItems(input)
	if err != nil {
		return nil, err
	}

	ht := sumItemsHT(lignes, conteneurs, lots)
	breakdown := taxes.Compute(ht, facture.TauxTVA, facture.TauxCSS)

	dejaPaye := 0.0
	for _, p := range facture.Paiements {
		dejaPaye += p.Montant
	}
	dejaPaye = taxes.Round2(dejaPaye)
	if breakdown.MontantTTC < dejaPaye-0.005 {
		return nil, &ConflictError{
			Reason:       "montant inférieur aux paiements déjà reçus",
			StatutActuel: facture.Statut,
		}
	}

	applyBreakdown(&facture.DocumentBase, breakdown)

	if facture.TypeDocument != input.TypeDocument {
		facture.TypeDocument = input.TypeDocument
		if err := s.repo.Update(ctx, facture); err != nil {
			return nil, err
		}
	}
	if err := s.repo.ReplaceItems(ctx, facture, lignes, conteneurs, lots); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "UPDATE", "Facture", facture.ID,
		fmt.Sprintf("Remplacement des lignes de la facture %s", facture.Numero), "", "")
	return s.repo.FindByID(ctx, id)
}

// Envoyer moves a brouillon facture to envoyee, opening it for payments.
func (s *FactureService) Envoyer(ctx context.Context, id uint, userID uint) (*models.Facture, error) {
	facture, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := statemachine.NewFactureFSM(facture).Envoyer(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, facture); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "STATUT", "Facture", facture.ID,
		fmt.Sprintf("Facture %s envoyée", facture.Numero), "", "")
	return facture, nil
}
