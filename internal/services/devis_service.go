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

type DevisService struct {
	repo       repository.DevisRepository
	clientRepo repository.ClientRepository
	auditSvc   *AuditService
	cfg        *config.Config
}

func NewDevisService(
	repo repository.DevisRepository,
	clientRepo repository.ClientRepository,
	auditSvc *AuditService,
	cfg *config.Config,
) *DevisService {
	return &DevisService{
		repo:       repo,
		clientRepo: clientRepo,
		auditSvc:   auditSvc,
		cfg:        cfg,
	}
}

// Create builds a devis from the input, snapshotting the current tax rates
// and computing the totals from the line items.
func (s *DevisService) Create(ctx context.Context, input *DocumentInput, userID uint) (*models.Devis, error) {
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

	devis := &models.Devis{
		DocumentBase: models.DocumentBase{
			ClientID:      input.ClientID,
			TransitaireID: input.TransitaireID,
			TypeDocument:  input.TypeDocument,
			Date:          input.Date,
			TauxTVA:       s.cfg.TauxTVA,
			TauxCSS:       s.cfg.TauxCSS,
			Notes:         input.Notes,
		},
		Statut:       models.DevisStatutBrouillon,
		DateValidite: input.DateValidite,
		Lignes:       lignes,
		Conteneurs:   conteneurs,
		Lots:         lots,
	}
	if devis.Date.IsZero() {
		devis.Date = time.Now()
	}

	ht := sumItemsHT(lignes, conteneurs, lots)
	applyBreakdown(&devis.DocumentBase, taxes.Compute(ht, devis.TauxTVA, devis.TauxCSS))

	if err := s.repo.Create(ctx, devis); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CREATE", "Devis", devis.ID,
		fmt.Sprintf("Création du devis %s", devis.Numero), "", "")
	return devis, nil
}

func (s *DevisService) FindByID(ctx context.Context, id uint) (*models.Devis, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DevisService) List(ctx context.Context, q *repository.ListQuery) ([]models.Devis, int64, error) {
	return s.repo.List(ctx, q)
}

// Update edits the metadata of a non-terminal devis. Line items go through
// ReplaceLignes; totals and the rate snapshot are never touched here.
func (s *DevisService) Update(ctx context.Context, id uint, input *DocumentInput, userID uint) (*models.Devis, error) {
	devis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if devis.IsTerminal() {
		return nil, &ConflictError{Reason: "devis figé", StatutActuel: devis.Statut}
	}

	devis.ClientID = input.ClientID
	devis.TransitaireID = input.TransitaireID
	devis.Notes = input.Notes
	devis.DateValidite = input.DateValidite
	if !input.Date.IsZero() {
		devis.Date = input.Date
	}

	if err := s.repo.Update(ctx, devis); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "UPDATE", "Devis", devis.ID,
		fmt.Sprintf("Modification du devis %s", devis.Numero), "", "")
	return devis, nil
}

// ReplaceLignes swaps the full item set of a brouillon devis and recomputes
// the totals under the devis' frozen rate snapshot.
func (s *DevisService) ReplaceLignes(ctx context.Context, id uint, input *DocumentInput, userID uint) (*models.Devis, error) {
	devis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !devis.MayEditLignes() {
		return nil, &ConflictError{Reason: "lignes non modifiables", StatutActuel: devis.Statut}
	}

	if input.TypeDocument == "" {
		input.TypeDocument = devis.TypeDocument
	}
	lignes, conteneurs, lots, err := buildDocumentItems(input)
	if err != nil {
		return nil, err
	}

	ht := sumItemsHT(lignes, conteneurs, lots)
	applyBreakdown(&devis.DocumentBase, taxes.Compute(ht, devis.TauxTVA, devis.TauxCSS))

	if devis.TypeDocument != input.TypeDocument {
		devis.TypeDocument = input.TypeDocument
		if err := s.repo.Update(ctx, devis); err != nil {
			return nil, err
		}
	}
	if err := s.repo.ReplaceItems(ctx, devis, lignes, conteneurs, lots); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "UPDATE", "Devis", devis.ID,
		fmt.Sprintf("Remplacement des lignes du devis %s", devis.Numero), "", "")
	return s.repo.FindByID(ctx, id)
}

// ChangerStatut drives the devis through its state machine toward the
// requested status. Conversion is not reachable from here; it goes through
// the conversion service so the ordre de travail is created atomically.
func (s *DevisService) ChangerStatut(ctx context.Context, id uint, statut string, userID uint) (*models.Devis, error) {
	devis, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f := statemachine.NewDevisFSM(devis)
	switch statut {
	case models.DevisStatutEnvoye:
		err = f.Envoyer(ctx)
	case models.DevisStatutAccepte:
		err = f.Accepter(ctx)
	case models.DevisStatutRefuse:
		err = f.Refuser(ctx)
	case models.DevisStatutExpire:
		err = f.Expirer(ctx)
	case models.DevisStatutAnnule:
		err = f.Annuler(ctx)
	default:
		return nil, NewValidationError("statut", "statut demandé inconnu")
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, devis); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "STATUT", "Devis", devis.ID,
		fmt.Sprintf("Devis %s: statut %s", devis.Numero, devis.Statut), "", "")
	return devis, nil
}
