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

type OrdreService struct {
	repo       repository.OrdreRepository
	clientRepo repository.ClientRepository
	auditSvc   *AuditService
	cfg        *config.Config
}

func NewOrdreService(
	repo repository.OrdreRepository,
	clientRepo repository.ClientRepository,
	auditSvc *AuditService,
	cfg *config.Config,
) *OrdreService {
	return &OrdreService{
		repo:       repo,
		clientRepo: clientRepo,
		auditSvc:   auditSvc,
		cfg:        cfg,
	}
}

// Create builds an ordre de travail directly, without a source devis.
func (s *OrdreService) Create(ctx context.Context, input *DocumentInput, userID uint) (*models.OrdreTravail, error) {
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

	ordre := &models.OrdreTravail{
		DocumentBase: models.DocumentBase{
			ClientID:      input.ClientID,
			TransitaireID: input.TransitaireID,
			TypeDocument:  input.TypeDocument,
			Date:          input.Date,
			TauxTVA:       s.cfg.TauxTVA,
			TauxCSS:       s.cfg.TauxCSS,
			Notes:         input.Notes,
		},
		Statut:     models.OrdreStatutEnAttente,
		Lignes:     lignes,
		Conteneurs: conteneurs,
		Lots:       lots,
	}
	if ordre.Date.IsZero() {
		ordre.Date = time.Now()
	}

	ht := sumItemsHT(lignes, conteneurs, lots)
	applyBreakdown(&ordre.DocumentBase, taxes.Compute(ht, ordre.TauxTVA, ordre.TauxCSS))

	if err := s.repo.Create(ctx, ordre); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CREATE", "OrdreTravail", ordre.ID,
		fmt.Sprintf("Création de l'ordre de travail %s", ordre.Numero), "", "")
	return ordre, nil
}

func (s *OrdreService) FindByID(ctx context.Context, id uint) (*models.OrdreTravail, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrdreService) List(ctx context.Context, q *repository.ListQuery) ([]models.OrdreTravail, int64, error) {
	return s.repo.List(ctx, q)
}

// Update edits the metadata of a non-terminal ordre de travail.
func (s *OrdreService) Update(ctx context.Context, id uint, input *DocumentInput, userID uint) (*models.OrdreTravail, error) {
	ordre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ordre.IsTerminal() {
		return nil, &ConflictError{Reason: "ordre de travail figé", StatutActuel: ordre.Statut}
	}

	ordre.ClientID = input.ClientID
	ordre.TransitaireID = input.TransitaireID
	ordre.Notes = input.Notes
	if !input.Date.IsZero() {
		ordre.Date = input.Date
	}

	if err := s.repo.Update(ctx, ordre); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "UPDATE", "OrdreTravail", ordre.ID,
		fmt.Sprintf("Modification de l'ordre de travail %s", ordre.Numero), "", "")
	return ordre, nil
}

// ReplaceLignes swaps the item set while the ordre is en_attente or en_cours.
// Totals are recomputed under the rate snapshot inherited at creation.
func (s *OrdreService) ReplaceLignes(ctx context.Context, id uint, input *DocumentInput, userID uint) (*models.OrdreTravail, error) {
	ordre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ordre.MayEditLignes() {
		return nil, &ConflictError{Reason: "lignes non modifiables", StatutActuel: ordre.Statut}
	}

	if input.TypeDocument == "" {
		input.TypeDocument = ordre.TypeDocument
	}
	lignes, conteneurs, lots, err := buildDocumentItems(input)
	if err != nil {
		return nil, err
	}

	ht := sumItemsHT(lignes, conteneurs, lots)
	applyBreakdown(&ordre.DocumentBase, taxes.Compute(ht, ordre.TauxTVA, ordre.TauxCSS))

	if ordre.TypeDocument != input.TypeDocument {
		ordre.TypeDocument = input.TypeDocument
		if err := s.repo.Update(ctx, ordre); err != nil {
			return nil, err
		}
	}
	if err := s.repo.ReplaceItems(ctx, ordre, lignes, conteneurs, lots); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "UPDATE", "OrdreTravail", ordre.ID,
		fmt.Sprintf("Remplacement des lignes de l'ordre %s", ordre.Numero), "", "")
	return s.repo.FindByID(ctx, id)
}

// ChangerStatut drives the ordre through its state machine. The facture
// transition goes through the conversion service instead.
func (s *OrdreService) ChangerStatut(ctx context.Context, id uint, statut string, userID uint) (*models.OrdreTravail, error) {
	ordre, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f := statemachine.NewOrdreFSM(ordre)
	switch statut {
	case models.OrdreStatutEnCours:
		err = f.Demarrer(ctx)
	case models.OrdreStatutTermine:
		err = f.Terminer(ctx)
	case models.OrdreStatutAnnule:
		err = f.Annuler(ctx)
	default:
		return nil, NewValidationError("statut", "statut demandé inconnu")
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ordre); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "STATUT", "OrdreTravail", ordre.ID,
		fmt.Sprintf("Ordre %s: statut %s", ordre.Numero, ordre.Statut), "", "")
	return ordre, nil
}
