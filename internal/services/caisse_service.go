package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
)

// MouvementInput carries a manually entered cash or bank movement
type MouvementInput struct {
	Type      string    `json:"type" binding:"required"`
	Categorie string    `json:"categorie" binding:"required"`
	Montant   float64   `json:"montant" binding:"required"`
	Libelle   string    `json:"libelle"`
	BanqueID  *uint     `json:"banque_id"`
	Source    string    `json:"source"`
	Date      time.Time `json:"date"`
}

// CaisseService manages the append-only movement ledger. System-generated
// movements (payments, refunds, décaissements) are created by their owning
// services and are read-only here.
type CaisseService struct {
	repo     repository.MouvementRepository
	auditSvc *AuditService
}

func NewCaisseService(repo repository.MouvementRepository, auditSvc *AuditService) *CaisseService {
	return &CaisseService{repo: repo, auditSvc: auditSvc}
}

// Create records a manual movement. The system-owned categories are reserved.
func (s *CaisseService) Create(ctx context.Context, input *MouvementInput, userID uint) (*models.MouvementCaisse, error) {
	if input.Type != models.MouvementTypeEntree && input.Type != models.MouvementTypeSortie {
		return nil, NewValidationError("type", "type entree ou sortie requis")
	}
	if input.Montant <= 0 {
		return nil, NewValidationError("montant", "montant strictement positif requis")
	}
	if input.Source == "" {
		input.Source = models.MouvementSourceCaisse
	}
	if input.Source != models.MouvementSourceCaisse && input.Source != models.MouvementSourceBanque {
		return nil, NewValidationError("source", "source caisse ou banque requise")
	}
	if input.Source == models.MouvementSourceBanque && input.BanqueID == nil {
		return nil, NewValidationError("banque_id", "banque requise pour un mouvement bancaire")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	mouvement := &models.MouvementCaisse{
		Type:      input.Type,
		Categorie: input.Categorie,
		Montant:   input.Montant,
		Libelle:   input.Libelle,
		BanqueID:  input.BanqueID,
		Source:    input.Source,
		Date:      input.Date,
		UserID:    userID,
	}
	if mouvement.IsSystemOwned() {
		return nil, NewValidationError("categorie", "catégorie réservée aux mouvements système")
	}

	// A manual sortie may not overdraw its source.
	if input.Type == models.MouvementTypeSortie {
		q := repository.NewListQuery()
		q.Filters["source"] = input.Source
		balance, err := s.repo.ComputeBalance(ctx, q)
		if err != nil {
			return nil, err
		}
		if input.Montant > balance.Solde+0.005 {
			return nil, &ConflictError{Reason: fmt.Sprintf("solde insuffisant (%.2f disponible)", balance.Solde)}
		}
	}

	if err := s.repo.Create(ctx, mouvement); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CREATE", "MouvementCaisse", mouvement.ID,
		fmt.Sprintf("Mouvement %s de %.2f (%s)", mouvement.Type, mouvement.Montant, mouvement.Categorie), "", "")
	return mouvement, nil
}

func (s *CaisseService) List(ctx context.Context, q *repository.ListQuery) ([]models.MouvementCaisse, int64, error) {
	return s.repo.List(ctx, q)
}

// Delete removes a manual movement. System-generated movements only go away
// with the record that created them.
func (s *CaisseService) Delete(ctx context.Context, id uint, userID uint) error {
	mouvement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if mouvement.IsSystemOwned() {
		return &ConflictError{Reason: "mouvement système non supprimable"}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, userID, "DELETE", "MouvementCaisse", id,
		fmt.Sprintf("Suppression du mouvement %s de %.2f", mouvement.Type, mouvement.Montant), "", "")
	return nil
}

// Balance computes Σ entrées − Σ sorties over the filtered slice of the ledger
func (s *CaisseService) Balance(ctx context.Context, q *repository.ListQuery) (*repository.Balance, error) {
	return s.repo.ComputeBalance(ctx, q)
}

// Categories returns the catalogue offered for manual movements
func (s *CaisseService) Categories() []string {
	return models.CategoriesMouvement
}
