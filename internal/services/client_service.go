package services

import (
	"context"
	"fmt"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
)

// ClientService manages the reference tables documents point at.
type ClientService struct {
	repo     repository.ClientRepository
	auditSvc *AuditService
}

func NewClientService(repo repository.ClientRepository, auditSvc *AuditService) *ClientService {
	return &ClientService{repo: repo, auditSvc: auditSvc}
}

func (s *ClientService) CreateClient(ctx context.Context, client *models.Client, userID uint) error {
	if client.Nom == "" {
		return NewValidationError("nom", "nom requis")
	}
	client.Actif = true
	if err := s.repo.CreateClient(ctx, client); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, userID, "CREATE", "Client", client.ID,
		fmt.Sprintf("Création du client %s", client.Nom), "", "")
	return nil
}

func (s *ClientService) FindClientByID(ctx context.Context, id uint) (*models.Client, error) {
	return s.repo.FindClientByID(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context, q *repository.ListQuery) ([]models.Client, int64, error) {
	return s.repo.ListClients(ctx, q)
}

func (s *ClientService) UpdateClient(ctx context.Context, client *models.Client, userID uint) error {
	if client.Nom == "" {
		return NewValidationError("nom", "nom requis")
	}
	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, userID, "UPDATE", "Client", client.ID,
		fmt.Sprintf("Modification du client %s", client.Nom), "", "")
	return nil
}

// DesactiverClient soft-disables a client; its documents stay untouched.
func (s *ClientService) DesactiverClient(ctx context.Context, id uint, userID uint) (*models.Client, error) {
	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Actif = false
	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, userID, "UPDATE", "Client", client.ID,
		fmt.Sprintf("Désactivation du client %s", client.Nom), "", "")
	return client, nil
}

func (s *ClientService) CreateTransitaire(ctx context.Context, t *models.Transitaire, userID uint) error {
	if t.Nom == "" {
		return NewValidationError("nom", "nom requis")
	}
	if err := s.repo.CreateTransitaire(ctx, t); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, userID, "CREATE", "Transitaire", t.ID,
		fmt.Sprintf("Création du transitaire %s", t.Nom), "", "")
	return nil
}

func (s *ClientService) ListTransitaires(ctx context.Context) ([]models.Transitaire, error) {
	return s.repo.ListTransitaires(ctx)
}

func (s *ClientService) UpdateTransitaire(ctx context.Context, t *models.Transitaire, userID uint) error {
	if t.Nom == "" {
		return NewValidationError("nom", "nom requis")
	}
	if err := s.repo.UpdateTransitaire(ctx, t); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, userID, "UPDATE", "Transitaire", t.ID,
		fmt.Sprintf("Modification du transitaire %s", t.Nom), "", "")
	return nil
}

func (s *ClientService) CreateArmateur(ctx context.Context, a *models.Armateur, userID uint) error {
	if a.Nom == "" {
		return NewValidationError("nom", "nom requis")
	}
	if err := s.repo.CreateArmateur(ctx, a); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, userID, "CREATE", "Armateur", a.ID,
		fmt.Sprintf("Création de l'armateur %s", a.Nom), "", "")
	return nil
}

func (s *ClientService) ListArmateurs(ctx context.Context) ([]models.Armateur, error) {
	return s.repo.ListArmateurs(ctx)
}

func (s *ClientService) CreateBanque(ctx context.Context, b *models.Banque, userID uint) error {
	if b.Nom == "" {
		return NewValidationError("nom", "nom requis")
	}
	if err := s.repo.CreateBanque(ctx, b); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, userID, "CREATE", "Banque", b.ID,
		fmt.Sprintf("Création de la banque %s", b.Nom), "", "")
	return nil
}

func (s *ClientService) ListBanques(ctx context.Context) ([]models.Banque, error) {
	return s.repo.ListBanques(ctx)
}
