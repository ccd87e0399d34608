package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/internal/taxes"
)

// CreditInput carries the terms of a new bank credit
type CreditInput struct {
	BanqueID         uint      `json:"banque_id" binding:"required"`
	Objet            *string   `json:"objet"`
	MontantPrincipal float64   `json:"montant_principal" binding:"required"`
	TauxInteret      float64   `json:"taux_interet"`
	DureeMois        int       `json:"duree_mois" binding:"required"`
	DateDebut        time.Time `json:"date_debut"`
}

// RemboursementInput carries one repayment against a credit
type RemboursementInput struct {
	Montant    float64   `json:"montant" binding:"required"`
	Date       time.Time `json:"date"`
	EcheanceID *uint     `json:"echeance_id"`
}

// CreditService manages bank credits: simple-interest terms, the amortization
// schedule generated once at creation, and repayments.
type CreditService struct {
	db       *gorm.DB
	repo     repository.CreditRepository
	auditSvc *AuditService
}

func NewCreditService(db *gorm.DB, repo repository.CreditRepository, auditSvc *AuditService) *CreditService {
	return &CreditService{db: db, repo: repo, auditSvc: auditSvc}
}

// Create computes the simple-interest terms and generates the schedule.
// interet = principal × taux/100 × durée/12; each installment is
// total/durée rounded, and the last one absorbs the rounding remainder so
// the schedule sums exactly to montant_total.
func (s *CreditService) Create(ctx context.Context, input *CreditInput, userID uint) (*models.CreditBancaire, error) {
	if input.MontantPrincipal <= 0 {
		return nil, NewValidationError("montant_principal", "montant strictement positif requis")
	}
	if input.TauxInteret < 0 {
		return nil, NewValidationError("taux_interet", "taux négatif")
	}
	if input.DureeMois <= 0 {
		return nil, NewValidationError("duree_mois", "durée strictement positive requise")
	}
	if input.DateDebut.IsZero() {
		input.DateDebut = time.Now()
	}

	principal := decimal.NewFromFloat(input.MontantPrincipal)
	interet := principal.
		Mul(decimal.NewFromFloat(input.TauxInteret)).Div(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(int64(input.DureeMois))).Div(decimal.NewFromInt(12)).
		Round(2)
	total := principal.Add(interet)

	mensualite := total.Div(decimal.NewFromInt(int64(input.DureeMois))).Round(2)
	derniere := total.Sub(mensualite.Mul(decimal.NewFromInt(int64(input.DureeMois - 1))))

	credit := &models.CreditBancaire{
		BanqueID:         input.BanqueID,
		Objet:            input.Objet,
		MontantPrincipal: principal.InexactFloat64(),
		TauxInteret:      input.TauxInteret,
		DureeMois:        input.DureeMois,
		MontantInteret:   interet.InexactFloat64(),
		MontantTotal:     total.InexactFloat64(),
		DateDebut:        input.DateDebut,
		Statut:           models.CreditStatutActif,
	}

	echeances := make([]models.EcheanceCredit, input.DureeMois)
	for i := 0; i < input.DureeMois; i++ {
		montant := mensualite
		if i == input.DureeMois-1 {
			montant = derniere
		}
		echeances[i] = models.EcheanceCredit{
			NumeroEcheance: i + 1,
			DateEcheance:   input.DateDebut.AddDate(0, i+1, 0),
			Montant:        montant.InexactFloat64(),
			Statut:         models.EcheanceStatutEnAttente,
		}
	}
	credit.Echeances = echeances

	if err := s.repo.Create(ctx, credit); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CREATE", "CreditBancaire", credit.ID,
		fmt.Sprintf("Crédit de %.2f sur %d mois", credit.MontantPrincipal, credit.DureeMois), "", "")
	return credit, nil
}

func (s *CreditService) FindByID(ctx context.Context, id uint) (*models.CreditBancaire, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CreditService) List(ctx context.Context, q *repository.ListQuery) ([]models.CreditBancaire, int64, error) {
	return s.repo.List(ctx, q)
}

// Rembourser records a repayment. Over-repayment is rejected with the
// remaining balance; the credit flips to soldé when the sum reaches the
// total. Échéances are marked paid as cumulative repayments cover them; a
// repayment without an explicit échéance is attached to the oldest unpaid one.
func (s *CreditService) Rembourser(ctx context.Context, creditID uint, input *RemboursementInput, userID uint) (*models.RemboursementCredit, error) {
	if input.Montant <= 0 {
		return nil, NewValidationError("montant", "montant strictement positif requis")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	var remboursement *models.RemboursementCredit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credit, err := s.repo.FindForUpdateTx(tx, creditID)
		if err != nil {
			return err
		}
		if credit.Statut == models.CreditStatutSolde {
			return &ConflictError{Reason: "crédit déjà soldé", StatutActuel: credit.Statut}
		}

		sum, err := s.repo.SumRemboursementsTx(tx, credit.ID)
		if err != nil {
			return err
		}
		reste := taxes.Round2(credit.MontantTotal - sum)
		if input.Montant > reste+montantEpsilon {
			return &ConflictError{Reason: "montant supérieur au solde du crédit", ResteAPayer: &reste}
		}

		echeanceID := input.EcheanceID
		if echeanceID == nil {
			next, err := s.repo.NextEcheanceEnAttenteTx(tx, credit.ID)
			if err != nil {
				return err
			}
			if next != nil {
				echeanceID = &next.ID
			}
		}

		remboursement = &models.RemboursementCredit{
			CreditID:   credit.ID,
			EcheanceID: echeanceID,
			Montant:    input.Montant,
			Date:       input.Date,
			UserID:     userID,
		}
		if err := s.repo.CreateRemboursementTx(tx, remboursement); err != nil {
			return err
		}

		newSum := taxes.Round2(sum + input.Montant)
		if err := s.markEcheancesTx(tx, credit.ID, newSum); err != nil {
			return err
		}

		if newSum >= credit.MontantTotal-montantEpsilon {
			return s.repo.UpdateStatutTx(tx, credit.ID, models.CreditStatutSolde)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "REMBOURSEMENT", "CreditBancaire", creditID,
		fmt.Sprintf("Remboursement de %.2f", input.Montant), "", "")
	return remboursement, nil
}

// markEcheancesTx marks installments paid while the cumulative schedule
// amount stays covered by the repaid total.
func (s *CreditService) markEcheancesTx(tx *gorm.DB, creditID uint, totalRembourse float64) error {
	var echeances []models.EcheanceCredit
	if err := tx.Where("credit_id = ?", creditID).
		Order("numero_echeance asc").
		Find(&echeances).Error; err != nil {
		return err
	}

	cumul := 0.0
	for _, e := range echeances {
		cumul = taxes.Round2(cumul + e.Montant)
		if cumul > totalRembourse+montantEpsilon {
			break
		}
		if e.Statut != models.EcheanceStatutPayee {
			if err := s.repo.MarkEcheancePayeeTx(tx, e.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// MarquerEnDefaut flags an active credit as en_defaut
func (s *CreditService) MarquerEnDefaut(ctx context.Context, id uint, userID uint) (*models.CreditBancaire, error) {
	credit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if credit.Statut != models.CreditStatutActif {
		return nil, &ConflictError{Reason: "seul un crédit actif passe en défaut", StatutActuel: credit.Statut}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.UpdateStatutTx(tx, id, models.CreditStatutDefaut)
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "STATUT", "CreditBancaire", id, "Crédit marqué en défaut", "", "")
	return s.repo.FindByID(ctx, id)
}
