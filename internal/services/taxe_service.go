package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
)

// TaxeService maintains the monthly TVA and CSS accruals. Each period is
// recomputed in full from the month's factures; closing a period freezes it
// until an explicit reopen.
type TaxeService struct {
	db          *gorm.DB
	repo        repository.TaxeRepository
	factureRepo repository.FactureRepository
	auditSvc    *AuditService
}

func NewTaxeService(
	db *gorm.DB,
	repo repository.TaxeRepository,
	factureRepo repository.FactureRepository,
	auditSvc *AuditService,
) *TaxeService {
	return &TaxeService{
		db:          db,
		repo:        repo,
		factureRepo: factureRepo,
		auditSvc:    auditSvc,
	}
}

func validePeriode(annee, mois int) error {
	if annee < 2000 || annee > 2100 {
		return NewValidationError("annee", "année hors plage")
	}
	if mois < 1 || mois > 12 {
		return NewValidationError("mois", "mois entre 1 et 12")
	}
	return nil
}

// accrual recomputes one tax type over a set of factures. Brouillons and
// annulées are already filtered out by the caller; a facture whose rate for
// this tax is zero counts into montant_exonere.
func accrual(factures []models.Facture, typeTaxe string) (htTotal, taxeTotal, exonere float64, n int) {
	ht := decimal.Zero
	taxe := decimal.Zero
	exo := decimal.Zero
	for _, f := range factures {
		var taux, montant float64
		if typeTaxe == models.TypeTaxeTVA {
			taux, montant = f.TauxTVA, f.MontantTVA
		} else {
			taux, montant = f.TauxCSS, f.MontantCSS
		}
		if taux == 0 {
			exo = exo.Add(decimal.NewFromFloat(f.MontantHT))
		} else {
			ht = ht.Add(decimal.NewFromFloat(f.MontantHT))
			taxe = taxe.Add(decimal.NewFromFloat(montant))
		}
		n++
	}
	return ht.Round(2).InexactFloat64(), taxe.Round(2).InexactFloat64(), exo.Round(2).InexactFloat64(), n
}

func (s *TaxeService) facturesDuMois(ctx context.Context, annee, mois int) ([]models.Facture, error) {
	factures, err := s.factureRepo.FindByMonth(ctx, annee, mois)
	if err != nil {
		return nil, err
	}
	retained := factures[:0]
	for _, f := range factures {
		if f.Statut == models.FactureStatutBrouillon || f.Statut == models.FactureStatutAnnulee {
			continue
		}
		retained = append(retained, f)
	}
	return retained, nil
}

func (s *TaxeService) recalculerTx(ctx context.Context, tx *gorm.DB, annee, mois int, factures []models.Facture) ([]models.TaxeMensuelle, error) {
	rows := make([]models.TaxeMensuelle, 0, 2)
	for _, typeTaxe := range []string{models.TypeTaxeCSS, models.TypeTaxeTVA} {
		taxe, err := s.repo.FindPeriode(ctx, annee, mois, typeTaxe)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			taxe = &models.TaxeMensuelle{Annee: annee, Mois: mois, TypeTaxe: typeTaxe}
		}
		if taxe.Cloture {
			return nil, &ConflictError{Reason: fmt.Sprintf("période %d-%02d clôturée", annee, mois)}
		}

		taxe.MontantHTTotal, taxe.MontantTaxeTotal, taxe.MontantExonere, taxe.NombreDocuments = accrual(factures, typeTaxe)
		if err := s.repo.SaveTx(tx, taxe); err != nil {
			return nil, err
		}
		rows = append(rows, *taxe)
	}
	return rows, nil
}

// RecalculerMois rebuilds both tax rows of a period from its factures.
func (s *TaxeService) RecalculerMois(ctx context.Context, annee, mois int, userID uint) ([]models.TaxeMensuelle, error) {
	if err := validePeriode(annee, mois); err != nil {
		return nil, err
	}

	factures, err := s.facturesDuMois(ctx, annee, mois)
	if err != nil {
		return nil, err
	}

	var rows []models.TaxeMensuelle
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err = s.recalculerTx(ctx, tx, annee, mois, factures)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "RECALCUL", "TaxeMensuelle", 0,
		fmt.Sprintf("Recalcul des taxes %d-%02d", annee, mois), "", "")
	return rows, nil
}

// CloturerMois recomputes then freezes a period.
func (s *TaxeService) CloturerMois(ctx context.Context, annee, mois int, userID uint) ([]models.TaxeMensuelle, error) {
	if err := validePeriode(annee, mois); err != nil {
		return nil, err
	}

	factures, err := s.facturesDuMois(ctx, annee, mois)
	if err != nil {
		return nil, err
	}

	var rows []models.TaxeMensuelle
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh, err := s.recalculerTx(ctx, tx, annee, mois, factures)
		if err != nil {
			return err
		}
		now := time.Now()
		for i := range fresh {
			fresh[i].Cloture = true
			fresh[i].ClotureAt = &now
			if err := s.repo.SaveTx(tx, &fresh[i]); err != nil {
				return err
			}
		}
		rows = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CLOTURE", "TaxeMensuelle", 0,
		fmt.Sprintf("Clôture des taxes %d-%02d", annee, mois), "", "")
	return rows, nil
}

// RouvrirMois unfreezes a closed period so it can be recomputed again.
func (s *TaxeService) RouvrirMois(ctx context.Context, annee, mois int, userID uint) ([]models.TaxeMensuelle, error) {
	if err := validePeriode(annee, mois); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByPeriode(ctx, annee, mois)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	ouverte := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if !rows[i].Cloture {
				continue
			}
			ouverte = true
			rows[i].Cloture = false
			rows[i].ClotureAt = nil
			if err := s.repo.SaveTx(tx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !ouverte {
		return nil, &ConflictError{Reason: fmt.Sprintf("période %d-%02d non clôturée", annee, mois)}
	}

	s.auditSvc.Log(ctx, userID, "REOUVERTURE", "TaxeMensuelle", 0,
		fmt.Sprintf("Réouverture des taxes %d-%02d", annee, mois), "", "")
	return rows, nil
}

// ListAnnee returns the accrual rows of one year
func (s *TaxeService) ListAnnee(ctx context.Context, annee int) ([]models.TaxeMensuelle, error) {
	return s.repo.ListByYear(ctx, annee)
}
