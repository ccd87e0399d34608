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

// ConversionService turns a devis into an ordre de travail and an ordre into
// a facture. Each conversion deep-copies the document tree under a fresh
// numero and marks the source converted, all in one transaction. The rate
// snapshot travels unchanged so a rate update between stages never alters an
// in-flight dossier.
type ConversionService struct {
	db          *gorm.DB
	devisRepo   repository.DevisRepository
	ordreRepo   repository.OrdreRepository
	factureRepo repository.FactureRepository
	auditSvc    *AuditService
}

func NewConversionService(
	db *gorm.DB,
	devisRepo repository.DevisRepository,
	ordreRepo repository.OrdreRepository,
	factureRepo repository.FactureRepository,
	auditSvc *AuditService,
) *ConversionService {
	return &ConversionService{
		db:          db,
		devisRepo:   devisRepo,
		ordreRepo:   ordreRepo,
		factureRepo: factureRepo,
		auditSvc:    auditSvc,
	}
}

// copyLignes clones document-level lines with fresh identities
func copyLignes(src []models.LigneOperation) []models.LigneOperation {
	out := make([]models.LigneOperation, len(src))
	for i, l := range src {
		l.ID = 0
		l.DocumentType = ""
		l.DocumentID = 0
		l.CreatedAt = time.Time{}
		out[i] = l
	}
	return out
}

func copyConteneurs(src []models.Conteneur) []models.Conteneur {
	out := make([]models.Conteneur, len(src))
	for i, c := range src {
		ops := make([]models.OperationItem, len(c.Operations))
		for j, op := range c.Operations {
			op.ID = 0
			op.ConteneurID = 0
			op.CreatedAt = time.Time{}
			ops[j] = op
		}
		c.ID = 0
		c.DocumentType = ""
		c.DocumentID = 0
		c.Armateur = nil
		c.Operations = ops
		c.CreatedAt = time.Time{}
		out[i] = c
	}
	return out
}

func copyLots(src []models.LotItem) []models.LotItem {
	out := make([]models.LotItem, len(src))
	for i, l := range src {
		l.ID = 0
		l.DocumentType = ""
		l.DocumentID = 0
		l.CreatedAt = time.Time{}
		out[i] = l
	}
	return out
}

// copyBase clones the shared document fields, dropping identity and totals
// metadata that belongs to the new row.
func copyBase(src models.DocumentBase) models.DocumentBase {
	src.ID = 0
	src.Numero = ""
	src.Date = time.Now()
	src.CreatedAt = time.Time{}
	src.UpdatedAt = time.Time{}
	return src
}

// verifyCopiedTotals recomputes the copied tree's totals from its items, the
// same way the create path does, and rejects a copy whose amounts no longer
// match the carried snapshot.
func verifyCopiedTotals(base models.DocumentBase, lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	b := taxes.Compute(sumItemsHT(lignes, conteneurs, lots), base.TauxTVA, base.TauxCSS)
	if b.MontantHT != base.MontantHT || b.MontantTTC != base.MontantTTC {
		return fmt.Errorf("totaux divergents après copie: %.2f HT / %.2f TTC attendus, %.2f / %.2f recalculés",
			base.MontantHT, base.MontantTTC, b.MontantHT, b.MontantTTC)
	}
	return nil
}

// ConvertirDevis creates the ordre de travail from a devis.
func (s *ConversionService) ConvertirDevis(ctx context.Context, devisID uint, userID uint) (*models.OrdreTravail, error) {
	devis, err := s.devisRepo.FindByID(ctx, devisID)
	if err != nil {
		return nil, err
	}

	ordre := &models.OrdreTravail{
		DocumentBase: copyBase(devis.DocumentBase),
		Statut:       models.OrdreStatutEnAttente,
		DevisID:      &devis.ID,
		Lignes:       copyLignes(devis.Lignes),
		Conteneurs:   copyConteneurs(devis.Conteneurs),
		Lots:         copyLots(devis.Lots),
	}
	if err := verifyCopiedTotals(ordre.DocumentBase, ordre.Lignes, ordre.Conteneurs, ordre.Lots); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligibility is decided on the locked row; the preloaded read above
		// only feeds the copy. Two concurrent conversions serialize here and
		// the loser sees converti_en_id already set.
		var source models.Devis
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&source, devis.ID).Error; err != nil {
			return err
		}
		if source.ConvertiEnID != nil {
			return &ConflictError{Reason: "devis déjà converti", StatutActuel: source.Statut}
		}
		if err := statemachine.NewDevisFSM(&source).Convertir(tx.Statement.Context); err != nil {
			return err
		}
		if err := s.ordreRepo.CreateTx(tx, ordre); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: "devis déjà converti", StatutActuel: source.Statut}
			}
			return err
		}
		return tx.Model(&models.Devis{}).Where("id = ?", source.ID).
			Updates(map[string]interface{}{
				"statut":         models.DevisStatutConverti,
				"converti_en_id": ordre.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CONVERT", "Devis", devis.ID,
		fmt.Sprintf("Devis %s converti en ordre de travail %s", devis.Numero, ordre.Numero), "", "")
	return ordre, nil
}

// ConvertirOrdre creates the facture from a terminated ordre de travail.
// The facture starts as brouillon; it only opens for payments once sent.
func (s *ConversionService) ConvertirOrdre(ctx context.Context, ordreID uint, userID uint) (*models.Facture, error) {
	ordre, err := s.ordreRepo.FindByID(ctx, ordreID)
	if err != nil {
		return nil, err
	}

	facture := &models.Facture{
		DocumentBase: copyBase(ordre.DocumentBase),
		Statut:       models.FactureStatutBrouillon,
		OrdreID:      &ordre.ID,
		Lignes:       copyLignes(ordre.Lignes),
		Conteneurs:   copyConteneurs(ordre.Conteneurs),
		Lots:         copyLots(ordre.Lots),
	}
	if err := verifyCopiedTotals(facture.DocumentBase, facture.Lignes, facture.Conteneurs, facture.Lots); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.OrdreTravail
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&source, ordre.ID).Error; err != nil {
			return err
		}
		if source.ConvertiEnID != nil {
			return &ConflictError{Reason: "ordre de travail déjà facturé", StatutActuel: source.Statut}
		}
		if err := statemachine.NewOrdreFSM(&source).Facturer(tx.Statement.Context); err != nil {
			return err
		}
		if err := s.factureRepo.CreateTx(tx, facture); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Reason: "ordre de travail déjà facturé", StatutActuel: source.Statut}
			}
			return err
		}
		return tx.Model(&models.OrdreTravail{}).Where("id = ?", source.ID).
			Updates(map[string]interface{}{
				"statut":         models.OrdreStatutFacture,
				"converti_en_id": facture.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "CONVERT", "OrdreTravail", ordre.ID,
		fmt.Sprintf("Ordre %s facturé: %s", ordre.Numero, facture.Numero), "", "")
	return facture, nil
}
