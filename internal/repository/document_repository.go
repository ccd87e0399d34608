package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/models"
)

// deleteDocumentItems removes every line-item child of a document inside tx.
func deleteDocumentItems(tx *gorm.DB, docType string, docID uint) error {
	var conteneurIDs []uint
	if err := tx.Model(&models.Conteneur{}).
		Where("document_type = ? AND document_id = ?", docType, docID).
		Pluck("id", &conteneurIDs).Error; err != nil {
		return err
	}
	if len(conteneurIDs) > 0 {
		if err := tx.Where("conteneur_id IN ?", conteneurIDs).Delete(&models.OperationItem{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("document_type = ? AND document_id = ?", docType, docID).Delete(&models.Conteneur{}).Error; err != nil {
		return err
	}
	if err := tx.Where("document_type = ? AND document_id = ?", docType, docID).Delete(&models.LigneOperation{}).Error; err != nil {
		return err
	}
	return tx.Where("document_type = ? AND document_id = ?", docType, docID).Delete(&models.LotItem{}).Error
}

// insertDocumentItems creates a replacement set of children inside tx.
func insertDocumentItems(tx *gorm.DB, docType string, docID uint,
	lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	for i := range lignes {
		lignes[i].ID = 0
		lignes[i].DocumentType = docType
		lignes[i].DocumentID = docID
	}
	if len(lignes) > 0 {
		if err := tx.Create(&lignes).Error; err != nil {
			return err
		}
	}
	for i := range conteneurs {
		conteneurs[i].ID = 0
		conteneurs[i].DocumentType = docType
		conteneurs[i].DocumentID = docID
		for j := range conteneurs[i].Operations {
			conteneurs[i].Operations[j].ID = 0
			conteneurs[i].Operations[j].ConteneurID = 0
		}
	}
	if len(conteneurs) > 0 {
		if err := tx.Create(&conteneurs).Error; err != nil {
			return err
		}
	}
	for i := range lots {
		lots[i].ID = 0
		lots[i].DocumentType = docType
		lots[i].DocumentID = docID
	}
	if len(lots) > 0 {
		if err := tx.Create(&lots).Error; err != nil {
			return err
		}
	}
	return nil
}

func applyDocumentListQuery(db *gorm.DB, q *ListQuery) *gorm.DB {
	if statut := q.Filters["statut"]; statut != "" {
		db = db.Where("statut = ?", statut)
	}
	if clientID := q.Filters["client_id"]; clientID != "" {
		db = db.Where("client_id = ?", clientID)
	}
	if start := q.Filters["start_date"]; start != "" {
		db = db.Where("date >= ?", start)
	}
	if end := q.Filters["end_date"]; end != "" {
		db = db.Where("date <= ?", end)
	}
	if q.Search != "" {
		db = db.Where("numero ILIKE ?", "%"+q.Search+"%")
	}
	sortBy := "created_at"
	if q.SortBy == "numero" || q.SortBy == "date" || q.SortBy == "montant_ttc" {
		sortBy = q.SortBy
	}
	dir := "desc"
	if q.SortDir == "asc" {
		dir = "asc"
	}
	return db.Order(sortBy + " " + dir)
}

// DevisRepository defines data access for devis
type DevisRepository interface {
	Create(ctx context.Context, devis *models.Devis) error
	CreateTx(tx *gorm.DB, devis *models.Devis) error
	FindByID(ctx context.Context, id uint) (*models.Devis, error)
	List(ctx context.Context, q *ListQuery) ([]models.Devis, int64, error)
	Update(ctx context.Context, devis *models.Devis) error
	ReplaceItems(ctx context.Context, devis *models.Devis,
		lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error
}

type devisRepository struct {
	db  *gorm.DB
	seq SequenceRepository
}

// NewDevisRepository creates a new devis repository
func NewDevisRepository(db *gorm.DB, seq SequenceRepository) DevisRepository {
	return &devisRepository{db: db, seq: seq}
}

// CreateTx persists the devis and its children inside the caller's
// transaction, allocating the numero from the sequence counter.
func (r *devisRepository) CreateTx(tx *gorm.DB, devis *models.Devis) error {
	year := devis.Date.Year()
	if year == 1 {
		devis.Date = time.Now()
		year = devis.Date.Year()
	}
	numero, err := r.seq.Next(tx, models.PrefixDevis, year)
	if err != nil {
		return err
	}
	devis.Numero = numero
	return tx.Create(devis).Error
}

func (r *devisRepository) Create(ctx context.Context, devis *models.Devis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.CreateTx(tx, devis)
	})
}

func (r *devisRepository) FindByID(ctx context.Context, id uint) (*models.Devis, error) {
	var devis models.Devis
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Transitaire").
		Preload("Lignes").
		Preload("Conteneurs.Operations").
		Preload("Conteneurs.Armateur").
		Preload("Lots").
		First(&devis, id).Error
	if err != nil {
		return nil, err
	}
	return &devis, nil
}

func (r *devisRepository) List(ctx context.Context, q *ListQuery) ([]models.Devis, int64, error) {
	var list []models.Devis
	var total int64

	base := applyDocumentListQuery(r.db.WithContext(ctx).Model(&models.Devis{}), q)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Preload("Client").
		Offset(q.offset()).Limit(q.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *devisRepository) Update(ctx context.Context, devis *models.Devis) error {
	return r.db.WithContext(ctx).Omit("Lignes", "Conteneurs", "Lots", "Client", "Transitaire").
		Save(devis).Error
}

func (r *devisRepository) ReplaceItems(ctx context.Context, devis *models.Devis,
	lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDocumentItems(tx, "devis", devis.ID); err != nil {
			return err
		}
		if err := insertDocumentItems(tx, "devis", devis.ID, lignes, conteneurs, lots); err != nil {
			return err
		}
		return tx.Model(&models.Devis{}).Where("id = ?", devis.ID).
			Updates(map[string]interface{}{
				"montant_ht":  devis.MontantHT,
				"montant_tva": devis.MontantTVA,
				"montant_css": devis.MontantCSS,
				"montant_ttc": devis.MontantTTC,
			}).Error
	})
}

// OrdreRepository defines data access for ordres de travail
type OrdreRepository interface {
	Create(ctx context.Context, ordre *models.OrdreTravail) error
	CreateTx(tx *gorm.DB, ordre *models.OrdreTravail) error
	FindByID(ctx context.Context, id uint) (*models.OrdreTravail, error)
	List(ctx context.Context, q *ListQuery) ([]models.OrdreTravail, int64, error)
	Update(ctx context.Context, ordre *models.OrdreTravail) error
	ReplaceItems(ctx context.Context, ordre *models.OrdreTravail,
		lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error
}

type ordreRepository struct {
	db  *gorm.DB
	seq SequenceRepository
}

// NewOrdreRepository creates a new ordre de travail repository
func NewOrdreRepository(db *gorm.DB, seq SequenceRepository) OrdreRepository {
	return &ordreRepository{db: db, seq: seq}
}

func (r *ordreRepository) CreateTx(tx *gorm.DB, ordre *models.OrdreTravail) error {
	year := ordre.Date.Year()
	if year == 1 {
		ordre.Date = time.Now()
		year = ordre.Date.Year()
	}
	numero, err := r.seq.Next(tx, models.PrefixOrdre, year)
	if err != nil {
		return err
	}
	ordre.Numero = numero
	return tx.Create(ordre).Error
}

func (r *ordreRepository) Create(ctx context.Context, ordre *models.OrdreTravail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.CreateTx(tx, ordre)
	})
}

func (r *ordreRepository) FindByID(ctx context.Context, id uint) (*models.OrdreTravail, error) {
	var ordre models.OrdreTravail
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Transitaire").
		Preload("Lignes").
		Preload("Conteneurs.Operations").
		Preload("Conteneurs.Armateur").
		Preload("Lots").
		First(&ordre, id).Error
	if err != nil {
		return nil, err
	}
	return &ordre, nil
}

func (r *ordreRepository) List(ctx context.Context, q *ListQuery) ([]models.OrdreTravail, int64, error) {
	var list []models.OrdreTravail
	var total int64

	base := applyDocumentListQuery(r.db.WithContext(ctx).Model(&models.OrdreTravail{}), q)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Preload("Client").
		Offset(q.offset()).Limit(q.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *ordreRepository) Update(ctx context.Context, ordre *models.OrdreTravail) error {
	return r.db.WithContext(ctx).Omit("Lignes", "Conteneurs", "Lots", "Client", "Transitaire").
		Save(ordre).Error
}

func (r *ordreRepository) ReplaceItems(ctx context.Context, ordre *models.OrdreTravail,
	lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDocumentItems(tx, "ordre_travail", ordre.ID); err != nil {
			return err
		}
		if err := insertDocumentItems(tx, "ordre_travail", ordre.ID, lignes, conteneurs, lots); err != nil {
			return err
		}
		return tx.Model(&models.OrdreTravail{}).Where("id = ?", ordre.ID).
			Updates(map[string]interface{}{
				"montant_ht":  ordre.MontantHT,
				"montant_tva": ordre.MontantTVA,
				"montant_css": ordre.MontantCSS,
				"montant_ttc": ordre.MontantTTC,
			}).Error
	})
}

// FactureRepository defines data access for factures
type FactureRepository interface {
	Create(ctx context.Context, facture *models.Facture) error
	CreateTx(tx *gorm.DB, facture *models.Facture) error
	FindByID(ctx context.Context, id uint) (*models.Facture, error)
	List(ctx context.Context, q *ListQuery) ([]models.Facture, int64, error)
	Update(ctx context.Context, facture *models.Facture) error
	ReplaceItems(ctx context.Context, facture *models.Facture,
		lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error
	FindByMonth(ctx context.Context, year, month int) ([]models.Facture, error)
}

type factureRepository struct {
	db  *gorm.DB
	seq SequenceRepository
}

// NewFactureRepository creates a new facture repository
func NewFactureRepository(db *gorm.DB, seq SequenceRepository) FactureRepository {
	return &factureRepository{db: db, seq: seq}
}

func (r *factureRepository) CreateTx(tx *gorm.DB, facture *models.Facture) error {
	year := facture.Date.Year()
	if year == 1 {
		facture.Date = time.Now()
		year = facture.Date.Year()
	}
	numero, err := r.seq.Next(tx, models.PrefixFacture, year)
	if err != nil {
		return err
	}
	facture.Numero = numero
	return tx.Create(facture).Error
}

func (r *factureRepository) Create(ctx context.Context, facture *models.Facture) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.CreateTx(tx, facture)
	})
}

func (r *factureRepository) FindByID(ctx context.Context, id uint) (*models.Facture, error) {
	var facture models.Facture
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Transitaire").
		Preload("Lignes").
		Preload("Conteneurs.Operations").
		Preload("Conteneurs.Armateur").
		Preload("Lots").
		Preload("Paiements").
		Preload("Annulation").
		First(&facture, id).Error
	if err != nil {
		return nil, err
	}
	return &facture, nil
}

func (r *factureRepository) List(ctx context.Context, q *ListQuery) ([]models.Facture, int64, error) {
	var list []models.Facture
	var total int64

	base := applyDocumentListQuery(r.db.WithContext(ctx).Model(&models.Facture{}), q)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Preload("Client").
		Offset(q.offset()).Limit(q.PerPage).
		Find(&list).Error
	return list, total, err
}

func (r *factureRepository) Update(ctx context.Context, facture *models.Facture) error {
	return r.db.WithContext(ctx).
		Omit("Lignes", "Conteneurs", "Lots", "Client", "Transitaire", "Paiements", "Annulation").
		Save(facture).Error
}

func (r *factureRepository) ReplaceItems(ctx context.Context, facture *models.Facture,
	lignes []models.LigneOperation, conteneurs []models.Conteneur, lots []models.LotItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDocumentItems(tx, "facture", facture.ID); err != nil {
			return err
		}
		if err := insertDocumentItems(tx, "facture", facture.ID, lignes, conteneurs, lots); err != nil {
			return err
		}
		return tx.Model(&models.Facture{}).Where("id = ?", facture.ID).
			Updates(map[string]interface{}{
				"montant_ht":  facture.MontantHT,
				"montant_tva": facture.MontantTVA,
				"montant_css": facture.MontantCSS,
				"montant_ttc": facture.MontantTTC,
			}).Error
	})
}

// FindByMonth returns the factures dated inside (year, month), used by the
// monthly tax accrual recomputation.
func (r *factureRepository) FindByMonth(ctx context.Context, year, month int) ([]models.Facture, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var list []models.Facture
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Find(&list).Error
	return list, err
}
