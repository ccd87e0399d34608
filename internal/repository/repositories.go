package repository

import (
	"gorm.io/gorm"
)

// ListQuery carries pagination, sorting and filter parameters for list endpoints
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

func (q *ListQuery) offset() int {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	return (q.Page - 1) * q.PerPage
}

// Repositories holds all repository instances
type Repositories struct {
	Sequence  SequenceRepository
	Devis     DevisRepository
	Ordre     OrdreRepository
	Facture   FactureRepository
	Paiement  PaiementRepository
	Mouvement MouvementRepository
	Credit    CreditRepository
	Taxe      TaxeRepository
	Client    ClientRepository
	Prime     PrimeRepository
}

// NewRepositories creates all repository instances. opsDB and cnvDB are the
// external read-only connections and may be nil when unconfigured.
func NewRepositories(db *gorm.DB, opsDB, cnvDB *gorm.DB) *Repositories {
	seq := NewSequenceRepository()
	return &Repositories{
		Sequence:  seq,
		Devis:     NewDevisRepository(db, seq),
		Ordre:     NewOrdreRepository(db, seq),
		Facture:   NewFactureRepository(db, seq),
		Paiement:  NewPaiementRepository(db),
		Mouvement: NewMouvementRepository(db),
		Credit:    NewCreditRepository(db),
		Taxe:      NewTaxeRepository(db),
		Client:    NewClientRepository(db),
		Prime:     NewPrimeRepository(opsDB, cnvDB),
	}
}
