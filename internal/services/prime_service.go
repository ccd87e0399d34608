package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mkoumba/translog-api/internal/cache"
	"github.com/mkoumba/translog-api/internal/models"
	"github.com/mkoumba/translog-api/internal/repository"
	"github.com/mkoumba/translog-api/pkg/logger"
)

// PrimeListResult is a prime listing enriched with the freshness of the data.
// Available is false when the external database was unreachable and the
// primes come from the last snapshot (or are empty when no snapshot exists).
type PrimeListResult struct {
	Primes    []models.PrimeView `json:"primes"`
	Available bool               `json:"available"`
	FetchedAt *time.Time         `json:"fetched_at,omitempty"`
}

// PrimeService reconciles commissions owned by the external OPS and CNV
// databases with local payouts. Reads degrade to the snapshot cache when the
// external side is down; the décaissement write path never degrades, it
// hard-fails instead of paying against stale data.
type PrimeService struct {
	repo          repository.PrimeRepository
	mouvementRepo repository.MouvementRepository
	cache         *cache.PrimeCache
	auditSvc      *AuditService
	queryTimeout  time.Duration
}

func NewPrimeService(
	repo repository.PrimeRepository,
	mouvementRepo repository.MouvementRepository,
	primeCache *cache.PrimeCache,
	auditSvc *AuditService,
	queryTimeout time.Duration,
) *PrimeService {
	return &PrimeService{
		repo:          repo,
		mouvementRepo: mouvementRepo,
		cache:         primeCache,
		auditSvc:      auditSvc,
		queryTimeout:  queryTimeout,
	}
}

func (s *PrimeService) fetchPayees(ctx context.Context, system string) ([]models.Prime, error) {
	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.repo.ListPayees(qctx, system)
}

// decorate flags each prime with whether its payout movement already exists
func (s *PrimeService) decorate(ctx context.Context, system string, primes []models.Prime) ([]models.PrimeView, error) {
	refs := make([]string, len(primes))
	for i, p := range primes {
		refs[i] = models.PrimeReference(system, p.ID)
	}
	existing, err := s.mouvementRepo.ExistingReferences(ctx, refs)
	if err != nil {
		return nil, err
	}

	views := make([]models.PrimeView, len(primes))
	for i, p := range primes {
		views[i] = models.PrimeView{Prime: p, Decaisse: existing[models.PrimeReference(system, p.ID)]}
	}
	return views, nil
}

// List returns the upstream-paid primes of one system with their local
// payout state, falling back to the last snapshot when the system is down.
func (s *PrimeService) List(ctx context.Context, system string) (*PrimeListResult, error) {
	if !models.ValidSystem(system) {
		return nil, NewValidationError("system", "système inconnu")
	}

	primes, err := s.fetchPayees(ctx, system)
	if err == nil {
		if cacheErr := s.cache.Set(ctx, system, primes); cacheErr != nil {
			logger.Warn("snapshot primes non écrit", "system", system, "error", cacheErr)
		}
		views, err := s.decorate(ctx, system, primes)
		if err != nil {
			return nil, err
		}
		return &PrimeListResult{Primes: views, Available: true}, nil
	}

	logger.Warn("lecture primes dégradée", "system", system, "error", err)
	cached, fetchedAt, cacheErr := s.cache.Get(ctx, system)
	if cacheErr != nil {
		if !errors.Is(cacheErr, cache.ErrMiss) {
			logger.Warn("snapshot primes illisible", "system", system, "error", cacheErr)
		}
		return &PrimeListResult{Primes: []models.PrimeView{}, Available: false}, nil
	}

	views, err := s.decorate(ctx, system, cached)
	if err != nil {
		return nil, err
	}
	return &PrimeListResult{Primes: views, Available: false, FetchedAt: &fetchedAt}, nil
}

// DecaissementInput selects where the payout money leaves from. A nil input
// defaults to the cash drawer.
type DecaissementInput struct {
	Source   string `json:"source"`
	BanqueID *uint  `json:"banque_id"`
}

// Decaisser pays out one prime. The prime must be re-read from the external
// system at payout time; if that system is unreachable the request fails,
// stale snapshots are never good enough to move money.
func (s *PrimeService) Decaisser(ctx context.Context, system string, primeID uint, input *DecaissementInput, userID uint) (*models.MouvementCaisse, error) {
	if !models.ValidSystem(system) {
		return nil, NewValidationError("system", "système inconnu")
	}
	if input == nil {
		input = &DecaissementInput{}
	}
	if input.Source == "" {
		input.Source = models.MouvementSourceCaisse
	}
	if input.Source != models.MouvementSourceCaisse && input.Source != models.MouvementSourceBanque {
		return nil, NewValidationError("source", "source caisse ou banque requise")
	}
	if input.Source == models.MouvementSourceBanque && input.BanqueID == nil {
		return nil, NewValidationError("banque_id", "banque requise pour un décaissement bancaire")
	}

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	prime, err := s.repo.FindByID(qctx, system, primeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrExternalUnavailable, err)
	}
	if !prime.IsPayeeUpstream() {
		return nil, &ConflictError{Reason: "prime non payée côté exploitation", StatutActuel: prime.Statut}
	}

	ref := models.PrimeReference(system, prime.ID)
	mouvement := &models.MouvementCaisse{
		Type:      models.MouvementTypeSortie,
		Categorie: models.DecaissementCategorie(system),
		Montant:   prime.Montant,
		Libelle:   fmt.Sprintf("Décaissement prime %s: %s", system, prime.Beneficiaire),
		Reference: &ref,
		BanqueID:  input.BanqueID,
		Source:    input.Source,
		Date:      time.Now(),
		UserID:    userID,
	}
	if err := s.mouvementRepo.Create(ctx, mouvement); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "prime déjà décaissée"}
		}
		return nil, err
	}

	s.auditSvc.Log(ctx, userID, "DECAISSEMENT", "Prime", primeID,
		fmt.Sprintf("Décaissement prime %s #%d de %.2f", system, primeID, prime.Montant), "", "")
	return mouvement, nil
}

// Stats summarises one system for the dashboard
func (s *PrimeService) Stats(ctx context.Context, system string) (*models.PrimeStats, error) {
	if !models.ValidSystem(system) {
		return nil, NewValidationError("system", "système inconnu")
	}

	result, err := s.List(ctx, system)
	if err != nil {
		return nil, err
	}

	stats := &models.PrimeStats{System: system, Available: result.Available}
	for _, v := range result.Primes {
		stats.NombrePrimes++
		stats.MontantTotal += v.Montant
		if v.Decaisse {
			stats.NombrePayees++
			stats.MontantPayees += v.Montant
		}
	}
	return stats, nil
}

// Sante pings one external system
func (s *PrimeService) Sante(ctx context.Context, system string) error {
	if !models.ValidSystem(system) {
		return NewValidationError("system", "système inconnu")
	}
	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.repo.Ping(qctx, system)
}

// RefreshSnapshots re-reads both systems into the cache; wired as a
// scheduled background job.
func (s *PrimeService) RefreshSnapshots(ctx context.Context) {
	for _, system := range []string{models.SystemOPS, models.SystemCNV} {
		primes, err := s.fetchPayees(ctx, system)
		if err != nil {
			if !errors.Is(err, repository.ErrExternalNotConfigured) {
				logger.Warn("rafraîchissement snapshot", "system", system, "error", err)
			}
			continue
		}
		if err := s.cache.Set(ctx, system, primes); err != nil {
			logger.Warn("écriture snapshot", "system", system, "error", err)
		}
	}
}
