// Package cache holds the read-through snapshot cache for external prime
// data, so that the listing endpoints survive short outages of the OPS and
// CNV databases.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkoumba/translog-api/internal/models"
)

// ErrMiss is returned when no snapshot exists for the requested system.
var ErrMiss = errors.New("cache: aucun snapshot")

// PrimeCache stores the last successful read of each external system's primes
// as a JSON snapshot. A nil client disables caching; Get then always misses.
type PrimeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPrimeCache creates a prime cache with the given snapshot TTL
func NewPrimeCache(rdb *redis.Client, ttl time.Duration) *PrimeCache {
	return &PrimeCache{rdb: rdb, ttl: ttl}
}

type snapshot struct {
	Primes    []models.Prime `json:"primes"`
	FetchedAt time.Time      `json:"fetched_at"`
}

func key(system string) string {
	return fmt.Sprintf("primes:snapshot:%s", system)
}

// Get returns the cached primes for a system along with the snapshot age.
func (c *PrimeCache) Get(ctx context.Context, system string) ([]models.Prime, time.Time, error) {
	if c == nil || c.rdb == nil {
		return nil, time.Time{}, ErrMiss
	}
	raw, err := c.rdb.Get(ctx, key(system)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, ErrMiss
		}
		return nil, time.Time{}, err
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, time.Time{}, err
	}
	return snap.Primes, snap.FetchedAt, nil
}

// Set replaces the snapshot for a system
func (c *PrimeCache) Set(ctx context.Context, system string, primes []models.Prime) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(snapshot{Primes: primes, FetchedAt: time.Now()})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(system), raw, c.ttl).Err()
}
