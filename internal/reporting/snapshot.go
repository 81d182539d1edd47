// Package reporting serves the staff-dashboard progress snapshot, with an
// optional short-TTL Redis cache in front of the store.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dirsubmit/internal/domain"
)

const snapshotCacheKey = "dirsubmit:progress:snapshot"

// Service answers progress snapshot queries.
type Service struct {
	store  domain.JobStore
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService builds the reporting service. cache may be nil to disable
// caching entirely.
func NewService(store domain.JobStore, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &Service{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "reporting").Logger(),
	}
}

// Snapshot returns the per-job progress rows, serving from cache when fresh.
// Cache failures degrade to a direct store read; the dashboard must not go
// dark because Redis did.
func (s *Service) Snapshot(ctx context.Context) ([]domain.ProgressRow, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, snapshotCacheKey).Bytes()
		if err == nil {
			var rows []domain.ProgressRow
			if jsonErr := json.Unmarshal(data, &rows); jsonErr == nil {
				return rows, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("snapshot cache read failed")
		}
	}

	rows, err := s.store.FetchJobProgressSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch progress snapshot: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(rows); err == nil {
			if err := s.cache.Set(ctx, snapshotCacheKey, data, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("snapshot cache write failed")
			}
		}
	}
	return rows, nil
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, snapshotCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot cache invalidate failed")
	}
}
